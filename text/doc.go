// Package text lays out styled inline content into positioned lines.
//
// The pipeline runs in one pass per call:
//
//   - Analyze: resolves styles and builds a LogicalItemView over the content
//   - ResolveBidi: Unicode bidi levels and scripts per item range
//   - shaping: per-font partition of every run, then HarfBuzz shaping
//   - orient: upright and rotated glyphs in vertical writing modes
//   - breaking: greedy first-fit lines inside a boundary shape, around exclusions
//   - positioning: bidi reordering, alignment and justification
//
// # Example usage
//
//	fm := text.NewFontManager()
//	src, err := text.NewFontSource(goregular.TTF)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fm.Register("Go", src)
//
//	content := []text.InlineContent{text.TextRun{Text: "Hello, World"}}
//	styles := text.StyleSheet{"": {Family: "Go", Size: 16, TabSize: 8}}
//	layout, err := text.LayoutText(fm, content, styles, text.Constraints{Width: 200})
//
// # Fonts
//
// A FontManager maps family names to FontSources and holds per-script
// fallback chains. Fonts can be loaded in the background with LoadAsync;
// layouts made while a family is still loading use fallbacks and are
// marked Pending.
//
// # Errors
//
// LayoutText fails only on malformed constraints. Unresolved styles,
// missing glyphs, shaping failures and malformed text degrade locally and
// are reported in Layout.Diagnostics. Content that does not fit is
// described by Layout.Overflow.
package text
