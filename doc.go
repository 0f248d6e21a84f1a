// Package textflow lays out styled inline content into lines and glyphs.
//
// # Overview
//
// textflow is the text layout core of a UI toolkit. It takes an ordered
// sequence of text runs, inline objects, tabs and forced breaks and
// produces positioned lines ready for rendering, together with caret and
// selection queries. Rendering itself happens elsewhere.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/textflow"
//	    "github.com/gogpu/textflow/text"
//	)
//
//	e := textflow.New()
//	src, _ := text.NewFontSource(fontData)
//	e.Fonts().Register("Body", src)
//
//	l, err := e.Layout(
//	    []text.InlineContent{text.TextRun{Text: "Hello, world"}},
//	    text.StyleSheet{"": {Family: "Body", Size: 16}},
//	    text.Constraints{Width: 320},
//	)
//
// # Architecture
//
// The library is organized into:
//   - textflow: Engine, options and logging
//   - text: the pipeline (analysis, bidi, fonts and shaping, orientation,
//     line breaking, positioning) and cursor queries
//   - text/cache: the layout cache
//   - text/hyphen: hyphenation dictionaries
//
// # Coordinate System
//
// Uses standard computer graphics coordinates:
//   - Origin (0,0) at the top-left of the layout area
//   - X increases right
//   - Y increases down
//
// # Concurrency
//
// An Engine and its font manager may be used from many goroutines. Layout
// results are immutable once returned.
package textflow

// Version is the current version of the library.
const Version = "0.1.0"
