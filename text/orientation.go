package text

import (
	"unicode"
	"unicode/utf8"
)

// orient tags glyphs for vertical writing modes and switches item
// advances to the vertical axis. Horizontal modes pass items through.
//
// In mixed orientation each cluster follows the vertical orientation of
// its first character, so punctuation and symbols do not inherit the
// orientation of their neighbors.
//
// Upright glyphs advance by the font's vmtx advance, or by the line
// height (ascent + descent) when the font has no vertical metrics.
// Rotated glyphs advance by their horizontal advance.
func orient(glyphs *GlyphCache, view *LogicalItemView, items []ShapedItem, mode WritingMode, o TextOrientation) []ShapedItem {
	if !mode.IsVertical() {
		return items
	}
	items = combineUpright(items)
	for i := range items {
		it := &items[i]
		switch it.Kind {
		case KindText, KindCombined, KindHyphen:
		default:
			continue
		}
		upright := false
		if it.End > it.Start {
			r, _ := utf8.DecodeRuneInString(view.Slice(it.Start, it.End))
			upright = isUprightRune(r)
		}
		switch o {
		case OrientationUpright:
			upright = true
		case OrientationSideways:
			upright = false
		}
		if it.Kind == KindCombined {
			upright = true
		}

		if !upright {
			it.Advance = 0
			for g := range it.Glyphs {
				gl := &it.Glyphs[g]
				gl.Orientation = OrientRotated
				gl.VAdvance = gl.Advance
				it.Advance += gl.VAdvance
			}
			continue
		}

		size := it.Style.Size
		if it.Kind == KindCombined {
			// One em along the line; the horizontal run is centered across it.
			width := 0.0
			for g := range it.Glyphs {
				width += it.Glyphs[g].Advance
				it.Glyphs[g].Orientation = OrientUpright
			}
			if len(it.Glyphs) > 0 {
				it.Glyphs[0].VAdvance = size
			}
			it.Advance = size
			it.Ascent = max(width, size) / 2
			it.Descent = it.Ascent
			continue
		}

		it.Advance = 0
		for g := range it.Glyphs {
			gl := &it.Glyphs[g]
			gl.Orientation = OrientUpright
			switch {
			case gl.Kind == GlyphNotDef || it.Source == nil:
				gl.VAdvance = size
			default:
				gl.VAdvance = glyphs.Metrics(it.Source, gl.ID, size).VAdvance
			}
			// LetterSpacing was added to the horizontal advance; carry it.
			if g == len(it.Glyphs)-1 && it.Style.LetterSpacing != 0 && !isCursive(it.Script) {
				gl.VAdvance += it.Style.LetterSpacing
			}
			it.Advance += gl.VAdvance
		}
		it.Ascent, it.Descent = size/2, size/2
	}
	return items
}

// combineUpright merges the clusters of each CombinedText item into one
// unit so it is set upright in a single em.
func combineUpright(items []ShapedItem) []ShapedItem {
	out := items[:0]
	for _, it := range items {
		if n := len(out); n > 0 && it.Kind == KindCombined && out[n-1].Kind == KindCombined && out[n-1].item == it.item {
			prev := &out[n-1]
			prev.End = it.End
			for _, g := range it.Glyphs {
				g.Cluster = prev.Start
				prev.Glyphs = append(prev.Glyphs, g)
			}
			prev.Advance += it.Advance
			prev.flags = it.flags
			continue
		}
		out = append(out, it)
	}
	return out
}

// isUprightRune reports characters set upright in mixed vertical text:
// those with Vertical_Orientation U or Tu. Tr characters (brackets, long
// vowel marks, dashes) are rotated since no vertical alternates are
// substituted.
func isUprightRune(r rune) bool {
	return unicode.Is(verticalUpright, r)
}

// verticalUpright approximates the U and Tu classes of UTR #50.
var verticalUpright = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x00A7, Hi: 0x00A7, Stride: 1},
		{Lo: 0x00A9, Hi: 0x00A9, Stride: 1},
		{Lo: 0x00AE, Hi: 0x00AE, Stride: 1},
		{Lo: 0x00B1, Hi: 0x00B1, Stride: 1},
		{Lo: 0x00BC, Hi: 0x00BE, Stride: 1},
		{Lo: 0x00D7, Hi: 0x00D7, Stride: 1},
		{Lo: 0x00F7, Hi: 0x00F7, Stride: 1},
		{Lo: 0x02EA, Hi: 0x02EB, Stride: 1},
		{Lo: 0x1100, Hi: 0x11FF, Stride: 1},
		{Lo: 0x1401, Hi: 0x167F, Stride: 1},
		{Lo: 0x18B0, Hi: 0x18FF, Stride: 1},
		{Lo: 0x2016, Hi: 0x2016, Stride: 1},
		{Lo: 0x2020, Hi: 0x2021, Stride: 1},
		{Lo: 0x2030, Hi: 0x2031, Stride: 1},
		{Lo: 0x203B, Hi: 0x203C, Stride: 1},
		{Lo: 0x2042, Hi: 0x2042, Stride: 1},
		{Lo: 0x2047, Hi: 0x2049, Stride: 1},
		{Lo: 0x2051, Hi: 0x2051, Stride: 1},
		{Lo: 0x20DD, Hi: 0x20E0, Stride: 1},
		{Lo: 0x20E2, Hi: 0x20E4, Stride: 1},
		{Lo: 0x2100, Hi: 0x2101, Stride: 1},
		{Lo: 0x2103, Hi: 0x2109, Stride: 1},
		{Lo: 0x210F, Hi: 0x210F, Stride: 1},
		{Lo: 0x2113, Hi: 0x2114, Stride: 1},
		{Lo: 0x2116, Hi: 0x2117, Stride: 1},
		{Lo: 0x211E, Hi: 0x2123, Stride: 1},
		{Lo: 0x2125, Hi: 0x2125, Stride: 1},
		{Lo: 0x2127, Hi: 0x2127, Stride: 1},
		{Lo: 0x2129, Hi: 0x2129, Stride: 1},
		{Lo: 0x212E, Hi: 0x212E, Stride: 1},
		{Lo: 0x2135, Hi: 0x213F, Stride: 1},
		{Lo: 0x2145, Hi: 0x214A, Stride: 1},
		{Lo: 0x214C, Hi: 0x214D, Stride: 1},
		{Lo: 0x214F, Hi: 0x2189, Stride: 1},
		{Lo: 0x218C, Hi: 0x218F, Stride: 1},
		{Lo: 0x221E, Hi: 0x221E, Stride: 1},
		{Lo: 0x2234, Hi: 0x2235, Stride: 1},
		{Lo: 0x2300, Hi: 0x2307, Stride: 1},
		{Lo: 0x230C, Hi: 0x231F, Stride: 1},
		{Lo: 0x2324, Hi: 0x2328, Stride: 1},
		{Lo: 0x232B, Hi: 0x232B, Stride: 1},
		{Lo: 0x237D, Hi: 0x239A, Stride: 1},
		{Lo: 0x23BE, Hi: 0x23CD, Stride: 1},
		{Lo: 0x23CF, Hi: 0x23CF, Stride: 1},
		{Lo: 0x23D1, Hi: 0x23DB, Stride: 1},
		{Lo: 0x23E2, Hi: 0x24FF, Stride: 1},
		{Lo: 0x25A0, Hi: 0x2619, Stride: 1},
		{Lo: 0x2620, Hi: 0x2767, Stride: 1},
		{Lo: 0x2776, Hi: 0x2793, Stride: 1},
		{Lo: 0x2B12, Hi: 0x2B2F, Stride: 1},
		{Lo: 0x2B50, Hi: 0x2B59, Stride: 1},
		{Lo: 0x2BB8, Hi: 0x2BFF, Stride: 1},
		{Lo: 0x2E80, Hi: 0x3007, Stride: 1},
		{Lo: 0x3012, Hi: 0x3013, Stride: 1},
		{Lo: 0x3020, Hi: 0x302F, Stride: 1},
		{Lo: 0x3031, Hi: 0x309F, Stride: 1},
		{Lo: 0x30A1, Hi: 0x30FB, Stride: 1},
		{Lo: 0x30FD, Hi: 0xA4CF, Stride: 1},
		{Lo: 0xA960, Hi: 0xA97F, Stride: 1},
		{Lo: 0xAC00, Hi: 0xD7FF, Stride: 1},
		{Lo: 0xE000, Hi: 0xFAFF, Stride: 1},
		{Lo: 0xFE10, Hi: 0xFE1F, Stride: 1},
		{Lo: 0xFE30, Hi: 0xFE48, Stride: 1},
		{Lo: 0xFE50, Hi: 0xFE58, Stride: 1},
		{Lo: 0xFE5F, Hi: 0xFE6F, Stride: 1},
		{Lo: 0xFF01, Hi: 0xFF07, Stride: 1},
		{Lo: 0xFF0A, Hi: 0xFF0C, Stride: 1},
		{Lo: 0xFF0E, Hi: 0xFF19, Stride: 1},
		{Lo: 0xFF1F, Hi: 0xFF3A, Stride: 1},
		{Lo: 0xFF3C, Hi: 0xFF3C, Stride: 1},
		{Lo: 0xFF3E, Hi: 0xFF3E, Stride: 1},
		{Lo: 0xFF40, Hi: 0xFF5A, Stride: 1},
		{Lo: 0xFFE0, Hi: 0xFFE2, Stride: 1},
		{Lo: 0xFFE4, Hi: 0xFFE7, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1F000, Hi: 0x1FAFF, Stride: 1},
		{Lo: 0x20000, Hi: 0x3FFFD, Stride: 1},
	},
	LatinOffset: 7,
}
