package text

import "github.com/go-text/typesetting/language"

// fontSpan is a rune range of one item assigned to one font.
// Missing spans are covered by no available font.
type fontSpan struct {
	Start, End int
	Source     *FontSource
	Missing    bool
}

// partitionRun splits runes[start:end] into the fewest spans that are each
// covered by a single font. Fonts are consulted in chain order and each
// only scans the ranges earlier fonts left unresolved. Covered prefixes
// are cut back to a grapheme boundary, so a grapheme never straddles two
// fonts. The system fallback gets
// one query per still unresolved range. Whatever remains is marked
// Missing and assigned the primary font (or the first available one).
func partitionRun(c fontChain, runes []rune, start, end int, graphemeStart []bool, script language.Script) []fontSpan {
	spans := []fontSpan{{Start: start, End: end}}
	unresolved := func() bool {
		for _, s := range spans {
			if s.Source == nil {
				return true
			}
		}
		return false
	}

	for _, f := range c.fonts {
		if !unresolved() {
			break
		}
		spans = assignCoverage(spans, f, runes, graphemeStart)
	}

	if c.system != nil && unresolved() {
		var out []fontSpan
		for _, s := range spans {
			if s.Source != nil {
				out = append(out, s)
				continue
			}
			src := c.system.resolve(firstVisible(runes[s.Start:s.End]), script)
			if src == nil {
				out = append(out, s)
				continue
			}
			out = append(out, assignCoverage([]fontSpan{s}, src, runes, graphemeStart)...)
		}
		spans = out
	}

	fill := c.primary
	if fill == nil && len(c.fonts) > 0 {
		fill = c.fonts[0]
	}
	for i := range spans {
		if spans[i].Source == nil {
			spans[i].Source, spans[i].Missing = fill, true
		}
	}
	return mergeSpans(spans)
}

// assignCoverage resolves the unresolved spans f covers.
func assignCoverage(spans []fontSpan, f *FontSource, runes []rune, graphemeStart []bool) []fontSpan {
	out := make([]fontSpan, 0, len(spans))
	push := func(s fontSpan) {
		if n := len(out); n > 0 && out[n-1].End == s.Start && out[n-1].Source == s.Source && !out[n-1].Missing {
			out[n-1].End = s.End
			return
		}
		out = append(out, s)
	}
	for _, s := range spans {
		if s.Source != nil {
			push(s)
			continue
		}
		for i := s.Start; i < s.End; {
			k := i + f.CoveredPrefix(runes[i:s.End])
			for k < s.End && k > i && !graphemeStart[k] {
				k--
			}
			if k > i {
				push(fontSpan{Start: i, End: k, Source: f})
				i = k
				continue
			}
			// The grapheme at i is not covered. Skip ahead to the next
			// grapheme whose first rune the font has.
			j := nextGrapheme(graphemeStart, i, s.End)
			for j < s.End && !isDefaultIgnorable(runes[j]) && !f.Covers(runes[j]) {
				j = nextGrapheme(graphemeStart, j, s.End)
			}
			push(fontSpan{Start: i, End: j})
			i = j
		}
	}
	return out
}

// mergeSpans joins neighbors assigned to the same font.
func mergeSpans(spans []fontSpan) []fontSpan {
	out := spans[:0]
	for _, s := range spans {
		if n := len(out); n > 0 && out[n-1].Source == s.Source && out[n-1].Missing == s.Missing && out[n-1].End == s.Start {
			out[n-1].End = s.End
			continue
		}
		out = append(out, s)
	}
	return out
}

// nextGrapheme returns the start of the grapheme after the one at i.
func nextGrapheme(graphemeStart []bool, i, end int) int {
	j := i + 1
	for j < end && !graphemeStart[j] {
		j++
	}
	return j
}

func firstVisible(runes []rune) rune {
	for _, r := range runes {
		if !isDefaultIgnorable(r) {
			return r
		}
	}
	if len(runes) > 0 {
		return runes[0]
	}
	return ' '
}
