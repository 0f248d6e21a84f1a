package text

import (
	"strings"
	"testing"

	"github.com/go-text/typesetting/language"
)

func allStarts(n int) []bool {
	out := make([]bool, n+1)
	for i := range out {
		out[i] = true
	}
	return out
}

func TestPartitionRun(t *testing.T) {
	fm := testManager(t)
	regular, mono := testSource(t, fm, "Go"), testSource(t, fm, "Go Mono")

	tests := []struct {
		name   string
		family string
		text   string
		want   []fontSpan
	}{
		{"covered", "Go", "abc", []fontSpan{{0, 3, regular, false}}},
		{"primary", "Go Mono", "abc", []fontSpan{{0, 3, mono, false}}},
		{"missing tail", "Go", "abcשלום", []fontSpan{{0, 3, regular, false}, {3, 7, regular, true}}},
		{"missing middle", "Go", "aשb", []fontSpan{{0, 1, regular, false}, {1, 2, regular, true}, {2, 3, regular, false}}},
		{"unknown family", "Nope", "a", []fontSpan{{0, 1, regular, false}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runes := []rune(tt.text)
			c := fm.chain(tt.family, language.Latin)
			got := partitionRun(c, runes, 0, len(runes), allStarts(len(runes)), language.Latin)
			if len(got) != len(tt.want) {
				t.Fatalf("spans = %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("span %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPartitionRun_GraphemeIntact(t *testing.T) {
	fm := testManager(t)
	regular := testSource(t, fm, "Go")

	// "a" + shin + combining acute: the mark belongs to the missing grapheme.
	runes := []rune("a\u05E9\u0301b")
	starts := []bool{true, true, false, true, true}
	got := partitionRun(fm.chain("Go", language.Latin), runes, 0, len(runes), starts, language.Latin)
	want := []fontSpan{{0, 1, regular, false}, {1, 3, regular, true}, {3, 4, regular, false}}
	if len(got) != len(want) {
		t.Fatalf("spans = %+v, want %+v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("span %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestPartitionRun_PrefixEndsInsideGrapheme(t *testing.T) {
	fm := testManager(t)
	regular := testSource(t, fm, "Go")

	// "b" and shin form one grapheme: the covered prefix "ab" is cut back to "a".
	runes := []rune("ab\u05E9c")
	starts := []bool{true, true, false, true, true}
	got := partitionRun(fm.chain("Go", language.Latin), runes, 0, len(runes), starts, language.Latin)
	want := []fontSpan{{0, 1, regular, false}, {1, 3, regular, true}, {3, 4, regular, false}}
	if len(got) != len(want) {
		t.Fatalf("spans = %+v, want %+v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("span %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestPartitionRun_LongRuns(t *testing.T) {
	fm := testManager(t)
	regular := testSource(t, fm, "Go")

	latin := strings.Repeat("abc ", 200)
	hebrew := strings.Repeat("שלום ", 200)
	runes := []rune(latin + strings.TrimSpace(hebrew) + latin)
	n := len([]rune(latin))
	m := len([]rune(strings.TrimSpace(hebrew)))
	got := partitionRun(fm.chain("Go", language.Latin), runes, 0, len(runes), allStarts(len(runes)), language.Latin)

	// Spaces inside the Hebrew run are covered and split it.
	if got[0] != (fontSpan{0, n, regular, false}) {
		t.Errorf("first span = %+v, want [0,%d) covered", got[0], n)
	}
	if last := got[len(got)-1]; last != (fontSpan{n + m, len(runes), regular, false}) {
		t.Errorf("last span = %+v, want [%d,%d) covered", last, n+m, len(runes))
	}
	for i, sp := range got {
		if i > 0 && got[i-1].End != sp.Start {
			t.Fatalf("span %d starts at %d after %d", i, sp.Start, got[i-1].End)
		}
		if sp.Missing && runes[sp.Start] == ' ' {
			t.Errorf("space at %d marked missing", sp.Start)
		}
	}
}

func TestPartitionRun_NoFonts(t *testing.T) {
	fm := NewFontManager()
	runes := []rune("ab")
	got := partitionRun(fm.chain("", language.Latin), runes, 0, 2, allStarts(2), language.Latin)
	if len(got) != 1 || got[0].Source != nil || !got[0].Missing {
		t.Errorf("spans = %+v, want one missing span without a font", got)
	}
}

func TestMergeSpans(t *testing.T) {
	var a, b FontSource
	spans := []fontSpan{{0, 1, &a, false}, {1, 2, &a, false}, {2, 3, &b, false}, {3, 4, &b, true}, {4, 5, &b, true}}
	got := mergeSpans(spans)
	want := []fontSpan{{0, 2, &a, false}, {2, 3, &b, false}, {3, 5, &b, true}}
	if len(got) != len(want) {
		t.Fatalf("mergeSpans = %+v", got)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("span %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
