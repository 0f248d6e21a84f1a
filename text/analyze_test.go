package text

import (
	"errors"
	"testing"
)

func TestAnalyze_Items(t *testing.T) {
	content := []InlineContent{
		TextRun{Text: ""},
		TextRun{Text: "ab", Style: "mono"},
		Tab{},
		InlineObject{Width: 4, Height: 4},
		ForcedBreak{},
		CombinedText{Text: "12"},
	}
	a := Analyze(content, testStyles(), DirectionAuto)

	wantKinds := []ItemKind{KindText, KindTab, KindObject, KindBreak, KindCombined}
	if len(a.Items) != len(wantKinds) {
		t.Fatalf("got %d items, want %d", len(a.Items), len(wantKinds))
	}
	for i, k := range wantKinds {
		if a.Items[i].Kind != k {
			t.Errorf("item %d kind = %v, want %v", i, a.Items[i].Kind, k)
		}
	}
	if a.Items[0].Source != 1 {
		t.Errorf("first item source = %d, want 1", a.Items[0].Source)
	}
	// A tab without a style inherits the preceding run's.
	if a.Items[1].Style != a.Items[0].Style {
		t.Error("tab did not inherit the preceding style")
	}
	if a.View.Len() != 2+1+3+3+2 {
		t.Errorf("view length = %d", a.View.Len())
	}
	if len(a.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", a.Diagnostics)
	}
}

func TestAnalyze_SharedStyle(t *testing.T) {
	a := Analyze(runs("a", "b"), testStyles(), DirectionAuto)
	if a.Items[0].Style != a.Items[1].Style {
		t.Error("items with the same handle should share one style")
	}
}

func TestAnalyze_UnresolvedStyle(t *testing.T) {
	content := []InlineContent{
		TextRun{Text: "a"},
		TextRun{Text: "b", Style: "missing"},
		TextRun{Text: "c", Style: "missing"},
	}
	a := Analyze(content, testStyles(), DirectionAuto)

	if len(a.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(a.Items))
	}
	for _, i := range []int{1, 2} {
		it := a.Items[i]
		if it.Kind != KindObject || it.Object.Width != 0 {
			t.Errorf("item %d = %+v, want a zero-width placeholder", i, it)
		}
	}
	if len(a.Diagnostics) != 2 {
		t.Fatalf("got %d diagnostics, want 2", len(a.Diagnostics))
	}
	var ce *ContentError
	if !errors.As(a.Diagnostics[0], &ce) || ce.Index != 1 || ce.Handle != "missing" {
		t.Errorf("diagnostic = %v", a.Diagnostics[0])
	}
}

func TestAnalyze_DefaultStyle(t *testing.T) {
	a := Analyze(runs("a"), nil, DirectionAuto)
	if st := a.Items[0].Style; st == nil || st.Size != 16 || st.TabSize != 8 {
		t.Errorf("default style = %+v", st)
	}
}

func TestAnalyze_Direction(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		forced Direction
		want   Direction
	}{
		{"latin", "abc", DirectionAuto, DirectionLTR},
		{"hebrew", "שלום abc", DirectionAuto, DirectionRTL},
		{"arabic", "مرحبا", DirectionAuto, DirectionRTL},
		{"digits only", "123", DirectionAuto, DirectionLTR},
		{"isolate skipped", "\u2067שלום\u2069 abc", DirectionAuto, DirectionLTR},
		{"forced rtl", "abc", DirectionRTL, DirectionRTL},
		{"forced ltr", "שלום", DirectionLTR, DirectionLTR},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Analyze(runs(tt.text), testStyles(), tt.forced)
			if a.Base != tt.want {
				t.Errorf("Base = %v, want %v", a.Base, tt.want)
			}
		})
	}
}
