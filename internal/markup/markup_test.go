package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/textflow/text"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []text.InlineContent
	}{
		{"empty", "", nil},
		{"plain", "Hello, world", []text.InlineContent{
			text.TextRun{Text: "Hello, world"},
		}},
		{"span", "a {mono:b} c", []text.InlineContent{
			text.TextRun{Text: "a "},
			text.TextRun{Text: "b", Style: "mono"},
			text.TextRun{Text: " c"},
		}},
		{"nested span", "{big:x{mono:y}z}", []text.InlineContent{
			text.TextRun{Text: "x", Style: "big"},
			text.TextRun{Text: "y", Style: "mono"},
			text.TextRun{Text: "z", Style: "big"},
		}},
		{"directives", "a[tab]b[br][obj 20 10][obj 8 8 2.5]", []text.InlineContent{
			text.TextRun{Text: "a"},
			text.Tab{},
			text.TextRun{Text: "b"},
			text.ForcedBreak{},
			text.InlineObject{Width: 20, Height: 10},
			text.InlineObject{Width: 8, Height: 8, Baseline: 2.5},
		}},
		{"aligned object", "[obj 8 8 middle][obj 4 6 text-top]", []text.InlineContent{
			text.InlineObject{Width: 8, Height: 8, Align: text.ObjectMiddle},
			text.InlineObject{Width: 4, Height: 6, Align: text.ObjectTextTop},
		}},
		{"styled tab", "{mono:a[tab]b}", []text.InlineContent{
			text.TextRun{Text: "a", Style: "mono"},
			text.Tab{Style: "mono"},
			text.TextRun{Text: "b", Style: "mono"},
		}},
		{"escapes", `a\{b\}\[c\]\\`, []text.InlineContent{
			text.TextRun{Text: `a{b}[c]\`},
		}},
		{"newlines kept", "one\ntwo", []text.InlineContent{
			text.TextRun{Text: "one\ntwo"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, src := range []string{
		"{mono:unclosed",
		"stray }",
		"[nope]",
		"[obj 1]",
		"[tab 3]",
		"[obj 1 2",
		"[obj 1 2 sideways]",
		"[br top]",
	} {
		_, err := Parse(src)
		assert.Error(t, err, "Parse(%q)", src)
	}
}

func TestParse_ErrorPosition(t *testing.T) {
	_, err := Parse("line one\n[bogus]")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2:1")
	assert.Contains(t, err.Error(), "bogus")
}
