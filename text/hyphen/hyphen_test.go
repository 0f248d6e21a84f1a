package hyphen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func split(word string, points []int) string {
	var b strings.Builder
	last := 0
	for _, p := range points {
		b.WriteString(word[last:p])
		b.WriteByte('-')
		last = p
	}
	b.WriteString(word[last:])
	return b.String()
}

func TestLookup_English(t *testing.T) {
	for _, tag := range []string{"en", "en-US", "en-GB"} {
		d, ok := Lookup(tag)
		require.True(t, ok, "no dictionary for %s", tag)
		assert.Equal(t, language.AmericanEnglish, d.Tag())
	}
}

func TestLookup_NoMatch(t *testing.T) {
	_, ok := Lookup("ja")
	assert.False(t, ok)
	_, ok = Lookup("not a tag!")
	assert.False(t, ok)
}

func TestPoints_EnglishWords(t *testing.T) {
	d, ok := Lookup("en")
	require.True(t, ok)

	tests := []struct {
		word string
		want string
	}{
		{"hyphenation", "hy-phen-ation"},
		{"developers", "de-vel-op-ers"},
		{"supercalifragilisticexpialidocious", "su-per-cal-ifrag-ilis-tic-ex-pi-ali-do-cious"},
		{"Hyphenation", "Hy-phen-ation"},
		{"a", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.want, split(tt.word, d.Points(tt.word)))
		})
	}
}

func TestPoints_ByteOffsets(t *testing.T) {
	d, err := New(language.French, strings.NewReader("a1é"), 1, 1)
	require.NoError(t, err)

	// The pattern allows a break between a and é; offsets are bytes and
	// land on UTF-8 boundaries.
	word := "aéa"
	pts := d.Points(word)
	require.Equal(t, []int{1}, pts)
	assert.Equal(t, "a-éa", split(word, pts))

	pts = d.Points("baé")
	require.Equal(t, []int{2}, pts)
	for _, p := range d.Points("aéaé") {
		assert.True(t, p > 0 && p < len(word))
		assert.NotEqual(t, 2, p, "offset 2 is inside the two-byte é")
	}
}

func TestRegister_Replaces(t *testing.T) {
	d, err := New(language.German, strings.NewReader("a1b"), 1, 1)
	require.NoError(t, err)
	Register(d)

	got, ok := Lookup("de-DE")
	require.True(t, ok)
	assert.Same(t, d, got)
	assert.Equal(t, "a-b", split("ab", got.Points("ab")))
}
