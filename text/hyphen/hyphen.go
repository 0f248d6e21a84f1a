// Package hyphen finds Liang hyphenation points for words.
//
// Dictionaries are registered per language and selected with BCP 47
// matching, so "en", "en-GB" and "en-US" all resolve to the bundled
// American English patterns unless a closer dictionary is registered.
package hyphen

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sync"
	"unicode/utf8"

	"github.com/speedata/hyphenation"
	"golang.org/x/text/language"

	"github.com/gogpu/textflow/internal/cache"
)

//go:embed patterns/hyph-en-us.pat.txt
var enUSPatterns []byte

// memoSize bounds the per-dictionary word memo.
const memoSize = 4096

// Dictionary hyphenates words of one language.
// Dictionary is safe for concurrent use.
type Dictionary struct {
	tag  language.Tag
	lang *hyphenation.Lang
	memo *cache.Memo[string, []int]
}

// New parses Liang patterns (one pattern per whitespace-separated token).
// leftMin and rightMin are the minimum number of runes kept before the
// first and after the last hyphen.
func New(tag language.Tag, patterns io.Reader, leftMin, rightMin int) (*Dictionary, error) {
	l, err := hyphenation.New(patterns)
	if err != nil {
		return nil, fmt.Errorf("hyphen: parse %s patterns: %w", tag, err)
	}
	// The pattern engine counts the leading word boundary as a position.
	l.Leftmin = max(leftMin-1, 0)
	l.Rightmin = rightMin
	return &Dictionary{
		tag:  tag,
		lang: l,
		memo: cache.NewMemo[string, []int](memoSize),
	}, nil
}

// Tag returns the dictionary language.
func (d *Dictionary) Tag() language.Tag { return d.tag }

// Points returns the byte offsets in word before which a hyphen may be
// inserted, in increasing order. word should contain letters only.
func (d *Dictionary) Points(word string) []int {
	if utf8.RuneCountInString(word) < 2 {
		return nil
	}
	return d.memo.GetOrCreate(word, func() []int {
		runes := d.lang.Hyphenate(word)
		if len(runes) == 0 {
			return nil
		}
		out := make([]int, 0, len(runes))
		ri, next := 0, 0
		for bi := range word {
			for next < len(runes) && runes[next] == ri {
				out = append(out, bi)
				next++
			}
			ri++
		}
		return out
	})
}

var registry = struct {
	sync.RWMutex
	once    sync.Once
	tags    []language.Tag
	dicts   []*Dictionary
	matcher language.Matcher
}{}

// Register makes d available to Lookup. A dictionary registered later for
// the same tag replaces the earlier one.
func Register(d *Dictionary) {
	registry.once.Do(registerBuiltin)
	register(d)
}

func register(d *Dictionary) {
	registry.Lock()
	defer registry.Unlock()

	for i, t := range registry.tags {
		if t == d.tag {
			registry.dicts[i] = d
			return
		}
	}
	registry.tags = append(registry.tags, d.tag)
	registry.dicts = append(registry.dicts, d)
	registry.matcher = language.NewMatcher(registry.tags)
}

func registerBuiltin() {
	d, err := New(language.AmericanEnglish, bytes.NewReader(enUSPatterns), 2, 3)
	if err != nil {
		// The embedded patterns are fixed at build time.
		panic(err)
	}
	register(d)
}

// Lookup returns the dictionary best matching the BCP 47 tag lang.
// It reports false when lang is malformed or nothing matches.
func Lookup(lang string) (*Dictionary, bool) {
	registry.once.Do(registerBuiltin)

	tag, err := language.Parse(lang)
	if err != nil {
		return nil, false
	}

	registry.RLock()
	defer registry.RUnlock()
	_, idx, conf := registry.matcher.Match(tag)
	if conf == language.No {
		return nil, false
	}
	return registry.dicts[idx], true
}
