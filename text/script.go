package text

import (
	"unicode/utf8"

	"github.com/go-text/typesetting/language"
)

// scriptsOf detects the script of each rune of s and resolves Common and
// Inherited characters from their neighbors. hint, when non-zero,
// overrides detection for the whole run.
func scriptsOf(s string, hint language.Script) []language.Script {
	scripts := make([]language.Script, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		sc := hint
		if hint == 0 {
			sc = language.LookupScript(r)
		}
		scripts = append(scripts, sc)
	}
	if hint != 0 {
		return scripts
	}
	resolveInheritedScripts(scripts)
	return scripts
}

// resolveInheritedScripts rewrites Inherited to the preceding script, then
// Common to the script of its context. Runs that stay Common (pure
// punctuation or digits) become Latin.
func resolveInheritedScripts(scripts []language.Script) {
	last := language.Common
	for i, s := range scripts {
		switch {
		case s == language.Inherited:
			scripts[i] = last
		case s != language.Common:
			last = s
		}
	}

	last = language.Common
	for i, s := range scripts {
		if s != language.Common && s != language.Inherited {
			last = s
			continue
		}
		scripts[i] = resolveCommonScript(last, nextConcreteScript(scripts, i+1))
	}
	for i, s := range scripts {
		if s == language.Common || s == language.Inherited {
			scripts[i] = language.Latin
		}
	}
}

// nextConcreteScript finds the next non-Common, non-Inherited script
// starting at index start.
func nextConcreteScript(scripts []language.Script, start int) language.Script {
	for j := start; j < len(scripts); j++ {
		if s := scripts[j]; s != language.Common && s != language.Inherited {
			return s
		}
	}
	return language.Common
}

// resolveCommonScript determines what script a Common character takes.
// Between two different scripts it stays with the preceding one.
func resolveCommonScript(prev, next language.Script) language.Script {
	if prev != language.Common {
		return prev
	}
	return next
}

// isCJK reports scripts justified between characters in auto mode.
func isCJK(s language.Script) bool {
	switch s {
	case language.Han, language.Hiragana, language.Katakana, language.Hangul,
		language.Bopomofo, language.Yi:
		return true
	}
	return false
}

// isCursive reports connected scripts that must not be letter-spaced.
func isCursive(s language.Script) bool {
	switch s {
	case language.Arabic, language.Syriac, language.Mongolian, language.Nko,
		language.Mandaic, language.Manichaean, language.Psalter_Pahlavi,
		language.Hanifi_Rohingya, language.Sogdian, language.Adlam:
		return true
	}
	return false
}

// isDefaultIgnorable reports format characters that never need a glyph of
// their own for coverage purposes.
func isDefaultIgnorable(r rune) bool {
	switch {
	case r == 0x200C || r == 0x200D: // ZWNJ, ZWJ
		return true
	case r >= 0xFE00 && r <= 0xFE0F: // variation selectors
		return true
	case r >= 0xE0100 && r <= 0xE01EF:
		return true
	case r == 0x200E || r == 0x200F || (r >= 0x202A && r <= 0x202E) || (r >= 0x2066 && r <= 0x2069):
		return true
	case r == 0x00AD || r == 0x2060 || r == 0xFEFF:
		return true
	}
	return false
}
