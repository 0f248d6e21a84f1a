package text

import (
	"unicode"
	"unicode/utf8"
)

// tatweel is the Arabic elongation character used for kashida.
const tatweel = '\u0640'

// joiningType is the cursive joining class of a rune.
type joiningType uint8

const (
	joinNone        joiningType = iota
	joinRight                   // joins the preceding letter only
	joinDual                    // joins on both sides
	joinCausing                 // tatweel and ZWJ
	joinTransparent             // marks, skipped when looking for neighbors
)

// joiningOf returns the joining type of r for the Arabic blocks. Other
// scripts report joinNone.
func joiningOf(r rune) joiningType {
	switch {
	case r == tatweel || r == '\u200D':
		return joinCausing
	case unicode.In(r, unicode.Mn, unicode.Me) || (unicode.Is(unicode.Cf, r) && r != '\u200C'):
		return joinTransparent
	case r >= 0x0620 && r <= 0x06FF:
		return arabicJoining(r)
	case r >= 0x0750 && r <= 0x077F:
		switch {
		case r >= 0x0759 && r <= 0x075B, r == 0x076B, r == 0x076C, r == 0x0771,
			r == 0x0773, r == 0x0774, r == 0x0778, r == 0x0779:
			return joinRight
		}
		return joinDual
	}
	return joinNone
}

func arabicJoining(r rune) joiningType {
	switch {
	case r >= 0x0622 && r <= 0x0625, r == 0x0627, r == 0x0629,
		r >= 0x062F && r <= 0x0632, r == 0x0648,
		r >= 0x0671 && r <= 0x0673, r >= 0x0675 && r <= 0x0677,
		r >= 0x0688 && r <= 0x0699, r == 0x06C0,
		r >= 0x06C3 && r <= 0x06CB, r == 0x06CD, r == 0x06CF,
		r == 0x06D2, r == 0x06D3, r == 0x06D5, r == 0x06EE, r == 0x06EF:
		return joinRight
	case r == 0x0620, r == 0x0626, r == 0x0628,
		r >= 0x062A && r <= 0x062E, r >= 0x0633 && r <= 0x063F,
		r >= 0x0641 && r <= 0x0647, r == 0x0649, r == 0x064A,
		r == 0x066E, r == 0x066F, r >= 0x0678 && r <= 0x0687,
		r >= 0x069A && r <= 0x06BF, r == 0x06C1, r == 0x06C2,
		r == 0x06CC, r == 0x06CE, r == 0x06D0, r == 0x06D1,
		r >= 0x06FA && r <= 0x06FC, r == 0x06FF:
		return joinDual
	}
	return joinNone
}

// joins reports whether the text before and after a boundary connects
// cursively across it.
func joins(before, after string) bool {
	prev, next := joinNone, joinNone
	for s := before; s != ""; {
		r, size := utf8.DecodeLastRuneInString(s)
		if jt := joiningOf(r); jt != joinTransparent {
			prev = jt
			break
		}
		s = s[:len(s)-size]
	}
	for _, r := range after {
		if jt := joiningOf(r); jt != joinTransparent {
			next = jt
			break
		}
	}
	return (prev == joinDual || prev == joinCausing) &&
		(next == joinDual || next == joinRight || next == joinCausing)
}
