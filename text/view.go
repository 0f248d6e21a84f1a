package text

import (
	"iter"
	"sort"
	"strings"
	"unicode/utf8"
)

// LogicalItemView presents the arena as one virtual string without
// concatenating it. Global byte offsets resolve to (item, local offset)
// through a sorted offset map.
type LogicalItemView struct {
	items  []LogicalItem
	starts []int // starts[i] is the global offset of items[i]
	length int
}

// NewLogicalItemView builds the offset map for items. items is not copied.
func NewLogicalItemView(items []LogicalItem) *LogicalItemView {
	v := &LogicalItemView{
		items:  items,
		starts: make([]int, len(items)),
	}
	for i := range items {
		v.starts[i] = v.length
		v.length += items[i].Len()
	}
	return v
}

// Len returns the total byte length: the sum of item lengths.
func (v *LogicalItemView) Len() int { return v.length }

// Items returns the underlying arena.
func (v *LogicalItemView) Items() []LogicalItem { return v.items }

// Start returns the global offset of item i.
func (v *LogicalItemView) Start(i int) int { return v.starts[i] }

// End returns the global offset just past item i.
func (v *LogicalItemView) End(i int) int { return v.starts[i] + v.items[i].Len() }

// Locate maps a global byte offset to its item and item-local offset.
// Offsets at an item boundary resolve to the later item; Len() resolves
// to (len(items), 0).
func (v *LogicalItemView) Locate(global int) (item, local int) {
	if global >= v.length {
		return len(v.items), 0
	}
	// Largest i with starts[i] <= global, skipping empty items.
	i := sort.Search(len(v.starts), func(i int) bool { return v.starts[i] > global }) - 1
	if i < 0 {
		i = 0
	}
	return i, global - v.starts[i]
}

// Runes iterates the view's runes with their global byte offsets.
func (v *LogicalItemView) Runes() iter.Seq2[int, rune] {
	return func(yield func(int, rune) bool) {
		for i := range v.items {
			base := v.starts[i]
			s := v.items[i].Text
			for off := 0; off < len(s); {
				r, size := utf8.DecodeRuneInString(s[off:])
				if !yield(base+off, r) {
					return
				}
				off += size
			}
		}
	}
}

// Slice returns the view text in [start, end). It returns a substring of
// the caller's text when the range lies in one item and only allocates
// when the range spans items.
func (v *LogicalItemView) Slice(start, end int) string {
	if start >= end {
		return ""
	}
	i, lo := v.Locate(start)
	j, hi := v.Locate(end)
	if j == len(v.items) {
		j, hi = len(v.items)-1, v.items[len(v.items)-1].Len()
	}
	if i == j || (j == i+1 && hi == 0) {
		if j == i+1 {
			hi = v.items[i].Len()
		}
		return v.items[i].Text[lo:hi]
	}
	var b strings.Builder
	b.Grow(end - start)
	b.WriteString(v.items[i].Text[lo:])
	for k := i + 1; k < j; k++ {
		b.WriteString(v.items[k].Text)
	}
	b.WriteString(v.items[j].Text[:hi])
	return b.String()
}
