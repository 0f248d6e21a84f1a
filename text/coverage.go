package text

import "sync"

// CoverageMap memoizes whether a font maps a rune to a glyph.
// It uses 2 bits per rune (checked, covered) in 256-rune blocks that are
// allocated on first use, so sparse Unicode access stays small.
//
// CoverageMap is safe for concurrent use. Lookups take the read lock;
// only recording a new rune takes the write lock.
type CoverageMap struct {
	mu     sync.RWMutex
	blocks map[uint32]*coverageBlock // keyed by rune >> 8
}

// coverageBlock holds 256 runes × 2 bits.
// Bit 0 of each pair is "checked", bit 1 is "covered".
type coverageBlock struct {
	bits [8]uint64
}

// NewCoverageMap creates an empty coverage map.
func NewCoverageMap() *CoverageMap {
	return &CoverageMap{blocks: make(map[uint32]*coverageBlock)}
}

func coverageBit(r rune) (blockIdx, word, shift uint32) {
	blockIdx = uint32(r) >> 8
	bit := (uint32(r) & 0xFF) * 2
	return blockIdx, bit / 64, bit % 64
}

// Get returns (covered, checked). checked is false for runes never recorded.
func (m *CoverageMap) Get(r rune) (covered, checked bool) {
	bi, w, sh := coverageBit(r)
	m.mu.RLock()
	b, ok := m.blocks[bi]
	var word uint64
	if ok {
		word = b.bits[w]
	}
	m.mu.RUnlock()
	return (word>>(sh+1))&1 != 0, (word>>sh)&1 != 0
}

// Set records whether r is covered.
func (m *CoverageMap) Set(r rune, covered bool) {
	bi, w, sh := coverageBit(r)
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.blocks[bi]
	if !ok {
		b = &coverageBlock{}
		m.blocks[bi] = b
	}
	b.bits[w] |= 1 << sh
	if covered {
		b.bits[w] |= 1 << (sh + 1)
	} else {
		b.bits[w] &^= 1 << (sh + 1)
	}
}

// Lookup returns the memoized coverage of r, computing it with covers on
// the first query.
func (m *CoverageMap) Lookup(r rune, covers func(rune) bool) bool {
	if covered, checked := m.Get(r); checked {
		return covered
	}
	covered := covers(r)
	m.Set(r, covered)
	return covered
}

// Clear forgets all recorded runes.
func (m *CoverageMap) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocks = make(map[uint32]*coverageBlock)
}
