package text

import (
	"sync"
	"testing"
)

func TestCoverageMap(t *testing.T) {
	m := NewCoverageMap()

	if covered, checked := m.Get('a'); covered || checked {
		t.Errorf("fresh map: Get = %v, %v", covered, checked)
	}

	m.Set('a', true)
	m.Set('b', false)
	m.Set(0x1F600, true)
	tests := []struct {
		r                rune
		covered, checked bool
	}{
		{'a', true, true},
		{'b', false, true},
		{'c', false, false},
		{0x1F600, true, true},
		{0x1F601, false, false},
	}
	for _, tt := range tests {
		covered, checked := m.Get(tt.r)
		if covered != tt.covered || checked != tt.checked {
			t.Errorf("Get(%U) = %v, %v; want %v, %v", tt.r, covered, checked, tt.covered, tt.checked)
		}
	}

	// Overwriting clears the covered bit.
	m.Set('a', false)
	if covered, _ := m.Get('a'); covered {
		t.Error("Set(false) kept the covered bit")
	}

	m.Clear()
	if _, checked := m.Get('b'); checked {
		t.Error("Clear() kept entries")
	}
}

func TestCoverageMap_Lookup(t *testing.T) {
	m := NewCoverageMap()
	calls := 0
	covers := func(r rune) bool {
		calls++
		return r == 'x'
	}
	for i := 0; i < 3; i++ {
		if !m.Lookup('x', covers) {
			t.Error("Lookup(x) = false")
		}
		if m.Lookup('y', covers) {
			t.Error("Lookup(y) = true")
		}
	}
	if calls != 2 {
		t.Errorf("covers called %d times, want 2", calls)
	}
}

func TestCoverageMap_Concurrent(t *testing.T) {
	m := NewCoverageMap()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for r := rune(0); r < 2048; r++ {
				m.Lookup(r+rune(g), func(r rune) bool { return r%2 == 0 })
			}
		}(g)
	}
	wg.Wait()

	for r := rune(0); r < 2048; r++ {
		if covered, checked := m.Get(r); !checked || covered != (r%2 == 0) {
			t.Fatalf("Get(%d) = %v, %v", r, covered, checked)
		}
	}
}
