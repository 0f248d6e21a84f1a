package cache

import (
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestSharded_GetSet(t *testing.T) {
	c := NewSharded[string, int](100, StringHasher)

	c.Set("a", 1)
	v, ok := c.Get("a")
	if !ok || v != 1 {
		t.Fatalf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) reported a hit")
	}

	st := c.Stats()
	if st.Hits != 1 || st.Misses != 1 {
		t.Errorf("stats hits=%d misses=%d, want 1/1", st.Hits, st.Misses)
	}
}

func TestSharded_SmallCapacityEvictsUnused(t *testing.T) {
	c := NewSharded[string, int](2, StringHasher)
	if got := c.Stats().Shards; got != 1 {
		t.Fatalf("shards = %d, want 1 for a tiny cache", got)
	}

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a gets a second chance
	c.Set("c", 3)

	if _, ok := c.Peek("b"); ok {
		t.Error("b should have been evicted as unused")
	}
	for _, k := range []string{"a", "c"} {
		if _, ok := c.Peek(k); !ok {
			t.Errorf("%s should still be cached", k)
		}
	}
	if ev := c.Stats().Evictions; ev != 1 {
		t.Errorf("evictions = %d, want 1", ev)
	}
}

func TestSharded_SecondChance(t *testing.T) {
	c := NewSharded[string, int](3, StringHasher)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	c.Get("b")

	c.Set("d", 4) // evicts a
	c.Set("e", 5) // b is used and survives, c goes

	for k, want := range map[string]bool{"a": false, "b": true, "c": false, "d": true, "e": true} {
		if _, ok := c.Peek(k); ok != want {
			t.Errorf("Peek(%s) present = %v, want %v", k, ok, want)
		}
	}
	if ev := c.Stats().Evictions; ev != 2 {
		t.Errorf("evictions = %d, want 2", ev)
	}
}

func TestSharded_GetHoldsOnlyReadLock(t *testing.T) {
	c := NewSharded[string, int](16, StringHasher)
	c.Set("a", 1)

	// A hit must not wait for readers of the same shard.
	s := c.shardFor("a")
	s.mu.RLock()
	defer s.mu.RUnlock()

	done := make(chan int)
	go func() {
		v, _ := c.Get("a")
		done <- v
	}()
	select {
	case v := <-done:
		if v != 1 {
			t.Errorf("Get(a) = %d, want 1", v)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Get blocked behind a reader")
	}
}

func TestSharded_LargeCapacityUsesAllShards(t *testing.T) {
	c := NewSharded[uint64, int](4096, Uint64Hasher)
	if got := c.Stats().Shards; got != MaxShards {
		t.Errorf("shards = %d, want %d", got, MaxShards)
	}
	if c.Capacity() < 4096 {
		t.Errorf("capacity = %d, want >= 4096", c.Capacity())
	}
}

func TestSharded_GetOrCreate(t *testing.T) {
	c := NewSharded[string, int](16, StringHasher)
	calls := 0
	create := func() int {
		calls++
		return 7
	}

	if v := c.GetOrCreate("k", create); v != 7 {
		t.Fatalf("first GetOrCreate = %d, want 7", v)
	}
	if v := c.GetOrCreate("k", create); v != 7 {
		t.Fatalf("second GetOrCreate = %d, want 7", v)
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
}

func TestSharded_DeleteClear(t *testing.T) {
	c := NewSharded[string, int](16, StringHasher)
	c.Set("a", 1)
	c.Set("b", 2)

	if !c.Delete("a") {
		t.Error("Delete(a) = false, want true")
	}
	if c.Delete("a") {
		t.Error("second Delete(a) = true, want false")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
}

func TestSharded_Concurrent(t *testing.T) {
	c := NewSharded[string, int](256, StringHasher)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				k := strconv.Itoa(i % 64)
				c.GetOrCreate(k, func() int { return i })
				c.Get(k)
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > c.Capacity() {
		t.Errorf("Len %d exceeds capacity %d", c.Len(), c.Capacity())
	}
}

func TestMemo_ShrinksPastSoftLimit(t *testing.T) {
	m := NewMemo[int, int](8)
	for i := 0; i < 9; i++ {
		m.GetOrCreate(i, func() int { return i * i })
	}
	if got := m.Len(); got != 6 {
		t.Fatalf("Len = %d, want 6 after shrinking to three quarters", got)
	}
	// The most recent insertion survives.
	if v, ok := m.Get(8); !ok || v != 64 {
		t.Errorf("Get(8) = %d, %v; want 64, true", v, ok)
	}
	if _, ok := m.Get(0); ok {
		t.Error("oldest entry 0 should have been dropped")
	}
}
