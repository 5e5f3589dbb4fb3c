package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLRUCacheGetSet(t *testing.T) {
	c := NewLRUCache[string](3, time.Hour)
	c.Set("a", "1")

	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("expected hit with 1, got %q ok=%v", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatalf("expected miss")
	}

	st := c.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.Size != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

// TestLRUCacheEviction tests size-based eviction
func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache[string](3, time.Hour)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")

	// Touch a so b becomes the least recently used.
	c.Get("a")
	c.Set("d", "4")

	if _, ok := c.Get("b"); ok {
		t.Errorf("expected b to be evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("expected %s to remain", k)
		}
	}
	if c.Size() != 3 {
		t.Errorf("expected size 3, got %d", c.Size())
	}
}

func TestLRUCacheExpiration(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	c.Set("b", 2)
	now = now.Add(2 * time.Minute)

	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected a to be expired")
	}
	if removed := c.CleanExpired(); removed != 1 {
		t.Fatalf("expected 1 expired entry removed, got %d", removed)
	}
	if c.Size() != 0 {
		t.Fatalf("expected empty cache, got %d", c.Size())
	}
}

func TestLRUCacheGetOrLoadDeduplicates(t *testing.T) {
	c := NewLRUCache[[]int](10, time.Hour)
	var calls int32
	release := make(chan struct{})

	load := func(context.Context) ([]int, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []int{1, 2, 3}, nil
	}

	var wg sync.WaitGroup
	results := make([][]int, 10)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.GetOrLoad(context.Background(), "snapshot", load)
			if err != nil {
				t.Errorf("GetOrLoad: %v", err)
			}
			results[i] = v
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected a single load, got %d", n)
	}
	for i, v := range results {
		if len(v) != 3 {
			t.Fatalf("result %d: unexpected value %v", i, v)
		}
	}

	// Cached afterwards.
	if _, err := c.GetOrLoad(context.Background(), "snapshot", load); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected cached value, got %d loads", n)
	}
}

func TestLRUCacheGetOrLoadErrorNotCached(t *testing.T) {
	c := NewLRUCache[int](10, time.Hour)
	boom := errors.New("boom")

	_, err := c.GetOrLoad(context.Background(), "k", func(context.Context) (int, error) { return 0, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if c.Size() != 0 {
		t.Fatalf("errors must not be cached")
	}

	v, err := c.GetOrLoad(context.Background(), "k", func(context.Context) (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Fatalf("expected 7, got %d err=%v", v, err)
	}
}

func TestManagerCleanup(t *testing.T) {
	c := NewLRUCache[int](10, time.Millisecond)
	c.Set("a", 1)

	m := NewManager(nil)
	m.Register(c)
	m.StartCleanup(5 * time.Millisecond)
	defer m.Stop()

	deadline := time.Now().Add(time.Second)
	for c.Size() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if c.Size() != 0 {
		t.Fatalf("expected expired entry to be cleaned")
	}

	m.Stop()
	m.Stop()
}

func TestManagerStopWithoutStart(t *testing.T) {
	m := NewManager(nil)
	m.Stop()
}
