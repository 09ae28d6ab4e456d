package queue

import (
	"context"
	"sync"
	"testing"
)

func TestMemoryDedupStore(t *testing.T) {
	s := NewMemoryDedupStore()
	ctx := context.Background()

	seen, err := s.Seen(ctx, "k1")
	if err != nil {
		t.Fatalf("Seen: %v", err)
	}
	if seen {
		t.Error("fresh store must not report keys as seen")
	}

	if err := s.MarkSeen(ctx, "k1"); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}

	seen, _ = s.Seen(ctx, "k1")
	if !seen {
		t.Error("recorded key not reported as seen")
	}
	seen, _ = s.Seen(ctx, "k2")
	if seen {
		t.Error("unrecorded key reported as seen")
	}

	// MarkSeen is idempotent.
	if err := s.MarkSeen(ctx, "k1"); err != nil {
		t.Errorf("repeat MarkSeen: %v", err)
	}
}

func TestMemoryDedupStoreConcurrent(t *testing.T) {
	s := NewMemoryDedupStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := string(rune('a' + n%5))
			s.MarkSeen(ctx, key)
			s.Seen(ctx, key)
		}(i)
	}
	wg.Wait()

	for _, key := range []string{"a", "b", "c", "d", "e"} {
		seen, _ := s.Seen(ctx, key)
		if !seen {
			t.Errorf("key %q lost under concurrency", key)
		}
	}
}
