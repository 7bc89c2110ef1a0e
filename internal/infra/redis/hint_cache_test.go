package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestHintCacheAvoidsRepeatFetches(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	provider := &countingHints{hint: "Think limestone."}
	cache := NewHintCache(newClient(mr), provider, time.Minute)

	if hint := cache.FetchHint(context.Background(), "What is cement made of?"); hint != "Think limestone." {
		t.Fatalf("unexpected hint %q", hint)
	}
	if hint := cache.FetchHint(context.Background(), "What is cement made of?"); hint != "Think limestone." {
		t.Fatalf("unexpected cached hint %q", hint)
	}
	if got := provider.callCount(); got != 1 {
		t.Fatalf("expected one provider call, got %d", got)
	}

	// a different question misses the cache
	cache.FetchHint(context.Background(), "another question")
	if got := provider.callCount(); got != 2 {
		t.Fatalf("expected second provider call, got %d", got)
	}
}

type countingHints struct {
	mu    sync.Mutex
	calls int
	hint  string
}

func (p *countingHints) FetchHint(context.Context, string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.hint
}

func (p *countingHints) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
