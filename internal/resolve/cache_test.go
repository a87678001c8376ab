package resolve

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pdiddy/depiction-engine/pkg/types"
)

// memCache is an in-memory GenderCache.
type memCache struct {
	mu   sync.Mutex
	data map[string]types.GenderLabel
	puts int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string]types.GenderLabel)}
}

func (c *memCache) CacheGet(_ context.Context, name string) (types.GenderLabel, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.data[name]
	return g, ok, nil
}

func (c *memCache) CachePut(_ context.Context, name string, gender types.GenderLabel) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[name] = gender
	c.puts++
	return nil
}

func TestCachedLookupHitSkipsBackend(t *testing.T) {
	cache := newMemCache()
	cache.data["maria schmidt"] = types.GenderFemale

	inner := &fakeLookup{}
	c := &CachedLookup{Inner: inner, Cache: cache}

	res, err := c.GenderByName(context.Background(), "Maria Schmidt")
	if err != nil {
		t.Fatalf("GenderByName: %v", err)
	}

	if res.Gender != types.GenderFemale {
		t.Errorf("gender = %s, want female", res.Gender)
	}
	if res.Source != "cache" {
		t.Errorf("source = %q, want cache", res.Source)
	}
	if got := inner.callCount(); got != 0 {
		t.Errorf("backend calls = %d, want 0 on a cache hit", got)
	}
}

func TestCachedLookupMissConsultsAndPersists(t *testing.T) {
	cache := newMemCache()
	inner := &fakeLookup{results: map[string]Result{
		"Hans Meyer": {Gender: types.GenderMale, Source: "fake"},
	}}
	c := &CachedLookup{Inner: inner, Cache: cache}

	res, err := c.GenderByName(context.Background(), "Hans Meyer")
	if err != nil {
		t.Fatalf("GenderByName: %v", err)
	}
	if res.Gender != types.GenderMale || res.Source != "fake" {
		t.Errorf("first lookup = %s/%s, want male/fake", res.Gender, res.Source)
	}

	res, err = c.GenderByName(context.Background(), "Hans Meyer")
	if err != nil {
		t.Fatalf("second GenderByName: %v", err)
	}
	if res.Source != "cache" {
		t.Errorf("second source = %q, want cache", res.Source)
	}
	if got := inner.callCount(); got != 1 {
		t.Errorf("backend calls = %d, want 1", got)
	}
	if cache.data["hans meyer"] != types.GenderMale {
		t.Errorf("cache entry = %s, want male", cache.data["hans meyer"])
	}
}

func TestCachedLookupCollapsesConcurrentLookups(t *testing.T) {
	cache := newMemCache()
	inner := &fakeLookup{
		delay: 50 * time.Millisecond,
		results: map[string]Result{
			"Maria Schmidt": {Gender: types.GenderFemale, Source: "fake"},
		},
	}
	c := &CachedLookup{Inner: inner, Cache: cache}

	const callers = 8
	start := make(chan struct{})
	var wg sync.WaitGroup
	results := make([]Result, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results[i], errs[i] = c.GenderByName(context.Background(), "Maria Schmidt")
		}()
	}
	close(start)
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if results[i].Gender != types.GenderFemale {
			t.Errorf("caller %d gender = %s, want female", i, results[i].Gender)
		}
	}
	if got := inner.callCount(); got != 1 {
		t.Errorf("backend calls = %d, want 1 collapsed call", got)
	}
}

// flakyLookup fails a set number of times before succeeding.
type flakyLookup struct {
	mu       sync.Mutex
	calls    int
	failures int
}

func (f *flakyLookup) Name() string { return "flaky" }

func (f *flakyLookup) GenderByName(context.Context, string) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return Result{}, errors.New("temporarily unavailable")
	}
	return Result{Gender: types.GenderFemale, Source: "flaky"}, nil
}

func TestCachedLookupDoesNotCacheFailures(t *testing.T) {
	cache := newMemCache()
	inner := &flakyLookup{failures: 1}
	c := &CachedLookup{Inner: inner, Cache: cache}

	if _, err := c.GenderByName(context.Background(), "Maria Schmidt"); err == nil {
		t.Fatal("expected error from first lookup")
	}
	if cache.puts != 0 {
		t.Errorf("puts = %d, want 0 after a failed lookup", cache.puts)
	}

	res, err := c.GenderByName(context.Background(), "Maria Schmidt")
	if err != nil {
		t.Fatalf("second GenderByName: %v", err)
	}
	if res.Gender != types.GenderFemale {
		t.Errorf("gender = %s, want female once the backend recovers", res.Gender)
	}
	if inner.calls != 2 {
		t.Errorf("backend calls = %d, want 2", inner.calls)
	}
}
