package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// memStore is an in-memory Store for tests. It returns redis.Nil for missing
// keys, matching the production client.
type memStore struct {
	mu   sync.Mutex
	data map[string]string

	getErr error
	setErr error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (s *memStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", s.getErr
	}
	v, ok := s.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (s *memStore) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value.(string)
	return nil
}

func (s *memStore) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var deleted int64
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			delete(s.data, k)
			deleted++
		}
	}
	return deleted, nil
}

func TestKeyStableAndDistinct(t *testing.T) {
	a := Key("пицца", 10)
	if a != Key("пицца", 10) {
		t.Error("Key not stable for identical input")
	}
	if a == Key("пицца", 5) {
		t.Error("Key ignores the limit")
	}
	if a == Key("суп", 10) {
		t.Error("Key ignores the query")
	}
	if !strings.HasPrefix(a, "search:") {
		t.Errorf("Key %q lacks the search: prefix", a)
	}
}

func TestGetOrComputeMissThenHit(t *testing.T) {
	c := New(newMemStore(), time.Minute)
	ctx := context.Background()
	key := Key("пицца", 10)

	computes := 0
	compute := func() ([]byte, error) {
		computes++
		return []byte(`{"count":2}`), nil
	}

	body, hit, err := c.GetOrCompute(ctx, key, compute)
	if err != nil || hit {
		t.Fatalf("first call: body=%s hit=%v err=%v", body, hit, err)
	}

	body, hit, err = c.GetOrCompute(ctx, key, compute)
	if err != nil || !hit {
		t.Fatalf("second call: hit=%v err=%v", hit, err)
	}
	if string(body) != `{"count":2}` {
		t.Errorf("cached body = %s", body)
	}
	if computes != 1 {
		t.Errorf("compute ran %d times, want 1", computes)
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 1 hit 1 miss", stats)
	}
}

func TestGetOrComputeComputeError(t *testing.T) {
	c := New(newMemStore(), time.Minute)

	wantErr := errors.New("catalog down")
	_, _, err := c.GetOrCompute(context.Background(), Key("суп", 10), func() ([]byte, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}

func TestGetOrComputeStoreFailureDegrades(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("connection refused")
	store.setErr = errors.New("connection refused")
	c := New(store, time.Minute)

	body, hit, err := c.GetOrCompute(context.Background(), Key("суп", 10), func() ([]byte, error) {
		return []byte("ok"), nil
	})
	if err != nil || hit || string(body) != "ok" {
		t.Errorf("degraded call: body=%s hit=%v err=%v", body, hit, err)
	}
}

func TestNilCacheComputesDirectly(t *testing.T) {
	var c *ResultCache

	body, hit, err := c.GetOrCompute(context.Background(), "k", func() ([]byte, error) {
		return []byte("ok"), nil
	})
	if err != nil || hit || string(body) != "ok" {
		t.Errorf("nil cache: body=%s hit=%v err=%v", body, hit, err)
	}
	if _, err := c.Invalidate(context.Background()); err != nil {
		t.Errorf("nil Invalidate: %v", err)
	}
	if s := c.Stats(); s.Hits != 0 || s.Misses != 0 {
		t.Errorf("nil Stats = %+v", s)
	}
}

func TestInvalidate(t *testing.T) {
	store := newMemStore()
	c := New(store, time.Minute)
	ctx := context.Background()

	for _, q := range []string{"пицца", "суп", "кофе"} {
		c.GetOrCompute(ctx, Key(q, 10), func() ([]byte, error) { return []byte("x"), nil })
	}

	flushed, err := c.Invalidate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if flushed != 3 {
		t.Errorf("flushed = %d, want 3", flushed)
	}

	if _, hit, _ := c.GetOrCompute(ctx, Key("пицца", 10), func() ([]byte, error) { return []byte("y"), nil }); hit {
		t.Error("hit after invalidation")
	}
}
