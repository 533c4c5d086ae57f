// Package ratelimit implements a per-client token bucket limiter for the
// search API.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	apperrors "github.com/vkusplato/menu-search/pkg/errors"
)

// bucket tracks remaining tokens for one client.
type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// Limiter grants each client a steady refill of request tokens. Stale
// buckets are evicted by a background sweep so the map stays bounded.
type Limiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	capacity   float64
	refillRate float64 // tokens per second
	now        func() time.Time

	// OnReject, when set, is called once per rejected request.
	OnReject func()

	stop chan struct{}
}

// New creates a Limiter allowing perClient sustained requests per window,
// with bursts up to the same amount. A non-positive window defaults to one
// minute.
func New(perClient int, window time.Duration) *Limiter {
	if window <= 0 {
		window = time.Minute
	}
	l := &Limiter{
		buckets:    make(map[string]*bucket),
		capacity:   float64(perClient),
		refillRate: float64(perClient) / window.Seconds(),
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	go l.sweep()
	return l
}

// Allow reports whether the client may proceed, consuming one token if so.
func (l *Limiter) Allow(clientID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[clientID]
	if !ok {
		b = &bucket{tokens: l.capacity}
		l.buckets[clientID] = b
	} else {
		elapsed := now.Sub(b.lastSeen).Seconds()
		b.tokens += elapsed * l.refillRate
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Middleware rejects over-limit requests with 429 before they reach next.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientAddr(r)) {
			if l.OnReject != nil {
				l.OnReject()
			}
			http.Error(w, apperrors.ErrRateLimited.Error(), apperrors.HTTPStatusCode(apperrors.ErrRateLimited))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Close stops the background sweeper.
func (l *Limiter) Close() {
	close(l.stop)
}

func (l *Limiter) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			cutoff := l.now().Add(-10 * time.Minute)
			l.mu.Lock()
			for id, b := range l.buckets {
				if b.lastSeen.Before(cutoff) {
					delete(l.buckets, id)
				}
			}
			l.mu.Unlock()
		}
	}
}

// clientAddr identifies the client, preferring the first hop recorded by a
// trusted proxy over the socket address.
func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
