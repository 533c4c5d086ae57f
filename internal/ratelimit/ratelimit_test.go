package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(perClient int, window time.Duration) (*Limiter, *time.Time) {
	l := New(perClient, window)
	now := time.Now()
	l.now = func() time.Time { return now }
	return l, &now
}

func TestAllowWithinBudget(t *testing.T) {
	l, _ := newTestLimiter(3, time.Minute)
	defer l.Close()

	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d rejected within budget", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Error("request over budget allowed")
	}
}

func TestClientsIsolated(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)
	defer l.Close()

	if !l.Allow("10.0.0.1") {
		t.Fatal("first client rejected")
	}
	if !l.Allow("10.0.0.2") {
		t.Error("second client throttled by first client's usage")
	}
}

func TestTokensRefill(t *testing.T) {
	l, now := newTestLimiter(60, time.Minute)
	defer l.Close()

	for i := 0; i < 60; i++ {
		l.Allow("10.0.0.1")
	}
	if l.Allow("10.0.0.1") {
		t.Fatal("bucket not exhausted")
	}

	// One second refills one token at 60/min.
	*now = now.Add(time.Second)
	if !l.Allow("10.0.0.1") {
		t.Error("token did not refill")
	}
	if l.Allow("10.0.0.1") {
		t.Error("more than one token refilled in one second")
	}
}

func TestMiddlewareRejectsWith429(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)
	defer l.Close()

	var rejected int
	l.OnReject = func() { rejected++ }

	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=пицца", nil)
	req.RemoteAddr = "10.0.0.1:51000"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", rec.Code)
	}
	if rejected != 1 {
		t.Errorf("OnReject fired %d times, want 1", rejected)
	}
}

func TestClientAddr(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"socket address", "192.168.1.5:43210", "", "192.168.1.5"},
		{"forwarded single", "10.0.0.1:80", "203.0.113.7", "203.0.113.7"},
		{"forwarded chain", "10.0.0.1:80", "203.0.113.7, 10.0.0.2", "203.0.113.7"},
		{"unparseable", "garbage", "", "garbage"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := clientAddr(req); got != tt.want {
				t.Errorf("clientAddr = %q, want %q", got, tt.want)
			}
		})
	}
}
