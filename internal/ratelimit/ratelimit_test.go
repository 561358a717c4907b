package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fakeClock lets tests advance time deterministically.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(rate int, window time.Duration) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	l := New(rate, window)
	l.now = clock.now
	return l, clock
}

func TestAllow_ConsumesTokens(t *testing.T) {
	l, _ := newTestLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Error("fourth attempt within the window should be rejected")
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)

	if !l.Allow("a") {
		t.Fatal("first key should be allowed")
	}
	if !l.Allow("b") {
		t.Error("a different key must have its own bucket")
	}
	if l.Allow("a") {
		t.Error("exhausted key should stay rejected")
	}
}

func TestAllow_RefillsOverTime(t *testing.T) {
	l, clock := newTestLimiter(2, time.Minute)

	l.Allow("ip")
	l.Allow("ip")
	if l.Allow("ip") {
		t.Fatal("bucket should be empty")
	}

	clock.advance(30 * time.Second) // refills one token at 2/min
	if !l.Allow("ip") {
		t.Error("expected one token after half the window")
	}
	if l.Allow("ip") {
		t.Error("only one token should have refilled")
	}
}

func TestRetryAfter(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)

	if got := l.RetryAfter("ip"); got != 0 {
		t.Errorf("full bucket should need no wait, got %v", got)
	}

	l.Allow("ip")
	got := l.RetryAfter("ip")
	if got <= 0 || got > time.Minute {
		t.Errorf("expected a wait within the window, got %v", got)
	}
}

func TestMiddleware_RejectsWith429(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)
	called := 0
	h := Middleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called++
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.RemoteAddr = "10.0.0.1:4321"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first attempt: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second attempt: expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 response should carry Retry-After")
	}
	if called != 1 {
		t.Errorf("handler should have run once, ran %d times", called)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.9:5555"
	if got := ClientIP(req); got != "192.168.1.9" {
		t.Errorf("ClientIP = %q, want 192.168.1.9", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	if got := ClientIP(req); got != "203.0.113.7" {
		t.Errorf("ClientIP with forwarded header = %q, want 203.0.113.7", got)
	}
}
