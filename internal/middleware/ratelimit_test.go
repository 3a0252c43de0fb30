package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

// fakeClock is advanced by hand so window tests do not sleep.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time      { return c.t }
func (c *fakeClock) add(d time.Duration) { c.t = c.t.Add(d) }

func newClockedLimiter(limit int, window time.Duration) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(limit, window)
	rl.now = clock.now
	return rl, clock
}

func loginPost(remoteAddr, email string) *http.Request {
	form := url.Values{"password": {"x"}}
	if email != "" {
		form.Set("email", email)
	}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = remoteAddr
	return req
}

func TestRateLimiterAllow(t *testing.T) {
	rl, _ := newClockedLimiter(3, time.Minute)
	defer rl.Stop()

	for i := range 3 {
		if ok, _ := rl.allow("ip:a"); !ok {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if ok, _ := rl.allow("ip:a"); ok {
		t.Error("4th attempt should be throttled")
	}
	if ok, _ := rl.allow("ip:b"); !ok {
		t.Error("another key should be unaffected")
	}
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	rl, clock := newClockedLimiter(2, time.Minute)
	defer rl.Stop()

	rl.allow("k")
	clock.add(40 * time.Second)
	rl.allow("k")

	ok, wait := rl.allow("k")
	if ok {
		t.Fatal("should be throttled")
	}
	if wait != 20*time.Second {
		t.Errorf("wait: got %v, want 20s", wait)
	}

	clock.add(21 * time.Second)
	if ok, _ := rl.allow("k"); !ok {
		t.Error("oldest attempt left the window, should be allowed")
	}
}

func TestRateLimiterDeniedAttemptsAreNotRecorded(t *testing.T) {
	rl, clock := newClockedLimiter(1, time.Minute)
	defer rl.Stop()

	rl.allow("k")
	for range 5 {
		rl.allow("k")
	}
	clock.add(61 * time.Second)
	if ok, _ := rl.allow("k"); !ok {
		t.Error("throttled attempts must not extend the window")
	}
}

func TestRateLimiterMiddleware_PerIP(t *testing.T) {
	rl, _ := newClockedLimiter(2, time.Minute)
	defer rl.Stop()
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := range 2 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginPost("192.168.1.1:12345", ""))
		if rec.Code != http.StatusOK {
			t.Fatalf("attempt %d: got %d, want 200", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginPost("192.168.1.1:54321", ""))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("got %d, want 429", rec.Code)
	}
}

func TestRateLimiterMiddleware_PerEmail(t *testing.T) {
	rl, _ := newClockedLimiter(2, time.Minute)
	defer rl.Stop()
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("email") == "" {
			t.Error("form must still be readable downstream")
		}
		w.WriteHeader(http.StatusOK)
	}))

	addrs := []string{"10.0.0.1:1", "10.0.0.2:1", "10.0.0.3:1"}
	emails := []string{"ops@example.com", " OPS@example.com", "ops@example.com"}
	var codes []int
	for i := range addrs {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginPost(addrs[i], emails[i]))
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("first two attempts: got %v", codes[:2])
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("same account from a third address: got %d, want 429", codes[2])
	}
}

func TestRateLimiterRetryAfter(t *testing.T) {
	rl, clock := newClockedLimiter(1, 30*time.Second)
	defer rl.Stop()
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	handler.ServeHTTP(httptest.NewRecorder(), loginPost("10.0.0.7:5555", ""))
	clock.add(10*time.Second + 500*time.Millisecond)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginPost("10.0.0.7:5555", ""))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("got %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "20" {
		t.Errorf("Retry-After: got %q, want 20", got)
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl, clock := newClockedLimiter(5, time.Minute)
	defer rl.Stop()

	rl.allow("old")
	clock.add(50 * time.Second)
	rl.allow("fresh")
	clock.add(20 * time.Second)

	rl.cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.attempts["old"]; ok {
		t.Error("expired key should be removed")
	}
	if len(rl.attempts["fresh"]) != 1 {
		t.Error("recent key should be kept")
	}
}

func TestRateLimiterStopTwice(t *testing.T) {
	rl := NewRateLimiter(1, time.Second)
	rl.Stop()
	rl.Stop()
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		xri        string
		remoteAddr string
		want       string
	}{
		{"forwarded chain", "10.0.0.1, 172.16.0.1", "", "192.168.1.1:1234", "10.0.0.1"},
		{"real ip", "", "10.0.0.2", "192.168.1.1:1234", "10.0.0.2"},
		{"remote addr", "", "", "192.168.1.1:1234", "192.168.1.1"},
		{"ipv6 remote addr", "", "", "[2001:db8::1]:443", "2001:db8::1"},
		{"no port", "", "", "192.168.1.1", "192.168.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
