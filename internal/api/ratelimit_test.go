package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fakeClock is a settable time source for the limiter
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter() (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 2, 18, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(time.Minute)
	rl.now = clock.now
	return rl, clock
}

func TestRateLimiterWindow(t *testing.T) {
	rl, clock := newTestLimiter()

	for i := 0; i < 3; i++ {
		if ok, _ := rl.Allow("k", 3); !ok {
			t.Fatalf("hit %d denied", i+1)
		}
	}

	clock.advance(20 * time.Second)
	ok, retry := rl.Allow("k", 3)
	if ok {
		t.Fatal("expected deny over limit")
	}
	if retry != 40*time.Second {
		t.Errorf("retry = %s, want 40s", retry)
	}

	if ok, _ := rl.Allow("other", 3); !ok {
		t.Error("other keys have their own window")
	}

	clock.advance(40 * time.Second)
	if ok, _ := rl.Allow("k", 3); !ok {
		t.Error("expected allow once the window ends")
	}
}

func TestRateLimiterSweepsExpiredWindows(t *testing.T) {
	rl, clock := newTestLimiter()
	rl.Allow("a", 1)
	rl.Allow("b", 1)
	if got := rl.tracked(); got != 2 {
		t.Fatalf("tracked = %d, want 2", got)
	}

	clock.advance(3 * time.Minute)
	rl.Allow("c", 1)
	if got := rl.tracked(); got != 1 {
		t.Errorf("tracked after sweep = %d, want 1", got)
	}
}

func TestLimitDeliveries(t *testing.T) {
	rl, _ := newTestLimiter()
	s := &Server{rateLimiter: rl}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /integrations/{id}/test", s.limitDeliveries(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, 2))

	send := func(ip, id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/integrations/"+id+"/test", nil)
		req.RemoteAddr = ip + ":5000"
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := send("10.0.0.1", "hook"); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, w.Code)
		}
	}
	w := send("10.0.0.1", "hook")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", w.Header().Get("Retry-After"))
	}

	if w := send("10.0.0.1", "other-hook"); w.Code != http.StatusOK {
		t.Errorf("another integration: expected 200, got %d", w.Code)
	}
	if w := send("10.0.0.2", "hook"); w.Code != http.StatusOK {
		t.Errorf("another client: expected 200, got %d", w.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		remote string
		want   string
	}{
		{"remote addr", "", "1.2.3.4:80", "1.2.3.4"},
		{"forwarded single", "5.6.7.8", "1.2.3.4:80", "5.6.7.8"},
		{"forwarded chain", "5.6.7.8, 9.9.9.9", "1.2.3.4:80", "5.6.7.8"},
		{"no port", "", "1.2.3.4", "1.2.3.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
