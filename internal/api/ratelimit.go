package api

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter counts hits per key in fixed windows. Expired windows are swept
// inline on Allow, so no background goroutine is needed.
type RateLimiter struct {
	mu        sync.Mutex
	window    time.Duration
	now       func() time.Time
	windows   map[string]*hitWindow
	lastSweep time.Time
}

type hitWindow struct {
	hits    int
	started time.Time
}

// NewRateLimiter creates a limiter with the given window length.
func NewRateLimiter(window time.Duration) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		window:  window,
		now:     time.Now,
		windows: make(map[string]*hitWindow),
	}
}

// Allow records a hit for key. When the key is over limit it returns false
// and how long until its window resets.
func (rl *RateLimiter) Allow(key string, limit int) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= 2*rl.window {
		rl.sweep(now)
	}

	w, ok := rl.windows[key]
	if !ok || now.Sub(w.started) >= rl.window {
		rl.windows[key] = &hitWindow{hits: 1, started: now}
		return true, 0
	}
	if w.hits >= limit {
		return false, w.started.Add(rl.window).Sub(now)
	}
	w.hits++
	return true, 0
}

// sweep drops windows that ended before now. Caller holds mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for k, w := range rl.windows {
		if now.Sub(w.started) >= rl.window {
			delete(rl.windows, k)
		}
	}
	rl.lastSweep = now
}

// tracked returns the number of live windows
func (rl *RateLimiter) tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.windows)
}

// limitDeliveries caps test deliveries per client and integration so the API
// cannot be used to flood a webhook endpoint.
func (s *Server) limitDeliveries(handler http.HandlerFunc, limit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		key := ip + "|" + r.PathValue("id")
		ok, retry := s.rateLimiter.Allow(key, limit)
		if !ok {
			secs := int(math.Ceil(retry.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
			logFor(r.Context()).Warn("test delivery rate limited", "ip", ip, "integration", r.PathValue("id"))
			writeError(w, http.StatusTooManyRequests, ErrCodeRateLimited, "too many test deliveries, try again later")
			return
		}
		handler(w, r)
	}
}

// clientIP extracts the client IP from the request, checking X-Forwarded-For first.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
