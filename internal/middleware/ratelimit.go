package middleware

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"
)

// RateLimiter is a sliding window counter keyed by client IP
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
}

// NewRateLimiter creates a limiter. Stale entries are pruned every sweep
// interval until done is closed; a nil done prunes for the process lifetime.
func NewRateLimiter(limit int, window time.Duration, done <-chan struct{}) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
	go rl.sweep(5*time.Minute, done)
	return rl
}

// Allow records a request for key and reports whether it fits in the window
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	recent := slices.DeleteFunc(rl.requests[key], func(t time.Time) bool {
		return !t.After(cutoff)
	})
	if len(recent) >= rl.limit {
		rl.requests[key] = recent
		return false
	}
	rl.requests[key] = append(recent, now)
	return true
}

func (rl *RateLimiter) sweep(every time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			rl.prune()
		}
	}
}

// prune forgets keys whose latest request left the window
func (rl *RateLimiter) prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.window)
	for key, times := range rl.requests {
		if len(times) == 0 || !times[len(times)-1].After(cutoff) {
			delete(rl.requests, key)
		}
	}
}

// RateLimitLogin throttles credential checks: 5 attempts per 15 minutes per IP.
// API callers get a JSON body, the back office a plain text one.
func RateLimitLogin() func(http.HandlerFunc) http.HandlerFunc {
	return rateLimit(NewRateLimiter(5, 15*time.Minute, nil))
}

func rateLimit(limiter *RateLimiter) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r)
			if limiter.Allow(ip) {
				next(w, r)
				return
			}

			slog.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
			if strings.HasPrefix(r.URL.Path, "/api/") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"code":    http.StatusTooManyRequests,
					"message": "Too many requests",
				})
				return
			}
			http.Error(w, "Too many requests. Please try again later.", http.StatusTooManyRequests)
		}
	}
}

// getClientIP prefers proxy headers, then RemoteAddr without its port
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
