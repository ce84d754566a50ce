package chi

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/lokamap/placesearch/internal/metrics"
)

// rateLimitExemptPaths bypass the limiter (probes and scrapes).
var rateLimitExemptPaths = map[string]struct{}{
	"/api/health": {},
	"/metrics":    {},
}

const rateLimitWindow = time.Minute

// RateLimitMiddleware returns a per-IP sliding-log rate limiter: at most
// callsPerMinute requests per client in any 60 second window. Rejections
// get 429 with the shared detail body. callsPerMinute <= 0 disables limiting.
func RateLimitMiddleware(callsPerMinute int) func(http.Handler) http.Handler {
	limiter := newRateLimiter(callsPerMinute, time.Now)

	return func(next http.Handler) http.Handler {
		if callsPerMinute <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := rateLimitExemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.allow(clientIP(r)) {
				metrics.RateLimitedTotal.Inc()
				writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimiter keeps one timestamp log per client, pruned on each check.
// Idle clients are swept from the map at most once per window.
type rateLimiter struct {
	mu        sync.Mutex
	limit     int
	now       func() time.Time
	calls     map[string][]time.Time
	lastSweep time.Time
}

func newRateLimiter(limit int, now func() time.Time) *rateLimiter {
	return &rateLimiter{
		limit:     limit,
		now:       now,
		calls:     make(map[string][]time.Time),
		lastSweep: now(),
	}
}

func (l *rateLimiter) allow(id string) bool {
	now := l.now()
	cutoff := now.Add(-rateLimitWindow)

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= rateLimitWindow {
		for k, log := range l.calls {
			if len(log) == 0 || !log[len(log)-1].After(cutoff) {
				delete(l.calls, k)
			}
		}
		l.lastSweep = now
	}

	log := l.calls[id]
	kept := log[:0]
	for _, ts := range log {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= l.limit {
		l.calls[id] = kept
		return false
	}

	l.calls[id] = append(kept, now)
	return true
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
