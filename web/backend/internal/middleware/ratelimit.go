package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hookline/hookline/common/httputil"
	"github.com/hookline/hookline/common/session"
	"golang.org/x/time/rate"
)

// LimiterStore keeps one token bucket per key and forgets keys that have
// been idle for longer than idleTTL.
type LimiterStore struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
	proxies httputil.TrustedProxies
	now     func() time.Time
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewLimiterStore(rps float64, burst int) *LimiterStore {
	return &LimiterStore{
		entries: make(map[string]*limiterEntry),
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: 15 * time.Minute,
		now:     time.Now,
	}
}

// TrustProxies lets the listed peers report the client address for callers
// without a session.
func (s *LimiterStore) TrustProxies(p httputil.TrustedProxies) {
	s.proxies = p
}

func (s *LimiterStore) Get(key string) *rate.Limiter {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(s.rps, s.burst)
	s.entries[key] = &limiterEntry{lim: lim, lastSeen: now}
	return lim
}

// Cleanup drops idle keys.
func (s *LimiterStore) Cleanup() {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

func (s *LimiterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// StartJanitor runs Cleanup every interval until ctx is done.
func (s *LimiterStore) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	t := time.NewTicker(interval)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

// RateLimitKey identifies the caller: the session when there is one,
// otherwise the client IP.
func RateLimitKey(r *http.Request, proxies httputil.TrustedProxies) string {
	if s := session.FromContext(r.Context()); s != nil {
		return "session:" + s.ID
	}
	return "ip:" + proxies.ClientIP(r)
}

// RateLimit rejects mutating requests (anything but GET, HEAD and OPTIONS)
// once the caller's bucket is empty. It must run inside the session
// middleware to key by session.
func RateLimit(store *LimiterStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			lim := store.Get(RateLimitKey(r, store.proxies))
			res := lim.Reserve()
			if !res.OK() {
				writeTooMany(w, time.Second)
				return
			}
			if delay := res.Delay(); delay > 0 {
				res.Cancel()
				writeTooMany(w, delay)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(store.burst))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(math.Max(0, lim.Tokens()))))
			next.ServeHTTP(w, r)
		})
	}
}

func writeTooMany(w http.ResponseWriter, retryAfter time.Duration) {
	secs := int(math.Ceil(retryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	httputil.WriteError(w, http.StatusTooManyRequests, fmt.Sprintf("rate limit exceeded, retry in %ds", secs))
}
