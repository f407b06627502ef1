package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aanand-mishra/registration-api/internal/utils/response"
	"golang.org/x/time/rate"
)

// Limiters keeps one token bucket per client key and forgets keys that
// have been idle longer than idleTTL.
type Limiters struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewLimiters(rps float64, burst int, idleTTL time.Duration) *Limiters {
	if idleTTL <= 0 {
		idleTTL = 15 * time.Minute
	}
	return &Limiters{
		entries: make(map[string]*limiterEntry),
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// Get returns the limiter for key, creating it on first use.
func (l *Limiters) Get(key string) *rate.Limiter {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if ent, ok := l.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(l.rps, l.burst)
	l.entries[key] = &limiterEntry{lim: lim, lastSeen: now}
	return lim
}

// Len is the number of keys currently tracked.
func (l *Limiters) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Cleanup drops keys not seen within idleTTL.
func (l *Limiters) Cleanup() {
	cutoff := l.now().Add(-l.idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()

	for k, ent := range l.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(l.entries, k)
		}
	}
}

// StartJanitor runs Cleanup every interval until ctx is done.
func (l *Limiters) StartJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}

	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Cleanup()
			}
		}
	}()
}

// KeyFunc identifies the client a request is charged to.
type KeyFunc func(r *http.Request) string

// ClientKey picks, in order: the keyHeader value, the first
// X-Forwarded-For address (only when trustXFF), then the remote IP.
func ClientKey(keyHeader string, trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}

		if trustXFF {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
		}

		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}

// RateLimit rejects a client that has run out of tokens with 429 and a
// Retry-After header in whole seconds (at least 1).
func RateLimit(limiters *Limiters, keyFn KeyFunc, retryAfter time.Duration) Middleware {
	if retryAfter <= 0 {
		retryAfter = time.Second
	}
	seconds := int(retryAfter.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	retryHeader := strconv.Itoa(seconds)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiters.Get(keyFn(r)).Allow() {
				w.Header().Set("Retry-After", retryHeader)
				response.WriteJSON(w, http.StatusTooManyRequests,
					response.GeneralError(errors.New("too many requests")))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
