package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/noah-isme/bandar-cart/internal/common"
	"github.com/noah-isme/bandar-cart/internal/session"
)

// KeyFunc derives the bucket a request is counted against.
type KeyFunc func(*http.Request) string

// Handler enforces rate limits before delegating to the next handler.
type Handler struct {
	Limiter Limiter
	Key     KeyFunc
	Window  time.Duration
	Max     int
	OnError func(error)
}

// SessionKey buckets requests by cart session, falling back to the client address.
func SessionKey(r *http.Request) string {
	if id, ok := session.FromContext(r.Context()); ok {
		return "session:" + id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// Middleware answers 429 once a bucket is exhausted. Limiter failures let the
// request through.
func (h Handler) Middleware(next http.Handler) http.Handler {
	if h.Limiter == nil {
		return next
	}
	key := h.Key
	if key == nil {
		key = SessionKey
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision, err := h.Limiter.Allow(r.Context(), key(r), h.Window, h.Max)
		if err != nil {
			if h.OnError != nil {
				h.OnError(err)
			}
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.Itoa(max(h.Max, 0)))
		headers.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(decision.Reset.Unix(), 10))

		if !decision.Allowed {
			retryAfter := max(int(time.Until(decision.Reset).Seconds()), 0)
			headers.Set("Retry-After", strconv.Itoa(retryAfter))
			common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many cart updates, slow down", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
