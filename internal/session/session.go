// Package session resolves the opaque client session a cart belongs to.
package session

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const sessionContextKey contextKey = "cart.session"

const maxIDLength = 128

// Resolver resolves session identifiers from a header or cookie and issues a
// fresh one when the client did not send any.
type Resolver struct {
	HeaderName   string
	CookieName   string
	CookieMaxAge time.Duration
	CookieSecure bool
}

// NewResolver returns a resolver using X-Cart-Session and the cart_session cookie by default.
func NewResolver(headerName, cookieName string) *Resolver {
	if headerName == "" {
		headerName = "X-Cart-Session"
	}
	if cookieName == "" {
		cookieName = "cart_session"
	}
	return &Resolver{HeaderName: headerName, CookieName: cookieName, CookieMaxAge: 30 * 24 * time.Hour}
}

// Middleware injects the session into the request context, setting a cookie
// and echoing the header when a new session was issued.
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	if r == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := r.Resolve(req)
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     r.CookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   int(r.CookieMaxAge.Seconds()),
				HttpOnly: true,
				Secure:   r.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		w.Header().Set(r.HeaderName, id)
		next.ServeHTTP(w, req.WithContext(WithSession(req.Context(), id)))
	})
}

// Resolve returns the session sent by the client, preferring the header.
func (r *Resolver) Resolve(req *http.Request) string {
	if r == nil || req == nil {
		return ""
	}
	if id := clean(req.Header.Get(r.HeaderName)); id != "" {
		return id
	}
	if c, err := req.Cookie(r.CookieName); err == nil {
		return clean(c.Value)
	}
	return ""
}

func clean(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > maxIDLength || strings.ContainsAny(id, " :\t\r\n") {
		return ""
	}
	return id
}

// WithSession stores the session identifier inside the context.
func WithSession(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, sessionContextKey, id)
}

// FromContext extracts the session identifier from the context if available.
func FromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(sessionContextKey).(string)
	if !ok {
		return "", false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", false
	}
	return id, true
}

// PrefixKey namespaces a storage key per session.
func PrefixKey(id, key string) string {
	if id == "" {
		return key
	}
	return id + ":" + key
}
