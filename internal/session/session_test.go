package session_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bandar-cart/internal/session"
)

func TestResolverPrefersHeader(t *testing.T) {
	r := session.NewResolver("", "")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Cart-Session", " abc ")
	req.AddCookie(&http.Cookie{Name: "cart_session", Value: "cookie"})
	require.Equal(t, "abc", r.Resolve(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "cart_session", Value: "cookie"})
	require.Equal(t, "cookie", r.Resolve(req))
}

func TestResolverRejectsUnsafeIDs(t *testing.T) {
	r := session.NewResolver("", "")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Cart-Session", "a:b")
	require.Empty(t, r.Resolve(req))

	req.Header.Set("X-Cart-Session", strings.Repeat("x", 129))
	require.Empty(t, r.Resolve(req))
}

func TestMiddlewareIssuesSession(t *testing.T) {
	r := session.NewResolver("", "")
	var seen string
	h := r.Middleware(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id, ok := session.FromContext(req.Context())
		require.True(t, ok)
		seen = id
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	require.Equal(t, seen, rec.Header().Get("X-Cart-Session"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, seen, cookies[0].Value)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Cart-Session", "known")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "known", seen)
	require.Empty(t, rec.Result().Cookies())
}

func TestPrefixKey(t *testing.T) {
	require.Equal(t, "s1:bandarStoreCart", session.PrefixKey("s1", "bandarStoreCart"))
	require.Equal(t, "bandarStoreCart", session.PrefixKey("", "bandarStoreCart"))
}
