package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bandar-cart/internal/session"
)

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string, time.Duration, int) (Decision, error) {
	return Decision{}, errors.New("limiter down")
}

func TestSlidingWindow(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()
	limiter := SlidingWindow{Client: client, Prefix: "test:"}

	ctx := context.Background()
	window := 2 * time.Second
	for i := 0; i < 2; i++ {
		d, err := limiter.Allow(ctx, "key", window, 2)
		require.NoError(t, err)
		require.True(t, d.Allowed, "request %d", i)
		require.Equal(t, 2-(i+1), d.Remaining)
	}

	d, err := limiter.Allow(ctx, "key", window, 2)
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Zero(t, d.Remaining)

	mr.FastForward(window)
	d, err = limiter.Allow(ctx, "key", window, 2)
	require.NoError(t, err)
	require.True(t, d.Allowed)
}

func TestMemoryLimiter(t *testing.T) {
	l := NewMemory()
	ctx := context.Background()

	d, err := l.Allow(ctx, "a", time.Minute, 1)
	require.NoError(t, err)
	require.True(t, d.Allowed)

	d, err = l.Allow(ctx, "a", time.Minute, 1)
	require.NoError(t, err)
	require.False(t, d.Allowed)

	d, err = l.Allow(ctx, "b", time.Minute, 1)
	require.NoError(t, err)
	require.True(t, d.Allowed)
}

func TestMiddlewareLimitsPerSession(t *testing.T) {
	handler := Handler{Limiter: NewMemory(), Window: time.Minute, Max: 1}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", nil)
		req = req.WithContext(session.WithSession(req.Context(), id))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	require.Equal(t, http.StatusOK, send("one").Code)
	rr := send("one")
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	require.Equal(t, "1", rr.Header().Get("X-RateLimit-Limit"))
	require.NotEmpty(t, rr.Header().Get("Retry-After"))
	require.Contains(t, rr.Body.String(), "RATE_LIMITED")

	require.Equal(t, http.StatusOK, send("two").Code)
}

func TestMiddlewareFailsOpen(t *testing.T) {
	called := false
	handler := Handler{
		Limiter: brokenLimiter{},
		Window:  time.Second,
		Max:     1,
		OnError: func(error) { called = true },
	}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, called)
}

func TestSessionKeyFallsBackToAddress(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:5555"
	require.Equal(t, "ip:10.0.0.7", SessionKey(req))
	req = req.WithContext(session.WithSession(req.Context(), "abc"))
	require.Equal(t, "session:abc", SessionKey(req))
}
