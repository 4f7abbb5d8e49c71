package ratelimit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (*Result, error) {
	return nil, errors.New("redis down")
}

func newLimited(store Store, limit int) http.Handler {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return Middleware(store, limit, time.Minute, logger)(ok)
}

func TestMiddlewareRejectsOverLimit(t *testing.T) {
	h := newLimited(NewInMemoryStore(), 2)

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/decision/score", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusNoContent, send("192.0.2.1:1111").Code)
	rr := send("192.0.2.1:2222")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "2", rr.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))

	rr = send("192.0.2.1:3333")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
	assert.Contains(t, rr.Body.String(), "rate_limit_exceeded")

	assert.Equal(t, http.StatusNoContent, send("192.0.2.9:1111").Code)
}

func TestMiddlewareFailsOpen(t *testing.T) {
	h := newLimited(failingStore{}, 1)
	for range 3 {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/decision/score", nil))
		assert.Equal(t, http.StatusNoContent, rr.Code)
	}
}
