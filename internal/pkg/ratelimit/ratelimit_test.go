package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/world-explorer/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	result interface{}
	err    error
	keys   []string
}

func (f *fakeStore) Eval(_ context.Context, _ string, keys []string, _ ...interface{}) (interface{}, error) {
	f.keys = append(f.keys, keys...)
	return f.result, f.err
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name          string
		store         *fakeStore
		wantStatus    int
		wantRemaining string
		wantRetry     bool
	}{
		{
			name:          "allowed",
			store:         &fakeStore{result: []interface{}{int64(1), int64(4), int64(1700000060)}},
			wantStatus:    http.StatusOK,
			wantRemaining: "4",
		},
		{
			name:          "limited",
			store:         &fakeStore{result: []interface{}{int64(0), int64(0), int64(1700000060)}},
			wantStatus:    http.StatusTooManyRequests,
			wantRemaining: "0",
			wantRetry:     true,
		},
		{
			name:       "store error lets request through",
			store:      &fakeStore{err: errors.New("connection refused")},
			wantStatus: http.StatusOK,
		},
		{
			name:       "malformed result lets request through",
			store:      &fakeStore{result: "nope"},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(Middleware(tt.store, Config{MaxRequests: 5, WindowSeconds: 60}, logger.NewNop()))
			r.GET("/api/news", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/news", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantRemaining, w.Header().Get("X-RateLimit-Remaining"))
			assert.Equal(t, tt.wantRetry, w.Header().Get("Retry-After") != "")
			require.Len(t, tt.store.keys, 1)
			assert.Contains(t, tt.store.keys[0], "rate_limit:ip:")
		})
	}
}

func TestMiddleware_Exempt(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limited := []interface{}{int64(0), int64(0), int64(1700000060)}

	tests := []struct {
		name       string
		method     string
		remoteAddr string
		header     string
		exempt     bool
		wantStatus int
		wantCalls  int
	}{
		{name: "preflight", method: http.MethodOptions, remoteAddr: "203.0.113.7:4000", wantStatus: http.StatusNoContent},
		{name: "loopback v4", method: http.MethodGet, remoteAddr: "127.0.0.1:5555", exempt: true, wantStatus: http.StatusOK},
		{name: "loopback v6", method: http.MethodGet, remoteAddr: "[::1]:5555", exempt: true, wantStatus: http.StatusOK},
		{name: "loopback not exempt", method: http.MethodGet, remoteAddr: "127.0.0.1:5555", wantStatus: http.StatusTooManyRequests, wantCalls: 1},
		{name: "forwarded loopback is counted", method: http.MethodGet, remoteAddr: "203.0.113.7:4000", header: "127.0.0.1", exempt: true, wantStatus: http.StatusTooManyRequests, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{result: limited}
			r := gin.New()
			r.Use(Middleware(store, Config{MaxRequests: 5, WindowSeconds: 60, ExemptLoopback: tt.exempt}, logger.NewNop()))
			r.GET("/api/news", func(c *gin.Context) { c.Status(http.StatusOK) })
			r.OPTIONS("/api/news", func(c *gin.Context) { c.Status(http.StatusNoContent) })

			req := httptest.NewRequest(tt.method, "/api/news", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.header != "" {
				req.Header.Set("X-Forwarded-For", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Len(t, store.keys, tt.wantCalls)
		})
	}
}
