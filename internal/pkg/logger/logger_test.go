package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{name: "nil config", config: nil},
		{name: "default config", config: DefaultConfig()},
		{
			name:   "console format",
			config: &Config{Level: "debug", Format: "console", Output: "console"},
		},
		{
			name: "file output",
			config: &Config{
				Level:  "INFO",
				Format: "json",
				Output: "file",
				File:   FileConfig{Filename: filepath.Join(dir, "a.log"), MaxSize: 1, MaxAge: 1},
			},
		},
		{
			name: "both outputs",
			config: &Config{
				Level:  "warn",
				Format: "json",
				Output: "both",
				File:   FileConfig{Filename: filepath.Join(dir, "b.log"), MaxSize: 1, MaxAge: 1, MaxBackups: 1},
			},
		},
		{
			name:    "unknown level",
			config:  &Config{Level: "verbose", Format: "json", Output: "console"},
			wantErr: true,
		},
		{
			name:    "unknown format",
			config:  &Config{Level: "info", Format: "xml", Output: "console"},
			wantErr: true,
		},
		{
			name:    "unknown output",
			config:  &Config{Level: "info", Format: "json", Output: "syslog"},
			wantErr: true,
		},
		{
			name:    "file output without filename",
			config:  &Config{Level: "info", Format: "json", Output: "file", File: FileConfig{MaxSize: 1, MaxAge: 1}},
			wantErr: true,
		},
		{
			name:    "file output with zero maxsize",
			config:  &Config{Level: "info", Format: "json", Output: "file", File: FileConfig{Filename: filepath.Join(dir, "c.log"), MaxAge: 1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, l)
			assert.NotNil(t, l.Config())
			_ = l.Sync()
		})
	}
}

func TestLogger_ChildLoggers(t *testing.T) {
	l := NewNop()

	child := l.With(zap.String("country", "FRA")).Named("search")
	require.NotNil(t, child)
	assert.Same(t, l.Config(), child.Config())
	child.Info("tier resolved")
}

func TestContextHelpers(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithSessionID(ctx, "sess-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "sess-1", GetSessionID(ctx))
	assert.Empty(t, GetRequestID(context.Background()))

	nop := NewNop()
	assert.NotNil(t, FromContext(ToContext(ctx, nop)))
}

func TestGlobalLogger(t *testing.T) {
	nop := NewNop()
	SetGlobal(nop)
	t.Cleanup(func() { SetGlobal(nil) })

	assert.Same(t, nop, L())
	Info("hello")
}

func TestGinLogger_RequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		incoming string
	}{
		{name: "generated when missing"},
		{name: "propagated when present", incoming: "abc-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			r := gin.New()
			r.Use(GinLogger(NewNop()))
			r.GET("/ping", func(c *gin.Context) {
				seen = GetRequestID(c.Request.Context())
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get(RequestIDHeader)
			require.NotEmpty(t, got)
			assert.Equal(t, got, seen)
			if tt.incoming != "" {
				assert.Equal(t, tt.incoming, got)
			}
		})
	}
}

func TestGinRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinRecovery(NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}
