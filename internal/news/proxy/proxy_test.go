package proxy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/world-explorer/internal/news/types"
	"github.com/lk2023060901/world-explorer/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type upstreamCall struct {
	path   string
	query  url.Values
	apiKey string
}

func setup(t *testing.T, upstream http.HandlerFunc, timeout time.Duration) (*gin.Engine, *[]upstreamCall) {
	t.Helper()

	var calls []upstreamCall
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, upstreamCall{path: r.URL.Path, query: r.URL.Query(), apiKey: r.Header.Get("X-Api-Key")})
		upstream(w, r)
	}))
	t.Cleanup(srv.Close)

	h, err := NewHandler(&Config{Enabled: true, UpstreamBase: srv.URL + "/v2", APIKey: "secret", Timeout: timeout}, logger.NewNop())
	require.NoError(t, err)

	r := gin.New()
	h.Register(r, "/api/news")
	return r, &calls
}

func ok(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok","articles":[]}`))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestServe_Forwards(t *testing.T) {
	r, calls := setup(t, ok, 0)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/news?path=everything&q=%22France%22&language=&pageSize=10", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","articles":[]}`, w.Body.String())
	assert.Equal(t, "public, max-age=60", w.Header().Get("Cache-Control"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	require.Len(t, *calls, 1)
	got := (*calls)[0]
	assert.Equal(t, "/v2/everything", got.path)
	assert.Equal(t, "secret", got.apiKey)
	assert.Equal(t, `"France"`, got.query.Get("q"))
	assert.Equal(t, "10", got.query.Get("pageSize"))
	assert.NotContains(t, got.query, "path")
	assert.NotContains(t, got.query, "language")
}

func TestServe_DefaultPath(t *testing.T) {
	r, calls := setup(t, ok, 0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/news?country=us", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, *calls, 1)
	assert.Equal(t, "/v2/top-headlines", (*calls)[0].path)
}

func TestServe_InvalidPath(t *testing.T) {
	r, calls := setup(t, ok, 0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/news?path=../admin", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Invalid path", body["message"])
	assert.Empty(t, *calls)
}

func TestServe_Preflight(t *testing.T) {
	r, calls := setup(t, ok, 0)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/news", nil)
	req.Header.Set("Origin", "https://explorer.example")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://explorer.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "GET")
	assert.Empty(t, *calls)
}

func TestServe_MethodNotAllowed(t *testing.T) {
	r, _ := setup(t, ok, 0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/news", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "error", decode(t, w)["status"])
}

func TestServe_UpstreamError(t *testing.T) {
	r, _ := setup(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"status":"error","code":"rateLimited","message":"slow down"}`))
	}, 0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/news?path=everything&q=x", nil))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "rateLimited", decode(t, w)["code"])
}

func TestServe_Timeout(t *testing.T) {
	r, _ := setup(t, func(w http.ResponseWriter, req *http.Request) {
		select {
		case <-req.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, 50*time.Millisecond)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/news?country=us", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Upstream timeout", body["message"])
}

func TestSanitizeQuery(t *testing.T) {
	got := SanitizeQuery(url.Values{
		"path":     {"everything"},
		"q":        {`"Peru"`},
		"language": {""},
		"sources":  {"", "bbc"},
	})
	assert.Equal(t, url.Values{"q": {`"Peru"`}, "sources": {"bbc"}}, got)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.ErrorIs(t, cfg.Validate(), types.ErrMissingAPIKey)

	cfg.APIKey = "k"
	assert.NoError(t, cfg.Validate())

	cfg.UpstreamBase = "newsapi"
	assert.Error(t, cfg.Validate())

	assert.NoError(t, (&Config{Enabled: false}).Validate())

	_, err := NewHandler(DefaultConfig(), logger.NewNop())
	assert.ErrorIs(t, err, types.ErrMissingAPIKey)
}
