package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/world-explorer/internal/news/provider"
	"github.com/lk2023060901/world-explorer/internal/news/types"
	"github.com/lk2023060901/world-explorer/internal/pkg/logger"
	"go.uber.org/zap"
)

const (
	DefaultUpstreamBase = "https://newsapi.org/v2"
	DefaultTimeout      = 7 * time.Second
	DefaultCacheMaxAge  = 60

	apiKeyHeader = "X-Api-Key"
)

var allowedPaths = map[string]struct{}{
	provider.PathTopHeadlines: {},
	provider.PathEverything:   {},
	provider.PathSources:      {},
}

// Config 新闻代理配置
type Config struct {
	Enabled      bool          `mapstructure:"enabled"`
	UpstreamBase string        `mapstructure:"upstream_base"`
	APIKey       string        `mapstructure:"api_key"`
	Timeout      time.Duration `mapstructure:"timeout"`
	CacheMaxAge  int           `mapstructure:"cache_max_age"`
}

// DefaultConfig returns the proxy defaults. The API key has no default.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		UpstreamBase: DefaultUpstreamBase,
		Timeout:      DefaultTimeout,
		CacheMaxAge:  DefaultCacheMaxAge,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return types.ErrMissingAPIKey
	}
	u, err := url.Parse(c.UpstreamBase)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid news upstream base URL %q", c.UpstreamBase)
	}
	return nil
}

// Handler forwards sanitized news API requests and injects the server-held key
type Handler struct {
	config     *Config
	httpClient *http.Client
	logger     *logger.Logger
}

// NewHandler creates a Handler
func NewHandler(cfg *Config, log *logger.Logger) (*Handler, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.L()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.CacheMaxAge <= 0 {
		cfg.CacheMaxAge = DefaultCacheMaxAge
	}

	return &Handler{
		config: cfg,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: log.Named("news-proxy"),
	}, nil
}

// Register mounts the proxy on path for GET and OPTIONS. Other methods get 405.
func (h *Handler) Register(r gin.IRouter, path string) {
	r.Any(path, h.Serve)
}

// Serve handles one proxy request
func (h *Handler) Serve(c *gin.Context) {
	setCORS(c)

	switch c.Request.Method {
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
		return
	case http.MethodGet:
	default:
		c.Header("Allow", "GET, OPTIONS")
		fail(c, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	query := c.Request.URL.Query()
	path := query.Get("path")
	if path == "" {
		path = provider.PathTopHeadlines
	}
	if _, ok := allowedPaths[path]; !ok {
		fail(c, http.StatusBadRequest, "Invalid path")
		return
	}

	forward := SanitizeQuery(query)
	target := strings.TrimRight(h.config.UpstreamBase, "/") + "/" + path
	if encoded := forward.Encode(); encoded != "" {
		target += "?" + encoded
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.config.Timeout)
	defer cancel()

	log := h.logger.WithContext(c.Request.Context()).With(zap.String("path", path))

	status, body, contentType, err := h.call(ctx, target)
	if err != nil {
		msg := "Proxy error"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "Upstream timeout"
		}
		log.Error("news upstream call failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, msg)
		return
	}

	if status >= 200 && status < 300 {
		c.Header("Cache-Control", "public, max-age="+strconv.Itoa(h.config.CacheMaxAge))
	} else {
		c.Header("Cache-Control", "no-store")
		log.Warn("news upstream returned an error", zap.Int("status", status))
	}
	if contentType == "" {
		contentType = "application/json; charset=utf-8"
	}
	c.Data(status, contentType, body)
}

func (h *Handler) call(ctx context.Context, target string) (int, []byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(apiKeyHeader, h.config.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return 0, nil, "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, "", fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, body, resp.Header.Get("Content-Type"), nil
}

// SanitizeQuery drops the path selector and every empty-valued parameter
func SanitizeQuery(in url.Values) url.Values {
	out := url.Values{}
	for k, vs := range in {
		if k == "path" {
			continue
		}
		for _, v := range vs {
			if v != "" {
				out.Add(k, v)
			}
		}
	}
	return out
}

func setCORS(c *gin.Context) {
	origin := c.GetHeader("Origin")
	if origin == "" {
		origin = "*"
	}
	c.Header("Access-Control-Allow-Origin", origin)
	c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type")
	c.Header("Vary", "Origin")
}

func fail(c *gin.Context, status int, message string) {
	c.Header("Cache-Control", "no-store")
	c.AbortWithStatusJSON(status, gin.H{"status": "error", "message": message})
}
