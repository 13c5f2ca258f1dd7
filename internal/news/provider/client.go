package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lk2023060901/world-explorer/internal/news/types"
	"github.com/lk2023060901/world-explorer/internal/pkg/logger"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// News API paths the proxy forwards
const (
	PathTopHeadlines = "top-headlines"
	PathEverything   = "everything"
	PathSources      = "sources"
)

// Provider fetches articles through the news proxy
type Provider interface {
	// Get calls path with params and returns the articles of a successful answer
	Get(ctx context.Context, path string, params url.Values) ([]types.Article, error)
}

// Config configures the proxy client
type Config struct {
	ProxyBase string        `mapstructure:"proxy_base"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// Validate checks the proxy URL
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ProxyBase) == "" {
		return types.ErrMissingProxy
	}
	if _, err := url.Parse(c.ProxyBase); err != nil {
		return fmt.Errorf("%w: %v", types.ErrMissingProxy, err)
	}
	return nil
}

// ProxyClient calls {proxy_base}?path=...&<params>
type ProxyClient struct {
	config     *Config
	httpClient *http.Client
	logger     *logger.Logger
}

// NewProxyClient creates a ProxyClient
func NewProxyClient(cfg *Config, log *logger.Logger) (*ProxyClient, error) {
	if cfg == nil {
		return nil, types.ErrMissingProxy
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.L()
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &ProxyClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: log.Named("news"),
	}, nil
}

func (p *ProxyClient) Get(ctx context.Context, path string, params url.Values) ([]types.Article, error) {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("path", path)

	endpoint := p.config.ProxyBase
	if strings.Contains(endpoint, "?") {
		endpoint += "&" + q.Encode()
	} else {
		endpoint += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &types.APIError{Code: "requestFailed", Message: "Failed to execute request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.APIError{StatusCode: resp.StatusCode, Code: "readFailed", Message: "Failed to read response body", Err: err}
	}

	p.logger.Debug("news api call",
		zap.String("path", path),
		zap.String("query", params.Get("q")),
		zap.Int("status", resp.StatusCode),
	)

	return ParseArticles(resp.StatusCode, body)
}

// ParseArticles reads a news API envelope. Non-2xx statuses and
// status:"error" bodies become *types.APIError; a 429 also matches
// types.ErrRateLimited.
func ParseArticles(statusCode int, body []byte) ([]types.Article, error) {
	valid := gjson.ValidBytes(body)
	root := gjson.ParseBytes(body)

	if statusCode < 200 || statusCode >= 300 || (valid && root.Get("status").Exists() && root.Get("status").String() != "ok") {
		msg := root.Get("message").String()
		if msg == "" {
			msg = fmt.Sprintf("NewsAPI error (%d)", statusCode)
		}
		apiErr := &types.APIError{StatusCode: statusCode, Code: root.Get("code").String(), Message: msg}
		if statusCode == http.StatusTooManyRequests || apiErr.Code == "rateLimited" {
			apiErr.StatusCode = http.StatusTooManyRequests
			apiErr.Err = types.ErrRateLimited
		}
		return nil, apiErr
	}
	if !valid {
		return nil, &types.APIError{StatusCode: statusCode, Code: "malformedJSON", Message: "Response is not valid JSON", Err: types.ErrInvalidResponse}
	}

	items := root.Get("articles").Array()
	articles := make([]types.Article, 0, len(items))
	for _, item := range items {
		a := types.Article{
			URL:         item.Get("url").String(),
			Title:       item.Get("title").String(),
			Description: item.Get("description").String(),
			ImageURL:    item.Get("urlToImage").String(),
		}
		if a.URL == "" && a.Title == "" {
			continue
		}
		if name := item.Get("source.name").String(); name != "" {
			a.Source = &types.Source{ID: item.Get("source.id").String(), Name: name}
		}
		if ts := item.Get("publishedAt").String(); ts != "" {
			if t, err := time.Parse(time.RFC3339, ts); err == nil {
				a.PublishedAt = &t
			}
		}
		articles = append(articles, a)
	}
	return articles, nil
}
