package summary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lk2023060901/world-explorer/internal/pkg/logger"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const DefaultBaseURL = "https://en.wikipedia.org/api/rest_v1"

// Config Wikipedia 摘要配置
type Config struct {
	Enabled   bool          `mapstructure:"enabled"`
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:   true,
		BaseURL:   DefaultBaseURL,
		Timeout:   10 * time.Second,
		UserAgent: "World-Explorer/1.0",
	}
}

// Summary is the lead section of an encyclopedia article
type Summary struct {
	Title       string `json:"title,omitempty"`
	Extract     string `json:"extract,omitempty"`
	ExtractHTML string `json:"extract_html,omitempty"`
	PageURL     string `json:"page_url,omitempty"`
}

// Empty reports whether nothing useful was found
func (s *Summary) Empty() bool {
	return s == nil || (s.Extract == "" && s.ExtractHTML == "")
}

// Client fetches page summaries. Lookups are best-effort: any failure
// yields an empty Summary.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *logger.Logger
}

func New(cfg *Config, log *logger.Logger) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = logger.L()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.Named("summary"),
	}
}

// Lookup returns the summary for an article title, e.g. a country's common name
func (c *Client) Lookup(ctx context.Context, title string) *Summary {
	title = strings.TrimSpace(title)
	if c == nil || !c.config.Enabled || title == "" {
		return &Summary{}
	}

	s, err := c.fetch(ctx, title)
	if err != nil {
		c.logger.WithContext(ctx).Debug("summary unavailable", zap.String("title", title), zap.Error(err))
		return &Summary{}
	}
	return s
}

func (c *Client) fetch(ctx context.Context, title string) (*Summary, error) {
	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/page/summary/" +
		url.PathEscape(strings.ReplaceAll(title, " ", "_"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("summary API returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("summary API returned invalid JSON")
	}

	root := gjson.ParseBytes(body)
	return &Summary{
		Title:       root.Get("title").String(),
		Extract:     root.Get("extract").String(),
		ExtractHTML: root.Get("extract_html").String(),
		PageURL:     root.Get("content_urls.desktop.page").String(),
	}, nil
}
