package fallback

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	ctypes "github.com/lk2023060901/world-explorer/internal/country/types"
	"github.com/lk2023060901/world-explorer/internal/news/provider"
	"github.com/lk2023060901/world-explorer/internal/news/types"
	"github.com/lk2023060901/world-explorer/internal/pkg/fallback"
	"github.com/lk2023060901/world-explorer/internal/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultSupportedCountries lists the alpha-2 codes top-headlines accepts
var DefaultSupportedCountries = []string{
	"ae", "ar", "at", "au", "be", "bg", "br", "ca", "ch", "cn", "co", "cu", "cz", "de", "eg", "fr",
	"gb", "gr", "hk", "hu", "id", "ie", "il", "in", "it", "jp", "kr", "lt", "lv", "ma", "mx", "my",
	"ng", "nl", "no", "nz", "ph", "pl", "pt", "ro", "rs", "ru", "sa", "se", "sg", "si", "sk", "th",
	"tr", "tw", "ua", "us", "ve", "za",
}

const (
	DefaultPageSize = 10
	DefaultWindow   = 7 * 24 * time.Hour
)

// Attempt names
const (
	AttemptHeadlines = "top_headlines"
	AttemptName      = "everything_name"
	AttemptCapital   = "everything_capital"
	AttemptCombined  = "everything_combined"
)

// Config tunes the news lookup
type Config struct {
	SupportedCountries []string      `mapstructure:"supported_countries"`
	PageSize           int           `mapstructure:"page_size"`
	Window             time.Duration `mapstructure:"window"`
}

// DefaultConfig mirrors the news API's free tier limits
func DefaultConfig() *Config {
	return &Config{
		SupportedCountries: append([]string(nil), DefaultSupportedCountries...),
		PageSize:           DefaultPageSize,
		Window:             DefaultWindow,
	}
}

// Fetcher finds news about a country by trying progressively broader
// queries. Results are kept per country for the Fetcher's lifetime.
type Fetcher struct {
	provider  provider.Provider
	logger    *logger.Logger
	supported map[string]struct{}
	pageSize  int
	window    time.Duration
	now       func() time.Time

	mu    sync.RWMutex
	cache map[string]*types.Result
	group singleflight.Group
}

// New creates a Fetcher. A nil cfg means DefaultConfig.
func New(p provider.Provider, cfg *Config, log *logger.Logger) *Fetcher {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = logger.L()
	}

	supported := make(map[string]struct{}, len(cfg.SupportedCountries))
	for _, cc := range cfg.SupportedCountries {
		if cc = strings.ToLower(strings.TrimSpace(cc)); cc != "" {
			supported[cc] = struct{}{}
		}
	}

	f := &Fetcher{
		provider:  p,
		logger:    log.Named("news"),
		supported: supported,
		pageSize:  cfg.PageSize,
		window:    cfg.Window,
		now:       time.Now,
		cache:     make(map[string]*types.Result),
	}
	if f.pageSize <= 0 {
		f.pageSize = DefaultPageSize
	}
	if f.window <= 0 {
		f.window = DefaultWindow
	}
	return f
}

// FetchNews returns news for c. It never returns an error: when every
// attempt fails the result carries a Failure, and when nothing matched the
// article list is simply empty. Repeat calls for the same country are
// answered from the cache, except after a rate limited failure.
//
// Concurrent calls for one country share a single fetch that is detached
// from any one caller's cancellation; a caller whose ctx ends first gets a
// failure for itself while the fetch completes for the others.
func (f *Fetcher) FetchNews(ctx context.Context, c *ctypes.Country) *types.Result {
	if c == nil {
		return &types.Result{Articles: []types.Article{}}
	}
	key := c.CacheKey()
	if key == "" {
		return f.fetch(ctx, c)
	}

	if cached, ok := f.Cached(key); ok {
		return cached
	}
	if err := ctx.Err(); err != nil {
		return cancelled(err)
	}

	ch := f.group.DoChan(key, func() (interface{}, error) {
		if cached, ok := f.Cached(key); ok {
			return cached, nil
		}
		res := f.fetch(context.WithoutCancel(ctx), c)
		if !res.Failure.RateLimited() {
			f.mu.Lock()
			f.cache[key] = res
			f.mu.Unlock()
		}
		return res, nil
	})

	select {
	case r := <-ch:
		return r.Val.(*types.Result)
	case <-ctx.Done():
		return cancelled(ctx.Err())
	}
}

func cancelled(err error) *types.Result {
	return &types.Result{Failure: &types.Failure{Message: err.Error()}}
}

// Cached returns the stored result for a country cache key
func (f *Fetcher) Cached(key string) (*types.Result, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	res, ok := f.cache[key]
	return res, ok
}

type query struct {
	path   string
	params url.Values
}

func (f *Fetcher) fetch(ctx context.Context, c *ctypes.Country) *types.Result {
	log := f.logger.WithContext(ctx).With(zap.String("country", c.DisplayName()))
	queries := f.plan(c)

	tiers := make([]fallback.Tier[[]types.Article], 0, len(queries))
	descriptions := make(map[string]string, len(queries))
	for _, name := range attemptOrder {
		q, ok := queries[name]
		if !ok {
			continue
		}
		descriptions[name] = q.path + "?" + q.params.Encode()
		tiers = append(tiers, fallback.Tier[[]types.Article]{Name: name, Run: func(ctx context.Context) ([]types.Article, error) {
			return f.provider.Get(ctx, q.path, q.params)
		}})
	}
	if len(tiers) == 0 {
		return &types.Result{Articles: []types.Article{}}
	}

	var (
		succeeded   int
		rateLimited bool
		lastErr     error
	)
	articles, tier, found := fallback.First(ctx, tiers,
		func(a []types.Article) bool { return len(a) > 0 },
		func(o fallback.Outcome) {
			if o.Err == nil {
				succeeded++
				log.Debug("news attempt finished", zap.String("attempt", o.Tier))
				return
			}
			lastErr = o.Err
			if types.IsRateLimited(o.Err) {
				rateLimited = true
			}
			log.Warn("news attempt failed", zap.String("attempt", o.Tier), zap.Error(o.Err))
		},
	)

	switch {
	case found:
		return &types.Result{Articles: articles, Query: descriptions[tier]}
	case succeeded > 0:
		return &types.Result{Articles: []types.Article{}}
	case lastErr == nil:
		// context cancelled before any attempt ran
		return &types.Result{Failure: &types.Failure{Message: fmt.Sprint(ctx.Err())}}
	}

	failure := &types.Failure{Message: failureMessage(lastErr)}
	if rateLimited {
		failure.StatusCode = 429
	} else if code := statusOf(lastErr); code != 0 {
		failure.StatusCode = code
	}
	return &types.Result{Failure: failure}
}

var attemptOrder = []string{AttemptHeadlines, AttemptName, AttemptCapital, AttemptCombined}

// plan builds the queries that apply to c, keyed by attempt name.
func (f *Fetcher) plan(c *ctypes.Country) map[string]query {
	queries := make(map[string]query, len(attemptOrder))
	pageSize := strconv.Itoa(f.pageSize)

	cca2 := strings.ToLower(strings.TrimSpace(c.CCA2))
	if _, ok := f.supported[cca2]; ok && cca2 != "" {
		queries[AttemptHeadlines] = query{path: provider.PathTopHeadlines, params: url.Values{
			"country":  {cca2},
			"pageSize": {pageSize},
		}}
	}

	from := f.now().Add(-f.window).UTC().Format(time.RFC3339)
	everything := func(q string, english bool) url.Values {
		v := url.Values{
			"q":        {q},
			"from":     {from},
			"sortBy":   {"publishedAt"},
			"searchIn": {"title,description"},
			"pageSize": {pageSize},
		}
		if english {
			v.Set("language", "en")
		}
		return v
	}

	common := strings.TrimSpace(c.Name.Common)
	capital := c.PrimaryCapital()
	if common != "" {
		queries[AttemptName] = query{path: provider.PathEverything, params: everything(quote(common), true)}
	}
	if capital != "" {
		queries[AttemptCapital] = query{path: provider.PathEverything, params: everything(quote(capital), true)}
	}

	var terms []string
	for _, t := range []string{common, capital} {
		if t != "" {
			terms = append(terms, quote(t))
		}
	}
	if len(terms) > 0 {
		queries[AttemptCombined] = query{path: provider.PathEverything, params: everything(strings.Join(terms, " OR "), false)}
	}
	return queries
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, "") + `"`
}

func failureMessage(err error) string {
	var apiErr *types.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

func statusOf(err error) int {
	var apiErr *types.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
