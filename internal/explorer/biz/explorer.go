package biz

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/lk2023060901/world-explorer/internal/country/geo"
	"github.com/lk2023060901/world-explorer/internal/country/match"
	ctypes "github.com/lk2023060901/world-explorer/internal/country/types"
	ntypes "github.com/lk2023060901/world-explorer/internal/news/types"
	"github.com/lk2023060901/world-explorer/internal/pkg/logger"
	"github.com/lk2023060901/world-explorer/internal/summary"
	"go.uber.org/zap"
)

// CountrySearcher resolves queries and codes to countries
type CountrySearcher interface {
	Resolve(ctx context.Context, query string) (*ctypes.SearchResult, error)
	Lookup(ctx context.Context, code string) (*ctypes.Country, error)
	Neighbors(ctx context.Context, c *ctypes.Country) []*ctypes.Country
}

// NewsFetcher returns news about a country. It never fails outright.
type NewsFetcher interface {
	FetchNews(ctx context.Context, c *ctypes.Country) *ntypes.Result
}

// SummaryLookup returns an encyclopedia summary, empty when unavailable
type SummaryLookup interface {
	Lookup(ctx context.Context, title string) *summary.Summary
}

// ExplorerUseCase composes search, news and the supporting lookups into
// the views presentation renders.
type ExplorerUseCase struct {
	searcher CountrySearcher
	news     NewsFetcher
	summary  SummaryLookup
	logger   *logger.Logger
	now      func() time.Time

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewExplorerUseCase creates an ExplorerUseCase. summary may be nil.
func NewExplorerUseCase(searcher CountrySearcher, news NewsFetcher, sum SummaryLookup, log *logger.Logger) *ExplorerUseCase {
	if log == nil {
		log = logger.L()
	}
	return &ExplorerUseCase{
		searcher: searcher,
		news:     news,
		summary:  sum,
		logger:   log.Named("explorer"),
		now:      time.Now,
		inflight: make(map[string]struct{}),
	}
}

// Search resolves query for session. A second search from the same
// session while one is running is rejected with ctypes.ErrSearchBusy.
func (uc *ExplorerUseCase) Search(ctx context.Context, session, query string) (*SearchView, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ctypes.ErrEmptyQuery
	}

	release, ok := uc.acquire(session)
	if !ok {
		uc.logger.WithContext(ctx).Info("search rejected, session busy", zap.String("session", session))
		return nil, ctypes.ErrSearchBusy
	}
	defer release()

	result, err := uc.searcher.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}

	if result.IsExact() {
		return &SearchView{
			Kind:    ctypes.ResultExact,
			Tier:    result.Tier,
			Country: uc.View(ctx, result.Exact[0]),
		}, nil
	}

	q := match.Normalize(query)
	suggestions := make([]Suggestion, 0, len(result.Suggestions))
	for _, c := range result.Suggestions {
		suggestions = append(suggestions, Suggestion{
			Name:    c.DisplayName(),
			CCA3:    c.CCA3,
			Capital: c.PrimaryCapital(),
			FlagURL: flagURL(c),
			Score:   match.Score(c, q),
		})
	}
	return &SearchView{
		Kind:        ctypes.ResultSuggestions,
		Tier:        result.Tier,
		Message:     MsgSuggestions,
		Suggestions: suggestions,
	}, nil
}

// Country builds the view for a country code, as used by neighbor navigation
func (uc *ExplorerUseCase) Country(ctx context.Context, code string) (*CountryView, error) {
	c, err := uc.searcher.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	return uc.View(ctx, c), nil
}

// News returns the news view for a country code
func (uc *ExplorerUseCase) News(ctx context.Context, code string) (*NewsView, error) {
	c, err := uc.searcher.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	return BuildNews(uc.news.FetchNews(ctx, c)), nil
}

// Neighbors returns the bordering countries of a country code
func (uc *ExplorerUseCase) Neighbors(ctx context.Context, code string) ([]Neighbor, error) {
	c, err := uc.searcher.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	return buildNeighbors(uc.searcher.Neighbors(ctx, c)), nil
}

// View assembles facts, neighbors, nearby capitals, local time, news and
// summary for c. Each part is best-effort.
func (uc *ExplorerUseCase) View(ctx context.Context, c *ctypes.Country) *CountryView {
	neighbors := uc.searcher.Neighbors(ctx, c)

	v := &CountryView{
		Facts:     BuildFacts(c),
		LocalTime: geo.LocalTime(c, uc.now()),
		Neighbors: buildNeighbors(neighbors),
		Nearby:    geo.NearbyCapitals(c, neighbors, geo.DefaultNearbyLimit),
		Country:   c,
	}
	if v.Nearby == nil {
		v.Nearby = []geo.NearbyCapital{}
	}
	if uc.news != nil {
		v.News = BuildNews(uc.news.FetchNews(ctx, c))
	}
	if uc.summary != nil {
		if s := uc.summary.Lookup(ctx, c.Name.Common); !s.Empty() {
			v.Summary = s
		}
	}
	return v
}

func (uc *ExplorerUseCase) acquire(session string) (func(), bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if _, busy := uc.inflight[session]; busy {
		return nil, false
	}
	uc.inflight[session] = struct{}{}
	return func() {
		uc.mu.Lock()
		delete(uc.inflight, session)
		uc.mu.Unlock()
	}, true
}
