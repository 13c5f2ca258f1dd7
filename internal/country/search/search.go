package search

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/lk2023060901/world-explorer/internal/country/match"
	"github.com/lk2023060901/world-explorer/internal/country/provider"
	"github.com/lk2023060901/world-explorer/internal/country/types"
	"github.com/lk2023060901/world-explorer/internal/pkg/fallback"
	"github.com/lk2023060901/world-explorer/internal/pkg/logger"
	"go.uber.org/zap"
)

// Tier names, in the order Resolve tries them
const (
	TierCode         = "code"
	TierExactName    = "exact_name"
	TierPartialName  = "partial_name"
	TierCapital      = "capital"
	TierLocalCapital = "local_capital"
	TierLocalFuzzy   = "local_fuzzy"
)

const defaultSuggestion = match.DefaultLimit

// DefaultMinFuzzyScore is the lowest ranker score the local fuzzy tier
// still offers as a suggestion. Below it a query counts as unmatched.
const DefaultMinFuzzyScore = 0.4

// Searcher resolves free text to countries by trying progressively looser
// strategies. It owns the cached full collection used by the local tiers,
// so two Searchers never share state.
type Searcher struct {
	provider provider.Provider
	logger   *logger.Logger
	limit    int
	minScore float64

	mu  sync.Mutex
	all []*types.Country
}

// Option customizes a Searcher
type Option func(*Searcher)

// WithSuggestionLimit caps the local tiers' suggestion lists
func WithSuggestionLimit(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithMinFuzzyScore sets the local fuzzy tier's score floor. Zero keeps
// every ranked candidate.
func WithMinFuzzyScore(v float64) Option {
	return func(s *Searcher) {
		if v >= 0 && v <= 1 {
			s.minScore = v
		}
	}
}

// New creates a Searcher backed by p
func New(p provider.Provider, log *logger.Logger, opts ...Option) *Searcher {
	if log == nil {
		log = logger.L()
	}
	s := &Searcher{
		provider: p,
		logger:   log.Named("search"),
		limit:    defaultSuggestion,
		minScore: DefaultMinFuzzyScore,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve runs the search tiers in order and returns the first non-empty
// result. Tier failures are logged and skipped; only when every tier comes
// back empty does Resolve return types.ErrSearchFailed.
func (s *Searcher) Resolve(ctx context.Context, query string) (*types.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, types.ErrEmptyQuery
	}

	log := s.logger.WithContext(ctx).With(zap.String("query", query))

	var tiers []fallback.Tier[*types.SearchResult]
	if code := countryCode(query); code != "" {
		tiers = append(tiers, s.remote(TierCode, types.ResultExact, func(ctx context.Context) ([]*types.Country, error) {
			return s.provider.ByCode(ctx, code)
		}))
	}
	tiers = append(tiers,
		s.remote(TierExactName, types.ResultExact, func(ctx context.Context) ([]*types.Country, error) {
			return s.provider.ByName(ctx, query, true)
		}),
		s.remote(TierPartialName, types.ResultSuggestions, func(ctx context.Context) ([]*types.Country, error) {
			return s.provider.ByName(ctx, query, false)
		}),
		s.remote(TierCapital, types.ResultSuggestions, func(ctx context.Context) ([]*types.Country, error) {
			return s.provider.ByCapital(ctx, query)
		}),
		fallback.Tier[*types.SearchResult]{Name: TierLocalCapital, Run: func(ctx context.Context) (*types.SearchResult, error) {
			all, err := s.AllCountries(ctx)
			if err != nil {
				return nil, err
			}
			return types.NewSuggestions(TierLocalCapital, match.MatchCapitals(all, query, s.limit)), nil
		}},
		fallback.Tier[*types.SearchResult]{Name: TierLocalFuzzy, Run: func(ctx context.Context) (*types.SearchResult, error) {
			all, err := s.AllCountries(ctx)
			if err != nil {
				return nil, err
			}
			return types.NewSuggestions(TierLocalFuzzy, s.fuzzy(all, query)), nil
		}},
	)

	result, tier, found := fallback.First(ctx, tiers,
		func(r *types.SearchResult) bool { return len(r.Countries()) > 0 },
		func(o fallback.Outcome) {
			if o.Err != nil {
				log.Warn("search tier failed", zap.String("tier", o.Tier), zap.Error(o.Err))
				return
			}
			log.Debug("search tier finished", zap.String("tier", o.Tier))
		},
	)
	if !found {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		log.Info("no country matched")
		return nil, fmt.Errorf("%w: %q", types.ErrSearchFailed, query)
	}

	log.Debug("search resolved", zap.String("tier", tier), zap.String("kind", string(result.Kind)), zap.Int("count", len(result.Countries())))
	return result, nil
}

func (s *Searcher) remote(name string, kind types.ResultKind, call func(context.Context) ([]*types.Country, error)) fallback.Tier[*types.SearchResult] {
	return fallback.Tier[*types.SearchResult]{Name: name, Run: func(ctx context.Context) (*types.SearchResult, error) {
		countries, err := call(ctx)
		if err != nil {
			return nil, err
		}
		if kind == types.ResultExact {
			return types.NewExact(name, countries), nil
		}
		return types.NewSuggestions(name, countries), nil
	}}
}

func (s *Searcher) fuzzy(all []*types.Country, query string) []*types.Country {
	scored := match.RankScored(all, query, s.limit)
	out := make([]*types.Country, 0, len(scored))
	for _, sc := range scored {
		if sc.Score >= s.minScore {
			out = append(out, sc.Country)
		}
	}
	return out
}

// AllCountries returns the full collection, loading it on first use. Only
// a successful non-empty load is kept; a failed one is retried next time.
func (s *Searcher) AllCountries(ctx context.Context) ([]*types.Country, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.all != nil {
		return s.all, nil
	}

	all, err := s.provider.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) > 0 {
		s.all = all
		s.logger.Info("country collection cached", zap.Int("count", len(all)))
	}
	return all, nil
}

// Lookup fetches one country by alpha-2 or alpha-3 code. It backs neighbor
// navigation.
func (s *Searcher) Lookup(ctx context.Context, code string) (*types.Country, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, types.ErrEmptyQuery
	}

	countries, err := s.provider.ByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if len(countries) == 0 {
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, code)
	}
	return countries[0], nil
}

// Neighbors fetches the bordering countries of c. Failures yield an empty
// list so a country can always be shown without them.
func (s *Searcher) Neighbors(ctx context.Context, c *types.Country) []*types.Country {
	if c == nil || len(c.Borders) == 0 {
		return nil
	}

	neighbors, err := s.provider.ByCodes(ctx, c.Borders)
	if err != nil {
		s.logger.WithContext(ctx).Warn("neighbor lookup failed",
			zap.String("country", c.CacheKey()),
			zap.Strings("borders", c.Borders),
			zap.Error(err),
		)
		return nil
	}
	return neighbors
}

// countryCode returns the query's letters upper-cased when there are
// exactly two or three of them, else "". Codes are ASCII, so any other
// letter rules the query out.
func countryCode(query string) string {
	var b strings.Builder
	for _, r := range query {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case unicode.IsLetter(r):
			return ""
		}
	}
	if n := b.Len(); n == 2 || n == 3 {
		return b.String()
	}
	return ""
}
