package types

// ResultKind tells presentation how to show a search outcome
type ResultKind string

const (
	ResultExact       ResultKind = "exact"
	ResultSuggestions ResultKind = "suggestions"
)

// SearchResult is produced by the search orchestrator. Only the slice
// matching Kind is populated.
type SearchResult struct {
	Kind        ResultKind `json:"kind"`
	Exact       []*Country `json:"exact,omitempty"`
	Suggestions []*Country `json:"suggestions,omitempty"`
	// Tier names the strategy that produced the data
	Tier string `json:"tier,omitempty"`
}

// NewExact builds an exact result. countries must not be empty.
func NewExact(tier string, countries []*Country) *SearchResult {
	return &SearchResult{Kind: ResultExact, Exact: countries, Tier: tier}
}

// NewSuggestions builds a "did you mean" result
func NewSuggestions(tier string, countries []*Country) *SearchResult {
	return &SearchResult{Kind: ResultSuggestions, Suggestions: countries, Tier: tier}
}

// Countries returns whichever list the result holds
func (r *SearchResult) Countries() []*Country {
	if r == nil {
		return nil
	}
	if r.Kind == ResultExact {
		return r.Exact
	}
	return r.Suggestions
}

// IsExact reports whether the result is an unambiguous match
func (r *SearchResult) IsExact() bool {
	return r != nil && r.Kind == ResultExact && len(r.Exact) > 0
}

// ScoredCandidate is a ranking intermediate. It is never persisted.
type ScoredCandidate struct {
	DisplayName string   `json:"name"`
	Country     *Country `json:"-"`
	Score       float64  `json:"score"`
}
