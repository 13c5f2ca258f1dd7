package match

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lk2023060901/world-explorer/internal/country/types"
)

const (
	// DefaultLimit is the number of suggestions returned when no limit is given
	DefaultLimit = 5

	PrefixBonus    = 0.25
	SubstringBonus = 0.15
	Alpha2Bonus    = 0.4
	Alpha3Bonus    = 0.35

	// code bonuses only apply to queries this short
	codeQueryMaxLen = 3

	CapitalPrefixBonus    = 0.2
	CapitalSubstringBonus = 0.1
	// CapitalThreshold is exclusive: a capital must score above it to match
	CapitalThreshold = 0.5
)

// Score rates country c against a query that is already normalized.
func Score(c *types.Country, q string) float64 {
	if c == nil || q == "" {
		return 0
	}

	best := 0.0
	for _, key := range keys(c) {
		if s := Similarity(q, key); s > best {
			best = s
		}
	}

	common := Normalize(c.Name.Common)
	bonus := 0.0
	switch {
	case strings.HasPrefix(common, q):
		bonus += PrefixBonus
	case strings.Contains(common, q):
		bonus += SubstringBonus
	}

	if utf8.RuneCountInString(q) <= codeQueryMaxLen {
		switch q {
		case Normalize(c.CCA2):
			bonus += Alpha2Bonus
		case Normalize(c.CCA3):
			bonus += Alpha3Bonus
		}
	}

	return clamp(best + bonus)
}

// keys returns the normalized names c can be matched by, without empties.
func keys(c *types.Country) []string {
	raw := make([]string, 0, 2+len(c.AltSpellings))
	raw = append(raw, c.Name.Common, c.Name.Official)
	raw = append(raw, c.AltSpellings...)

	out := raw[:0]
	for _, k := range raw {
		if n := Normalize(k); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// RankScored scores every candidate against query, keeps the best record
// per display name and returns at most limit candidates, best first. Equal
// scores keep their input order. limit <= 0 means DefaultLimit.
func RankScored(candidates []*types.Country, query string, limit int) []types.ScoredCandidate {
	if limit <= 0 {
		limit = DefaultLimit
	}
	q := Normalize(query)
	if q == "" || len(candidates) == 0 {
		return nil
	}

	scored := make([]types.ScoredCandidate, 0, len(candidates))
	index := make(map[string]int, len(candidates))
	for _, c := range candidates {
		if c == nil {
			continue
		}
		sc := types.ScoredCandidate{DisplayName: c.DisplayName(), Country: c, Score: Score(c, q)}
		key := c.DedupeKey()
		if i, ok := index[key]; ok {
			if sc.Score > scored[i].Score {
				scored[i] = sc
			}
			continue
		}
		index[key] = len(scored)
		scored = append(scored, sc)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// Rank is RankScored without the scores.
func Rank(candidates []*types.Country, query string, limit int) []*types.Country {
	return countries(RankScored(candidates, query, limit))
}

// MatchCapitals scans every capital of every country and keeps the
// countries whose capital scores above CapitalThreshold, best first. A
// country with several capitals is listed once, under its best capital.
func MatchCapitals(all []*types.Country, query string, limit int) []*types.Country {
	if limit <= 0 {
		limit = DefaultLimit
	}
	q := Normalize(query)
	if q == "" {
		return nil
	}

	var scored []types.ScoredCandidate
	for _, c := range all {
		if c == nil {
			continue
		}
		best := 0.0
		for _, capital := range c.Capital {
			best = max(best, capitalScore(Normalize(capital), q))
		}
		if best > CapitalThreshold {
			scored = append(scored, types.ScoredCandidate{DisplayName: c.DisplayName(), Country: c, Score: best})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return countries(scored)
}

func capitalScore(capital, q string) float64 {
	s := Similarity(q, capital)
	switch {
	case strings.HasPrefix(capital, q):
		s += CapitalPrefixBonus
	case strings.Contains(capital, q):
		s += CapitalSubstringBonus
	}
	return clamp(s)
}

func countries(scored []types.ScoredCandidate) []*types.Country {
	if len(scored) == 0 {
		return nil
	}
	out := make([]*types.Country, len(scored))
	for i, sc := range scored {
		out[i] = sc.Country
	}
	return out
}
