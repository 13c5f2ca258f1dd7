package match

import (
	"testing"

	"github.com/lk2023060901/world-explorer/internal/country/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func country(common, official, cca2, cca3 string, alts ...string) *types.Country {
	return &types.Country{
		Name:         types.Name{Common: common, Official: official},
		CCA2:         cca2,
		CCA3:         cca3,
		AltSpellings: alts,
	}
}

func fixtures() []*types.Country {
	return []*types.Country{
		country("Germany", "Federal Republic of Germany", "DE", "DEU", "DE", "Deutschland"),
		country("France", "French Republic", "FR", "FRA", "FR", "République française"),
		country("Spain", "Kingdom of Spain", "ES", "ESP", "ES", "España"),
		country("Finland", "Republic of Finland", "FI", "FIN", "FI", "Suomi"),
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"  France ", "france"},
		{"Côte d’Ivoire", "cote d’ivoire"},
		{"São Tomé and Príncipe", "sao tome and principe"},
		{"ÅLAND", "aland"},
		{"Curaçao", "curacao"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}

	assert.Contains(t, Normalize("Côte d’Ivoire"), "cote")
}

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abcd", 4},
		{"france", "france", 0},
		{"frnce", "france", 1},
		{"kitten", "sitting", 3},
		{"españa", "espana", 1},
		{"côte", "cote", 1},
		{"fr", "france", 4},
		{"France", "france", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Distance(tt.a, tt.b))
		})
	}
}

func TestDistance_Properties(t *testing.T) {
	words := []string{"", "a", "fr", "france", "frnce", "germany", "côte", "iceland", "ireland"}
	for _, a := range words {
		assert.Equal(t, 0, Distance(a, a), a)
		for _, b := range words {
			d := Distance(a, b)
			assert.Equal(t, d, Distance(b, a), "%q/%q", a, b)
			assert.LessOrEqual(t, d, len([]rune(a))+len([]rune(b)), "%q/%q", a, b)
		}
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 1.0, Similarity("france", "france"))
	assert.InDelta(t, 5.0/6.0, Similarity("frnce", "france"), 1e-9)
	assert.Equal(t, 0.0, Similarity("abc", "xyz"))
}

func TestScore(t *testing.T) {
	france := country("France", "French Republic", "FR", "FRA")

	t.Run("typo without bonuses", func(t *testing.T) {
		assert.InDelta(t, 5.0/6.0, Score(france, Normalize("frnce")), 1e-9)
	})

	t.Run("alpha-2 code bonus", func(t *testing.T) {
		s := Score(france, "fr")
		assert.GreaterOrEqual(t, s, Alpha2Bonus)
		// similarity 1/3 + prefix 0.25 + code 0.4
		assert.InDelta(t, 1.0/3.0+PrefixBonus+Alpha2Bonus, s, 1e-9)
	})

	t.Run("alpha-3 code bonus", func(t *testing.T) {
		// "fra" vs "france": distance 3, similarity 0.5, plus prefix and code bonus
		assert.InDelta(t, 1.0, Score(france, "fra"), 1e-9)
		other := country("Zzzzz", "", "ZZ", "FRA")
		assert.InDelta(t, Alpha3Bonus, Score(other, "fra"), 1e-9)
	})

	t.Run("substring bonus only without prefix", func(t *testing.T) {
		guinea := country("Equatorial Guinea", "", "GQ", "GNQ")
		want := Similarity("guinea", "equatorial guinea") + SubstringBonus
		assert.InDelta(t, want, Score(guinea, "guinea"), 1e-9)
	})

	t.Run("clamped to one", func(t *testing.T) {
		assert.Equal(t, 1.0, Score(france, "france"))
	})

	t.Run("empty query or record", func(t *testing.T) {
		assert.Equal(t, 0.0, Score(france, ""))
		assert.Equal(t, 0.0, Score(nil, "fr"))
	})
}

func TestRank_Typo(t *testing.T) {
	scored := RankScored(fixtures(), "frnce", 0)
	require.NotEmpty(t, scored)
	assert.Equal(t, "France", scored[0].DisplayName)
	assert.Greater(t, scored[0].Score, 0.5)
}

func TestRank_Diacritics(t *testing.T) {
	got := Rank(fixtures(), "espana", 1)
	require.Len(t, got, 1)
	assert.Equal(t, "ESP", got[0].CCA3)
}

func TestRank_Invariants(t *testing.T) {
	list := append(fixtures(),
		country("france", "", "FR", "FRA"),
		country("", "Official Only", "", "OOO"),
		country("", "", "", "ZZZ"),
		country("", "", "", ""),
		nil,
	)

	for _, q := range []string{"f", "fr", "frnce", "land", "republic", "zzz", "xx-not-a-country"} {
		for _, limit := range []int{0, 1, 3, 10} {
			scored := RankScored(list, q, limit)
			want := limit
			if want <= 0 {
				want = DefaultLimit
			}
			assert.LessOrEqual(t, len(scored), want)

			seen := map[string]bool{}
			for i, sc := range scored {
				assert.GreaterOrEqual(t, sc.Score, 0.0)
				assert.LessOrEqual(t, sc.Score, 1.0)
				if i > 0 {
					assert.GreaterOrEqual(t, scored[i-1].Score, sc.Score)
				}
				key := Normalize(sc.DisplayName)
				assert.False(t, seen[key], "duplicate %q for %q", sc.DisplayName, q)
				seen[key] = true
			}
		}
	}
}

func TestRank_DedupeKeepsHigherScore(t *testing.T) {
	weak := country("France", "", "", "")
	strong := country("FRANCE", "", "FR", "FRA")

	scored := RankScored([]*types.Country{weak, strong}, "fr", 5)
	require.Len(t, scored, 1)
	assert.Same(t, strong, scored[0].Country)
}

func TestRank_StableTies(t *testing.T) {
	a := country("Alpha", "", "", "")
	b := country("Bravo", "", "", "")
	c := country("Charlie", "", "", "")

	// no key shares a character with the query, so all score 0
	got := Rank([]*types.Country{c, a, b}, "zzzz", 5)
	require.Len(t, got, 3)
	assert.Equal(t, []*types.Country{c, a, b}, got)
}

func TestRank_DisplayNameFallbacks(t *testing.T) {
	scored := RankScored([]*types.Country{
		country("", "Official Only", "", "OOO"),
		country("", "", "", "ZZZ"),
		country("", "", "", ""),
	}, "o", 5)

	names := make([]string, 0, len(scored))
	for _, sc := range scored {
		names = append(names, sc.DisplayName)
	}
	assert.ElementsMatch(t, []string{"Official Only", "ZZZ", types.UnknownName}, names)
}

func TestRank_Deterministic(t *testing.T) {
	first := Rank(fixtures(), "land", 5)
	second := Rank(fixtures(), "land", 5)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].CCA3, second[i].CCA3)
	}
}

func TestRank_EmptyInput(t *testing.T) {
	assert.Empty(t, Rank(nil, "france", 5))
	assert.Empty(t, Rank(fixtures(), "   ", 5))
}

func TestMatchCapitals(t *testing.T) {
	all := []*types.Country{
		{Name: types.Name{Common: "France"}, CCA3: "FRA", Capital: types.StringList{"Paris"}},
		{Name: types.Name{Common: "Germany"}, CCA3: "DEU", Capital: types.StringList{"Berlin"}},
		{Name: types.Name{Common: "South Africa"}, CCA3: "ZAF", Capital: types.StringList{"Pretoria", "Bloemfontein", "Cape Town"}},
		{Name: types.Name{Common: "Antarctica"}, CCA3: "ATA"},
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "exact capital", query: "Paris", want: []string{"FRA"}},
		{name: "typo", query: "berln", want: []string{"DEU"}},
		{name: "prefix of one of several capitals", query: "preto", want: []string{"ZAF"}},
		{name: "nothing above threshold", query: "tokyo"},
		{name: "empty query", query: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchCapitals(all, tt.query, 5)
			codes := make([]string, 0, len(got))
			for _, c := range got {
				codes = append(codes, c.CCA3)
			}
			if len(tt.want) == 0 {
				assert.Empty(t, codes)
				return
			}
			assert.Equal(t, tt.want, codes)
		})
	}
}
