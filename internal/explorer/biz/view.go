package biz

import (
	"sort"
	"strings"

	"github.com/lk2023060901/world-explorer/internal/country/geo"
	ctypes "github.com/lk2023060901/world-explorer/internal/country/types"
	ntypes "github.com/lk2023060901/world-explorer/internal/news/types"
	"github.com/lk2023060901/world-explorer/internal/summary"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Presentation messages
const (
	MsgSuggestions  = "No exact match. Try a suggestion."
	MsgNoArticles   = "No articles found."
	MsgRateLimited  = "Rate limit hit. Try again shortly."
	MsgNewsFailed   = "Could not load news."
	MsgSearchFailed = "No matching country found."
)

const missing = "—"

var printer = message.NewPrinter(language.English)

// Facts are the display-ready attributes of a country
type Facts struct {
	Name         string   `json:"name"`
	OfficialName string   `json:"official_name,omitempty"`
	ISO          string   `json:"iso"`
	Capital      string   `json:"capital"`
	Region       string   `json:"region"`
	Subregion    string   `json:"subregion,omitempty"`
	Population   string   `json:"population"`
	Area         string   `json:"area"`
	Languages    string   `json:"languages"`
	Currencies   string   `json:"currencies"`
	CallingCodes string   `json:"calling_codes"`
	TLDs         string   `json:"tlds"`
	Timezones    []string `json:"timezones,omitempty"`
	Continents   []string `json:"continents,omitempty"`
	FlagURL      string   `json:"flag_url,omitempty"`
	FlagAlt      string   `json:"flag_alt,omitempty"`
	MapURL       string   `json:"map_url,omitempty"`
}

// Neighbor is a bordering country the user can navigate to
type Neighbor struct {
	Name    string `json:"name"`
	CCA3    string `json:"cca3"`
	FlagURL string `json:"flag_url,omitempty"`
}

// NewsView is a news result plus the message to show with it
type NewsView struct {
	Articles    []ntypes.Article `json:"articles"`
	Message     string           `json:"message,omitempty"`
	RateLimited bool             `json:"rate_limited,omitempty"`
	Query       string           `json:"query,omitempty"`
}

// CountryView is everything shown for a selected country
type CountryView struct {
	Facts     Facts               `json:"facts"`
	LocalTime string              `json:"local_time,omitempty"`
	Neighbors []Neighbor          `json:"neighbors"`
	Nearby    []geo.NearbyCapital `json:"nearby_capitals"`
	News      *NewsView           `json:"news,omitempty"`
	Summary   *summary.Summary    `json:"summary,omitempty"`
	Country   *ctypes.Country     `json:"country"`
}

// Suggestion is one "did you mean" entry
type Suggestion struct {
	Name    string  `json:"name"`
	CCA3    string  `json:"cca3,omitempty"`
	Capital string  `json:"capital,omitempty"`
	FlagURL string  `json:"flag_url,omitempty"`
	Score   float64 `json:"score"`
}

// SearchView is the reply to a search: a country or suggestions
type SearchView struct {
	Kind        ctypes.ResultKind `json:"kind"`
	Tier        string            `json:"tier,omitempty"`
	Message     string            `json:"message,omitempty"`
	Country     *CountryView      `json:"country,omitempty"`
	Suggestions []Suggestion      `json:"suggestions,omitempty"`
}

// BuildFacts formats c for display. Missing values read "—".
func BuildFacts(c *ctypes.Country) Facts {
	f := Facts{
		Name:         c.DisplayName(),
		OfficialName: c.Name.Official,
		ISO:          orMissing(joinNonEmpty(" / ", c.CCA2, c.CCA3)),
		Capital:      orMissing(strings.Join(c.Capital, ", ")),
		Region:       orMissing(c.Region),
		Subregion:    c.Subregion,
		Population:   missing,
		Area:         missing,
		Languages:    orMissing(languages(c.Languages)),
		Currencies:   orMissing(currencies(c.Currencies)),
		CallingCodes: orMissing(strings.Join(c.CallingCodes(), ", ")),
		TLDs:         orMissing(strings.Join(c.TLD, ", ")),
		Timezones:    c.Timezones,
		Continents:   c.Continents,
		FlagURL:      flagURL(c),
		FlagAlt:      c.Flags.Alt,
		MapURL:       c.Maps.GoogleMaps,
	}
	if f.MapURL == "" {
		f.MapURL = c.Maps.OpenStreetMaps
	}
	if c.Population > 0 {
		f.Population = printer.Sprintf("%d", c.Population)
	}
	if c.Area > 0 {
		f.Area = printer.Sprintf("%v km²", number.Decimal(c.Area, number.MaxFractionDigits(2)))
	}
	return f
}

// BuildNews turns a news result into what presentation shows
func BuildNews(res *ntypes.Result) *NewsView {
	v := &NewsView{Articles: []ntypes.Article{}}
	switch {
	case res == nil:
		v.Message = MsgNoArticles
	case res.Failed():
		v.RateLimited = res.Failure.RateLimited()
		v.Message = MsgNewsFailed
		if v.RateLimited {
			v.Message = MsgRateLimited
		}
	case len(res.Articles) == 0:
		v.Message = MsgNoArticles
	default:
		v.Articles = res.Articles
		v.Query = res.Query
	}
	return v
}

func buildNeighbors(cs []*ctypes.Country) []Neighbor {
	out := make([]Neighbor, 0, len(cs))
	for _, c := range cs {
		if c == nil {
			continue
		}
		out = append(out, Neighbor{Name: c.DisplayName(), CCA3: c.CCA3, FlagURL: flagURL(c)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func languages(m map[string]string) string {
	names := make([]string, 0, len(m))
	for _, code := range sortedKeys(m) {
		if name := m[code]; name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

func currencies(m map[string]ctypes.Currency) string {
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		cur := m[code]
		name := cur.Name
		if name == "" {
			name = code
		}
		parts = append(parts, name+" ("+cur.Symbol+")")
	}
	return strings.Join(parts, ", ")
}

func flagURL(c *ctypes.Country) string {
	if c.Flags.SVG != "" {
		return c.Flags.SVG
	}
	return c.Flags.PNG
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func orMissing(s string) string {
	if s == "" {
		return missing
	}
	return s
}
