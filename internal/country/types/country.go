package types

import (
	"encoding/json"
	"strings"
)

// Name holds the common and official names of a country
type Name struct {
	Common   string `json:"common,omitempty"`
	Official string `json:"official,omitempty"`
}

// UnmarshalJSON accepts either the v3.1 object form or a bare string.
func (n *Name) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		n.Common = s
		return nil
	}
	type plain Name
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*n = Name(p)
	return nil
}

// Currency describes one currency used by a country
type Currency struct {
	Name   string `json:"name,omitempty"`
	Symbol string `json:"symbol,omitempty"`
}

// IDD is the international dialing prefix split into root and suffixes
type IDD struct {
	Root     string   `json:"root,omitempty"`
	Suffixes []string `json:"suffixes,omitempty"`
}

type Flags struct {
	PNG string `json:"png,omitempty"`
	SVG string `json:"svg,omitempty"`
	Alt string `json:"alt,omitempty"`
}

type Maps struct {
	GoogleMaps     string `json:"googleMaps,omitempty"`
	OpenStreetMaps string `json:"openStreetMaps,omitempty"`
}

type CapitalInfo struct {
	LatLng []float64 `json:"latlng,omitempty"`
}

// StringList decodes a JSON string or array of strings. The country API is
// not consistent about the shape of capital.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*l = nil
		} else {
			*l = StringList{s}
		}
		return nil
	}
	var arr []string
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	*l = arr
	return nil
}

// Country is a read-only record returned by the country API. Any field may be absent.
type Country struct {
	Name         Name                `json:"name"`
	AltSpellings []string            `json:"altSpellings,omitempty"`
	CCA2         string              `json:"cca2,omitempty"`
	CCA3         string              `json:"cca3,omitempty"`
	Capital      StringList          `json:"capital,omitempty"`
	Region       string              `json:"region,omitempty"`
	Subregion    string              `json:"subregion,omitempty"`
	Population   int64               `json:"population,omitempty"`
	Area         float64             `json:"area,omitempty"`
	Languages    map[string]string   `json:"languages,omitempty"`
	Currencies   map[string]Currency `json:"currencies,omitempty"`
	LatLng       []float64           `json:"latlng,omitempty"`
	CapitalInfo  CapitalInfo         `json:"capitalInfo"`
	Borders      []string            `json:"borders,omitempty"`
	Timezones    []string            `json:"timezones,omitempty"`
	IDD          IDD                 `json:"idd"`
	Flags        Flags               `json:"flags"`
	Maps         Maps                `json:"maps"`
	TLD          []string            `json:"tld,omitempty"`
	Continents   []string            `json:"continents,omitempty"`
}

// UnknownName is displayed for records carrying neither a name nor a code
const UnknownName = "Unknown"

// DisplayName returns the common name, else the official name, else the
// alpha-3 code, else "Unknown".
func (c *Country) DisplayName() string {
	switch {
	case c == nil:
		return UnknownName
	case c.Name.Common != "":
		return c.Name.Common
	case c.Name.Official != "":
		return c.Name.Official
	case c.CCA3 != "":
		return c.CCA3
	default:
		return UnknownName
	}
}

// DedupeKey is the lower-cased display name used to collapse duplicates.
func (c *Country) DedupeKey() string {
	return strings.ToLower(c.DisplayName())
}

// PrimaryCapital returns the first capital, or "" when there is none.
func (c *Country) PrimaryCapital() string {
	if c == nil {
		return ""
	}
	for _, name := range c.Capital {
		if s := strings.TrimSpace(name); s != "" {
			return s
		}
	}
	return ""
}

// Coordinates prefers the capital's coordinates and falls back to the
// country centroid. ok is false when neither is usable.
func (c *Country) Coordinates() (lat, lng float64, ok bool) {
	if c == nil {
		return 0, 0, false
	}
	if len(c.CapitalInfo.LatLng) >= 2 {
		return c.CapitalInfo.LatLng[0], c.CapitalInfo.LatLng[1], true
	}
	if len(c.LatLng) >= 2 {
		return c.LatLng[0], c.LatLng[1], true
	}
	return 0, 0, false
}

// CacheKey identifies the country in per-country caches: alpha-3, else
// alpha-2, else the common name.
func (c *Country) CacheKey() string {
	if c == nil {
		return ""
	}
	switch {
	case c.CCA3 != "":
		return c.CCA3
	case c.CCA2 != "":
		return c.CCA2
	default:
		return c.Name.Common
	}
}

// CallingCodes joins the dialing root with each suffix.
func (c *Country) CallingCodes() []string {
	if c == nil || (c.IDD.Root == "" && len(c.IDD.Suffixes) == 0) {
		return nil
	}
	if len(c.IDD.Suffixes) == 0 {
		return []string{c.IDD.Root}
	}
	codes := make([]string, 0, len(c.IDD.Suffixes))
	for _, s := range c.IDD.Suffixes {
		codes = append(codes, c.IDD.Root+s)
	}
	return codes
}
