package provider

import (
	"net/url"
	"strings"
	"time"

	"github.com/lk2023060901/world-explorer/internal/country/types"
)

// DefaultFields is the field set requested from the country API before
// retrying without a field restriction.
var DefaultFields = []string{
	"name", "cca2", "cca3", "altSpellings", "capital", "region", "subregion",
	"flags", "population", "languages", "currencies", "latlng", "area",
	"timezones", "borders", "idd", "capitalInfo", "maps", "tld", "continents",
}

// Config configures the REST Countries client
type Config struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Fields    []string      `mapstructure:"fields"`
	UserAgent string        `mapstructure:"user_agent"`
}

// DefaultConfig points at the public v3.1 API
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   "https://restcountries.com/v3.1",
		Timeout:   15 * time.Second,
		Fields:    append([]string(nil), DefaultFields...),
		UserAgent: "World-Explorer/1.0",
	}
}

// Validate checks the base URL
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return types.ErrInvalidBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return types.ErrInvalidBaseURL
	}
	return nil
}

func (c *Config) fieldParam() string {
	fields := make([]string, 0, len(c.Fields))
	for _, f := range c.Fields {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return strings.Join(fields, ",")
}
