package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lk2023060901/world-explorer/internal/country/types"
	"github.com/lk2023060901/world-explorer/internal/pkg/fallback"
	"github.com/lk2023060901/world-explorer/internal/pkg/logger"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const collaborator = "restcountries"

// Provider is the read-only country data collaborator. A 404 from the
// remote API is reported as an empty list with a nil error.
type Provider interface {
	// ByCode looks a country up by its alpha-2 or alpha-3 code
	ByCode(ctx context.Context, code string) ([]*types.Country, error)

	// ByName searches names; fullText requires an exact match
	ByName(ctx context.Context, name string, fullText bool) ([]*types.Country, error)

	// ByCapital searches capital names
	ByCapital(ctx context.Context, capital string) ([]*types.Country, error)

	// ByCodes fetches several countries by alpha-3 code in one request
	ByCodes(ctx context.Context, codes []string) ([]*types.Country, error)

	// All returns the whole collection
	All(ctx context.Context) ([]*types.Country, error)
}

// RestCountries talks to the REST Countries v3.1 API
type RestCountries struct {
	config     *Config
	httpClient *http.Client
	logger     *logger.Logger
}

// NewRestCountries builds a client. A nil cfg means DefaultConfig.
func NewRestCountries(cfg *Config, log *logger.Logger) (*RestCountries, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.L()
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &RestCountries{
		config: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: log.Named("restcountries"),
	}, nil
}

func (r *RestCountries) ByCode(ctx context.Context, code string) ([]*types.Country, error) {
	return r.get(ctx, "/alpha/"+url.PathEscape(strings.TrimSpace(code)), nil)
}

func (r *RestCountries) ByName(ctx context.Context, name string, fullText bool) ([]*types.Country, error) {
	var q url.Values
	if fullText {
		q = url.Values{"fullText": {"true"}}
	}
	return r.get(ctx, "/name/"+url.PathEscape(strings.TrimSpace(name)), q)
}

func (r *RestCountries) ByCapital(ctx context.Context, capital string) ([]*types.Country, error) {
	return r.get(ctx, "/capital/"+url.PathEscape(strings.TrimSpace(capital)), nil)
}

func (r *RestCountries) ByCodes(ctx context.Context, codes []string) ([]*types.Country, error) {
	clean := make([]string, 0, len(codes))
	for _, c := range codes {
		if c = strings.TrimSpace(c); c != "" {
			clean = append(clean, c)
		}
	}
	if len(clean) == 0 {
		return nil, nil
	}
	return r.get(ctx, "/alpha", url.Values{"codes": {strings.Join(clean, ",")}})
}

func (r *RestCountries) All(ctx context.Context) ([]*types.Country, error) {
	return r.get(ctx, "/all", nil)
}

// get requests path with the configured field restriction first and, if
// that attempt fails for any reason, once more without it.
func (r *RestCountries) get(ctx context.Context, path string, query url.Values) ([]*types.Country, error) {
	fields := r.config.fieldParam()
	withoutFields := func(ctx context.Context) ([]*types.Country, error) {
		return r.fetch(ctx, path, query)
	}
	if fields == "" {
		return withoutFields(ctx)
	}

	withFields := func(ctx context.Context) ([]*types.Country, error) {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("fields", fields)
		return r.fetch(ctx, path, q)
	}

	countries, err := fallback.OrElse(ctx, withFields, withoutFields)
	if err != nil {
		return nil, err
	}
	return countries, nil
}

func (r *RestCountries) fetch(ctx context.Context, path string, query url.Values) ([]*types.Country, error) {
	endpoint := strings.TrimRight(r.config.BaseURL, "/") + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.config.UserAgent != "" {
		req.Header.Set("User-Agent", r.config.UserAgent)
	}

	start := time.Now()
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, &types.CollaboratorError{
			Collaborator: collaborator,
			Code:         "REQUEST_FAILED",
			Message:      "Failed to execute request",
			Err:          err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.CollaboratorError{
			Collaborator: collaborator,
			Code:         "READ_FAILED",
			Message:      "Failed to read response body",
			Status:       resp.StatusCode,
			Err:          err,
		}
	}

	r.logger.Debug("country api call",
		zap.String("url", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode == http.StatusNotFound {
		return []*types.Country{}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &types.CollaboratorError{
			Collaborator: collaborator,
			Code:         fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:      truncate(string(body), 200),
			Status:       resp.StatusCode,
		}
	}

	return decodeCountries(body)
}

// decodeCountries accepts a JSON array of countries or a single country
// object. An object carrying an error status instead of a name is treated
// like the matching HTTP status.
func decodeCountries(body []byte) ([]*types.Country, error) {
	if !gjson.ValidBytes(body) {
		return nil, &types.CollaboratorError{
			Collaborator: collaborator,
			Code:         "MALFORMED_JSON",
			Message:      "Response is not valid JSON",
			Err:          types.ErrInvalidResponse,
		}
	}

	root := gjson.ParseBytes(body)
	switch {
	case root.IsArray():
		var countries []*types.Country
		if err := json.Unmarshal(body, &countries); err != nil {
			return nil, decodeError(err)
		}
		return compact(countries), nil

	case root.IsObject():
		if status := root.Get("status"); status.Exists() && !root.Get("name").Exists() {
			if status.Int() == http.StatusNotFound {
				return []*types.Country{}, nil
			}
			return nil, &types.CollaboratorError{
				Collaborator: collaborator,
				Code:         fmt.Sprintf("HTTP_%d", status.Int()),
				Message:      root.Get("message").String(),
				Status:       int(status.Int()),
			}
		}
		var c types.Country
		if err := json.Unmarshal(body, &c); err != nil {
			return nil, decodeError(err)
		}
		return []*types.Country{&c}, nil

	default:
		return nil, &types.CollaboratorError{
			Collaborator: collaborator,
			Code:         "UNEXPECTED_SHAPE",
			Message:      "Expected a country list or object",
			Err:          types.ErrInvalidResponse,
		}
	}
}

func decodeError(err error) error {
	return &types.CollaboratorError{
		Collaborator: collaborator,
		Code:         "DECODE_FAILED",
		Message:      "Failed to decode countries",
		Err:          err,
	}
}

func compact(countries []*types.Country) []*types.Country {
	out := countries[:0]
	for _, c := range countries {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
