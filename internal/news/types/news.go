package types

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrRateLimited     = errors.New("news API rate limited")
	ErrInvalidResponse = errors.New("invalid response from news API")
	ErrMissingProxy    = errors.New("missing news proxy base URL")
	ErrInvalidPath     = errors.New("invalid news API path")
	ErrMissingAPIKey   = errors.New("missing news API key")
)

// Source is the outlet an article came from
type Source struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Article is one news item
type Article struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Source      *Source    `json:"source,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	ImageURL    string     `json:"urlToImage,omitempty"`
}

// Failure explains why no articles could be fetched
type Failure struct {
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
}

// RateLimited reports whether the news API refused because of its quota
func (f *Failure) RateLimited() bool {
	return f != nil && f.StatusCode == http.StatusTooManyRequests
}

// Result is either a (possibly empty) article list or a Failure
type Result struct {
	Articles []Article `json:"articles"`
	Failure  *Failure  `json:"failure,omitempty"`
	// Query describes the attempt that produced the articles
	Query string `json:"query,omitempty"`
}

// Failed reports whether the result is a Failure
func (r *Result) Failed() bool {
	return r != nil && r.Failure != nil
}

// Empty reports a successful lookup that found nothing
func (r *Result) Empty() bool {
	return r != nil && r.Failure == nil && len(r.Articles) == 0
}

// APIError is a non-2xx or status:"error" answer from the news API
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[newsapi] %d %s: %s (%v)", e.StatusCode, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[newsapi] %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err is a 429 from the news API
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}
