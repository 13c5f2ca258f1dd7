package errors

import (
	"fmt"
	"net/http"
)

// Code ties a business code to its HTTP status and default message
type Code struct {
	Code    int
	Status  int
	Message string
}

const (
	Success = 0

	// Common (1000-1999)
	ErrInternalServer  = 1000
	ErrInvalidParams   = 1001
	ErrNotFound        = 1002
	ErrConflict        = 1005
	ErrTooManyRequests = 1006
	ErrServiceUnavail  = 1008

	// Country search (2000-2999)
	ErrEmptyQuery          = 2000
	ErrSearchFailed        = 2001
	ErrSearchBusy          = 2002
	ErrCountryNotFound     = 2003
	ErrCountryLookupFailed = 2004
	ErrCollaboratorUnavail = 2005

	// News (3000-3999)
	ErrNewsRateLimited  = 3000
	ErrNewsUnavailable  = 3001
	ErrProxyInvalidPath = 3002
	ErrProxyUpstream    = 3003
)

var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	ErrInternalServer:  {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:   {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:        {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrConflict:        {ErrConflict, http.StatusConflict, "Resource conflict"},
	ErrTooManyRequests: {ErrTooManyRequests, http.StatusTooManyRequests, "Too many requests"},
	ErrServiceUnavail:  {ErrServiceUnavail, http.StatusServiceUnavailable, "Service unavailable"},

	ErrEmptyQuery:          {ErrEmptyQuery, http.StatusBadRequest, "Please type a country name."},
	ErrSearchFailed:        {ErrSearchFailed, http.StatusNotFound, "No matching country found."},
	ErrSearchBusy:          {ErrSearchBusy, http.StatusConflict, "A search is already in progress."},
	ErrCountryNotFound:     {ErrCountryNotFound, http.StatusNotFound, "Country not found"},
	ErrCountryLookupFailed: {ErrCountryLookupFailed, http.StatusBadGateway, "Country lookup failed. Try again."},
	ErrCollaboratorUnavail: {ErrCollaboratorUnavail, http.StatusBadGateway, "Upstream service unavailable"},

	ErrNewsRateLimited:  {ErrNewsRateLimited, http.StatusTooManyRequests, "Rate limit hit. Try again shortly."},
	ErrNewsUnavailable:  {ErrNewsUnavailable, http.StatusBadGateway, "News unavailable"},
	ErrProxyInvalidPath: {ErrProxyInvalidPath, http.StatusBadRequest, "Invalid path"},
	ErrProxyUpstream:    {ErrProxyUpstream, http.StatusInternalServerError, "Proxy error"},
}

// GetCode returns the Code registered for code, or the internal error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

func GetMessage(code int) string {
	return GetCode(code).Message
}

func IsSuccess(code int) bool {
	return code == Success
}

// IsClientError reports whether code maps to a 4xx status
func IsClientError(code int) bool {
	status := GetHTTPStatus(code)
	return status >= 400 && status < 500
}

// IsServerError reports whether code maps to a 5xx status
func IsServerError(code int) bool {
	return GetHTTPStatus(code) >= 500
}

// FormatError renders the message for code with optional detail appended
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
