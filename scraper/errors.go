package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Fetch failure categories, used as log fields, metric labels, and keys in
// the crawl summary's errors-by-type map.
const (
	errTimeout     = "timeout"
	errConnection  = "connection"
	errForbidden   = "forbidden"
	errNotFound    = "not_found"
	errRateLimited = "rate_limited"
	errOther       = "other"
)

// FetchError wraps a transport or status failure with its category.
type FetchError struct {
	Category string
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d): %v", e.Category, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Category, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// classifyFetchError assigns a category to transport errors and non-2xx
// statuses so the crawl summary can aggregate failures by kind.
func classifyFetchError(err error, statusCode int) *FetchError {
	wrapped := err
	if wrapped == nil {
		wrapped = fmt.Errorf("http status %d", statusCode)
	}

	category := errOther
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		category = errTimeout
	case isNetTimeout(err):
		category = errTimeout
	case isConnectionError(err):
		category = errConnection
	case statusCode == http.StatusForbidden:
		category = errForbidden
	case statusCode == http.StatusNotFound:
		category = errNotFound
	case statusCode == http.StatusTooManyRequests:
		category = errRateLimited
	}

	return &FetchError{Category: category, Status: statusCode, Err: wrapped}
}

func isNetTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnectionError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

func fetchErrorLabel(err error) string {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Category
	}
	return errOther
}
