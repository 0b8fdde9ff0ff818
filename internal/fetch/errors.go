package fetch

import (
	"errors"
	"fmt"
)

// ErrorKind classifies fetch failures. The crawl controller records the
// kind per failed page; only upstream search failures abort a request.
type ErrorKind string

// Fetch error kinds.
const (
	// KindNetwork covers connection and DNS failures.
	KindNetwork ErrorKind = "network"

	// KindTimeout means the fetch exceeded its wall-clock budget.
	KindTimeout ErrorKind = "timeout"

	// KindHTTP means the server answered with a non-2xx status.
	KindHTTP ErrorKind = "http"

	// KindUnsupportedContent means the body was neither HTML nor JSON
	// where HTML was expected.
	KindUnsupportedContent ErrorKind = "unsupported_content"
)

// Error is a classified fetch failure.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// URL is the address that failed.
	URL string

	// Status is the HTTP status code for KindHTTP errors, zero otherwise.
	Status int

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface. The message for KindHTTP matches
// the "HTTP <code>" form surfaced in crawl error lists.
func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTP:
		return fmt.Sprintf("HTTP %d", e.Status)
	case KindTimeout:
		return fmt.Sprintf("fetch %s: timeout", e.URL)
	case KindUnsupportedContent:
		return "Not HTML content"
	default:
		if e.Err != nil {
			return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
		}
		return fmt.Sprintf("fetch %s: network error", e.URL)
	}
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the ErrorKind of err, or KindNetwork if err is not a
// classified fetch error.
func KindOf(err error) ErrorKind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindNetwork
}
