package fetcher

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidURL        = errors.New("invalid url")
	ErrUnsupportedMethod = errors.New("unsupported http method")
	ErrMissingForm       = errors.New("form data is required for POST")
)

// FetchError reports a response with a non-success HTTP status.
type FetchError struct {
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

// TransportError reports a failure below HTTP: timeouts, refused
// connections, DNS errors or an unreadable body.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
