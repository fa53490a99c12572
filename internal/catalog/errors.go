package catalog

import (
	"errors"
	"fmt"
)

var ErrSongNotFound = errors.New("song not found")

// RequestFailedError is returned when the catalog answers with a non-2xx
// status.
type RequestFailedError struct {
	StatusCode int
	URL        string
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("API request failed with status %d of %s", e.StatusCode, e.URL)
}

// TransportError wraps network failures and bodies that are not JSON.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
