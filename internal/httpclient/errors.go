package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrResponseTooLarge reports a response body over the read limit.
var ErrResponseTooLarge = errors.New("response too large")

// StatusError is returned when the server answered with a non-2xx status.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// NetworkError is returned when no response was received at all
// (DNS failure, refused connection, timeout, cancelled context).
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
