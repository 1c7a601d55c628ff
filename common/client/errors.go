package client

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse marks a 2xx response whose body is not an envelope.
var ErrMalformedResponse = errors.New("malformed response envelope")

// RequestError is the only failure kind the transport produces. It covers
// connection failures, timeouts, non-2xx statuses and unreadable bodies.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int       // zero when no response was received
	Envelope   *Envelope // decoded error envelope, if the body was one
	Body       []byte
	Err        error
}

func (e *RequestError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Envelope != nil && e.Envelope.Message != "":
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Envelope.Message)
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s %s: status %d: %v", e.Method, e.URL, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	}
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Message returns the backend's error message when there is one, otherwise
// the error string.
func (e *RequestError) Message() string {
	if e.Envelope != nil && e.Envelope.Message != "" {
		return e.Envelope.Message
	}
	return e.Error()
}
