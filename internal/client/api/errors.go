package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized matches a RequestError carrying HTTP 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound matches a RequestError carrying HTTP 404.
	ErrNotFound = errors.New("not found")
	// ErrNetwork matches a RequestError for which no response arrived.
	ErrNetwork = errors.New("network error")

	ErrInvalidBaseURL = errors.New("invalid base url")
)

type ErrorKind int

const (
	KindTransport ErrorKind = iota + 1
	KindHTTP
	KindParse
	KindRequest
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindHTTP:
		return "http"
	case KindParse:
		return "parse"
	case KindRequest:
		return "request"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// RequestError is the single error shape returned by Client.
//
// StatusCode is 0 when no response was received.
type RequestError struct {
	StatusCode int
	Message    string
	Kind       ErrorKind
	Err        error
}

func (e *RequestError) Error() string { return e.Message }

func (e *RequestError) Unwrap() error { return e.Err }

func (e *RequestError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Kind == KindHTTP && e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.Kind == KindHTTP && e.StatusCode == http.StatusNotFound
	case ErrNetwork:
		return e.Kind == KindTransport
	}
	return false
}

// HasStatus reports whether a response was received.
func (e *RequestError) HasStatus() bool { return e.StatusCode != 0 }

// AsRequestError extracts the *RequestError from err.
func AsRequestError(err error) (*RequestError, bool) {
	var re *RequestError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

func transportError(err error) *RequestError {
	return &RequestError{Kind: KindTransport, Message: "network error: " + err.Error(), Err: err}
}

func requestError(err error) *RequestError {
	return &RequestError{Kind: KindRequest, Message: "invalid request: " + err.Error(), Err: err}
}

func httpError(status int, body string) *RequestError {
	return &RequestError{Kind: KindHTTP, StatusCode: status, Message: fmt.Sprintf("%d: %s", status, body)}
}

func parseError(status int, err error) *RequestError {
	return &RequestError{Kind: KindParse, StatusCode: status, Message: "failed to parse response: " + err.Error(), Err: err}
}
