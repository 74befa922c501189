package providers

import (
	"errors"
	"fmt"
	"net/http"
)

// Class is the provider-agnostic failure taxonomy used by the invoker to
// decide between retrying, failing one artifact, and aborting the run.
type Class int

const (
	// Transient failures are retried: rate limits, generic backend errors,
	// transport failures and per-attempt timeouts.
	Transient Class = iota
	// FatalAuth is an authentication or permission denial.
	FatalAuth
	// FatalBadRequest is an invalid model name, malformed request or
	// unsupported resource.
	FatalBadRequest
	// Unusable is a success envelope without usable text. It is not
	// retried and only fails the artifact it belongs to.
	Unusable
)

func (c Class) String() string {
	switch c {
	case Transient:
		return "transient"
	case FatalAuth:
		return "authentication error"
	case FatalBadRequest:
		return "bad request"
	case Unusable:
		return "unusable response"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// Fatal reports whether the class terminates the whole run under the
// default policy.
func (c Class) Fatal() bool {
	return c == FatalAuth || c == FatalBadRequest
}

var (
	// ErrEmptyResponse is returned when the backend answers successfully
	// but without any text content.
	ErrEmptyResponse = errors.New("empty text content in API response")
	// ErrMalformedResponse is returned when a successful response body
	// cannot be decoded.
	ErrMalformedResponse = errors.New("malformed API response")
)

type rateLimitError struct {
	body string
}

func (e *rateLimitError) Error() string { return "rate limited" }

type authError struct {
	message string
}

func (e *authError) Error() string {
	return "authentication error: " + e.message
}

type badRequestError struct {
	statusCode int
	body       string
}

func (e *badRequestError) Error() string {
	return fmt.Sprintf("bad request (status %d): %s", e.statusCode, e.body)
}

type serverError struct {
	statusCode int
	body       string
}

func (e *serverError) Error() string { return "server error: " + e.body }

type apiError struct {
	statusCode int
	body       string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.statusCode, e.body)
}

// statusError maps a non-200 HTTP status to one of the typed errors above.
func statusError(status int, body []byte) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &rateLimitError{body: string(body)}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &authError{message: string(body)}
	case status == http.StatusBadRequest || status == http.StatusNotFound || status == http.StatusUnprocessableEntity:
		return &badRequestError{statusCode: status, body: string(body)}
	case status >= 500:
		return &serverError{statusCode: status, body: string(body)}
	default:
		return &apiError{statusCode: status, body: string(body)}
	}
}

// IsAuthError checks if an error is an authentication error.
func IsAuthError(err error) bool {
	var ae *authError
	return errors.As(err, &ae)
}

// classifyHTTP classifies errors produced by the net/http based clients.
// Anything not recognized is a transport or backend hiccup and is retried.
func classifyHTTP(err error) Class {
	var ae *authError
	var br *badRequestError
	switch {
	case errors.As(err, &ae):
		return FatalAuth
	case errors.As(err, &br):
		return FatalBadRequest
	case errors.Is(err, ErrEmptyResponse), errors.Is(err, ErrMalformedResponse):
		return Unusable
	default:
		return Transient
	}
}
