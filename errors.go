package logsnag

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors matched by *APIError through errors.Is.
var (
	// ErrBadRequest indicates the service rejected the payload.
	ErrBadRequest = errors.New("logsnag: bad request")

	// ErrUnauthorized indicates an invalid or missing API token.
	ErrUnauthorized = errors.New("logsnag: unauthorized")

	// ErrForbidden indicates the token may not write to the project.
	ErrForbidden = errors.New("logsnag: forbidden")

	// ErrNotFound indicates the project or endpoint does not exist.
	ErrNotFound = errors.New("logsnag: not found")

	// ErrRateLimited indicates the request was rate limited.
	ErrRateLimited = errors.New("logsnag: rate limited")
)

// APIError is returned when the service answers with a status other than 200.
type APIError struct {
	// HTTPStatus is the HTTP status code.
	HTTPStatus int
	// Body is the raw response body text, or a placeholder describing why
	// the body could not be read.
	Body string
	// Message is the "message" field of a JSON error body, if present.
	Message string
	// RequestID is the request identifier header, if the service sent one.
	RequestID string
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("logsnag: error in response (status=%d, request_id=%s): %s",
			e.HTTPStatus, e.RequestID, e.Body)
	}
	return fmt.Sprintf("logsnag: error in response (status=%d): %s", e.HTTPStatus, e.Body)
}

// Is implements errors.Is support for sentinel errors.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrBadRequest:
		return e.HTTPStatus == http.StatusBadRequest
	case ErrUnauthorized:
		return e.HTTPStatus == http.StatusUnauthorized
	case ErrForbidden:
		return e.HTTPStatus == http.StatusForbidden
	case ErrNotFound:
		return e.HTTPStatus == http.StatusNotFound
	case ErrRateLimited:
		return e.HTTPStatus == http.StatusTooManyRequests
	default:
		return false
	}
}

// newAPIError builds an APIError from a non-200 response body.
func newAPIError(status int, body []byte, requestID string) *APIError {
	apiErr := &APIError{
		HTTPStatus: status,
		Body:       string(body),
		RequestID:  requestID,
	}

	var errResp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		apiErr.Message = errResp.Message
	}
	return apiErr
}

// NetworkError wraps failures to send a request or read its response.
type NetworkError struct {
	Op  string // Operation that failed: "request" or "read"
	Err error  // Underlying error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("logsnag: network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// SerializationError is returned when a payload cannot be encoded as JSON.
type SerializationError struct {
	Payload string // "log" or "insight"
	Err     error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("logsnag: failed to encode %s payload: %v", e.Payload, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// IsAPIError reports whether err carries an *APIError.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// IsNetworkError reports whether err carries a *NetworkError.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsUnauthorized reports whether the error is an authorization error.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsRateLimited reports whether the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
