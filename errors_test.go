package logsnag

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAPIError_Is(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		target error
	}{
		{status: http.StatusBadRequest, target: ErrBadRequest},
		{status: http.StatusUnauthorized, target: ErrUnauthorized},
		{status: http.StatusForbidden, target: ErrForbidden},
		{status: http.StatusNotFound, target: ErrNotFound},
		{status: http.StatusTooManyRequests, target: ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			t.Parallel()

			err := fmt.Errorf("publish: %w", newAPIError(tt.status, nil, ""))
			if !errors.Is(err, tt.target) {
				t.Errorf("errors.Is(%d, %v) = false", tt.status, tt.target)
			}
			if errors.Is(err, ErrRateLimited) != (tt.status == http.StatusTooManyRequests) {
				t.Errorf("IsRateLimited mismatch for %d", tt.status)
			}
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	t.Parallel()

	err := newAPIError(http.StatusForbidden, []byte(`{"message":"no access"}`), "req_9")
	msg := err.Error()

	for _, want := range []string{"403", "req_9", `{"message":"no access"}`} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, want it to contain %q", msg, want)
		}
	}
	if err.Message != "no access" {
		t.Errorf("Message = %q, want no access", err.Message)
	}
}

func TestNetworkError_Unwrap(t *testing.T) {
	t.Parallel()

	inner := errors.New("tls handshake timeout")
	err := &NetworkError{Op: "request", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("NetworkError does not unwrap to its cause")
	}
	if IsAPIError(err) {
		t.Error("NetworkError matched as APIError")
	}
	if !strings.Contains(err.Error(), "request") {
		t.Errorf("Error() = %q, want the operation name", err.Error())
	}
}
