package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is returned for 401 responses.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("not found")
	// ErrNetwork covers transport failures and every other non-2xx status.
	ErrNetwork = errors.New("network error")
)

// Error describes a failed API call. It matches one of the sentinel errors
// above with errors.Is, and the transport cause when there is one.
type Error struct {
	Op         string // e.g. "list users"
	URL        string
	StatusCode int    // 0 for transport failures
	Message    string // server-provided message, if any
	Err        error  // transport cause
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("failed to %s: %s (status %d)", e.Op, e.Message, e.StatusCode)
	case e.StatusCode != 0:
		return fmt.Sprintf("failed to %s: unexpected status code: %d", e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() []error {
	errs := []error{e.kind()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (e *Error) kind() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrNetwork
	}
}

// Describe renders err as a short message suitable for a status line.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) {
		return "request cancelled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	if errors.Is(err, ErrUnauthorized) {
		return "session expired, please log in again"
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	switch {
	case apiErr.Message != "":
		return apiErr.Message
	case apiErr.StatusCode == http.StatusNotFound:
		return "not found"
	case apiErr.StatusCode != 0:
		return fmt.Sprintf("server returned %d %s", apiErr.StatusCode, http.StatusText(apiErr.StatusCode))
	default:
		return fmt.Sprintf("network error: %v", apiErr.Err)
	}
}
