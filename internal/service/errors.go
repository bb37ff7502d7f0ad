package service

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrDataCorrupted is returned when server data cannot be decrypted or parsed.
	ErrDataCorrupted = errors.New("data corrupted or encrypted")

	// ErrConflict matches writes rejected because the version was stale.
	ErrConflict = errors.New("conflicting update")

	// ErrMalformedResponse is returned when the server answers outside the protocol.
	ErrMalformedResponse = errors.New("malformed server response")
)

// HTTPError is the uniform error shape returned by backends.
// Status follows HTTP semantics even for failures that never reached a server:
// 503 when no response arrived, 500 when the request could not be built.
type HTTPError struct {
	Status  int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// Normalize converts any error into an *HTTPError.
// HTTP errors pass through unchanged, everything else becomes a 500.
func Normalize(err error) error {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return err
	}
	status := http.StatusInternalServerError
	if errors.Is(err, ErrMalformedResponse) {
		status = http.StatusBadGateway
	}
	return &HTTPError{Status: status, Message: err.Error(), Err: err}
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}

// IsUnauthorized reports whether err is an authentication failure.
func IsUnauthorized(err error) bool {
	s := StatusOf(err)
	return s == http.StatusUnauthorized || s == http.StatusForbidden
}

// IsNotFound reports whether err is a 404.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// IsConflict reports whether err is a version conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) || StatusOf(err) == http.StatusConflict
}
