package remote

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"tasksync/internal/service"
)

var errNoResponse = errors.New("no response from server")

// ConflictError reports a write rejected because its version was stale.
// Current is the server's authoritative state, nil when the server did not send one.
type ConflictError struct {
	Current *Resource
}

func (e *ConflictError) Error() string {
	if e.Current == nil {
		return "conflicting update"
	}
	return fmt.Sprintf("conflicting update (server version %d)", e.Current.Version)
}

// Is makes errors.Is(err, service.ErrConflict) match.
func (e *ConflictError) Is(target error) bool { return target == service.ErrConflict }

// responseError converts a non-2xx response.
// The message is the body's "message" field when present, else the raw body.
func responseError(method string, status int, body []byte) error {
	err := &service.HTTPError{Status: status, Message: errorMessage(status, body)}
	if status == http.StatusConflict && method == http.MethodPut {
		err.Err = &ConflictError{Current: parseConflict(body)}
	}
	return err
}

func errorMessage(status int, body []byte) string {
	var payload struct {
		Message *string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Message != nil {
		return *payload.Message
	}
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && !bytes.HasPrefix(trimmed, []byte("{")) {
		return string(trimmed)
	}
	return http.StatusText(status)
}

// parseConflict extracts the current state from a 409 body.
// A body without a version field yields nil.
func parseConflict(body []byte) *Resource {
	var payload struct {
		Data    *string `json:"data"`
		Version *int    `json:"version"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Version == nil {
		return nil
	}
	return &Resource{Data: payload.Data, Version: *payload.Version}
}

// noResponseError maps a request that got no answer.
func noResponseError(err error) error {
	return &service.HTTPError{
		Status:  http.StatusServiceUnavailable,
		Message: err.Error(),
		Err:     fmt.Errorf("%w: %w", errNoResponse, err),
	}
}

// setupError maps a failure before the request was sent.
func setupError(err error) error {
	return &service.HTTPError{Status: http.StatusInternalServerError, Message: err.Error(), Err: err}
}
