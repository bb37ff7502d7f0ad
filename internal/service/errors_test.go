package service

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"malformed", fmt.Errorf("conflict body: %w", ErrMalformedResponse), http.StatusBadGateway},
		{"http error", &HTTPError{Status: http.StatusNotFound, Message: "gone"}, http.StatusNotFound},
		{"wrapped http error", fmt.Errorf("delete: %w", &HTTPError{Status: http.StatusUnauthorized}), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.err)
			if StatusOf(got) != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, StatusOf(got))
			}
			if !errors.Is(got, tt.err) {
				t.Error("normalized error should wrap the original")
			}
		})
	}

	if Normalize(nil) != nil {
		t.Error("Normalize(nil) should be nil")
	}
}

func TestHTTPError_Classification(t *testing.T) {
	corrupted := Normalize(fmt.Errorf("%w: bad json", ErrDataCorrupted))
	if !errors.Is(corrupted, ErrDataCorrupted) {
		t.Error("expected data corruption to stay matchable")
	}

	if !IsUnauthorized(&HTTPError{Status: http.StatusUnauthorized}) {
		t.Error("401 should be unauthorized")
	}
	if !IsNotFound(&HTTPError{Status: http.StatusNotFound}) {
		t.Error("404 should be not found")
	}
	if !IsConflict(&HTTPError{Status: http.StatusConflict}) {
		t.Error("409 should be a conflict")
	}
	if IsConflict(errors.New("other")) {
		t.Error("plain error is not a conflict")
	}

	err := &HTTPError{Status: http.StatusServiceUnavailable}
	if err.Error() != "503 Service Unavailable" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
