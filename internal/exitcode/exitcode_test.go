package exitcode

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"tasksync/internal/service"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, Success},
		{"unauthorized", &service.HTTPError{Status: http.StatusUnauthorized}, AuthError},
		{"forbidden", &service.HTTPError{Status: http.StatusForbidden}, AuthError},
		{"corrupted", service.Normalize(fmt.Errorf("%w: bad", service.ErrDataCorrupted)), DataError},
		{"malformed", service.Normalize(service.ErrMalformedResponse), DataError},
		{"conflict", &service.HTTPError{Status: http.StatusConflict}, ConflictError},
		{"no response", &service.HTTPError{Status: http.StatusServiceUnavailable}, BackendError},
		{"plain", errors.New("boom"), BackendError},
	}
	for _, tt := range tests {
		if got := FromError(tt.err); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.want, got)
		}
	}
}
