package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"not found", NotFound("patient", nil), http.StatusNotFound},
		{"bad request", BadRequest("bad", nil), http.StatusBadRequest},
		{"unauthorized", Unauthorized(""), http.StatusUnauthorized},
		{"forbidden", Forbidden(""), http.StatusForbidden},
		{"conflict", Conflict("taken", nil), http.StatusConflict},
		{"too many", TooManyRequests("slow down"), http.StatusTooManyRequests},
		{"internal", Internal(fmt.Errorf("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestAsThroughWrapping(t *testing.T) {
	base := NotFound("appointment", nil)
	wrapped := fmt.Errorf("failed to get appointment: %w", base)

	got, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, "appointment not found", got.Message)
	assert.True(t, Is(wrapped, ErrNotFound))
	assert.False(t, Is(wrapped, ErrForbidden))

	_, ok = As(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "Invalid username or password", Unauthorized("Invalid username or password").Error())
	assert.Equal(t, "internal server error: boom", Internal(fmt.Errorf("boom")).Error())
}
