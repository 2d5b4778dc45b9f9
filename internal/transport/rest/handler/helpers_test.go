package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"formbuilder/internal/app"
	"formbuilder/internal/cache"
	"formbuilder/internal/document"
	"formbuilder/internal/service"
	"formbuilder/internal/viewer"

	"github.com/stretchr/testify/assert"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", viewer.ValidationErrors{"q1": viewer.RequiredMessage}, http.StatusUnprocessableEntity, viewer.RequiredMessage},
		{"configuration", &service.ConfigurationError{Reason: "API_KEY environment variable not set"}, http.StatusServiceUnavailable, "API_KEY"},
		{"generation", &service.GenerationError{Cause: errors.New("x")}, http.StatusBadGateway, service.GenerationFailedMessage},
		{"too large", document.ErrInputTooLarge, http.StatusRequestEntityTooLarge, document.InputTooLargeMessage},
		{"in flight", service.ErrGenerationInFlight, http.StatusConflict, "already in progress"},
		{"submitted", viewer.ErrAlreadySubmitted, http.StatusConflict, "already submitted"},
		{"session conflict", fmt.Errorf("failed to update session: %w", cache.ErrUpdateConflict), http.StatusConflict, "changed concurrently"},
		{"rate limited", service.ErrRateLimited, http.StatusTooManyRequests, "too many"},
		{"no session", service.ErrSessionNotFound, http.StatusNotFound, "not found"},
		{"theme", fmt.Errorf("%w: %q", document.ErrInvalidTheme, "neon"), http.StatusBadRequest, "invalid theme"},
		{"view", app.ErrInvalidView, http.StatusBadRequest, "invalid view"},
		{"topic", service.ErrEmptyTopic, http.StatusBadRequest, "Please enter a topic"},
		{"unknown", errors.New("mongo down"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, tt.err)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}
