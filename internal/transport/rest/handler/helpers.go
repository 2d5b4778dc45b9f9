package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"formbuilder/internal/app"
	"formbuilder/internal/cache"
	"formbuilder/internal/document"
	"formbuilder/internal/service"
	"formbuilder/internal/viewer"
)

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// writeServiceError maps domain errors onto status codes
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		cfgErr *service.ConfigurationError
		genErr *service.GenerationError
		verrs  viewer.ValidationErrors
		tooBig *http.MaxBytesError
	)
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "validation failed",
			"errors": verrs,
		})
	case errors.As(err, &cfgErr):
		writeError(w, http.StatusServiceUnavailable, cfgErr.Error())
	case errors.As(err, &genErr):
		writeError(w, http.StatusBadGateway, genErr.Error())
	case errors.Is(err, document.ErrInputTooLarge), errors.As(err, &tooBig):
		writeError(w, http.StatusRequestEntityTooLarge, document.InputTooLargeMessage)
	case errors.Is(err, service.ErrGenerationInFlight),
		errors.Is(err, viewer.ErrAlreadySubmitted),
		errors.Is(err, cache.ErrUpdateConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrEmptyTopic),
		errors.Is(err, document.ErrInvalidTheme),
		errors.Is(err, document.ErrInvalidQuestionType),
		errors.Is(err, document.ErrNotAnImage),
		errors.Is(err, document.ErrInvalidDataURI),
		errors.Is(err, app.ErrInvalidView):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
