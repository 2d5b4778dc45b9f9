package handler

import (
	"net/http"

	"formbuilder/internal/service"
)

// GenerationHandler handles AI question generation endpoints
type GenerationHandler struct {
	tracker *service.GenerationTracker
}

// NewGenerationHandler creates a new generation handler
func NewGenerationHandler(tracker *service.GenerationTracker) *GenerationHandler {
	return &GenerationHandler{tracker: tracker}
}

// GenerateRequest is the request body for starting a generation
type GenerateRequest struct {
	Topic string `json:"topic"`
}

// Start handles POST /v1/form/generation
func (h *GenerationHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.tracker.Start(r.Context(), req.Topic)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, state)
}

// State handles GET /v1/form/generation
func (h *GenerationHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tracker.State())
}
