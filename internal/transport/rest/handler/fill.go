package handler

import (
	"net/http"

	"formbuilder/internal/model"
	"formbuilder/internal/service"

	"github.com/gorilla/mux"
)

// FillHandler handles fill-in sessions and submissions
type FillHandler struct {
	fillSvc *service.FillService
}

// NewFillHandler creates a new fill handler
func NewFillHandler(fillSvc *service.FillService) *FillHandler {
	return &FillHandler{fillSvc: fillSvc}
}

// AnswerRequest is the request body for a single-valued answer
type AnswerRequest struct {
	Value string `json:"value"`
}

// ToggleRequest is the request body for a checkbox change
type ToggleRequest struct {
	Value   string `json:"value"`
	Checked bool   `json:"checked"`
}

// SubmitRequest is the request body for a one-shot submission
type SubmitRequest struct {
	Answers model.Answers `json:"answers"`
}

// StartSession handles POST /v1/fill/sessions
func (h *FillHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.fillSvc.StartSession(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// GetSession handles GET /v1/fill/sessions/{sessionId}
func (h *FillHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.fillSvc.GetSession(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// SetAnswer handles PUT /v1/fill/sessions/{sessionId}/answers/{questionId}
func (h *FillHandler) SetAnswer(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req AnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.fillSvc.SetAnswer(r.Context(), vars["sessionId"], vars["questionId"], req.Value)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// ToggleOption handles POST /v1/fill/sessions/{sessionId}/answers/{questionId}/toggle
func (h *FillHandler) ToggleOption(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req ToggleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.fillSvc.ToggleOption(r.Context(), vars["sessionId"], vars["questionId"], req.Value, req.Checked)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Submit handles POST /v1/fill/sessions/{sessionId}/submit
func (h *FillHandler) Submit(w http.ResponseWriter, r *http.Request) {
	session, sub, err := h.fillSvc.Submit(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session":    session,
		"submission": sub,
	})
}

// Reset handles POST /v1/fill/sessions/{sessionId}/reset
func (h *FillHandler) Reset(w http.ResponseWriter, r *http.Request) {
	session, err := h.fillSvc.Reset(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// SubmitAnswers handles POST /v1/submissions
func (h *FillHandler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sub, err := h.fillSvc.SubmitAnswers(r.Context(), req.Answers)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}
