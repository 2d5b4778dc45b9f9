package handler

import (
	"net/http"

	"formbuilder/internal/model"
	"formbuilder/internal/service"
)

// ViewHandler handles view selection and sharing
type ViewHandler struct {
	viewSvc *service.ViewService
}

// NewViewHandler creates a new view handler
func NewViewHandler(viewSvc *service.ViewService) *ViewHandler {
	return &ViewHandler{viewSvc: viewSvc}
}

// SelectViewRequest is the request body for changing the view
type SelectViewRequest struct {
	View model.View `json:"view"`
}

// Get handles GET /v1/view?fragment=...
func (h *ViewHandler) Get(w http.ResponseWriter, r *http.Request) {
	view := h.viewSvc.Resolve(r.URL.Query().Get("fragment"))
	writeJSON(w, http.StatusOK, service.ViewState{View: view})
}

// Put handles PUT /v1/view
func (h *ViewHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req SelectViewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.viewSvc.Select(req.View)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Share handles GET /v1/share
func (h *ViewHandler) Share(w http.ResponseWriter, r *http.Request) {
	link, err := h.viewSvc.ShareLink(r.URL.Query().Get("base"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, service.ViewState{View: model.ViewViewer, ShareLink: link})
}
