package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"formbuilder/internal/document"
	"formbuilder/internal/model"
	"formbuilder/internal/service"

	"github.com/gorilla/mux"
)

// multipart overhead allowed on top of the image itself
const uploadSlack = 1 << 20

// FormHandler handles form document endpoints
type FormHandler struct {
	formSvc *service.FormService
}

// NewFormHandler creates a new form handler
func NewFormHandler(formSvc *service.FormService) *FormHandler {
	return &FormHandler{formSvc: formSvc}
}

// Themes handles GET /v1/themes
func (h *FormHandler) Themes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"themes": model.Themes})
}

// Get handles GET /v1/form
func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.formSvc.Form())
}

// Patch handles PATCH /v1/form
func (h *FormHandler) Patch(w http.ResponseWriter, r *http.Request) {
	var req document.FormPatch
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	form, err := h.formSvc.Patch(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

// PutHeaderImage handles PUT /v1/form/header-image. The image is read
// from the multipart field "image" or, for other content types, from the
// raw body.
func (h *FormHandler) PutHeaderImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, document.MaxHeaderImageSize+uploadSlack)

	data, contentType, err := readImage(r)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeServiceError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid image upload")
		return
	}

	form, err := h.formSvc.SetHeaderImage(r.Context(), data, contentType)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func readImage(r *http.Request) ([]byte, string, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		data, err := io.ReadAll(io.LimitReader(r.Body, document.MaxHeaderImageSize+1))
		return data, r.Header.Get("Content-Type"), err
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, document.MaxHeaderImageSize+1))
	return data, header.Header.Get("Content-Type"), err
}

// DeleteHeaderImage handles DELETE /v1/form/header-image
func (h *FormHandler) DeleteHeaderImage(w http.ResponseWriter, r *http.Request) {
	form, err := h.formSvc.ClearHeaderImage(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

// AddQuestion handles POST /v1/form/questions
func (h *FormHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	question, form, err := h.formSvc.AddQuestion(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"question": question,
		"form":     form,
	})
}

// UpdateQuestion handles PATCH /v1/form/questions/{questionId}
func (h *FormHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	questionID := mux.Vars(r)["questionId"]

	var req document.QuestionPatch
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	form, err := h.formSvc.UpdateQuestion(r.Context(), questionID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

// RemoveQuestion handles DELETE /v1/form/questions/{questionId}
func (h *FormHandler) RemoveQuestion(w http.ResponseWriter, r *http.Request) {
	form, err := h.formSvc.RemoveQuestion(r.Context(), mux.Vars(r)["questionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

// AddOption handles POST /v1/form/questions/{questionId}/options
func (h *FormHandler) AddOption(w http.ResponseWriter, r *http.Request) {
	form, err := h.formSvc.AddOption(r.Context(), mux.Vars(r)["questionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, form)
}

// UpdateOptionRequest is the request body for renaming an option
type UpdateOptionRequest struct {
	Value string `json:"value"`
}

// UpdateOption handles PATCH /v1/form/questions/{questionId}/options/{optionId}
func (h *FormHandler) UpdateOption(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req UpdateOptionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	form, err := h.formSvc.UpdateOption(r.Context(), vars["questionId"], vars["optionId"], req.Value)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

// RemoveOption handles DELETE /v1/form/questions/{questionId}/options/{optionId}
func (h *FormHandler) RemoveOption(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	form, err := h.formSvc.RemoveOption(r.Context(), vars["questionId"], vars["optionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}
