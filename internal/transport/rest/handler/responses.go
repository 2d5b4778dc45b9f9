package handler

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"formbuilder/internal/responses"
)

// ResponsesReader is the part of service.ResponsesService the handler needs
type ResponsesReader interface {
	Sheet() responses.Sheet
	WriteCSV(w io.Writer) error
}

// ResponsesHandler handles the responses sheet
type ResponsesHandler struct {
	responsesSvc ResponsesReader
}

// NewResponsesHandler creates a new responses handler
func NewResponsesHandler(responsesSvc ResponsesReader) *ResponsesHandler {
	return &ResponsesHandler{responsesSvc: responsesSvc}
}

// Get handles GET /v1/responses
func (h *ResponsesHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.responsesSvc.Sheet())
}

// CSV handles GET /v1/responses.csv. The file is built in memory first so
// a failure can still be reported with a status code.
func (h *ResponsesHandler) CSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.responsesSvc.WriteCSV(&buf); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to export responses")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="responses.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
