package handler

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"formbuilder/internal/responses"

	"github.com/stretchr/testify/assert"
)

type stubResponses struct {
	csv string
	err error
}

func (s stubResponses) Sheet() responses.Sheet { return responses.Sheet{Empty: true} }

func (s stubResponses) WriteCSV(w io.Writer) error {
	io.WriteString(w, s.csv)
	return s.err
}

func TestResponsesHandler_CSV(t *testing.T) {
	h := NewResponsesHandler(stubResponses{csv: "Timestamp,Name\n"})

	rec := httptest.NewRecorder()
	h.CSV(rec, httptest.NewRequest("GET", "/v1/responses.csv", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "15", rec.Header().Get("Content-Length"))
	assert.Equal(t, "Timestamp,Name\n", rec.Body.String())
}

func TestResponsesHandler_CSVFailureIs500(t *testing.T) {
	h := NewResponsesHandler(stubResponses{csv: "Timestamp,Na", err: errors.New("short write")})

	rec := httptest.NewRecorder()
	h.CSV(rec, httptest.NewRequest("GET", "/v1/responses.csv", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotContains(t, rec.Body.String(), "Timestamp")
}
