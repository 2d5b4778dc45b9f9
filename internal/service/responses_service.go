package service

import (
	"io"
	"time"

	"formbuilder/internal/app"
	"formbuilder/internal/responses"
)

// ResponsesService projects the recorded submissions for display
type ResponsesService struct {
	state *app.App
	loc   *time.Location
}

// NewResponsesService creates a responses service. Timestamps are
// rendered in loc, or in local time when loc is nil.
func NewResponsesService(state *app.App, loc *time.Location) *ResponsesService {
	if loc == nil {
		loc = time.Local
	}
	return &ResponsesService{state: state, loc: loc}
}

// Sheet returns the responses table of the current form
func (s *ResponsesService) Sheet() responses.Sheet {
	return responses.Project(s.state.Form(), s.state.Submissions(), s.loc)
}

// WriteCSV exports the responses table
func (s *ResponsesService) WriteCSV(w io.Writer) error {
	return responses.WriteCSV(w, s.state.Form(), s.state.Submissions(), s.loc)
}
