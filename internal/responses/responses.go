// Package responses projects recorded submissions onto the form's
// questions as a table.
package responses

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"formbuilder/internal/model"
)

const (
	EmptyTitle   = "No responses yet"
	EmptyMessage = "Share your form to start collecting responses."

	// TimestampLayout renders submission times in the sheet
	TimestampLayout = "Jan 2, 2006, 3:04:05 PM"
)

// Sheet is the responses view. Exactly one of the table fields or the
// empty-state fields is populated.
type Sheet struct {
	Title   string     `json:"title"`
	Count   int        `json:"count"`
	Summary string     `json:"summary,omitempty"`
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`

	Empty        bool   `json:"empty"`
	EmptyTitle   string `json:"emptyTitle,omitempty"`
	EmptyMessage string `json:"emptyMessage,omitempty"`
}

// Project builds the sheet. With zero submissions it returns the empty
// state instead of a table.
func Project(form model.Form, submissions []model.Submission, loc *time.Location) Sheet {
	if len(submissions) == 0 {
		return Sheet{
			Title:        form.Title + " - Responses",
			Empty:        true,
			EmptyTitle:   EmptyTitle,
			EmptyMessage: EmptyMessage,
		}
	}

	headers, rows := Table(form, submissions, loc)
	return Sheet{
		Title:   form.Title + " - Responses",
		Count:   len(submissions),
		Summary: summary(len(submissions)),
		Headers: headers,
		Rows:    rows,
	}
}

// Table returns the header row and one row per submission, in
// submission order
func Table(form model.Form, submissions []model.Submission, loc *time.Location) ([]string, [][]string) {
	if loc == nil {
		loc = time.Local
	}

	headers := make([]string, 0, len(form.Questions)+1)
	headers = append(headers, "Timestamp")
	for _, q := range form.Questions {
		headers = append(headers, q.Title)
	}

	rows := make([][]string, 0, len(submissions))
	for _, sub := range submissions {
		row := make([]string, 0, len(form.Questions)+1)
		row = append(row, sub.SubmittedAt.In(loc).Format(TimestampLayout))
		for _, q := range form.Questions {
			row = append(row, FormatAnswer(sub.Answers, q.ID))
		}
		rows = append(rows, row)
	}
	return headers, rows
}

// FormatAnswer renders the answer to one question; absent answers are
// blank
func FormatAnswer(answers model.Answers, questionID string) string {
	ans, ok := answers[questionID]
	if !ok {
		return ""
	}
	return ans.String()
}

// WriteCSV exports the table, header row first. It writes the header
// row even when there are no submissions.
func WriteCSV(w io.Writer, form model.Form, submissions []model.Submission, loc *time.Location) error {
	headers, rows := Table(form, submissions, loc)

	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write responses: %w", err)
	}
	return nil
}

func summary(n int) string {
	if n == 1 {
		return "1 response"
	}
	return fmt.Sprintf("%d responses", n)
}
