package model

import "time"

// Submission is one respondent's complete set of answers.
// It is immutable once recorded.
type Submission struct {
	ID          string    `json:"id"`
	SubmittedAt time.Time `json:"submittedAt"`
	Answers     Answers   `json:"answers"`
}
