// Package viewer holds the fill-in state machine of a form and its
// submit-time validation.
package viewer

import (
	"errors"
	"sort"
	"strings"
	"time"

	"formbuilder/internal/model"
)

// RequiredMessage is reported for every required question left unanswered
const RequiredMessage = "This field is required."

// State is the phase of a fill session
type State string

const (
	StateFilling   State = "filling"
	StateSubmitted State = "submitted"
)

var ErrAlreadySubmitted = errors.New("response already submitted")

// ValidationErrors maps question ids to the message shown under them
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	ids := make([]string, 0, len(v))
	for id := range v {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return "validation failed for questions: " + strings.Join(ids, ", ")
}

// Validate checks every required question. It returns nil when all pass.
func Validate(form model.Form, answers model.Answers) ValidationErrors {
	var errs ValidationErrors
	for _, q := range form.Questions {
		if !q.Required {
			continue
		}
		if ans, ok := answers[q.ID]; ok && !ans.IsEmpty() {
			continue
		}
		if errs == nil {
			errs = make(ValidationErrors)
		}
		errs[q.ID] = RequiredMessage
	}
	return errs
}

// BuildSubmission validates answers and, when they pass, returns the
// submission to record. Answers to questions not in the form are dropped.
func BuildSubmission(form model.Form, answers model.Answers, id string, now time.Time) (model.Submission, error) {
	if errs := Validate(form, answers); errs != nil {
		return model.Submission{}, errs
	}

	kept := make(model.Answers, len(answers))
	for qid, ans := range answers.Clone() {
		if form.QuestionIndex(qid) >= 0 {
			kept[qid] = ans
		}
	}
	return model.Submission{
		ID:          id,
		SubmittedAt: now,
		Answers:     kept,
	}, nil
}

// Session is one respondent filling in the form
type Session struct {
	ID           string           `json:"id"`
	State        State            `json:"state"`
	Answers      model.Answers    `json:"answers"`
	Errors       ValidationErrors `json:"errors,omitempty"`
	SubmissionID string           `json:"submissionId,omitempty"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// NewSession starts a session in the Filling state
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		State:     StateFilling,
		Answers:   make(model.Answers),
		UpdatedAt: now,
	}
}

// SetAnswer overwrites the single-valued answer of a question
func (s *Session) SetAnswer(questionID, value string, now time.Time) error {
	if s.State != StateFilling {
		return ErrAlreadySubmitted
	}
	s.answers()[questionID] = model.Single(value)
	s.UpdatedAt = now
	return nil
}

// ToggleOption checks or unchecks one checkbox value. Other values of
// the same question are left as they are.
func (s *Session) ToggleOption(questionID, value string, checked bool, now time.Time) error {
	if s.State != StateFilling {
		return ErrAlreadySubmitted
	}

	current := s.answers()[questionID].Values()
	next := make([]string, 0, len(current)+1)
	for _, v := range current {
		if v != value {
			next = append(next, v)
		}
	}
	if checked {
		next = append(next, value)
	}
	s.Answers[questionID] = model.Multiple(next...)
	s.UpdatedAt = now
	return nil
}

// Submit validates the answers against form. On failure the errors are
// kept on the session and nothing is recorded. On success the session
// moves to Submitted.
func (s *Session) Submit(form model.Form, submissionID string, now time.Time) (model.Submission, error) {
	if s.State != StateFilling {
		return model.Submission{}, ErrAlreadySubmitted
	}

	sub, err := BuildSubmission(form, s.answers(), submissionID, now)
	if err != nil {
		var verrs ValidationErrors
		if errors.As(err, &verrs) {
			s.Errors = verrs
		}
		s.UpdatedAt = now
		return model.Submission{}, err
	}

	s.State = StateSubmitted
	s.Errors = nil
	s.SubmissionID = sub.ID
	s.UpdatedAt = now
	return sub, nil
}

// Reset discards local answers and errors and returns to Filling
func (s *Session) Reset(now time.Time) {
	s.State = StateFilling
	s.Answers = make(model.Answers)
	s.Errors = nil
	s.SubmissionID = ""
	s.UpdatedAt = now
}

func (s *Session) answers() model.Answers {
	if s.Answers == nil {
		s.Answers = make(model.Answers)
	}
	return s.Answers
}
