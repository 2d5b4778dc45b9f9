// Package document implements the copy-on-write edits of a form.
// Every function returns a new Form and leaves its argument untouched.
package document

import (
	"errors"
	"fmt"

	"formbuilder/internal/model"

	"github.com/google/uuid"
)

var (
	ErrInvalidTheme        = errors.New("invalid theme")
	ErrInvalidQuestionType = errors.New("invalid question type")
)

// FormPatch holds the form-level fields to merge; nil fields are left alone
type FormPatch struct {
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	Theme       *model.Theme `json:"theme,omitempty"`
	HeaderImage *string      `json:"headerImage,omitempty"`
}

// QuestionPatch holds the question fields to merge; nil fields are left alone
type QuestionPatch struct {
	Title    *string             `json:"title,omitempty"`
	Type     *model.QuestionType `json:"type,omitempty"`
	Required *bool               `json:"required,omitempty"`
	Options  *[]model.Option     `json:"options,omitempty"`
}

// Editor performs the edits that need fresh ids
type Editor struct {
	newID func() string
}

// NewEditor creates an editor; a nil generator falls back to random UUIDs
func NewEditor(newID func() string) *Editor {
	if newID == nil {
		newID = uuid.NewString
	}
	return &Editor{newID: newID}
}

// NewID returns a fresh unique id
func (e *Editor) NewID() string {
	return e.newID()
}

// SetFields shallow-merges form-level fields
func SetFields(form model.Form, patch FormPatch) (model.Form, error) {
	if patch.Theme != nil && !patch.Theme.Valid() {
		return form, fmt.Errorf("%w: %q", ErrInvalidTheme, *patch.Theme)
	}
	if patch.HeaderImage != nil && *patch.HeaderImage != "" {
		if err := checkDataURI(*patch.HeaderImage); err != nil {
			return form, err
		}
	}

	out := form.Clone()
	if patch.Title != nil {
		out.Title = *patch.Title
	}
	if patch.Description != nil {
		out.Description = *patch.Description
	}
	if patch.Theme != nil {
		out.Theme = *patch.Theme
	}
	if patch.HeaderImage != nil {
		out.HeaderImage = *patch.HeaderImage
	}
	return out, nil
}

// AddQuestion appends an empty, optional TEXT question
func (e *Editor) AddQuestion(form model.Form) model.Form {
	out := form.Clone()
	out.Questions = append(out.Questions, model.Question{
		ID:      e.newID(),
		Type:    model.QuestionTypeText,
		Options: []model.Option{},
	})
	return out
}

// UpdateQuestion merges patch into the matching question.
// An unknown id returns the form unchanged.
func UpdateQuestion(form model.Form, questionID string, patch QuestionPatch) (model.Form, error) {
	if patch.Type != nil && !patch.Type.Valid() {
		return form, fmt.Errorf("%w: %q", ErrInvalidQuestionType, *patch.Type)
	}

	i := form.QuestionIndex(questionID)
	if i < 0 {
		return form, nil
	}

	out := form.Clone()
	q := &out.Questions[i]
	if patch.Title != nil {
		q.Title = *patch.Title
	}
	if patch.Type != nil {
		q.Type = *patch.Type
	}
	if patch.Required != nil {
		q.Required = *patch.Required
	}
	if patch.Options != nil {
		q.Options = make([]model.Option, len(*patch.Options))
		copy(q.Options, *patch.Options)
	}
	// TEXT questions never carry options
	if !q.Type.HasOptions() {
		q.Options = []model.Option{}
	}
	return out, nil
}

// RemoveQuestion drops the matching question
func RemoveQuestion(form model.Form, questionID string) model.Form {
	out := form.Clone()
	kept := out.Questions[:0]
	for _, q := range out.Questions {
		if q.ID != questionID {
			kept = append(kept, q)
		}
	}
	out.Questions = kept
	return out
}

// AppendQuestions merges generated drafts at the end of the form, giving
// each a fresh id. Options of non-choice drafts are dropped.
func (e *Editor) AppendQuestions(form model.Form, drafts []model.QuestionDraft) model.Form {
	out := form.Clone()
	for _, d := range drafts {
		q := model.Question{
			ID:       e.newID(),
			Title:    d.Title,
			Type:     d.Type,
			Required: d.Required,
			Options:  []model.Option{},
		}
		if q.Type.HasOptions() {
			q.Options = append(q.Options, d.Options...)
		}
		out.Questions = append(out.Questions, q)
	}
	return out
}
