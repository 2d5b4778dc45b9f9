package document

import (
	"fmt"

	"formbuilder/internal/model"
)

// AddOption appends a placeholder option "Option N" to the matching question
func (e *Editor) AddOption(form model.Form, questionID string) model.Form {
	i := form.QuestionIndex(questionID)
	if i < 0 {
		return form
	}

	out := form.Clone()
	q := &out.Questions[i]
	q.Options = append(q.Options, model.Option{
		ID:    e.newID(),
		Value: fmt.Sprintf("Option %d", len(q.Options)+1),
	})
	return out
}

// UpdateOption sets the value of one option; unknown ids are no-ops
func UpdateOption(form model.Form, questionID, optionID, value string) model.Form {
	i := form.QuestionIndex(questionID)
	if i < 0 {
		return form
	}
	j := form.Questions[i].OptionIndex(optionID)
	if j < 0 {
		return form
	}

	out := form.Clone()
	out.Questions[i].Options[j].Value = value
	return out
}

// RemoveOption drops one option from the matching question
func RemoveOption(form model.Form, questionID, optionID string) model.Form {
	i := form.QuestionIndex(questionID)
	if i < 0 {
		return form
	}

	out := form.Clone()
	q := &out.Questions[i]
	kept := q.Options[:0]
	for _, opt := range q.Options {
		if opt.ID != optionID {
			kept = append(kept, opt)
		}
	}
	q.Options = kept
	return out
}
