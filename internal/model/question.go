package model

// QuestionType defines how a question is answered
type QuestionType string

const (
	QuestionTypeText           QuestionType = "TEXT"            // Free text, single answer
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE" // Radio group, single answer
	QuestionTypeCheckboxes     QuestionType = "CHECKBOXES"      // Any number of options
	QuestionTypeDropdown       QuestionType = "DROPDOWN"        // Select box, single answer
)

// QuestionTypes lists every supported type in display order
var QuestionTypes = []QuestionType{
	QuestionTypeText,
	QuestionTypeMultipleChoice,
	QuestionTypeCheckboxes,
	QuestionTypeDropdown,
}

// Valid reports whether t is one of the supported question types
func (t QuestionType) Valid() bool {
	for _, known := range QuestionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// HasOptions reports whether questions of this type carry options
func (t QuestionType) HasOptions() bool {
	return t == QuestionTypeMultipleChoice || t == QuestionTypeCheckboxes || t == QuestionTypeDropdown
}

// MultipleAnswers reports whether answers to this type are lists
func (t QuestionType) MultipleAnswers() bool {
	return t == QuestionTypeCheckboxes
}

// Option is one selectable choice of a choice-type question
type Option struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// Question is one item of a form
type Question struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Type     QuestionType `json:"type"`
	Required bool         `json:"required"`
	Options  []Option     `json:"options"`
}

// Clone returns a copy that shares no option storage with q
func (q Question) Clone() Question {
	out := q
	out.Options = make([]Option, len(q.Options))
	copy(out.Options, q.Options)
	return out
}

// OptionIndex returns the position of the option with the given id, or -1
func (q Question) OptionIndex(optionID string) int {
	for i, opt := range q.Options {
		if opt.ID == optionID {
			return i
		}
	}
	return -1
}

// QuestionDraft is a question that has not been assigned an id yet.
// Generated questions arrive in this shape and get ids when merged.
type QuestionDraft struct {
	Title    string       `json:"title"`
	Type     QuestionType `json:"type"`
	Required bool         `json:"required"`
	Options  []Option     `json:"options"`
}
