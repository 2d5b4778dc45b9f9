package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AnswerKind tells which variant an Answer holds
type AnswerKind int

const (
	AnswerSingle   AnswerKind = iota // TEXT, MULTIPLE_CHOICE, DROPDOWN
	AnswerMultiple                   // CHECKBOXES
)

// Answer is either a single string or a list of strings.
// On the wire it is a JSON string or a JSON array of strings.
type Answer struct {
	kind   AnswerKind
	single string
	values []string
}

// Single builds a single-valued answer
func Single(value string) Answer {
	return Answer{kind: AnswerSingle, single: value}
}

// Multiple builds a list-valued answer
func Multiple(values ...string) Answer {
	out := make([]string, len(values))
	copy(out, values)
	return Answer{kind: AnswerMultiple, values: out}
}

func (a Answer) Kind() AnswerKind { return a.kind }

// Value returns the single value; empty for list answers
func (a Answer) Value() string { return a.single }

// Values returns a copy of the list; nil for single answers
func (a Answer) Values() []string {
	if a.kind != AnswerMultiple {
		return nil
	}
	out := make([]string, len(a.values))
	copy(out, a.values)
	return out
}

// IsEmpty reports whether the answer counts as not given
func (a Answer) IsEmpty() bool {
	if a.kind == AnswerMultiple {
		return len(a.values) == 0
	}
	return a.single == ""
}

// Contains reports whether a list answer holds value
func (a Answer) Contains(value string) bool {
	for _, v := range a.values {
		if v == value {
			return true
		}
	}
	return false
}

// String renders list answers joined by ", "
func (a Answer) String() string {
	if a.kind == AnswerMultiple {
		return strings.Join(a.values, ", ")
	}
	return a.single
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.kind == AnswerMultiple {
		values := a.values
		if values == nil {
			values = []string{}
		}
		return json.Marshal(values)
	}
	return json.Marshal(a.single)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*a = Single(single)
		return nil
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("answer must be a string or a list of strings: %w", err)
	}
	*a = Multiple(values...)
	return nil
}

// Answers maps question ids to answers
type Answers map[string]Answer

// Clone returns an independent copy of the mapping
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for id, ans := range a {
		if ans.kind == AnswerMultiple {
			out[id] = Multiple(ans.values...)
		} else {
			out[id] = ans
		}
	}
	return out
}
