package model

// DefaultFormID is the id of the singleton form of a deployment
const DefaultFormID = "default-form"

// Theme names a colour scheme applied when the form is rendered
type Theme string

const (
	ThemeIndigo Theme = "indigo"
	ThemeTeal   Theme = "teal"
	ThemeGray   Theme = "gray"
	ThemeOrange Theme = "orange"
)

// ThemeInfo describes a theme for pickers
type ThemeInfo struct {
	Name    Theme    `json:"name"`
	Label   string   `json:"label"`
	Accent  string   `json:"accent"`  // Primary colour (buttons, header bar)
	Palette []string `json:"palette"` // Swatches shown in the picker, darkest first
}

// Themes is the catalogue of supported themes
var Themes = []ThemeInfo{
	{Name: ThemeIndigo, Label: "Default Indigo", Accent: "#4f46e5", Palette: []string{"#4f46e5", "#818cf8", "#c7d2fe"}},
	{Name: ThemeTeal, Label: "Serene Teal", Accent: "#0d9488", Palette: []string{"#0d9488", "#2dd4bf", "#99f6e4"}},
	{Name: ThemeGray, Label: "Classic Gray", Accent: "#374151", Palette: []string{"#374151", "#6b7280", "#d1d5db"}},
	{Name: ThemeOrange, Label: "Sunset Orange", Accent: "#ea580c", Palette: []string{"#ea580c", "#fb923c", "#fed7aa"}},
}

// Valid reports whether t is in the theme catalogue
func (t Theme) Valid() bool {
	for _, info := range Themes {
		if info.Name == t {
			return true
		}
	}
	return false
}

// Form is the editable document describing a set of questions
type Form struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
	Theme       Theme      `json:"theme"`
	HeaderImage string     `json:"headerImage,omitempty"` // data: URI, empty when absent
}

// Clone returns a deep copy so that updates never alias the original
func (f Form) Clone() Form {
	out := f
	out.Questions = make([]Question, len(f.Questions))
	for i, q := range f.Questions {
		out.Questions[i] = q.Clone()
	}
	return out
}

// QuestionIndex returns the position of the question with the given id, or -1
func (f Form) QuestionIndex(questionID string) int {
	for i, q := range f.Questions {
		if q.ID == questionID {
			return i
		}
	}
	return -1
}

// Question looks a question up by id
func (f Form) Question(questionID string) (Question, bool) {
	if i := f.QuestionIndex(questionID); i >= 0 {
		return f.Questions[i], true
	}
	return Question{}, false
}

// DefaultForm is the document a fresh deployment starts with
func DefaultForm(newID func() string) Form {
	return Form{
		ID:          DefaultFormID,
		Title:       "My Awesome Form",
		Description: "Please fill out this form. Your responses are greatly appreciated!",
		Questions: []Question{
			{
				ID:       newID(),
				Title:    "What is your name?",
				Type:     QuestionTypeText,
				Required: true,
				Options:  []Option{},
			},
			{
				ID:       newID(),
				Title:    "Which topics are you interested in?",
				Type:     QuestionTypeCheckboxes,
				Required: false,
				Options: []Option{
					{ID: newID(), Value: "Technology"},
					{ID: newID(), Value: "Art & Design"},
					{ID: newID(), Value: "Science"},
				},
			},
		},
		Theme: ThemeIndigo,
	}
}
