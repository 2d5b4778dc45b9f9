package model

// View selects which surface of the application is active
type View string

const (
	ViewBuilder   View = "builder"
	ViewViewer    View = "viewer"
	ViewResponses View = "responses"
)

// Valid reports whether v names a known view
func (v View) Valid() bool {
	switch v {
	case ViewBuilder, ViewViewer, ViewResponses:
		return true
	}
	return false
}
