package service

import (
	"formbuilder/internal/app"
	"formbuilder/internal/model"
)

// ViewState is the selected view together with the share link
type ViewState struct {
	View      model.View `json:"view"`
	ShareLink string     `json:"shareLink,omitempty"`
}

// ViewService selects the top-level view and builds share links
type ViewService struct {
	state     *app.App
	baseURL   string
	broadcast Broadcaster
}

// NewViewService creates a view service. baseURL is the address of the
// builder page used for share links.
func NewViewService(state *app.App, baseURL string, broadcast Broadcaster) *ViewService {
	return &ViewService{
		state:     state,
		baseURL:   baseURL,
		broadcast: orNop(broadcast),
	}
}

// Resolve returns the view for a URL fragment
func (s *ViewService) Resolve(fragment string) model.View {
	return s.state.ResolveView(fragment)
}

// Select changes the view and notifies subscribers
func (s *ViewService) Select(v model.View) (ViewState, error) {
	if err := s.state.SetView(v); err != nil {
		return ViewState{}, err
	}
	s.broadcast.Broadcast(EventViewChanged, ViewState{View: v})
	return ViewState{View: v}, nil
}

// ShareLink returns the link that opens the fill-in view. base overrides
// the configured base URL when non-empty.
func (s *ViewService) ShareLink(base string) (string, error) {
	if base == "" {
		base = s.baseURL
	}
	return app.ShareLink(base)
}
