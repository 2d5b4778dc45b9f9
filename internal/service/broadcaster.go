package service

// Event names sent to WebSocket subscribers
const (
	EventFormUpdated        = "form_updated"
	EventSubmissionReceived = "submission_received"
	EventGenerationSettled  = "generation_settled"
	EventViewChanged        = "view_changed"
)

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	Broadcast(msgType string, payload interface{})
}

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(string, interface{}) {}

func orNop(b Broadcaster) Broadcaster {
	if b == nil {
		return nopBroadcaster{}
	}
	return b
}
