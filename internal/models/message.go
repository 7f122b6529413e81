package models

import "encoding/json"

// Message types sent by clients
const (
	MessageTypeNavigate = "navigate"
	MessageTypeGoto     = "goto"
	MessageTypeFollow   = "follow"
	MessageTypeResync   = "resync"
)

// Message types sent by the server
const (
	MessageTypeWelcome       = "welcome"
	MessageTypeSlide         = "slide"
	MessageTypePresenceState = "presence_state"
)

// Navigation directions accepted by the navigate message
const (
	DirectionNext     = "next"
	DirectionPrevious = "previous"
)

// Envelope is the websocket frame exchanged with clients. Payload is decoded
// into one of the typed payloads below depending on Type.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NavigatePayload moves the session one slide forward or backward
type NavigatePayload struct {
	Direction string `json:"direction"`
}

// GotoPayload jumps the session to an absolute slide index
type GotoPayload struct {
	Index json.Number `json:"index"`
}

// FollowPayload toggles a viewer's follow-live flag
type FollowPayload struct {
	Enabled bool `json:"enabled"`
}

// SlidePayload carries a slide index change to subscribed clients
type SlidePayload struct {
	Index json.Number `json:"index"`
}

// WelcomePayload is sent once to a session after it subscribes
type WelcomePayload struct {
	SessionID  string `json:"sessionId"`
	Role       Role   `json:"role"`
	Index      int    `json:"index"`
	SlideCount int    `json:"slideCount"`
}

// PresenceStatePayload is fanned out to a room on every membership change,
// keyed by session identifier.
type PresenceStatePayload struct {
	Records map[string]PresenceRecord `json:"records"`
}

// NewEnvelope marshals a typed payload into a wire envelope
func NewEnvelope(msgType string, payload interface{}) Envelope {
	raw, err := json.Marshal(payload)
	if err != nil {
		// payload structs above contain only marshalable fields
		return Envelope{Type: msgType}
	}
	return Envelope{Type: msgType, Payload: raw}
}
