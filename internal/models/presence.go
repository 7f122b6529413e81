package models

// Role identifies whether a session drives the room or mirrors it
type Role string

const (
	RolePresenter Role = "presenter"
	RoleViewer    Role = "viewer"
)

// PresenceRecord is the per-session record shared with every client in a room.
// One exists per connected session, written by that session, readable by all.
type PresenceRecord struct {
	Role  Role `json:"role"`
	Index int  `json:"index"`
}
