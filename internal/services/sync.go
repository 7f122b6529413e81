package services

import (
	"encoding/json"
	"math"

	"github.com/GaddhiOmana/liveslides/internal/models"
)

// ClientPhase tracks where a session is in its lifecycle
type ClientPhase int

const (
	PhaseConnecting ClientPhase = iota
	PhaseSubscribed
	PhaseActive
	PhaseTornDown
)

// ClientState is the view state owned by a single connected session: the
// current slide index, bounded to the deck, and the follow-live flag.
type ClientState struct {
	SessionID  string
	Role       models.Role
	Index      int
	FollowLive bool
	SlideCount int
	Phase      ClientPhase
}

// NewClientState creates the initial state for a session. Every session
// starts at index 0 with follow-live enabled.
func NewClientState(sessionID string, role models.Role, slideCount int) *ClientState {
	return &ClientState{
		SessionID:  sessionID,
		Role:       role,
		Index:      0,
		FollowLive: true,
		SlideCount: slideCount,
		Phase:      PhaseConnecting,
	}
}

// ClampIndex bounds an index to [0, slideCount-1]. An empty deck pins the
// index to 0.
func ClampIndex(index, slideCount int) int {
	if index < 0 || slideCount <= 0 {
		return 0
	}
	if index > slideCount-1 {
		return slideCount - 1
	}
	return index
}

// Navigate moves the session one slide in the given direction. Returns the
// resulting index and whether it changed.
func (cs *ClientState) Navigate(direction string) (int, bool) {
	target := cs.Index
	switch direction {
	case models.DirectionNext:
		target = cs.Index + 1
	case models.DirectionPrevious:
		target = cs.Index - 1
	}
	return cs.Goto(target)
}

// Goto jumps the session to an absolute index, clamped to the deck
func (cs *ClientState) Goto(index int) (int, bool) {
	clamped := ClampIndex(index, cs.SlideCount)
	changed := clamped != cs.Index
	cs.Index = clamped
	return cs.Index, changed
}

// ApplyBroadcast applies an incoming slide-change notification. Only a
// following viewer reacts; the presenter is the source of truth and a frozen
// viewer suppresses updates until re-sync. Returns whether the index was
// applied.
func (cs *ClientState) ApplyBroadcast(index int) bool {
	if cs.Role == models.RolePresenter {
		return false
	}
	if !cs.FollowLive {
		return false
	}
	if cs.Phase != PhaseActive && cs.Phase != PhaseSubscribed {
		return false
	}
	cs.Index = ClampIndex(index, cs.SlideCount)
	return true
}

// Resync re-enables follow-live. It does not pull the presenter's index;
// reconciliation happens on the next presence-sync or broadcast.
func (cs *ClientState) Resync() {
	cs.FollowLive = true
}

// SetFollow toggles the follow-live flag
func (cs *ClientState) SetFollow(enabled bool) {
	cs.FollowLive = enabled
}

// PresenceRecord builds the record this session shares with the room
func (cs *ClientState) PresenceRecord() models.PresenceRecord {
	return models.PresenceRecord{
		Role:  cs.Role,
		Index: cs.Index,
	}
}

// ReconcilePresence computes a viewer's target index from the known presence
// records: the maximum index reported by any presenter. Ties break toward the
// highest value, not the most recent record. With no presenter present the
// target is 0.
func ReconcilePresence(records map[string]models.PresenceRecord) int {
	target := 0
	for _, record := range records {
		if record.Role != models.RolePresenter {
			continue
		}
		if record.Index > target {
			target = record.Index
		}
	}
	return target
}

// CoerceIndex parses a wire index, coercing anything non-numeric to 0
func CoerceIndex(n json.Number) int {
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) {
		return 0
	}
	return int(f)
}
