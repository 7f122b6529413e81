package services

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/GaddhiOmana/liveslides/internal/models"
)

// PresenceRegistry holds the last known role and index reported by each
// session in one room. Entries go stale when a session stops reporting;
// SweepStale evicts anything not touched within the TTL.
type PresenceRegistry struct {
	mu      sync.RWMutex
	clock   clockwork.Clock
	ttl     time.Duration
	entries map[string]*presenceEntry // sessionID -> entry
}

type presenceEntry struct {
	record   models.PresenceRecord
	lastSeen time.Time
}

// NewPresenceRegistry creates a registry with the given staleness TTL
func NewPresenceRegistry(clock clockwork.Clock, ttl time.Duration) *PresenceRegistry {
	return &PresenceRegistry{
		clock:   clock,
		ttl:     ttl,
		entries: make(map[string]*presenceEntry),
	}
}

// Track records a session's presence and refreshes its staleness deadline
func (pr *PresenceRegistry) Track(sessionID string, record models.PresenceRecord) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.entries[sessionID] = &presenceEntry{
		record:   record,
		lastSeen: pr.clock.Now(),
	}
}

// Touch refreshes a session's staleness deadline without changing its record.
// Returns false if the session is not tracked.
func (pr *PresenceRegistry) Touch(sessionID string) bool {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	entry, ok := pr.entries[sessionID]
	if !ok {
		return false
	}
	entry.lastSeen = pr.clock.Now()
	return true
}

// Remove drops a session from the registry
func (pr *PresenceRegistry) Remove(sessionID string) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	delete(pr.entries, sessionID)
}

// Snapshot returns a copy of all tracked records keyed by session identifier
func (pr *PresenceRegistry) Snapshot() map[string]models.PresenceRecord {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	records := make(map[string]models.PresenceRecord, len(pr.entries))
	for id, entry := range pr.entries {
		records[id] = entry.record
	}
	return records
}

// Len returns the number of tracked sessions
func (pr *PresenceRegistry) Len() int {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	return len(pr.entries)
}

// SweepStale evicts entries older than the TTL and returns the evicted
// session identifiers
func (pr *PresenceRegistry) SweepStale() []string {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	cutoff := pr.clock.Now().Add(-pr.ttl)
	var evicted []string
	for id, entry := range pr.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(pr.entries, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}
