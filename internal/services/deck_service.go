package services

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/GaddhiOmana/liveslides/internal/models"
)

// ErrDeckNotFound is returned when a deck key or room link does not resolve
var ErrDeckNotFound = errors.New("deck not found")

// DeckService manages slide deck manifests and room links
type DeckService struct {
	database *sql.DB
}

// NewDeckService creates a new deck service
func NewDeckService(database *sql.DB) *DeckService {
	return &DeckService{
		database: database,
	}
}

// ReplaceDeck stores a deck manifest under a key, replacing any previous
// slides. Decks are immutable from the viewer's perspective; replacing the
// manifest is the only mutation.
func (ds *DeckService) ReplaceDeck(deckKey string, slides []models.Slide) error {
	if deckKey == "" {
		return fmt.Errorf("deckKey is required")
	}

	tx, err := ds.database.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	query := `INSERT INTO decks (deck_key, created_at, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(deck_key) DO UPDATE SET updated_at = excluded.updated_at`
	if _, err := tx.Exec(query, deckKey, now, now); err != nil {
		return fmt.Errorf("failed to upsert deck: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM slides WHERE deck_key = ?`, deckKey); err != nil {
		return fmt.Errorf("failed to clear slides: %w", err)
	}

	insert := `INSERT INTO slides (deck_key, position, src, label) VALUES (?, ?, ?, ?)`
	for i, slide := range slides {
		if _, err := tx.Exec(insert, deckKey, i, slide.Src, slide.Label); err != nil {
			return fmt.Errorf("failed to insert slide %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit deck: %w", err)
	}

	log.Printf("Deck replaced: key=%s, slides=%d", deckKey, len(slides))
	return nil
}

// GetDeck returns the deck stored under a key
func (ds *DeckService) GetDeck(deckKey string) (*models.Deck, error) {
	var exists int
	err := ds.database.QueryRow(`SELECT COUNT(1) FROM decks WHERE deck_key = ?`, deckKey).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to query deck: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrDeckNotFound, deckKey)
	}

	query := `SELECT src, label FROM slides WHERE deck_key = ? ORDER BY position`
	rows, err := ds.database.Query(query, deckKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query slides: %w", err)
	}
	defer rows.Close()

	deck := &models.Deck{Key: deckKey}
	for rows.Next() {
		var slide models.Slide
		if err := rows.Scan(&slide.Src, &slide.Label); err != nil {
			return nil, fmt.Errorf("failed to scan slide: %w", err)
		}
		deck.Slides = append(deck.Slides, slide)
	}

	return deck, rows.Err()
}

// LinkRoom links a room to a deck
func (ds *DeckService) LinkRoom(roomID, deckKey string) error {
	if roomID == "" {
		return fmt.Errorf("roomId is required")
	}
	if deckKey == "" {
		return fmt.Errorf("deckKey is required")
	}

	var exists int
	if err := ds.database.QueryRow(`SELECT COUNT(1) FROM decks WHERE deck_key = ?`, deckKey).Scan(&exists); err != nil {
		return fmt.Errorf("failed to query deck: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", ErrDeckNotFound, deckKey)
	}

	query := `INSERT INTO room_decks (room_id, deck_key, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(room_id) DO UPDATE SET deck_key = excluded.deck_key, updated_at = excluded.updated_at`
	if _, err := ds.database.Exec(query, roomID, deckKey, time.Now()); err != nil {
		return fmt.Errorf("failed to link room: %w", err)
	}

	log.Printf("Room %s linked to deck %s", roomID, deckKey)
	return nil
}

// DeckForRoom returns the deck linked to a room
func (ds *DeckService) DeckForRoom(roomID string) (*models.Deck, error) {
	var deckKey string
	err := ds.database.QueryRow(`SELECT deck_key FROM room_decks WHERE room_id = ?`, roomID).Scan(&deckKey)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no deck linked to room %s", ErrDeckNotFound, roomID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query room link: %w", err)
	}

	return ds.GetDeck(deckKey)
}
