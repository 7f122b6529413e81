package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/GaddhiOmana/liveslides/internal/models"
	"github.com/GaddhiOmana/liveslides/internal/services"
)

// RoomHandler resolves room rendering contexts
type RoomHandler struct {
	deckService *services.DeckService
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(deckService *services.DeckService) *RoomHandler {
	return &RoomHandler{
		deckService: deckService,
	}
}

// ParsePresenterFlag reports whether a presenter query parameter value
// enables presenter mode. Only "1", "true" and "yes" (case-insensitive)
// qualify; anything else, including absence, yields viewer mode.
func ParsePresenterFlag(value string) bool {
	switch strings.ToLower(value) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// RoomContextResponse is the rendering context for a room
type RoomContextResponse struct {
	RoomID      string         `json:"roomId"`
	IsPresenter bool           `json:"isPresenter"`
	Slides      []models.Slide `json:"slides"`
}

// GetRoomContext resolves the rendering context for a room. The room
// identifier is passed through verbatim; there are no error paths, a room
// without a deck simply renders empty.
// GET /api/rooms/{roomId}?presenter=...
func (rh *RoomHandler) GetRoomContext(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	roomID := vars["roomId"]
	isPresenter := ParsePresenterFlag(r.URL.Query().Get("presenter"))

	response := RoomContextResponse{
		RoomID:      roomID,
		IsPresenter: isPresenter,
		Slides:      rh.slidesForRoom(roomID),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// slidesForRoom returns the slides linked to a room, degrading to an empty
// list when no deck is linked
func (rh *RoomHandler) slidesForRoom(roomID string) []models.Slide {
	deck, err := rh.deckService.DeckForRoom(roomID)
	if err != nil {
		if !errors.Is(err, services.ErrDeckNotFound) {
			log.Printf("Failed to resolve deck for room %s: %v", roomID, err)
		}
		return []models.Slide{}
	}
	if deck.Slides == nil {
		return []models.Slide{}
	}
	return deck.Slides
}
