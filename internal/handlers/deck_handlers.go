package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/GaddhiOmana/liveslides/internal/models"
	"github.com/GaddhiOmana/liveslides/internal/services"
)

// DeckHandler handles HTTP requests for deck manifests
type DeckHandler struct {
	deckService *services.DeckService
}

// NewDeckHandler creates a new deck handler
func NewDeckHandler(deckService *services.DeckService) *DeckHandler {
	return &DeckHandler{
		deckService: deckService,
	}
}

// ReplaceDeckRequest represents a deck manifest upload
type ReplaceDeckRequest struct {
	Slides []models.Slide `json:"slides"`
}

// ReplaceDeckResponse represents the response
type ReplaceDeckResponse struct {
	Success    bool `json:"success"`
	SlideCount int  `json:"slideCount"`
}

// ReplaceDeck stores a deck manifest under a key
// PUT /api/decks/{deckKey}
func (dh *DeckHandler) ReplaceDeck(w http.ResponseWriter, r *http.Request) {
	deckKey := mux.Vars(r)["deckKey"]

	var req ReplaceDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := dh.deckService.ReplaceDeck(deckKey, req.Slides); err != nil {
		log.Printf("Failed to replace deck: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	response := ReplaceDeckResponse{
		Success:    true,
		SlideCount: len(req.Slides),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// GetDeck returns a deck manifest
// GET /api/decks/{deckKey}
func (dh *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	deckKey := mux.Vars(r)["deckKey"]

	deck, err := dh.deckService.GetDeck(deckKey)
	if err != nil {
		if errors.Is(err, services.ErrDeckNotFound) {
			http.Error(w, "Deck not found", http.StatusNotFound)
			return
		}
		log.Printf("Failed to get deck: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(deck)
}

// LinkDeckRequest represents a request to link a room to a deck
type LinkDeckRequest struct {
	DeckKey string `json:"deckKey"`
}

// LinkDeckResponse represents the response
type LinkDeckResponse struct {
	Success bool `json:"success"`
}

// LinkRoomDeck links a room to a deck
// POST /api/rooms/{roomId}/deck
func (dh *DeckHandler) LinkRoomDeck(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]

	var req LinkDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.DeckKey == "" {
		http.Error(w, "deckKey is required", http.StatusBadRequest)
		return
	}

	if err := dh.deckService.LinkRoom(roomID, req.DeckKey); err != nil {
		if errors.Is(err, services.ErrDeckNotFound) {
			http.Error(w, "Deck not found", http.StatusNotFound)
			return
		}
		log.Printf("Failed to link room to deck: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	response := LinkDeckResponse{
		Success: true,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
