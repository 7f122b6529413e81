package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"

	"github.com/GaddhiOmana/liveslides/internal/db"
	"github.com/GaddhiOmana/liveslides/internal/models"
	"github.com/GaddhiOmana/liveslides/internal/services"
)

func TestParsePresenterFlag(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"yes", true},
		{"YES", true},
		{"True", true},
		{"0", false},
		{"", false},
		{"no", false},
		{"presenter", false},
		{"2", false},
		{"yess", false},
	}

	for _, tt := range tests {
		if got := ParsePresenterFlag(tt.value); got != tt.want {
			t.Errorf("ParsePresenterFlag(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func newTestRoomRouter(t *testing.T) (*mux.Router, *services.DeckService) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	if err := db.InitDatabase(dbPath); err != nil {
		t.Fatalf("failed to init database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	deckService := services.NewDeckService(db.DB)
	roomHandler := NewRoomHandler(deckService)

	router := mux.NewRouter()
	router.HandleFunc("/api/rooms/{roomId}", roomHandler.GetRoomContext).Methods(http.MethodGet)
	return router, deckService
}

func TestGetRoomContextPresenterMode(t *testing.T) {
	router, deckService := newTestRoomRouter(t)

	slides := []models.Slide{{Src: "a.png", Label: "One"}, {Src: "b.png"}}
	if err := deckService.ReplaceDeck("deck1", slides); err != nil {
		t.Fatalf("ReplaceDeck failed: %v", err)
	}
	if err := deckService.LinkRoom("room42", "deck1"); err != nil {
		t.Fatalf("LinkRoom failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/rooms/room42?presenter=YES", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp RoomContextResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.RoomID != "room42" {
		t.Errorf("roomId = %q, want room42", resp.RoomID)
	}
	if !resp.IsPresenter {
		t.Error("expected presenter mode for presenter=YES")
	}
	if len(resp.Slides) != 2 || resp.Slides[0].Label != "One" {
		t.Errorf("unexpected slides: %+v", resp.Slides)
	}
}

func TestGetRoomContextDefaultsToViewer(t *testing.T) {
	router, _ := newTestRoomRouter(t)

	for _, query := range []string{"", "?presenter=0", "?presenter=nope"} {
		req := httptest.NewRequest(http.MethodGet, "/api/rooms/room42"+query, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		var resp RoomContextResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.IsPresenter {
			t.Errorf("query %q should yield viewer mode", query)
		}
	}
}

func TestGetRoomContextUnknownRoomDegradesGracefully(t *testing.T) {
	router, _ := newTestRoomRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/rooms/never-linked", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (no error paths)", rec.Code)
	}
	var resp RoomContextResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.RoomID != "never-linked" {
		t.Errorf("roomId = %q, want never-linked (passed through verbatim)", resp.RoomID)
	}
	if resp.Slides == nil || len(resp.Slides) != 0 {
		t.Errorf("slides = %v, want empty list", resp.Slides)
	}
}
