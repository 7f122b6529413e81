package services

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/GaddhiOmana/liveslides/internal/db"
	"github.com/GaddhiOmana/liveslides/internal/models"
)

func newTestDeckService(t *testing.T) *DeckService {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	if err := db.InitDatabase(dbPath); err != nil {
		t.Fatalf("failed to init database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewDeckService(db.DB)
}

func TestReplaceAndGetDeckPreservesOrder(t *testing.T) {
	ds := newTestDeckService(t)

	slides := []models.Slide{
		{Src: "https://example.com/a.png", Label: "Intro"},
		{Src: "https://example.com/b.png"},
		{Src: "https://example.com/c.png", Label: "Summary"},
	}
	if err := ds.ReplaceDeck("deck1", slides); err != nil {
		t.Fatalf("ReplaceDeck failed: %v", err)
	}

	deck, err := ds.GetDeck("deck1")
	if err != nil {
		t.Fatalf("GetDeck failed: %v", err)
	}
	if len(deck.Slides) != 3 {
		t.Fatalf("expected 3 slides, got %d", len(deck.Slides))
	}
	for i, want := range slides {
		if deck.Slides[i] != want {
			t.Errorf("slide %d = %+v, want %+v", i, deck.Slides[i], want)
		}
	}
}

func TestReplaceDeckOverwrites(t *testing.T) {
	ds := newTestDeckService(t)

	if err := ds.ReplaceDeck("deck1", []models.Slide{
		{Src: "a.png"}, {Src: "b.png"}, {Src: "c.png"},
	}); err != nil {
		t.Fatalf("ReplaceDeck failed: %v", err)
	}
	if err := ds.ReplaceDeck("deck1", []models.Slide{{Src: "only.png"}}); err != nil {
		t.Fatalf("second ReplaceDeck failed: %v", err)
	}

	deck, err := ds.GetDeck("deck1")
	if err != nil {
		t.Fatalf("GetDeck failed: %v", err)
	}
	if len(deck.Slides) != 1 || deck.Slides[0].Src != "only.png" {
		t.Errorf("unexpected slides after overwrite: %+v", deck.Slides)
	}
}

func TestGetDeckNotFound(t *testing.T) {
	ds := newTestDeckService(t)

	_, err := ds.GetDeck("missing")
	if !errors.Is(err, ErrDeckNotFound) {
		t.Errorf("expected ErrDeckNotFound, got %v", err)
	}
}

func TestLinkRoomAndDeckForRoom(t *testing.T) {
	ds := newTestDeckService(t)

	if err := ds.ReplaceDeck("deck1", []models.Slide{{Src: "a.png"}}); err != nil {
		t.Fatalf("ReplaceDeck failed: %v", err)
	}
	if err := ds.LinkRoom("room42", "deck1"); err != nil {
		t.Fatalf("LinkRoom failed: %v", err)
	}

	deck, err := ds.DeckForRoom("room42")
	if err != nil {
		t.Fatalf("DeckForRoom failed: %v", err)
	}
	if deck.Key != "deck1" {
		t.Errorf("deck key = %s, want deck1", deck.Key)
	}
}

func TestLinkRoomUnknownDeck(t *testing.T) {
	ds := newTestDeckService(t)

	if err := ds.LinkRoom("room42", "missing"); !errors.Is(err, ErrDeckNotFound) {
		t.Errorf("expected ErrDeckNotFound, got %v", err)
	}
}

func TestDeckForRoomUnlinked(t *testing.T) {
	ds := newTestDeckService(t)

	if _, err := ds.DeckForRoom("lonely"); !errors.Is(err, ErrDeckNotFound) {
		t.Errorf("expected ErrDeckNotFound, got %v", err)
	}
}

func TestRelinkRoomSwitchesDeck(t *testing.T) {
	ds := newTestDeckService(t)

	if err := ds.ReplaceDeck("deck1", []models.Slide{{Src: "a.png"}}); err != nil {
		t.Fatalf("ReplaceDeck failed: %v", err)
	}
	if err := ds.ReplaceDeck("deck2", []models.Slide{{Src: "b.png"}}); err != nil {
		t.Fatalf("ReplaceDeck failed: %v", err)
	}
	if err := ds.LinkRoom("room42", "deck1"); err != nil {
		t.Fatalf("LinkRoom failed: %v", err)
	}
	if err := ds.LinkRoom("room42", "deck2"); err != nil {
		t.Fatalf("re-LinkRoom failed: %v", err)
	}

	deck, err := ds.DeckForRoom("room42")
	if err != nil {
		t.Fatalf("DeckForRoom failed: %v", err)
	}
	if deck.Key != "deck2" {
		t.Errorf("deck key = %s, want deck2", deck.Key)
	}
}
