package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/GaddhiOmana/liveslides/internal/config"
	"github.com/GaddhiOmana/liveslides/internal/db"
	"github.com/GaddhiOmana/liveslides/internal/models"
	"github.com/GaddhiOmana/liveslides/internal/services"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	if err := db.InitDatabase(dbPath); err != nil {
		t.Fatalf("failed to init database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	deckService := services.NewDeckService(db.DB)
	if err := deckService.ReplaceDeck("deck1", []models.Slide{
		{Src: "a.png"}, {Src: "b.png"}, {Src: "c.png"}, {Src: "d.png"}, {Src: "e.png"},
	}); err != nil {
		t.Fatalf("ReplaceDeck failed: %v", err)
	}
	if err := deckService.LinkRoom("room42", "deck1"); err != nil {
		t.Fatalf("LinkRoom failed: %v", err)
	}

	wsService := services.NewWebSocketService(config.SyncConfig{
		ChannelPrefix: "slides:",
		PresenceTTL:   time.Minute,
		SweepInterval: time.Minute,
		SendBuffer:    16,
	}, clockwork.NewRealClock())
	go wsService.Run()
	t.Cleanup(wsService.Stop)

	router := SetupRoutes(
		NewWebSocketHandler(wsService, deckService),
		NewStaticHandler(t.TempDir()),
		NewRoomHandler(deckService),
		NewDeckHandler(deckService),
	)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func dialRoom(t *testing.T, server *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial %s: %v", path, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readWelcome(t *testing.T, conn *websocket.Conn) models.WelcomePayload {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var env models.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("failed to read welcome: %v", err)
		}
		if env.Type != models.MessageTypeWelcome {
			continue
		}
		var welcome models.WelcomePayload
		if err := json.Unmarshal(env.Payload, &welcome); err != nil {
			t.Fatalf("failed to decode welcome: %v", err)
		}
		return welcome
	}
}

// waitForSlide reads frames until a slide envelope with the wanted index
// arrives, skipping presence syncs along the way
func waitForSlide(t *testing.T, conn *websocket.Conn, want int) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var env models.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("never received slide %d: %v", want, err)
		}
		if env.Type != models.MessageTypeSlide {
			continue
		}
		var payload models.SlidePayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			t.Fatalf("failed to decode slide payload: %v", err)
		}
		if services.CoerceIndex(payload.Index) == want {
			return
		}
	}
}

func TestWebSocketPresenterDrivesViewer(t *testing.T) {
	server := newTestServer(t)

	presenter := dialRoom(t, server, "/ws/room42?presenter=1")
	welcome := readWelcome(t, presenter)
	if welcome.Role != models.RolePresenter {
		t.Fatalf("presenter welcome role = %s", welcome.Role)
	}
	if welcome.SlideCount != 5 {
		t.Fatalf("presenter slide count = %d, want 5", welcome.SlideCount)
	}

	viewer := dialRoom(t, server, "/ws/room42")
	if w := readWelcome(t, viewer); w.Role != models.RoleViewer {
		t.Fatalf("viewer welcome role = %s", w.Role)
	}

	env := models.NewEnvelope(models.MessageTypeGoto, models.GotoPayload{Index: json.Number("3")})
	if err := presenter.WriteJSON(env); err != nil {
		t.Fatalf("presenter write failed: %v", err)
	}

	waitForSlide(t, viewer, 3)
}

func TestWebSocketLateJoinerReconciles(t *testing.T) {
	server := newTestServer(t)

	presenter := dialRoom(t, server, "/ws/room42?presenter=true")
	readWelcome(t, presenter)

	env := models.NewEnvelope(models.MessageTypeGoto, models.GotoPayload{Index: json.Number("2")})
	if err := presenter.WriteJSON(env); err != nil {
		t.Fatalf("presenter write failed: %v", err)
	}
	// Give the hub a moment to process the navigation before joining
	time.Sleep(100 * time.Millisecond)

	viewer := dialRoom(t, server, "/ws/room42")
	welcome := readWelcome(t, viewer)
	if welcome.Index != 2 {
		t.Errorf("late joiner welcome index = %d, want 2", welcome.Index)
	}
}

func TestWebSocketUnknownRoomStillConnects(t *testing.T) {
	server := newTestServer(t)

	conn := dialRoom(t, server, "/ws/no-deck-room")
	welcome := readWelcome(t, conn)
	if welcome.SlideCount != 0 {
		t.Errorf("slide count = %d, want 0", welcome.SlideCount)
	}
	if welcome.Index != 0 {
		t.Errorf("index = %d, want 0", welcome.Index)
	}
}
