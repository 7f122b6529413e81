package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/GaddhiOmana/liveslides/internal/models"
	"github.com/GaddhiOmana/liveslides/internal/services"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// WebSocketHandler upgrades sync connections and pumps frames between the
// socket and the websocket service
type WebSocketHandler struct {
	wsService   *services.WebSocketService
	deckService *services.DeckService
	upgrader    websocket.Upgrader
}

// NewWebSocketHandler creates a new websocket handler
func NewWebSocketHandler(wsService *services.WebSocketService, deckService *services.DeckService) *WebSocketHandler {
	return &WebSocketHandler{
		wsService:   wsService,
		deckService: deckService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Viewers are served from arbitrary origins
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleWebSocket subscribes a client to a room channel
// GET /ws/{roomId}?presenter=...
func (wh *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]

	role := models.RoleViewer
	if ParsePresenterFlag(r.URL.Query().Get("presenter")) {
		role = models.RolePresenter
	}

	slideCount := 0
	if deck, err := wh.deckService.DeckForRoom(roomID); err == nil {
		slideCount = len(deck.Slides)
	}

	conn, err := wh.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed for room %s: %v", roomID, err)
		return
	}

	state := services.NewClientState(newSessionID(), role, slideCount)
	client := services.NewClient(roomID, state, wh.wsService.SendBuffer())
	wh.wsService.Register(client)

	go wh.writePump(conn, client)
	go wh.readPump(conn, client)
}

// newSessionID returns a short random session identifier. It lives only as
// long as the connection and is never persisted.
func newSessionID() string {
	return uuid.NewString()[:8]
}

// readPump reads client envelopes until the connection drops
func (wh *WebSocketHandler) readPump(conn *websocket.Conn, client *services.Client) {
	defer func() {
		wh.wsService.Unregister(client)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		wh.wsService.TouchPresence(client.RoomID, client.SessionID)
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var envelope models.Envelope
		if err := conn.ReadJSON(&envelope); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error for session %s: %v", client.SessionID, err)
			}
			return
		}
		wh.wsService.HandleEnvelope(client, envelope)
	}
}

// writePump drains the client's send queue onto the socket and keeps the
// connection alive with pings. Write failures close the connection; they are
// never surfaced to the peer.
func (wh *WebSocketHandler) writePump(conn *websocket.Conn, client *services.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case envelope, ok := <-client.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(envelope); err != nil {
				log.Printf("WebSocket write error for session %s: %v", client.SessionID, err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
