package services

import (
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/GaddhiOmana/liveslides/internal/config"
	"github.com/GaddhiOmana/liveslides/internal/models"
)

// Client is one websocket session subscribed to a room. Outgoing envelopes
// are queued on Send and drained by the transport layer; the hub never writes
// to the socket directly.
type Client struct {
	SessionID string
	RoomID    string
	State     *ClientState
	Send      chan models.Envelope
}

// NewClient creates a client with a buffered send queue
func NewClient(roomID string, state *ClientState, buffer int) *Client {
	if buffer <= 0 {
		buffer = 32
	}
	return &Client{
		SessionID: state.SessionID,
		RoomID:    roomID,
		State:     state,
		Send:      make(chan models.Envelope, buffer),
	}
}

// SlidePublisher relays presenter slide broadcasts to other server instances
type SlidePublisher interface {
	PublishSlide(roomID string, index int) error
}

// room groups the clients and presence registry for one channel
type room struct {
	id       string
	channel  string
	clients  map[string]*Client
	presence *PresenceRegistry
}

type inboundMessage struct {
	client   *Client
	envelope models.Envelope
}

type remoteSlide struct {
	roomID string
	index  int
}

type touchRequest struct {
	roomID    string
	sessionID string
}

// WebSocketService owns every active room and serializes membership changes,
// inbound messages and presence sweeps through a single Run loop.
type WebSocketService struct {
	register   chan *Client
	unregister chan *Client
	messages   chan inboundMessage
	remote     chan remoteSlide
	touches    chan touchRequest
	shutdown   chan struct{}

	rooms map[string]*room

	clock      clockwork.Clock
	prefix     string
	ttl        time.Duration
	sweepEvery time.Duration
	sendBuffer int

	publisher SlidePublisher
}

// NewWebSocketService creates a new websocket service
func NewWebSocketService(cfg config.SyncConfig, clock clockwork.Clock) *WebSocketService {
	return &WebSocketService{
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		messages:   make(chan inboundMessage, 256),
		remote:     make(chan remoteSlide, 64),
		touches:    make(chan touchRequest, 64),
		shutdown:   make(chan struct{}),
		rooms:      make(map[string]*room),
		clock:      clock,
		prefix:     cfg.ChannelPrefix,
		ttl:        cfg.PresenceTTL,
		sweepEvery: cfg.SweepInterval,
		sendBuffer: cfg.SendBuffer,
	}
}

// SetPublisher wires the cluster bridge used to relay slide broadcasts
func (ws *WebSocketService) SetPublisher(p SlidePublisher) {
	ws.publisher = p
}

// SendBuffer returns the configured per-client send queue size
func (ws *WebSocketService) SendBuffer() int {
	return ws.sendBuffer
}

// Run processes room events until Stop is called
func (ws *WebSocketService) Run() {
	ticker := ws.clock.NewTicker(ws.sweepEvery)
	defer ticker.Stop()

	log.Println("WebSocket service started")
	for {
		select {
		case client := <-ws.register:
			ws.handleRegister(client)
		case client := <-ws.unregister:
			ws.handleUnregister(client)
		case msg := <-ws.messages:
			ws.handleMessage(msg.client, msg.envelope)
		case rs := <-ws.remote:
			ws.handleRemoteSlide(rs.roomID, rs.index)
		case t := <-ws.touches:
			ws.handleTouch(t.roomID, t.sessionID)
		case <-ticker.Chan():
			ws.sweepPresence()
		case <-ws.shutdown:
			log.Println("WebSocket service stopped")
			return
		}
	}
}

// Stop shuts down the Run loop
func (ws *WebSocketService) Stop() {
	select {
	case <-ws.shutdown:
		// already stopped
	default:
		close(ws.shutdown)
	}
}

// Register queues a client for subscription to its room
func (ws *WebSocketService) Register(client *Client) {
	ws.register <- client
}

// Unregister queues a client for teardown
func (ws *WebSocketService) Unregister(client *Client) {
	ws.unregister <- client
}

// HandleEnvelope queues an inbound client message. A full queue drops the
// message rather than blocking the reader.
func (ws *WebSocketService) HandleEnvelope(client *Client, envelope models.Envelope) {
	select {
	case ws.messages <- inboundMessage{client: client, envelope: envelope}:
	default:
		log.Printf("Message queue full, dropping %s from session %s", envelope.Type, client.SessionID)
	}
}

// ApplyRemoteSlide queues a slide broadcast received from another server
// instance via the cluster bridge
func (ws *WebSocketService) ApplyRemoteSlide(roomID string, index int) {
	select {
	case ws.remote <- remoteSlide{roomID: roomID, index: index}:
	default:
		log.Printf("Remote slide queue full, dropping index %d for room %s", index, roomID)
	}
}

// TouchPresence refreshes a session's presence deadline, typically on pong
func (ws *WebSocketService) TouchPresence(roomID, sessionID string) {
	select {
	case ws.touches <- touchRequest{roomID: roomID, sessionID: sessionID}:
	default:
	}
}

func (ws *WebSocketService) getOrCreateRoom(roomID string) *room {
	if rm, ok := ws.rooms[roomID]; ok {
		return rm
	}
	rm := &room{
		id:       roomID,
		channel:  ws.prefix + roomID,
		clients:  make(map[string]*Client),
		presence: NewPresenceRegistry(ws.clock, ws.ttl),
	}
	ws.rooms[roomID] = rm
	log.Printf("Channel opened: %s", rm.channel)
	return rm
}

func (ws *WebSocketService) handleRegister(client *Client) {
	rm := ws.getOrCreateRoom(client.RoomID)
	rm.clients[client.SessionID] = client
	client.State.Phase = PhaseSubscribed

	// A joining viewer reconciles against the presence already in the room
	// before its own record is considered.
	if client.State.Role == models.RoleViewer {
		client.State.Goto(ReconcilePresence(rm.presence.Snapshot()))
	}
	rm.presence.Track(client.SessionID, client.State.PresenceRecord())

	ws.deliver(client, models.NewEnvelope(models.MessageTypeWelcome, models.WelcomePayload{
		SessionID:  client.SessionID,
		Role:       client.State.Role,
		Index:      client.State.Index,
		SlideCount: client.State.SlideCount,
	}))
	client.State.Phase = PhaseActive

	// A subscribing presenter broadcasts immediately so late joiners do not
	// have to wait for its next navigation.
	if client.State.Role == models.RolePresenter {
		ws.broadcastSlide(rm, client.State.Index, client.SessionID, true)
	}
	ws.fanOutPresence(rm)

	log.Printf("Session subscribed: channel=%s session=%s role=%s", rm.channel, client.SessionID, client.State.Role)
}

func (ws *WebSocketService) handleUnregister(client *Client) {
	rm, ok := ws.rooms[client.RoomID]
	if !ok {
		return
	}
	if _, ok := rm.clients[client.SessionID]; !ok {
		return
	}

	delete(rm.clients, client.SessionID)
	rm.presence.Remove(client.SessionID)
	client.State.Phase = PhaseTornDown
	close(client.Send)

	log.Printf("Session torn down: channel=%s session=%s", rm.channel, client.SessionID)

	if len(rm.clients) == 0 {
		delete(ws.rooms, rm.id)
		log.Printf("Channel released: %s", rm.channel)
		return
	}
	ws.fanOutPresence(rm)
}

func (ws *WebSocketService) handleMessage(client *Client, envelope models.Envelope) {
	rm, ok := ws.rooms[client.RoomID]
	if !ok || client.State.Phase == PhaseTornDown {
		return
	}
	rm.presence.Touch(client.SessionID)

	switch envelope.Type {
	case models.MessageTypeNavigate:
		var payload models.NavigatePayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			log.Printf("Bad navigate payload from session %s: %v", client.SessionID, err)
			return
		}
		client.State.Navigate(payload.Direction)
		ws.afterNavigation(rm, client)

	case models.MessageTypeGoto:
		// A non-numeric index coerces to 0 rather than erroring out.
		var payload models.GotoPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			log.Printf("Non-numeric goto payload from session %s, coercing to 0", client.SessionID)
		}
		client.State.Goto(CoerceIndex(payload.Index))
		ws.afterNavigation(rm, client)

	case models.MessageTypeFollow:
		var payload models.FollowPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			log.Printf("Bad follow payload from session %s: %v", client.SessionID, err)
			return
		}
		client.State.SetFollow(payload.Enabled)

	case models.MessageTypeResync:
		// Soft resync: re-enable follow-live and republish presence. The
		// presence sync that follows carries the correction.
		client.State.Resync()
		rm.presence.Track(client.SessionID, client.State.PresenceRecord())
		ws.fanOutPresence(rm)

	default:
		log.Printf("Ignoring unknown message type %q from session %s", envelope.Type, client.SessionID)
	}
}

// afterNavigation republishes presence and broadcasts for a presenter. A
// viewer's navigation stays local: its index may diverge until re-sync.
func (ws *WebSocketService) afterNavigation(rm *room, client *Client) {
	if client.State.Role != models.RolePresenter {
		return
	}
	rm.presence.Track(client.SessionID, client.State.PresenceRecord())
	ws.broadcastSlide(rm, client.State.Index, client.SessionID, true)
	ws.fanOutPresence(rm)
}

func (ws *WebSocketService) handleRemoteSlide(roomID string, index int) {
	rm, ok := ws.rooms[roomID]
	if !ok {
		return
	}
	ws.broadcastSlide(rm, index, "", false)
}

func (ws *WebSocketService) handleTouch(roomID, sessionID string) {
	rm, ok := ws.rooms[roomID]
	if !ok {
		return
	}
	rm.presence.Touch(sessionID)
}

// broadcastSlide delivers a slide-change notification to every subscriber in
// the room that applies it. The sender is skipped; a frozen viewer receives
// nothing until re-sync.
func (ws *WebSocketService) broadcastSlide(rm *room, index int, senderID string, publish bool) {
	envelope := models.NewEnvelope(models.MessageTypeSlide, models.SlidePayload{
		Index: json.Number(strconv.Itoa(index)),
	})

	for id, client := range rm.clients {
		if id == senderID {
			continue
		}
		if client.State.ApplyBroadcast(index) {
			rm.presence.Track(id, client.State.PresenceRecord())
			ws.deliver(client, envelope)
		}
	}

	if publish && ws.publisher != nil {
		if err := ws.publisher.PublishSlide(rm.id, index); err != nil {
			log.Printf("Failed to publish slide to bridge for channel %s: %v", rm.channel, err)
		}
	}
}

// fanOutPresence sends the room's presence state to every subscriber and
// reconciles following viewers against the presenters on record
func (ws *WebSocketService) fanOutPresence(rm *room) {
	snapshot := rm.presence.Snapshot()
	envelope := models.NewEnvelope(models.MessageTypePresenceState, models.PresenceStatePayload{
		Records: snapshot,
	})
	for _, client := range rm.clients {
		ws.deliver(client, envelope)
	}

	target := ReconcilePresence(snapshot)
	for id, client := range rm.clients {
		if client.State.Role != models.RoleViewer || !client.State.FollowLive {
			continue
		}
		if _, changed := client.State.Goto(target); changed {
			rm.presence.Track(id, client.State.PresenceRecord())
			ws.deliver(client, models.NewEnvelope(models.MessageTypeSlide, models.SlidePayload{
				Index: json.Number(strconv.Itoa(client.State.Index)),
			}))
		}
	}
}

// deliver queues an envelope for one client, dropping it if the client's
// queue is full. Delivery failures are never surfaced to peers.
func (ws *WebSocketService) deliver(client *Client, envelope models.Envelope) {
	select {
	case client.Send <- envelope:
	default:
		log.Printf("Send queue full for session %s, dropping %s", client.SessionID, envelope.Type)
	}
}

// sweepPresence evicts stale presence records in every room and notifies the
// survivors
func (ws *WebSocketService) sweepPresence() {
	for _, rm := range ws.rooms {
		evicted := rm.presence.SweepStale()
		if len(evicted) == 0 {
			continue
		}
		log.Printf("Evicted %d stale presence record(s) from channel %s", len(evicted), rm.channel)
		ws.fanOutPresence(rm)
	}
}
