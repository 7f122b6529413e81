package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// BridgeConfig holds NATS connection settings for the cluster bridge
type BridgeConfig struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultBridgeConfig returns default bridge configuration
func DefaultBridgeConfig(url string) BridgeConfig {
	return BridgeConfig{
		URL:           url,
		SubjectPrefix: "liveslides.rooms",
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// bridgeEvent is the payload relayed between server instances
type bridgeEvent struct {
	ServerID string `json:"serverId"`
	Index    int    `json:"index"`
}

// Bridge relays slide broadcasts between server instances over NATS so that
// clients of one room may be spread across several servers. Local presenter
// broadcasts are published to <prefix>.<roomID>.slide; remote ones are
// applied to the local hub.
type Bridge struct {
	nc       *nats.Conn
	sub      *nats.Subscription
	service  *WebSocketService
	config   BridgeConfig
	serverID string
}

// NewBridge connects to NATS and starts relaying slide events into the
// websocket service
func NewBridge(cfg BridgeConfig, service *WebSocketService) (*Bridge, error) {
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Printf("NATS error: %v", err)
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	b := &Bridge{
		nc:       nc,
		service:  service,
		config:   cfg,
		serverID: uuid.NewString(),
	}

	sub, err := nc.Subscribe(cfg.SubjectPrefix+".*.slide", b.handleRemote)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to subscribe to slide subjects: %w", err)
	}
	b.sub = sub

	log.Printf("Cluster bridge connected: url=%s server=%s", cfg.URL, b.serverID)
	return b, nil
}

// PublishSlide relays a local slide broadcast to the other server instances
func (b *Bridge) PublishSlide(roomID string, index int) error {
	data, err := json.Marshal(bridgeEvent{ServerID: b.serverID, Index: index})
	if err != nil {
		return fmt.Errorf("failed to marshal bridge event: %w", err)
	}
	if err := b.nc.Publish(b.slideSubject(roomID), data); err != nil {
		return fmt.Errorf("failed to publish slide event: %w", err)
	}
	return nil
}

// handleRemote applies a slide event published by another server instance
func (b *Bridge) handleRemote(msg *nats.Msg) {
	var event bridgeEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		log.Printf("Ignoring malformed bridge event on %s: %v", msg.Subject, err)
		return
	}
	if event.ServerID == b.serverID {
		return
	}

	roomID, ok := roomIDFromSubject(msg.Subject, b.config.SubjectPrefix)
	if !ok {
		log.Printf("Ignoring bridge event with unexpected subject: %s", msg.Subject)
		return
	}
	b.service.ApplyRemoteSlide(roomID, event.Index)
}

// Close drains the subscription and closes the NATS connection
func (b *Bridge) Close() {
	if b.sub != nil {
		if err := b.sub.Unsubscribe(); err != nil {
			log.Printf("Failed to unsubscribe bridge: %v", err)
		}
	}
	b.nc.Close()
}

func (b *Bridge) slideSubject(roomID string) string {
	return b.config.SubjectPrefix + "." + roomID + ".slide"
}

// roomIDFromSubject extracts the room identifier from <prefix>.<roomID>.slide
func roomIDFromSubject(subject, prefix string) (string, bool) {
	rest, ok := strings.CutPrefix(subject, prefix+".")
	if !ok {
		return "", false
	}
	roomID, ok := strings.CutSuffix(rest, ".slide")
	if !ok || roomID == "" {
		return "", false
	}
	return roomID, true
}
