package websocket

import (
	"encoding/json"
	"log/slog"
	"time"

	"parkeasy/internal/entities"
)

type MessageType string

const (
	TypeSpotAvailabilityChanged MessageType = "spot.availability_changed"
	TypeSpotDeleted             MessageType = "spot.deleted"
)

// Message is the envelope of every pushed event.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

func NewMessage(t MessageType, payload any) Message {
	return Message{Type: t, Timestamp: time.Now().UTC(), Payload: payload}
}

type SpotDeletedPayload struct {
	ID string `json:"id"`
}

// Broadcaster turns spot events into hub messages.
type Broadcaster struct {
	hub *Hub
	log *slog.Logger
}

func NewBroadcaster(hub *Hub, log *slog.Logger) *Broadcaster {
	return &Broadcaster{hub: hub, log: log}
}

func (b *Broadcaster) SpotChanged(spot entities.SpotResponse) {
	b.publish(NewMessage(TypeSpotAvailabilityChanged, spot))
}

func (b *Broadcaster) SpotDeleted(id string) {
	b.publish(NewMessage(TypeSpotDeleted, SpotDeletedPayload{ID: id}))
}

func (b *Broadcaster) publish(m Message) {
	data, err := json.Marshal(m)
	if err != nil {
		b.log.Error("marshal websocket message", "type", m.Type, "error", err)
		return
	}
	b.hub.Broadcast(data)
}
