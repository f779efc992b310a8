package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Saurabhrajput1234/BookMySeat/internal/models"
)

// SeatStatusProducer is the slice of the Kafka producer the broadcaster
// needs; nil disables cross-instance delivery.
type SeatStatusProducer interface {
	Publish(topic string, key string, value []byte) error
}

// Broadcaster implements the booking service's Publisher contract. It
// emits to the local SSE hub immediately and mirrors the update onto the
// seat-status topic so sibling server instances can do the same for their
// own subscribers. Both paths are best-effort.
type Broadcaster struct {
	hub      *Hub
	producer SeatStatusProducer
	topic    string
	origin   string
}

// NewBroadcaster wires the hub to the topic. origin identifies this server
// instance so its own messages can be skipped on consumption.
func NewBroadcaster(hub *Hub, producer SeatStatusProducer, topic, origin string) *Broadcaster {
	return &Broadcaster{hub: hub, producer: producer, topic: topic, origin: origin}
}

func (b *Broadcaster) PublishSeatStatus(ctx context.Context, update models.SeatStatusUpdate) error {
	b.hub.Emit(update)

	if b.producer == nil {
		return nil
	}

	msg := models.SeatStatusMessage{Origin: b.origin, Update: update}
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal seat status: %w", err)
	}
	key := fmt.Sprintf("event-%d", update.EventID)
	if err := b.producer.Publish(b.topic, key, value); err != nil {
		return fmt.Errorf("publish seat status: %w", err)
	}
	return nil
}

// Origin returns this instance's identifier.
func (b *Broadcaster) Origin() string { return b.origin }

// HandleRemote feeds a consumed seat-status message into the local hub,
// ignoring messages this instance published itself.
func (b *Broadcaster) HandleRemote(msg models.SeatStatusMessage) {
	if msg.Origin == b.origin {
		return
	}
	b.hub.Emit(msg.Update)
}
