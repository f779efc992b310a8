package notify

import (
	"context"
	"sync"

	"github.com/Saurabhrajput1234/BookMySeat/internal/models"
)

// Hub fans seat-status updates out to every subscriber of an event's
// channel. Sends are non-blocking: a slow client misses updates rather
// than stalling the publisher, and catches up on its next full fetch.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64][]chan models.SeatStatusUpdate
}

func NewHub() *Hub {
	return &Hub{clients: make(map[int64][]chan models.SeatStatusUpdate)}
}

// Subscribe joins the event's update group. The returned channel is closed
// and removed from the group when ctx is done.
func (h *Hub) Subscribe(ctx context.Context, eventID int64) chan models.SeatStatusUpdate {
	clientChan := make(chan models.SeatStatusUpdate, 10)

	h.mu.Lock()
	h.clients[eventID] = append(h.clients[eventID], clientChan)
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.removeClient(eventID, clientChan)
	}()

	return clientChan
}

// Emit delivers an update to every current subscriber of the event.
func (h *Hub) Emit(update models.SeatStatusUpdate) {
	h.mu.RLock()
	clients := h.clients[update.EventID]
	h.mu.RUnlock()

	for _, clientChan := range clients {
		select {
		case clientChan <- update:
		default:
			// Buffer full; skip this client.
		}
	}
}

// ClientCount reports the number of subscribers for an event.
func (h *Hub) ClientCount(eventID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[eventID])
}

func (h *Hub) removeClient(eventID int64, clientChan chan models.SeatStatusUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[eventID]
	for i, ch := range clients {
		if ch == clientChan {
			h.clients[eventID] = append(clients[:i], clients[i+1:]...)
			close(clientChan)
			break
		}
	}
	if len(h.clients[eventID]) == 0 {
		delete(h.clients, eventID)
	}
}
