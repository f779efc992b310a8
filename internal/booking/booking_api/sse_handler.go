package booking_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// StreamSeatStatus streams seat-status updates for one event over SSE.
// Browsers on the seat map page hold this open and repaint seats as
// `seat-status` events arrive.
func (h *Handler) StreamSeatStatus(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid event id", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	ctx := r.Context()
	updates := h.Hub.Subscribe(ctx, eventID)

	fmt.Fprintf(w, "event: connected\ndata: {\"eventId\":%d}\n\n", eventID)
	flusher.Flush()

	h.Logger.Info("SSE", fmt.Sprintf("client subscribed to seat status for event=%d (%d total)", eventID, h.Hub.ClientCount(eventID)))

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			data, err := json.Marshal(update)
			if err != nil {
				h.Logger.Error("SSE", fmt.Sprintf("failed to serialize seat status: %v", err))
				continue
			}
			fmt.Fprintf(w, "event: seat-status\ndata: %s\n\n", data)
			flusher.Flush()
		case <-ctx.Done():
			h.Logger.Debug("SSE", fmt.Sprintf("client disconnected from event=%d", eventID))
			return
		}
	}
}
