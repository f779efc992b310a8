package seat_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Saurabhrajput1234/BookMySeat/internal/events"
	"github.com/Saurabhrajput1234/BookMySeat/internal/logger"
	"github.com/Saurabhrajput1234/BookMySeat/internal/models"
	"github.com/Saurabhrajput1234/BookMySeat/internal/seats"
)

type Handler struct {
	SeatService *seats.Service
	Logger      *logger.Logger
}

func NewHandler(seatService *seats.Service, log *logger.Logger) *Handler {
	return &Handler{SeatService: seatService, Logger: log}
}

// ListEventSeats returns the seat map for an event as flat responses.
func (h *Handler) ListEventSeats(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid event id", http.StatusBadRequest)
		return
	}

	list, err := h.SeatService.ListForEvent(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListEventSeats: eventId=%d: %v", eventID, err))
		http.Error(w, "Could not load seats", http.StatusInternalServerError)
		return
	}

	resp := make([]models.SeatResponse, 0, len(list))
	for i := range list {
		resp = append(resp, list[i].ToResponse())
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *Handler) CreateSeat(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.EventID <= 0 || req.Row == "" || req.Number <= 0 {
		http.Error(w, "eventId, row and number are required", http.StatusBadRequest)
		return
	}

	seat, err := h.SeatService.Create(r.Context(), req)
	if err != nil {
		if errors.Is(err, events.ErrEventNotFound) {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, seats.ErrSeatExists) {
			http.Error(w, "Seat already exists for this event", http.StatusConflict)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("CreateSeat: %v", err))
		http.Error(w, "Could not create seat", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(seat)
}

// CreateSeatBatch inserts a block of seats in one call.
func (h *Handler) CreateSeatBatch(w http.ResponseWriter, r *http.Request) {
	var reqs []models.CreateSeatRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(reqs) == 0 {
		http.Error(w, "at least one seat is required", http.StatusBadRequest)
		return
	}
	for _, req := range reqs {
		if req.EventID <= 0 || req.Row == "" || req.Number <= 0 {
			http.Error(w, "eventId, row and number are required for every seat", http.StatusBadRequest)
			return
		}
	}

	batch, err := h.SeatService.CreateBatch(r.Context(), reqs)
	if err != nil {
		if errors.Is(err, events.ErrEventNotFound) {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, seats.ErrSeatExists) {
			http.Error(w, "One or more seats already exist for this event", http.StatusConflict)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("CreateSeatBatch: %v", err))
		http.Error(w, "Could not create seats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(batch)
}

func (h *Handler) UpdateSeat(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "seatId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid seat id", http.StatusBadRequest)
		return
	}

	var req struct {
		Row    string `json:"row"`
		Number int    `json:"number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Row == "" || req.Number <= 0 {
		http.Error(w, "row and number are required", http.StatusBadRequest)
		return
	}

	seat, err := h.SeatService.Update(r.Context(), id, req.Row, req.Number)
	if err != nil {
		if errors.Is(err, seats.ErrSeatNotFound) {
			http.Error(w, "Seat not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, seats.ErrSeatExists) {
			http.Error(w, "Another seat already occupies that position", http.StatusConflict)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("UpdateSeat: seatId=%d: %v", id, err))
		http.Error(w, "Could not update seat", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(seat)
}

func (h *Handler) DeleteSeat(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "seatId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid seat id", http.StatusBadRequest)
		return
	}

	if err := h.SeatService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, seats.ErrSeatNotFound) {
			http.Error(w, "Seat not found or already booked", http.StatusNotFound)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("DeleteSeat: seatId=%d: %v", id, err))
		http.Error(w, "Could not delete seat", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
