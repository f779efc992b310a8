package booking_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Saurabhrajput1234/BookMySeat/internal/auth"
	"github.com/Saurabhrajput1234/BookMySeat/internal/booking"
	"github.com/Saurabhrajput1234/BookMySeat/internal/logger"
	"github.com/Saurabhrajput1234/BookMySeat/internal/models"
	"github.com/Saurabhrajput1234/BookMySeat/internal/notify"
)

type Handler struct {
	BookingService *booking.Service
	Hub            *notify.Hub
	QR             *booking.QRGenerator
	Logger         *logger.Logger
}

func NewHandler(bookingService *booking.Service, hub *notify.Hub, qr *booking.QRGenerator, log *logger.Logger) *Handler {
	return &Handler{BookingService: bookingService, Hub: hub, QR: qr, Logger: log}
}

// BookSeat reserves one seat for the authenticated caller.
func (h *Handler) BookSeat(w http.ResponseWriter, r *http.Request) {
	var req models.BookSeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	userID := auth.UserID(r.Context())
	h.Logger.Info("API", fmt.Sprintf("BookSeat: user=%d event=%d seat=%d", userID, req.EventID, req.SeatID))

	bookingID, err := h.BookingService.Book(r.Context(), userID, req.EventID, req.SeatID)
	if err != nil {
		h.writeBookingError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.BookSeatResponse{
		Message:   "Seat booked successfully",
		BookingID: bookingID,
	})
}

// MyBookings lists the caller's own bookings with event and seat loaded.
func (h *Handler) MyBookings(w http.ResponseWriter, r *http.Request) {
	list, err := h.BookingService.MyBookings(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.writeBookingError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// AllBookings is the admin view of every booking.
func (h *Handler) AllBookings(w http.ResponseWriter, r *http.Request) {
	list, err := h.BookingService.AllBookings(r.Context())
	if err != nil {
		h.writeBookingError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (h *Handler) EventBookings(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid event id", http.StatusBadRequest)
		return
	}

	list, err := h.BookingService.BookingsForEvent(r.Context(), eventID)
	if err != nil {
		h.writeBookingError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// CancelBooking frees the seat and deletes the booking.
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(chi.URLParam(r, "bookingId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid booking id", http.StatusBadRequest)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CancelBooking: bookingId=%d", bookingID))
	if err := h.BookingService.Cancel(r.Context(), bookingID); err != nil {
		h.writeBookingError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreatePaymentIntent hands the browser a Stripe client secret for a
// pending booking.
func (h *Handler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePaymentIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.BookingID <= 0 {
		http.Error(w, "bookingId is required", http.StatusBadRequest)
		return
	}

	if err := h.requireOwnerOrAdmin(r, req.BookingID); err != nil {
		h.writeBookingError(w, err)
		return
	}

	intent, err := h.BookingService.CreatePaymentIntent(r.Context(), req.BookingID, req.Currency)
	if err != nil {
		h.writeBookingError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.CreatePaymentIntentResponse{ClientSecret: intent.ClientSecret})
}

// ConfirmPayment marks a booking paid. Safe to retry.
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req models.ConfirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.BookingID <= 0 {
		http.Error(w, "bookingId is required", http.StatusBadRequest)
		return
	}

	if err := h.requireOwnerOrAdmin(r, req.BookingID); err != nil {
		h.writeBookingError(w, err)
		return
	}

	if err := h.BookingService.ConfirmPayment(r.Context(), req.BookingID, req.PaymentIntentID); err != nil {
		h.writeBookingError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Payment confirmed"})
}

// BookingQR renders the booking as an encrypted QR PNG for gate entry.
func (h *Handler) BookingQR(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(chi.URLParam(r, "bookingId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid booking id", http.StatusBadRequest)
		return
	}

	if err := h.requireOwnerOrAdmin(r, bookingID); err != nil {
		h.writeBookingError(w, err)
		return
	}

	b, err := h.BookingService.GetBooking(r.Context(), bookingID)
	if err != nil {
		h.writeBookingError(w, err)
		return
	}

	png, err := h.QR.GenerateBookingQR(b)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("BookingQR: failed to render bookingId=%d: %v", bookingID, err))
		http.Error(w, "Could not generate QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// requireOwnerOrAdmin loads the booking and checks the caller owns it or
// holds the Admin role.
func (h *Handler) requireOwnerOrAdmin(r *http.Request, bookingID int64) error {
	if auth.UserRole(r.Context()) == models.RoleAdmin {
		return nil
	}
	b, err := h.BookingService.GetBooking(r.Context(), bookingID)
	if err != nil {
		return err
	}
	if b.UserID != auth.UserID(r.Context()) {
		return booking.ErrUnauthorized
	}
	return nil
}

// writeBookingError maps the booking error taxonomy onto HTTP statuses.
func (h *Handler) writeBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrUnauthorized):
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, booking.ErrSeatNotFound):
		http.Error(w, "Seat not found", http.StatusNotFound)
	case errors.Is(err, booking.ErrSeatAlreadyBooked):
		http.Error(w, "Seat is already booked", http.StatusBadRequest)
	case errors.Is(err, booking.ErrBookingNotFound):
		http.Error(w, "Booking not found", http.StatusNotFound)
	default:
		h.Logger.Error("API", fmt.Sprintf("booking request failed: %v", err))
		http.Error(w, "Booking failed due to a server error", http.StatusInternalServerError)
	}
}
