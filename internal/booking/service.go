package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/Saurabhrajput1234/BookMySeat/internal/logger"
	"github.com/Saurabhrajput1234/BookMySeat/internal/models"
)

// Store is the persistence contract the coordinator drives. ReserveSeat and
// ReleaseBooking are transactional: either all of their effects are
// persisted or none are.
type Store interface {
	ReserveSeat(ctx context.Context, userID, eventID, seatID int64) (*models.Booking, error)
	ReleaseBooking(ctx context.Context, bookingID int64) (*models.Booking, error)
	GetBookingByID(ctx context.Context, bookingID int64, withRelations bool) (*models.Booking, error)
	UpdateBooking(ctx context.Context, b *models.Booking) error
	ListBookingsByUser(ctx context.Context, userID int64) ([]models.Booking, error)
	ListBookings(ctx context.Context) ([]models.Booking, error)
	ListBookingsByEvent(ctx context.Context, eventID int64) ([]models.Booking, error)
}

// Publisher fans a seat-status change out to everyone watching the event.
// Best-effort: a publish failure never fails the operation that caused it.
type Publisher interface {
	PublishSeatStatus(ctx context.Context, update models.SeatStatusUpdate) error
}

// Mailer sends the booking confirmation after payment. Also best-effort.
type Mailer interface {
	SendBookingConfirmation(ctx context.Context, toEmail, userName, eventName, seatInfo string) error
}

type Service struct {
	store     Store
	publisher Publisher
	mailer    Mailer
	logger    *logger.Logger
}

func NewService(store Store, publisher Publisher, mailer Mailer, log *logger.Logger) *Service {
	return &Service{store: store, publisher: publisher, mailer: mailer, logger: log}
}

// Book reserves a seat for a user. The check-then-act sequence runs inside
// one store transaction; the seat-status broadcast goes out only after the
// commit is confirmed, so subscribers are never told about a booking that
// was rolled back.
func (s *Service) Book(ctx context.Context, userID, eventID, seatID int64) (int64, error) {
	// The middleware rejects anonymous callers already; re-check and fail
	// closed anyway.
	if userID <= 0 {
		return 0, ErrUnauthorized
	}
	if eventID <= 0 || seatID <= 0 {
		return 0, ErrSeatNotFound
	}

	created, err := s.store.ReserveSeat(ctx, userID, eventID, seatID)
	if err != nil {
		if errors.Is(err, ErrSeatNotFound) || errors.Is(err, ErrSeatAlreadyBooked) {
			return 0, err
		}
		s.logger.Error("BOOKING", fmt.Sprintf("Book: transaction failed for user=%d event=%d seat=%d: %v", userID, eventID, seatID, err))
		return 0, ErrBookingFailed
	}

	s.logger.LogBooking("CREATE", created.ID, fmt.Sprintf("user=%d event=%d seat=%d", userID, eventID, seatID))
	s.publish(ctx, models.SeatStatusUpdate{EventID: eventID, SeatID: seatID, IsBooked: true})
	return created.ID, nil
}

// Cancel deletes a booking and frees its seat, then tells subscribers the
// seat is available again.
func (s *Service) Cancel(ctx context.Context, bookingID int64) error {
	released, err := s.store.ReleaseBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return err
		}
		s.logger.Error("BOOKING", fmt.Sprintf("Cancel: transaction failed for booking=%d: %v", bookingID, err))
		return ErrBookingFailed
	}

	s.logger.LogBooking("CANCEL", bookingID, fmt.Sprintf("seat=%d released", released.SeatID))
	s.publish(ctx, models.SeatStatusUpdate{EventID: released.EventID, SeatID: released.SeatID, IsBooked: false})
	return nil
}

// ConfirmPayment flips a booking to Paid and sends the confirmation email.
// The email is best-effort: the payment is real whether or not the message
// is delivered, so a send failure is logged and swallowed. Repeated calls
// with the same booking are no-ops.
func (s *Service) ConfirmPayment(ctx context.Context, bookingID int64, paymentIntentID string) error {
	b, err := s.store.GetBookingByID(ctx, bookingID, true)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return err
		}
		s.logger.Error("PAYMENT", fmt.Sprintf("ConfirmPayment: failed to load booking=%d: %v", bookingID, err))
		return ErrBookingFailed
	}

	if b.PaymentStatus == models.PaymentPaid {
		s.logger.LogBooking("CONFIRM", bookingID, "already paid, no-op")
		return nil
	}

	b.PaymentStatus = models.PaymentPaid
	b.PaymentIntentID = paymentIntentID
	if err := s.store.UpdateBooking(ctx, b); err != nil {
		s.logger.Error("PAYMENT", fmt.Sprintf("ConfirmPayment: failed to update booking=%d: %v", bookingID, err))
		return ErrBookingFailed
	}
	s.logger.LogBooking("CONFIRM", bookingID, "payment confirmed")

	if s.mailer != nil && b.User != nil && b.Event != nil && b.Seat != nil {
		seatInfo := fmt.Sprintf("Row %s, Number %d", b.Seat.Row, b.Seat.Number)
		if err := s.mailer.SendBookingConfirmation(ctx, b.User.Email, b.User.Name, b.Event.Name, seatInfo); err != nil {
			s.logger.Warn("EMAIL", fmt.Sprintf("ConfirmPayment: confirmation email for booking=%d failed: %v", bookingID, err))
		}
	}
	return nil
}

func (s *Service) GetBooking(ctx context.Context, bookingID int64) (*models.Booking, error) {
	return s.store.GetBookingByID(ctx, bookingID, true)
}

func (s *Service) MyBookings(ctx context.Context, userID int64) ([]models.Booking, error) {
	if userID <= 0 {
		return nil, ErrUnauthorized
	}
	return s.store.ListBookingsByUser(ctx, userID)
}

func (s *Service) AllBookings(ctx context.Context) ([]models.Booking, error) {
	return s.store.ListBookings(ctx)
}

func (s *Service) BookingsForEvent(ctx context.Context, eventID int64) ([]models.Booking, error) {
	return s.store.ListBookingsByEvent(ctx, eventID)
}

func (s *Service) publish(ctx context.Context, update models.SeatStatusUpdate) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSeatStatus(ctx, update); err != nil {
		s.logger.Warn("NOTIFY", fmt.Sprintf("seat status publish failed for event=%d seat=%d: %v", update.EventID, update.SeatID, err))
	}
}
