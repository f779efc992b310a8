package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/uptrace/bun"

	"github.com/Saurabhrajput1234/BookMySeat/internal/booking"
	"github.com/Saurabhrajput1234/BookMySeat/internal/models"
)

// DB is the bun-backed store for seats and bookings. The reservation and
// release paths run inside a single transaction so the seat flag and the
// booking row can never diverge.
type DB struct {
	Bun *bun.DB
}

// ReserveSeat books a seat atomically. The write on the seat row is
// conditioned on is_booked = FALSE and the bookings table carries a unique
// constraint on seat_id, so under concurrent requests for the same seat
// exactly one transaction commits; the rest surface ErrSeatAlreadyBooked.
// No in-process lock is involved: the store's isolation is the only
// synchronization primitive, which keeps multi-instance deployments safe.
func (d *DB) ReserveSeat(ctx context.Context, userID, eventID, seatID int64) (*models.Booking, error) {
	var created *models.Booking

	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var seat models.Seat
		err := tx.NewSelect().
			Model(&seat).
			Where("id = ? AND event_id = ?", seatID, eventID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return booking.ErrSeatNotFound
			}
			return err
		}
		if seat.IsBooked {
			return booking.ErrSeatAlreadyBooked
		}

		res, err := tx.NewUpdate().
			Model((*models.Seat)(nil)).
			Set("is_booked = ?", true).
			Where("id = ? AND event_id = ? AND is_booked = ?", seatID, eventID, false).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			// Another transaction won the seat between our read and write.
			return booking.ErrSeatAlreadyBooked
		}

		b := &models.Booking{
			UserID:        userID,
			EventID:       eventID,
			SeatID:        seatID,
			BookingTime:   time.Now().UTC(),
			PaymentStatus: models.PaymentPending,
		}
		if _, err := tx.NewInsert().Model(b).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return booking.ErrSeatAlreadyBooked
			}
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ReleaseBooking deletes a booking and frees its seat in one transaction.
// The freed booking is returned so the caller can notify subscribers.
func (d *DB) ReleaseBooking(ctx context.Context, bookingID int64) (*models.Booking, error) {
	var released *models.Booking

	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var b models.Booking
		err := tx.NewSelect().
			Model(&b).
			Where("id = ?", bookingID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return booking.ErrBookingNotFound
			}
			return err
		}

		// The seat may already be gone if an admin deleted it; a zero-row
		// update is fine then.
		if _, err := tx.NewUpdate().
			Model((*models.Seat)(nil)).
			Set("is_booked = ?", false).
			Where("id = ?", b.SeatID).
			Exec(ctx); err != nil {
			return err
		}

		if _, err := tx.NewDelete().
			Model((*models.Booking)(nil)).
			Where("id = ?", bookingID).
			Exec(ctx); err != nil {
			return err
		}

		released = &b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return released, nil
}

// GetBookingByID fetches one booking, optionally with its user, event and
// seat loaded for payment confirmation messages.
func (d *DB) GetBookingByID(ctx context.Context, bookingID int64, withRelations bool) (*models.Booking, error) {
	var b models.Booking
	q := d.Bun.NewSelect().Model(&b).Where("booking.id = ?", bookingID)
	if withRelations {
		q = q.Relation("User").Relation("Event").Relation("Seat")
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (d *DB) UpdateBooking(ctx context.Context, b *models.Booking) error {
	_, err := d.Bun.NewUpdate().
		Model(b).
		Column("payment_status", "payment_intent_id").
		Where("id = ?", b.ID).
		Exec(ctx)
	return err
}

func (d *DB) ListBookingsByUser(ctx context.Context, userID int64) ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Relation("Event").
		Relation("Seat").
		Where("user_id = ?", userID).
		Order("booking_time DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return bookings, nil
}

func (d *DB) ListBookings(ctx context.Context) ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Relation("User").
		Relation("Event").
		Relation("Seat").
		Order("booking_time DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return bookings, nil
}

func (d *DB) ListBookingsByEvent(ctx context.Context, eventID int64) ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Relation("User").
		Relation("Event").
		Relation("Seat").
		Where("booking.event_id = ?", eventID).
		Order("booking_time DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return bookings, nil
}

// CountActiveBookingsForSeat reports how many bookings reference a seat.
// With the unique constraint in place the answer is 0 or 1; the invariant
// checks in tests lean on this.
func (d *DB) CountActiveBookingsForSeat(ctx context.Context, seatID int64) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Booking)(nil)).
		Where("seat_id = ?", seatID).
		Count(ctx)
}

// isUniqueViolation recognizes unique-constraint errors from both the
// production Postgres driver and the sqlite dialect the store tests run on.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
