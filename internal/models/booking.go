package models

import (
	"time"

	"github.com/uptrace/bun"
)

// PaymentStatus is the closed set of payment states a booking moves
// through. Pending -> Paid is the only legal transition.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
)

type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID              int64         `bun:"id,pk,autoincrement" json:"id"`
	UserID          int64         `bun:"user_id,notnull" json:"userId"`
	EventID         int64         `bun:"event_id,notnull" json:"eventId"`
	SeatID          int64         `bun:"seat_id,notnull,unique" json:"seatId"`
	BookingTime     time.Time     `bun:"booking_time,notnull" json:"bookingTime"`
	PaymentStatus   PaymentStatus `bun:"payment_status,notnull" json:"paymentStatus"`
	PaymentIntentID string        `bun:"payment_intent_id,nullzero" json:"paymentIntentId,omitempty"`

	User  *User  `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Event *Event `bun:"rel:belongs-to,join:event_id=id" json:"event,omitempty"`
	Seat  *Seat  `bun:"rel:belongs-to,join:seat_id=id" json:"seat,omitempty"`
}

type BookSeatRequest struct {
	EventID int64 `json:"eventId"`
	SeatID  int64 `json:"seatId"`
}

type BookSeatResponse struct {
	Message   string `json:"message"`
	BookingID int64  `json:"bookingId"`
}

type CreatePaymentIntentRequest struct {
	BookingID int64  `json:"bookingId"`
	Currency  string `json:"currency,omitempty"`
}

type CreatePaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

type ConfirmPaymentRequest struct {
	BookingID       int64  `json:"bookingId"`
	PaymentIntentID string `json:"paymentIntentId"`
}
