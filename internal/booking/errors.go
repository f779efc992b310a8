package booking

import "errors"

// The error taxonomy callers branch on. Anything else that escapes the
// store during the booking transaction is logged server-side and collapsed
// into ErrBookingFailed so internal detail never reaches the client.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrSeatNotFound      = errors.New("seat not found")
	ErrSeatAlreadyBooked = errors.New("seat already booked")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrBookingFailed     = errors.New("booking failed due to a server error")
)
