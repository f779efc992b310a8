package seats

import "errors"

var (
	ErrSeatNotFound = errors.New("seat not found")
	ErrSeatExists   = errors.New("seat already exists for this event")
)
