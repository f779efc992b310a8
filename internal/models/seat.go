package models

import "github.com/uptrace/bun"

type Seat struct {
	bun.BaseModel `bun:"table:seats"`

	ID       int64  `bun:"id,pk,autoincrement" json:"id"`
	EventID  int64  `bun:"event_id,notnull" json:"eventId"`
	Row      string `bun:"row,notnull" json:"row"`
	Number   int    `bun:"number,notnull" json:"number"`
	IsBooked bool   `bun:"is_booked,notnull" json:"isBooked"`

	Event *Event `bun:"rel:belongs-to,join:event_id=id" json:"-"`
}

type CreateSeatRequest struct {
	EventID int64  `json:"eventId"`
	Row     string `json:"row"`
	Number  int    `json:"number"`
}

// SeatResponse is the flat shape returned to browsers; it deliberately
// omits relations to avoid circular encoding.
type SeatResponse struct {
	ID       int64  `json:"id"`
	Row      string `json:"row"`
	Number   int    `json:"number"`
	IsBooked bool   `json:"isBooked"`
}

func (s *Seat) ToResponse() SeatResponse {
	return SeatResponse{ID: s.ID, Row: s.Row, Number: s.Number, IsBooked: s.IsBooked}
}

// SeatStatusUpdate is broadcast to every subscriber of an event's realtime
// channel whenever a seat flips between booked and free.
type SeatStatusUpdate struct {
	EventID  int64 `json:"eventId"`
	SeatID   int64 `json:"seatId"`
	IsBooked bool  `json:"isBooked"`
}

// SeatStatusMessage is the wire form published to the seat-status Kafka
// topic. Origin carries the publishing instance ID so consumers can skip
// updates they already emitted locally.
type SeatStatusMessage struct {
	Origin string           `json:"origin"`
	Update SeatStatusUpdate `json:"update"`
}
