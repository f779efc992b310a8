package seats

import (
	"context"
	"fmt"

	"github.com/Saurabhrajput1234/BookMySeat/internal/logger"
	"github.com/Saurabhrajput1234/BookMySeat/internal/models"
)

type Store interface {
	ListSeatsByEvent(ctx context.Context, eventID int64) ([]models.Seat, error)
	GetSeatByID(ctx context.Context, id int64) (*models.Seat, error)
	CreateSeat(ctx context.Context, seat *models.Seat) error
	CreateSeats(ctx context.Context, batch []models.Seat) error
	UpdateSeat(ctx context.Context, seat *models.Seat) error
	DeleteSeat(ctx context.Context, id int64) error
}

// EventChecker verifies that a seat's event exists before insert.
type EventChecker interface {
	GetEventByID(ctx context.Context, id int64) (*models.Event, error)
}

type Service struct {
	store  Store
	events EventChecker
	logger *logger.Logger
}

func NewService(store Store, events EventChecker, log *logger.Logger) *Service {
	return &Service{store: store, events: events, logger: log}
}

// ListForEvent returns the seat map of an event in render order.
func (s *Service) ListForEvent(ctx context.Context, eventID int64) ([]models.Seat, error) {
	return s.store.ListSeatsByEvent(ctx, eventID)
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Seat, error) {
	return s.store.GetSeatByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, req models.CreateSeatRequest) (*models.Seat, error) {
	if _, err := s.events.GetEventByID(ctx, req.EventID); err != nil {
		return nil, err
	}
	seat := &models.Seat{
		EventID: req.EventID,
		Row:     req.Row,
		Number:  req.Number,
	}
	if err := s.store.CreateSeat(ctx, seat); err != nil {
		return nil, err
	}
	s.logger.Info("SEAT", fmt.Sprintf("created seat id=%d event=%d row=%s number=%d", seat.ID, seat.EventID, seat.Row, seat.Number))
	return seat, nil
}

// CreateBatch inserts a whole block of seats at once, the common admin
// workflow when laying out a venue.
func (s *Service) CreateBatch(ctx context.Context, reqs []models.CreateSeatRequest) ([]models.Seat, error) {
	checked := map[int64]bool{}
	for _, req := range reqs {
		if !checked[req.EventID] {
			if _, err := s.events.GetEventByID(ctx, req.EventID); err != nil {
				return nil, err
			}
			checked[req.EventID] = true
		}
	}

	batch := make([]models.Seat, 0, len(reqs))
	for _, req := range reqs {
		batch = append(batch, models.Seat{
			EventID: req.EventID,
			Row:     req.Row,
			Number:  req.Number,
		})
	}
	if err := s.store.CreateSeats(ctx, batch); err != nil {
		return nil, err
	}
	s.logger.Info("SEAT", fmt.Sprintf("created %d seats", len(batch)))
	return batch, nil
}

// Update repositions a seat. The event binding is immutable; only row and
// number change.
func (s *Service) Update(ctx context.Context, id int64, row string, number int) (*models.Seat, error) {
	seat, err := s.store.GetSeatByID(ctx, id)
	if err != nil {
		return nil, err
	}
	seat.Row = row
	seat.Number = number
	if err := s.store.UpdateSeat(ctx, seat); err != nil {
		return nil, err
	}
	s.logger.Info("SEAT", fmt.Sprintf("updated seat id=%d to row=%s number=%d", id, row, number))
	return seat, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteSeat(ctx, id); err != nil {
		return err
	}
	s.logger.Info("SEAT", fmt.Sprintf("deleted seat id=%d", id))
	return nil
}
