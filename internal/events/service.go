package events

import (
	"context"
	"fmt"

	"github.com/Saurabhrajput1234/BookMySeat/internal/logger"
	"github.com/Saurabhrajput1234/BookMySeat/internal/models"
)

type Store interface {
	GetEventByID(ctx context.Context, id int64) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	CreateEvent(ctx context.Context, event *models.Event) error
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id int64) error
}

type Service struct {
	store  Store
	logger *logger.Logger
}

func NewService(store Store, log *logger.Logger) *Service {
	return &Service{store: store, logger: log}
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Event, error) {
	return s.store.GetEventByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]models.Event, error) {
	return s.store.ListEvents(ctx)
}

func (s *Service) Create(ctx context.Context, req models.EventRequest) (*models.Event, error) {
	event := &models.Event{
		Name:        req.Name,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		Price:       req.Price,
	}
	if err := s.store.CreateEvent(ctx, event); err != nil {
		return nil, err
	}
	s.logger.Info("EVENT", fmt.Sprintf("created event id=%d name=%q", event.ID, event.Name))
	return event, nil
}

func (s *Service) Update(ctx context.Context, id int64, req models.EventRequest) (*models.Event, error) {
	event := &models.Event{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		Price:       req.Price,
	}
	if err := s.store.UpdateEvent(ctx, event); err != nil {
		return nil, err
	}
	s.logger.Info("EVENT", fmt.Sprintf("updated event id=%d", id))
	return event, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteEvent(ctx, id); err != nil {
		return err
	}
	s.logger.Info("EVENT", fmt.Sprintf("deleted event id=%d", id))
	return nil
}
