package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/Saurabhrajput1234/BookMySeat/internal/events"
	"github.com/Saurabhrajput1234/BookMySeat/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func New(bunDB *bun.DB) *DB {
	return &DB{Bun: bunDB}
}

// GetEventByID fetches one event by its ID.
func (d *DB) GetEventByID(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, events.ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListEvents returns every event, soonest first.
func (d *DB) ListEvents(ctx context.Context) ([]models.Event, error) {
	var list []models.Event
	err := d.Bun.NewSelect().
		Model(&list).
		Order("date ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Event{}
	}
	return list, nil
}

// CreateEvent inserts a new event and fills in its generated ID.
func (d *DB) CreateEvent(ctx context.Context, event *models.Event) error {
	_, err := d.Bun.NewInsert().Model(event).Exec(ctx)
	return err
}

// UpdateEvent updates the editable fields of an event.
func (d *DB) UpdateEvent(ctx context.Context, event *models.Event) error {
	res, err := d.Bun.NewUpdate().
		Model(event).
		Column("name", "description", "date", "location", "price").
		Where("id = ?", event.ID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return events.ErrEventNotFound
	}
	return nil
}

// DeleteEvent removes an event together with its seats and bookings.
func (d *DB) DeleteEvent(ctx context.Context, id int64) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.Booking)(nil)).
			Where("event_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().
			Model((*models.Seat)(nil)).
			Where("event_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().
			Model((*models.Event)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return events.ErrEventNotFound
		}
		return nil
	})
}
