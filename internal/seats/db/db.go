package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/uptrace/bun"

	"github.com/Saurabhrajput1234/BookMySeat/internal/models"
	"github.com/Saurabhrajput1234/BookMySeat/internal/seats"
)

type DB struct {
	Bun *bun.DB
}

func New(bunDB *bun.DB) *DB {
	return &DB{Bun: bunDB}
}

// ListSeatsByEvent returns every seat of an event ordered by row then
// number, the order the seat map renders in.
func (d *DB) ListSeatsByEvent(ctx context.Context, eventID int64) ([]models.Seat, error) {
	var list []models.Seat
	err := d.Bun.NewSelect().
		Model(&list).
		Where("event_id = ?", eventID).
		Order("row ASC", "number ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Seat{}
	}
	return list, nil
}

// GetSeatByID fetches one seat.
func (d *DB) GetSeatByID(ctx context.Context, id int64) (*models.Seat, error) {
	var seat models.Seat
	err := d.Bun.NewSelect().
		Model(&seat).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, seats.ErrSeatNotFound
	}
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

// CreateSeat inserts a seat. The (event_id, row, number) unique index maps
// duplicate positions to ErrSeatExists.
func (d *DB) CreateSeat(ctx context.Context, seat *models.Seat) error {
	_, err := d.Bun.NewInsert().Model(seat).Exec(ctx)
	if err != nil && isUniqueViolation(err) {
		return seats.ErrSeatExists
	}
	return err
}

// CreateSeats bulk-inserts a batch of seats in one transaction.
func (d *DB) CreateSeats(ctx context.Context, batch []models.Seat) error {
	if len(batch) == 0 {
		return nil
	}
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&batch).Exec(ctx)
		if err != nil && isUniqueViolation(err) {
			return seats.ErrSeatExists
		}
		return err
	})
}

// UpdateSeat moves a seat to a new row/number position.
func (d *DB) UpdateSeat(ctx context.Context, seat *models.Seat) error {
	res, err := d.Bun.NewUpdate().
		Model(seat).
		Column("row", "number").
		Where("id = ?", seat.ID).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return seats.ErrSeatExists
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return seats.ErrSeatNotFound
	}
	return nil
}

// DeleteSeat removes an unbooked seat. Booked seats are protected: the
// booking must be cancelled first.
func (d *DB) DeleteSeat(ctx context.Context, id int64) error {
	res, err := d.Bun.NewDelete().
		Model((*models.Seat)(nil)).
		Where("id = ? AND is_booked = FALSE", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return seats.ErrSeatNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
