package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/uptrace/bun"

	"github.com/Saurabhrajput1234/BookMySeat/internal/models"
	"github.com/Saurabhrajput1234/BookMySeat/internal/users"
)

type DB struct {
	Bun *bun.DB
}

func New(bunDB *bun.DB) *DB {
	return &DB{Bun: bunDB}
}

// CreateUser inserts a new account. The unique index on email maps
// duplicates to ErrEmailTaken.
func (d *DB) CreateUser(ctx context.Context, user *models.User) error {
	_, err := d.Bun.NewInsert().Model(user).Exec(ctx)
	if err != nil && isUniqueViolation(err) {
		return users.ErrEmailTaken
	}
	return err
}

func (d *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("email = ?", email).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	var list []models.User
	err := d.Bun.NewSelect().
		Model(&list).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.User{}
	}
	return list, nil
}

// UpdateUser persists the mutable account fields.
func (d *DB) UpdateUser(ctx context.Context, user *models.User) error {
	res, err := d.Bun.NewUpdate().
		Model(user).
		Column("name", "role", "is_active", "email_verified").
		Where("id = ?", user.ID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return users.ErrUserNotFound
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
