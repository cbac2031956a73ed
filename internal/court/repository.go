package court

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("court not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, name string, description *string, pricePerHour int64) (*Court, error) {
	var c Court
	err := r.db.GetContext(ctx, &c, `
		INSERT INTO courts (name, description, price_per_hour)
		VALUES ($1, $2, $3)
		RETURNING id, name, description, price_per_hour, is_active, created_at
	`, name, description, pricePerHour)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Court, error) {
	var c Court
	err := r.db.GetContext(ctx, &c, `
		SELECT id, name, description, price_per_hour, is_active, created_at
		FROM courts
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context) ([]Court, error) {
	var courts []Court
	err := r.db.SelectContext(ctx, &courts, `
		SELECT id, name, description, price_per_hour, is_active, created_at
		FROM courts
		WHERE is_active = TRUE
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	return courts, nil
}
