package member

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("member not found")

const memberColumns = `id, email, full_name, password_hash, role, is_active,
	wallet_balance, total_spent, phone_number, address, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, email, fullName, passwordHash, role string) (*Member, error) {
	var m Member
	err := r.db.GetContext(ctx, &m, `
		INSERT INTO members (email, full_name, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+memberColumns,
		email, fullName, passwordHash, role,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) FindByID(ctx context.Context, id int) (*Member, error) {
	var m Member
	err := r.db.GetContext(ctx, &m, `
		SELECT `+memberColumns+`
		FROM members
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*Member, error) {
	var m Member
	err := r.db.GetContext(ctx, &m, `
		SELECT `+memberColumns+`
		FROM members
		WHERE email = $1
	`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM members WHERE email = $1)`, email)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *repository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE members SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		passwordHash, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Deactivate(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE members SET is_active = FALSE, updated_at = NOW() WHERE id = $1`,
		id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
