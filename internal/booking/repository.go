package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

const bookingColumns = `id, member_id, court_id, start_time, end_time, total_price, status, created_at, cancelled_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) InsertTx(ctx context.Context, tx *sqlx.Tx, b *Booking) (*Booking, error) {
	var created Booking
	err := tx.QueryRowxContext(ctx, `
		INSERT INTO bookings (member_id, court_id, start_time, end_time, total_price, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+bookingColumns,
		b.MemberID, b.CourtID, b.StartTime, b.EndTime, b.TotalPrice, b.Status,
	).StructScan(&created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *repository) InsertAllTx(ctx context.Context, tx *sqlx.Tx, bs []Booking) ([]Booking, error) {
	created := make([]Booking, 0, len(bs))
	for i := range bs {
		b, err := r.InsertTx(ctx, tx, &bs[i])
		if err != nil {
			return nil, err
		}
		created = append(created, *b)
	}
	return created, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Booking, error) {
	var b Booking
	err := r.db.GetContext(ctx, &b, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// CancelTx flips a confirmed booking to cancelled. The status guard in the
// WHERE clause makes concurrent cancels race safely: exactly one wins.
func (r *repository) CancelTx(ctx context.Context, tx *sqlx.Tx, id int, cancelledAt time.Time) (bool, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE bookings
		SET status = $1, cancelled_at = $2
		WHERE id = $3 AND status = $4
	`, StatusCancelled, cancelledAt, id, StatusConfirmed)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *repository) ListByMember(ctx context.Context, memberID int) ([]BookingWithCourt, error) {
	var bookings []BookingWithCourt
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT
			b.id, b.member_id, b.court_id, b.start_time, b.end_time,
			b.total_price, b.status, b.created_at, b.cancelled_at,
			c.name AS court_name
		FROM bookings b
		JOIN courts c ON b.court_id = c.id
		WHERE b.member_id = $1
		ORDER BY b.created_at DESC
	`, memberID)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) ListAll(ctx context.Context, limit int) ([]BookingWithCourt, error) {
	var bookings []BookingWithCourt
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT
			b.id, b.member_id, b.court_id, b.start_time, b.end_time,
			b.total_price, b.status, b.created_at, b.cancelled_at,
			c.name AS court_name
		FROM bookings b
		JOIN courts c ON b.court_id = c.id
		ORDER BY b.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) ListInRange(ctx context.Context, from, to time.Time) ([]BookingWithCourt, error) {
	var bookings []BookingWithCourt
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT
			b.id, b.member_id, b.court_id, b.start_time, b.end_time,
			b.total_price, b.status, b.created_at, b.cancelled_at,
			c.name AS court_name
		FROM bookings b
		JOIN courts c ON b.court_id = c.id
		WHERE b.start_time < $1 AND b.end_time > $2
		ORDER BY b.start_time
	`, to, from)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}
