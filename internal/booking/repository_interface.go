package booking

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	InsertTx(ctx context.Context, tx *sqlx.Tx, b *Booking) (*Booking, error)
	InsertAllTx(ctx context.Context, tx *sqlx.Tx, bs []Booking) ([]Booking, error)
	GetByID(ctx context.Context, id int) (*Booking, error)
	CancelTx(ctx context.Context, tx *sqlx.Tx, id int, cancelledAt time.Time) (bool, error)
	ListByMember(ctx context.Context, memberID int) ([]BookingWithCourt, error)
	ListInRange(ctx context.Context, from, to time.Time) ([]BookingWithCourt, error)
	ListAll(ctx context.Context, limit int) ([]BookingWithCourt, error)
}
