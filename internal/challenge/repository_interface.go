package challenge

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Create(ctx context.Context, c *Challenge) (*Challenge, error)
	GetByID(ctx context.Context, id int) (*Challenge, error)
	GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id int) (*Challenge, error)
	SetStatusTx(ctx context.Context, tx *sqlx.Tx, id int, status Status, resolvedAt time.Time) error
	AcceptTx(ctx context.Context, tx *sqlx.Tx, id int, acceptedAt time.Time) error
	CompleteTx(ctx context.Context, tx *sqlx.Tx, id, winnerID, challengerScore, opponentScore int, completedAt time.Time) error
	ListForMember(ctx context.Context, memberID int) ([]Challenge, error)
	ListPendingFor(ctx context.Context, opponentID int) ([]Challenge, error)
}
