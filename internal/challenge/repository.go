package challenge

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

const challengeColumns = `id, challenger_id, opponent_id, type, status, wager_amount, message,
	challenger_score, opponent_score, winner_id, created_at, expires_at, accepted_at, completed_at, resolved_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *Challenge) (*Challenge, error) {
	var created Challenge
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO challenges (challenger_id, opponent_id, type, status, wager_amount, message, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+challengeColumns,
		c.ChallengerID, c.OpponentID, c.Type, c.Status, c.WagerAmount, c.Message, c.ExpiresAt,
	).StructScan(&created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Challenge, error) {
	var c Challenge
	err := r.db.GetContext(ctx, &c, `SELECT `+challengeColumns+` FROM challenges WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetForUpdateTx locks the challenge row so concurrent accept/reject/cancel
// calls serialize on it.
func (r *repository) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id int) (*Challenge, error) {
	var c Challenge
	err := tx.GetContext(ctx, &c, `SELECT `+challengeColumns+` FROM challenges WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) SetStatusTx(ctx context.Context, tx *sqlx.Tx, id int, status Status, resolvedAt time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE challenges SET status = $1, resolved_at = $2 WHERE id = $3
	`, status, resolvedAt, id)
	return err
}

func (r *repository) AcceptTx(ctx context.Context, tx *sqlx.Tx, id int, acceptedAt time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE challenges SET status = $1, accepted_at = $2 WHERE id = $3
	`, StatusAccepted, acceptedAt, id)
	return err
}

func (r *repository) CompleteTx(ctx context.Context, tx *sqlx.Tx, id, winnerID, challengerScore, opponentScore int, completedAt time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE challenges
		SET status = $1, winner_id = $2, challenger_score = $3, opponent_score = $4, completed_at = $5, resolved_at = $5
		WHERE id = $6
	`, StatusCompleted, winnerID, challengerScore, opponentScore, completedAt, id)
	return err
}

func (r *repository) ListForMember(ctx context.Context, memberID int) ([]Challenge, error) {
	var challenges []Challenge
	err := r.db.SelectContext(ctx, &challenges, `
		SELECT `+challengeColumns+`
		FROM challenges
		WHERE challenger_id = $1 OR opponent_id = $1
		ORDER BY created_at DESC
	`, memberID)
	if err != nil {
		return nil, err
	}
	return challenges, nil
}

func (r *repository) ListPendingFor(ctx context.Context, opponentID int) ([]Challenge, error) {
	var challenges []Challenge
	err := r.db.SelectContext(ctx, &challenges, `
		SELECT `+challengeColumns+`
		FROM challenges
		WHERE opponent_id = $1 AND status = $2
		ORDER BY created_at DESC
	`, opponentID, StatusPending)
	if err != nil {
		return nil, err
	}
	return challenges, nil
}
