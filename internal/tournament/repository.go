package tournament

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const tournamentColumns = `id, name, description, entry_fee, max_players, start_date, status, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, t *Tournament) (*Tournament, error) {
	var created Tournament
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO tournaments (name, description, entry_fee, max_players, start_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+tournamentColumns,
		t.Name, t.Description, t.EntryFee, t.MaxPlayers, t.StartDate, t.Status,
	).StructScan(&created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Tournament, error) {
	var t Tournament
	err := r.db.GetContext(ctx, &t, `SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetForUpdateTx locks the tournament row so capacity checks and joins
// serialize per tournament.
func (r *repository) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id int) (*Tournament, error) {
	var t Tournament
	err := tx.GetContext(ctx, &t, `SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) List(ctx context.Context, status Status) ([]Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments ORDER BY start_date`
	args := []interface{}{}
	if status != "" {
		query = `SELECT ` + tournamentColumns + ` FROM tournaments WHERE status = $1 ORDER BY start_date`
		args = append(args, status)
	}

	var tournaments []Tournament
	if err := r.db.SelectContext(ctx, &tournaments, query, args...); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *repository) CountParticipantsTx(ctx context.Context, tx *sqlx.Tx, tournamentID int) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM tournament_participants WHERE tournament_id = $1
	`, tournamentID)
	return count, err
}

func (r *repository) HasParticipantTx(ctx context.Context, tx *sqlx.Tx, tournamentID, memberID int) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists, `
		SELECT EXISTS(SELECT 1 FROM tournament_participants WHERE tournament_id = $1 AND member_id = $2)
	`, tournamentID, memberID)
	return exists, err
}

func (r *repository) AddParticipantTx(ctx context.Context, tx *sqlx.Tx, p *Participant) (*Participant, error) {
	var created Participant
	err := tx.QueryRowxContext(ctx, `
		INSERT INTO tournament_participants (tournament_id, member_id, status, group_name, team_size)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, tournament_id, member_id, status, group_name, team_size, joined_at
	`, p.TournamentID, p.MemberID, p.Status, p.GroupName, p.TeamSize).StructScan(&created)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrAlreadyJoined
		}
		return nil, err
	}
	return &created, nil
}

func (r *repository) ListParticipants(ctx context.Context, tournamentID int) ([]Participant, error) {
	var participants []Participant
	err := r.db.SelectContext(ctx, &participants, `
		SELECT id, tournament_id, member_id, status, group_name, team_size, joined_at
		FROM tournament_participants
		WHERE tournament_id = $1
		ORDER BY joined_at
	`, tournamentID)
	if err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *repository) SetStatus(ctx context.Context, id int, status Status) error {
	result, err := r.db.ExecContext(ctx, `UPDATE tournaments SET status = $1 WHERE id = $2`, status, id)
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
