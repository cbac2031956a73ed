package tournament

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Create(ctx context.Context, t *Tournament) (*Tournament, error)
	GetByID(ctx context.Context, id int) (*Tournament, error)
	GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id int) (*Tournament, error)
	List(ctx context.Context, status Status) ([]Tournament, error)
	CountParticipantsTx(ctx context.Context, tx *sqlx.Tx, tournamentID int) (int, error)
	HasParticipantTx(ctx context.Context, tx *sqlx.Tx, tournamentID, memberID int) (bool, error)
	AddParticipantTx(ctx context.Context, tx *sqlx.Tx, p *Participant) (*Participant, error)
	ListParticipants(ctx context.Context, tournamentID int) ([]Participant, error)
	SetStatus(ctx context.Context, id int, status Status) error
}
