package tournament

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"courtclub/internal/db"
	"courtclub/internal/metrics"
	"courtclub/internal/wallet"
)

var (
	ErrNotFound      = errors.New("tournament not found")
	ErrNotOpen       = errors.New("tournament is not open for registration")
	ErrAlreadyJoined = errors.New("member already joined this tournament")
	ErrFull          = errors.New("tournament is full")
)

type WalletService interface {
	DebitTx(ctx context.Context, tx *sqlx.Tx, memberID int, amount int64, kind wallet.Kind, description string) (*wallet.Transaction, error)
}

type Notifier interface {
	Emit(ctx context.Context, memberID int, title, message, category string)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Tournament, error)
	Join(ctx context.Context, memberID, tournamentID int, req JoinRequest) (*Participant, error)
	Get(ctx context.Context, tournamentID int) (*Tournament, error)
	List(ctx context.Context, status Status) ([]Tournament, error)
	Participants(ctx context.Context, tournamentID int) ([]Participant, error)
	SetStatus(ctx context.Context, tournamentID int, status Status) error
}

type service struct {
	db       *sqlx.DB
	repo     Repository
	wallet   WalletService
	notifier Notifier
}

func NewService(database *sqlx.DB, repo Repository, walletSvc WalletService, notifier Notifier) Service {
	return &service{
		db:       database,
		repo:     repo,
		wallet:   walletSvc,
		notifier: notifier,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Tournament, error) {
	return s.repo.Create(ctx, &Tournament{
		Name:        req.Name,
		Description: req.Description,
		EntryFee:    req.EntryFee,
		MaxPlayers:  req.MaxPlayers,
		StartDate:   req.StartDate,
		Status:      StatusOpen,
	})
}

// Join registers a member and charges the entry fee in one transaction. The
// tournament row lock keeps the capacity count stable while the seat is
// claimed, so an over-subscribed tournament can never admit past MaxPlayers.
// Entry fees are not refundable.
func (s *service) Join(ctx context.Context, memberID, tournamentID int, req JoinRequest) (*Participant, error) {
	teamSize := req.TeamSize
	if teamSize == 0 {
		teamSize = 1
	}

	var joined *Participant
	var entryFee int64
	err := db.WithinTx(ctx, s.db, func(tx *sqlx.Tx) error {
		t, err := s.repo.GetForUpdateTx(ctx, tx, tournamentID)
		if err != nil {
			return err
		}
		if t.Status != StatusOpen {
			return ErrNotOpen
		}

		already, err := s.repo.HasParticipantTx(ctx, tx, tournamentID, memberID)
		if err != nil {
			return err
		}
		if already {
			return ErrAlreadyJoined
		}

		count, err := s.repo.CountParticipantsTx(ctx, tx, tournamentID)
		if err != nil {
			return err
		}
		if count >= t.MaxPlayers {
			return ErrFull
		}

		if t.EntryFee > 0 {
			desc := fmt.Sprintf("Entry fee for tournament %s", t.Name)
			if _, err := s.wallet.DebitTx(ctx, tx, memberID, t.EntryFee, wallet.KindTournamentEntry, desc); err != nil {
				return err
			}
		}

		joined, err = s.repo.AddParticipantTx(ctx, tx, &Participant{
			TournamentID: tournamentID,
			MemberID:     memberID,
			Status:       ParticipantJoined,
			GroupName:    req.GroupName,
			TeamSize:     teamSize,
		})
		if err != nil {
			return err
		}
		entryFee = t.EntryFee
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordTournamentJoin()
	s.notifier.Emit(ctx, memberID, "Tournament registration",
		fmt.Sprintf("You are registered, entry fee %d charged", entryFee), "tournament")
	return joined, nil
}

func (s *service) Get(ctx context.Context, tournamentID int) (*Tournament, error) {
	return s.repo.GetByID(ctx, tournamentID)
}

func (s *service) List(ctx context.Context, status Status) ([]Tournament, error) {
	return s.repo.List(ctx, status)
}

func (s *service) Participants(ctx context.Context, tournamentID int) ([]Participant, error) {
	return s.repo.ListParticipants(ctx, tournamentID)
}

func (s *service) SetStatus(ctx context.Context, tournamentID int, status Status) error {
	return s.repo.SetStatus(ctx, tournamentID, status)
}
