package challenge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"courtclub/internal/clock"
	"courtclub/internal/db"
	"courtclub/internal/logger"
	"courtclub/internal/member"
	"courtclub/internal/metrics"
	"courtclub/internal/wallet"
)

var (
	ErrNotFound         = errors.New("challenge not found")
	ErrSelfChallenge    = errors.New("cannot challenge yourself")
	ErrOpponentNotFound = errors.New("opponent not found")
	ErrOpponentInactive = errors.New("opponent is not active")
	ErrInvalidWager     = errors.New("wager challenge requires a positive wager amount")
	ErrForbidden        = errors.New("member is not allowed to act on this challenge")
	ErrNotPending       = errors.New("challenge is not pending")
	ErrNotAccepted      = errors.New("challenge is not accepted")
	ErrExpired          = errors.New("challenge has expired")
	ErrTiedScore        = errors.New("challenge cannot end in a tie")

	// Side-specific funding failures so the caller can tell which wallet
	// came up short. Both unwrap to wallet.ErrInsufficientFunds.
	ErrChallengerInsufficientFunds = fmt.Errorf("challenger: %w", wallet.ErrInsufficientFunds)
	ErrOpponentInsufficientFunds   = fmt.Errorf("opponent: %w", wallet.ErrInsufficientFunds)
)

// pendingTTL is how long an unanswered challenge stays open.
const pendingTTL = 24 * time.Hour

type MemberReader interface {
	FindByID(ctx context.Context, memberID int) (*member.Member, error)
}

type WalletService interface {
	DebitTx(ctx context.Context, tx *sqlx.Tx, memberID int, amount int64, kind wallet.Kind, description string) (*wallet.Transaction, error)
	CreditTx(ctx context.Context, tx *sqlx.Tx, memberID int, amount int64, kind wallet.Kind, description string) (*wallet.Transaction, error)
	LockMembersTx(ctx context.Context, tx *sqlx.Tx, memberIDs ...int) error
	Balance(ctx context.Context, memberID int) (int64, error)
}

type Notifier interface {
	Emit(ctx context.Context, memberID int, title, message, category string)
}

type Service interface {
	Create(ctx context.Context, challengerID int, req CreateRequest) (*Challenge, error)
	Accept(ctx context.Context, memberID, challengeID int) (*Challenge, error)
	Reject(ctx context.Context, memberID, challengeID int) (*Challenge, error)
	Cancel(ctx context.Context, memberID, challengeID int) (*Challenge, error)
	Complete(ctx context.Context, memberID, challengeID, challengerScore, opponentScore int) (*Challenge, error)
	Get(ctx context.Context, memberID, challengeID int) (*Challenge, error)
	ListForMember(ctx context.Context, memberID int) ([]Challenge, error)
	ListIncoming(ctx context.Context, memberID int) ([]Challenge, error)
}

type service struct {
	db       *sqlx.DB
	repo     Repository
	members  MemberReader
	wallet   WalletService
	notifier Notifier
	clock    clock.Clock
}

func NewService(database *sqlx.DB, repo Repository, members MemberReader, walletSvc WalletService, notifier Notifier, clk clock.Clock) Service {
	return &service{
		db:       database,
		repo:     repo,
		members:  members,
		wallet:   walletSvc,
		notifier: notifier,
		clock:    clk,
	}
}

func (s *service) Create(ctx context.Context, challengerID int, req CreateRequest) (*Challenge, error) {
	if req.OpponentID == challengerID {
		return nil, ErrSelfChallenge
	}

	opponent, err := s.members.FindByID(ctx, req.OpponentID)
	if err != nil {
		if errors.Is(err, member.ErrNotFound) {
			return nil, ErrOpponentNotFound
		}
		return nil, err
	}
	if !opponent.IsActive {
		return nil, ErrOpponentInactive
	}

	c := &Challenge{
		ChallengerID: challengerID,
		OpponentID:   req.OpponentID,
		Type:         req.Type,
		Status:       StatusPending,
		Message:      req.Message,
		ExpiresAt:    s.clock.Now().Add(pendingTTL),
	}

	if req.Type == TypeWager {
		if req.WagerAmount == nil || *req.WagerAmount <= 0 {
			return nil, ErrInvalidWager
		}
		c.WagerAmount = req.WagerAmount

		// Advisory only: the binding check happens at accept time, under the
		// member row locks. This just fails obviously-unfundable challenges
		// early.
		challengerBalance, err := s.wallet.Balance(ctx, challengerID)
		if err != nil {
			return nil, err
		}
		if challengerBalance < *req.WagerAmount {
			return nil, ErrChallengerInsufficientFunds
		}
		opponentBalance, err := s.wallet.Balance(ctx, req.OpponentID)
		if err != nil {
			return nil, err
		}
		if opponentBalance < *req.WagerAmount {
			return nil, ErrOpponentInsufficientFunds
		}
	}

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}

	metrics.RecordChallengeTransition("created")
	s.notifier.Emit(ctx, created.OpponentID, "New challenge",
		fmt.Sprintf("You have been challenged to a %s match", created.Type), "challenge")
	return created, nil
}

// Accept moves a pending challenge to accepted. For wager challenges both
// stakes are debited into escrow in the same transaction, with both member
// rows locked in id order so two concurrent accepts touching the same pair
// cannot deadlock.
func (s *service) Accept(ctx context.Context, memberID, challengeID int) (*Challenge, error) {
	now := s.clock.Now()

	var accepted *Challenge
	var expired bool
	err := db.WithinTx(ctx, s.db, func(tx *sqlx.Tx) error {
		c, err := s.repo.GetForUpdateTx(ctx, tx, challengeID)
		if err != nil {
			return err
		}
		if c.OpponentID != memberID {
			return ErrForbidden
		}
		if c.Status != StatusPending {
			return ErrNotPending
		}
		if now.After(c.ExpiresAt) {
			// The flip must survive this transaction, so signal expiry
			// through the flag instead of an error.
			if err := s.repo.SetStatusTx(ctx, tx, c.ID, StatusCancelled, now); err != nil {
				return err
			}
			expired = true
			return nil
		}

		if w := c.wager(); w > 0 {
			if err := s.wallet.LockMembersTx(ctx, tx, c.ChallengerID, c.OpponentID); err != nil {
				return err
			}
			desc := fmt.Sprintf("Wager for challenge #%d", c.ID)
			if _, err := s.wallet.DebitTx(ctx, tx, c.ChallengerID, w, wallet.KindChallengeWager, desc); err != nil {
				if errors.Is(err, wallet.ErrInsufficientFunds) {
					return ErrChallengerInsufficientFunds
				}
				return err
			}
			if _, err := s.wallet.DebitTx(ctx, tx, c.OpponentID, w, wallet.KindChallengeWager, desc); err != nil {
				if errors.Is(err, wallet.ErrInsufficientFunds) {
					return ErrOpponentInsufficientFunds
				}
				return err
			}
		}

		if err := s.repo.AcceptTx(ctx, tx, c.ID, now); err != nil {
			return err
		}
		c.Status = StatusAccepted
		c.AcceptedAt = &now
		accepted = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		metrics.RecordChallengeTransition("expired")
		return nil, ErrExpired
	}

	metrics.RecordChallengeTransition("accepted")
	s.notifier.Emit(ctx, accepted.ChallengerID, "Challenge accepted",
		"Your challenge has been accepted", "challenge")
	return accepted, nil
}

func (s *service) Reject(ctx context.Context, memberID, challengeID int) (*Challenge, error) {
	c, err := s.resolvePending(ctx, challengeID, StatusRejected, func(c *Challenge) error {
		if c.OpponentID != memberID {
			return ErrForbidden
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordChallengeTransition("rejected")
	s.notifier.Emit(ctx, c.ChallengerID, "Challenge rejected",
		"Your challenge has been rejected", "challenge")
	return c, nil
}

func (s *service) Cancel(ctx context.Context, memberID, challengeID int) (*Challenge, error) {
	c, err := s.resolvePending(ctx, challengeID, StatusCancelled, func(c *Challenge) error {
		if c.ChallengerID != memberID {
			return ErrForbidden
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordChallengeTransition("cancelled")
	s.notifier.Emit(ctx, c.OpponentID, "Challenge withdrawn",
		"A challenge sent to you has been withdrawn", "challenge")
	return c, nil
}

// resolvePending closes out a still-pending challenge under its row lock.
// No money moves here: stakes are only held once a challenge is accepted.
func (s *service) resolvePending(ctx context.Context, challengeID int, to Status, allowed func(*Challenge) error) (*Challenge, error) {
	now := s.clock.Now()

	var resolved *Challenge
	err := db.WithinTx(ctx, s.db, func(tx *sqlx.Tx) error {
		c, err := s.repo.GetForUpdateTx(ctx, tx, challengeID)
		if err != nil {
			return err
		}
		if err := allowed(c); err != nil {
			return err
		}
		if c.Status != StatusPending {
			return ErrNotPending
		}
		if err := s.repo.SetStatusTx(ctx, tx, c.ID, to, now); err != nil {
			return err
		}
		c.Status = to
		c.ResolvedAt = &now
		resolved = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// Complete records the final score and settles the pot. The winner of a
// wager challenge receives both stakes; ties are not a valid result while
// money is held, so they are refused outright.
func (s *service) Complete(ctx context.Context, memberID, challengeID, challengerScore, opponentScore int) (*Challenge, error) {
	if challengerScore == opponentScore {
		return nil, ErrTiedScore
	}
	now := s.clock.Now()

	var completed *Challenge
	err := db.WithinTx(ctx, s.db, func(tx *sqlx.Tx) error {
		c, err := s.repo.GetForUpdateTx(ctx, tx, challengeID)
		if err != nil {
			return err
		}
		if !c.isParticipant(memberID) {
			return ErrForbidden
		}
		if c.Status != StatusAccepted {
			return ErrNotAccepted
		}

		winnerID := c.ChallengerID
		if opponentScore > challengerScore {
			winnerID = c.OpponentID
		}

		if err := s.repo.CompleteTx(ctx, tx, c.ID, winnerID, challengerScore, opponentScore, now); err != nil {
			return err
		}

		if w := c.wager(); w > 0 {
			desc := fmt.Sprintf("Won wager challenge #%d", c.ID)
			if _, err := s.wallet.CreditTx(ctx, tx, winnerID, 2*w, wallet.KindChallengeWin, desc); err != nil {
				return err
			}
		}

		c.Status = StatusCompleted
		c.WinnerID = &winnerID
		c.ChallengerScore = &challengerScore
		c.OpponentScore = &opponentScore
		c.CompletedAt = &now
		c.ResolvedAt = &now
		completed = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordChallengeTransition("completed")
	logger.Infof("challenge %d completed, winner %d", completed.ID, *completed.WinnerID)
	s.notifier.Emit(ctx, completed.ChallengerID, "Challenge completed",
		fmt.Sprintf("Challenge finished %d-%d", challengerScore, opponentScore), "challenge")
	s.notifier.Emit(ctx, completed.OpponentID, "Challenge completed",
		fmt.Sprintf("Challenge finished %d-%d", challengerScore, opponentScore), "challenge")
	return completed, nil
}

func (s *service) Get(ctx context.Context, memberID, challengeID int) (*Challenge, error) {
	c, err := s.repo.GetByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if !c.isParticipant(memberID) {
		return nil, ErrForbidden
	}
	return c, nil
}

func (s *service) ListForMember(ctx context.Context, memberID int) ([]Challenge, error) {
	return s.repo.ListForMember(ctx, memberID)
}

func (s *service) ListIncoming(ctx context.Context, memberID int) ([]Challenge, error) {
	return s.repo.ListPendingFor(ctx, memberID)
}
