package wallet

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"courtclub/internal/db"
	"courtclub/internal/metrics"
)

var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrMemberNotFound    = errors.New("member not found")
	ErrMemberInactive    = errors.New("member is not active")
)

// Service is the single writer of member balances and the only appender of
// wallet_transactions. Settlement services call DebitTx/CreditTx inside their
// own transaction so the ledger entry and the entity-state change commit as
// one unit.
type Service struct {
	db *sqlx.DB
}

func NewService(database *sqlx.DB) *Service {
	return &Service{db: database}
}

func (s *Service) lockMemberTx(ctx context.Context, tx *sqlx.Tx, memberID int) (*memberRow, error) {
	var m memberRow
	err := tx.QueryRowxContext(ctx,
		`SELECT id, wallet_balance, total_spent, is_active
		 FROM members
		 WHERE id = $1
		 FOR UPDATE`,
		memberID,
	).StructScan(&m)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

// applyTx updates the locked member row and appends the ledger entry.
// amount is signed; spent is the increment for total_spent.
func (s *Service) applyTx(ctx context.Context, tx *sqlx.Tx, m *memberRow, amount, spent int64, kind Kind, description string) (*Transaction, error) {
	_, err := tx.ExecContext(ctx,
		`UPDATE members
		 SET wallet_balance = $1, total_spent = $2, updated_at = NOW()
		 WHERE id = $3`,
		m.WalletBalance+amount, m.TotalSpent+spent, m.ID,
	)
	if err != nil {
		return nil, err
	}

	var entry Transaction
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO wallet_transactions (member_id, amount, kind, status, description)
		 VALUES ($1, $2, $3, 'Completed', $4)
		 RETURNING id, member_id, amount, kind, status, description, created_at`,
		m.ID, amount, kind, description,
	).StructScan(&entry)
	if err != nil {
		return nil, err
	}

	metrics.RecordLedgerEntry(string(kind), amount)
	return &entry, nil
}

// DebitTx takes amount from the member's wallet inside the caller's
// transaction. The member row is locked for the whole check-then-mutate
// sequence, so a concurrent debit cannot slip between the balance check and
// the update.
func (s *Service) DebitTx(ctx context.Context, tx *sqlx.Tx, memberID int, amount int64, kind Kind, description string) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	m, err := s.lockMemberTx(ctx, tx, memberID)
	if err != nil {
		return nil, err
	}
	if !m.IsActive {
		return nil, ErrMemberInactive
	}
	if m.WalletBalance < amount {
		return nil, ErrInsufficientFunds
	}

	var spent int64
	if kind.spendsTotal() {
		spent = amount
	}

	return s.applyTx(ctx, tx, m, -amount, spent, kind, description)
}

// CreditTx adds amount to the member's wallet inside the caller's
// transaction. Credits land regardless of activation state: a refund or a
// won pot belongs to the member even if an admin deactivated them meanwhile.
func (s *Service) CreditTx(ctx context.Context, tx *sqlx.Tx, memberID int, amount int64, kind Kind, description string) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	m, err := s.lockMemberTx(ctx, tx, memberID)
	if err != nil {
		return nil, err
	}

	return s.applyTx(ctx, tx, m, amount, 0, kind, description)
}

// LockMembersTx locks the given member rows in ascending id order. Dual-party
// settlements (challenge escrow) call this before any balance read so two
// operations crossing the same pair of members cannot deadlock.
func (s *Service) LockMembersTx(ctx context.Context, tx *sqlx.Tx, memberIDs ...int) error {
	ids := append([]int(nil), memberIDs...)
	sort.Ints(ids)

	var locked []int
	err := tx.SelectContext(ctx, &locked,
		`SELECT id FROM members WHERE id = ANY($1) ORDER BY id FOR UPDATE`,
		pq.Array(ids),
	)
	if err != nil {
		return err
	}
	if len(locked) != len(ids) {
		return ErrMemberNotFound
	}
	return nil
}

// Deposit credits the member's wallet in its own atomic unit. The only domain
// rule is a positive amount and an active member.
func (s *Service) Deposit(ctx context.Context, memberID int, amount int64, description string) (*Transaction, int64, error) {
	if amount <= 0 {
		return nil, 0, ErrInvalidAmount
	}

	var entry *Transaction
	var balance int64
	err := db.WithinTx(ctx, s.db, func(tx *sqlx.Tx) error {
		m, err := s.lockMemberTx(ctx, tx, memberID)
		if err != nil {
			return err
		}
		if !m.IsActive {
			return ErrMemberInactive
		}

		entry, err = s.applyTx(ctx, tx, m, amount, 0, KindDeposit, description)
		if err != nil {
			return err
		}
		balance = m.WalletBalance + amount
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return entry, balance, nil
}

// Balance is a point-in-time read. Decisions that depend on it ("can afford
// this") must re-read under a row lock inside the same transaction instead.
func (s *Service) Balance(ctx context.Context, memberID int) (int64, error) {
	var balance int64
	err := s.db.GetContext(ctx, &balance,
		`SELECT wallet_balance FROM members WHERE id = $1`, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrMemberNotFound
		}
		return 0, err
	}
	return balance, nil
}

func (s *Service) Transactions(ctx context.Context, memberID, limit, offset int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}

	var txs []Transaction
	err := s.db.SelectContext(ctx, &txs,
		`SELECT id, member_id, amount, kind, status, description, created_at
		 FROM wallet_transactions
		 WHERE member_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		memberID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// AllTransactions is the admin view over the full ledger.
func (s *Service) AllTransactions(ctx context.Context, limit int) ([]Transaction, error) {
	if limit <= 0 || limit > 500 {
		limit = 500
	}

	var txs []Transaction
	err := s.db.SelectContext(ctx, &txs,
		`SELECT id, member_id, amount, kind, status, description, created_at
		 FROM wallet_transactions
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	return txs, nil
}
