package wallet

import "time"

// Kind classifies a ledger entry. The set is closed: every balance-affecting
// event in the system is one of these.
type Kind string

const (
	KindDeposit                 Kind = "Deposit"
	KindBookingPayment          Kind = "BookingPayment"
	KindBookingRecurringPayment Kind = "BookingRecurringPayment"
	KindBookingRefund           Kind = "BookingRefund"
	KindChallengeWager          Kind = "ChallengeWager"
	KindChallengeWin            Kind = "ChallengeWin"
	KindTournamentEntry         Kind = "TournamentEntry"
)

// spendsTotal reports whether a debit of this kind counts toward the member's
// lifetime spend. A wager hold is escrow, not spend; it only becomes spend for
// the loser implicitly when the pot is paid out to the winner.
func (k Kind) spendsTotal() bool {
	switch k {
	case KindBookingPayment, KindBookingRecurringPayment, KindTournamentEntry:
		return true
	}
	return false
}

// Transaction is one immutable ledger entry. Amount is signed: negative for
// debits, positive for credits. Rows are appended exactly once and never
// updated, so for every member the wallet balance equals the sum of amounts.
type Transaction struct {
	ID          int       `db:"id" json:"id"`
	MemberID    int       `db:"member_id" json:"member_id"`
	Amount      int64     `db:"amount" json:"amount"`
	Kind        Kind      `db:"kind" json:"kind"`
	Status      string    `db:"status" json:"status"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// memberRow is the locked view of a member taken FOR UPDATE for the duration
// of a check-then-mutate sequence.
type memberRow struct {
	ID            int   `db:"id"`
	WalletBalance int64 `db:"wallet_balance"`
	TotalSpent    int64 `db:"total_spent"`
	IsActive      bool  `db:"is_active"`
}
