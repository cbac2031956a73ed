package challenge

import "time"

type Type string

const (
	TypeFriendly Type = "Friendly"
	TypeWager    Type = "Wager"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusAccepted  Status = "Accepted"
	StatusRejected  Status = "Rejected"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

// Challenge is a head-to-head match invitation between two members. A wager
// challenge holds each side's stake in escrow from acceptance until the
// result is recorded.
type Challenge struct {
	ID              int        `db:"id" json:"id"`
	ChallengerID    int        `db:"challenger_id" json:"challenger_id"`
	OpponentID      int        `db:"opponent_id" json:"opponent_id"`
	Type            Type       `db:"type" json:"type"`
	Status          Status     `db:"status" json:"status"`
	WagerAmount     *int64     `db:"wager_amount" json:"wager_amount,omitempty"`
	Message         string     `db:"message" json:"message,omitempty"`
	ChallengerScore *int       `db:"challenger_score" json:"challenger_score,omitempty"`
	OpponentScore   *int       `db:"opponent_score" json:"opponent_score,omitempty"`
	WinnerID        *int       `db:"winner_id" json:"winner_id,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	ExpiresAt       time.Time  `db:"expires_at" json:"expires_at"`
	AcceptedAt      *time.Time `db:"accepted_at" json:"accepted_at,omitempty"`
	CompletedAt     *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	ResolvedAt      *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
}

func (c *Challenge) isParticipant(memberID int) bool {
	return c.ChallengerID == memberID || c.OpponentID == memberID
}

// wager returns the stake per side, zero for friendly challenges.
func (c *Challenge) wager() int64 {
	if c.Type != TypeWager || c.WagerAmount == nil {
		return 0
	}
	return *c.WagerAmount
}

type CreateRequest struct {
	OpponentID  int    `json:"opponent_id" binding:"required"`
	Type        Type   `json:"type" binding:"required,oneof=Friendly Wager"`
	WagerAmount *int64 `json:"wager_amount,omitempty"`
	Message     string `json:"message,omitempty" binding:"max=500"`
}

type CompleteRequest struct {
	ChallengerScore int `json:"challenger_score" binding:"min=0"`
	OpponentScore   int `json:"opponent_score" binding:"min=0"`
}
