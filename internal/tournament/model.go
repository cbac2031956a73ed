package tournament

import "time"

type Status string

const (
	StatusOpen      Status = "Open"
	StatusOngoing   Status = "Ongoing"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

type Tournament struct {
	ID          int       `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	EntryFee    int64     `db:"entry_fee" json:"entry_fee"`
	MaxPlayers  int       `db:"max_players" json:"max_players"`
	StartDate   time.Time `db:"start_date" json:"start_date"`
	Status      Status    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ParticipantStatus is recorded for admin tooling; nothing in the settlement
// path reads it back, and no status grants a refund.
type ParticipantStatus string

const (
	ParticipantJoined       ParticipantStatus = "Joined"
	ParticipantWithdrawn    ParticipantStatus = "Withdrawn"
	ParticipantDisqualified ParticipantStatus = "Disqualified"
)

type Participant struct {
	ID           int               `db:"id" json:"id"`
	TournamentID int               `db:"tournament_id" json:"tournament_id"`
	MemberID     int               `db:"member_id" json:"member_id"`
	Status       ParticipantStatus `db:"status" json:"status"`
	GroupName    string            `db:"group_name" json:"group_name,omitempty"`
	TeamSize     int               `db:"team_size" json:"team_size"`
	JoinedAt     time.Time         `db:"joined_at" json:"joined_at"`
}

type CreateRequest struct {
	Name        string    `json:"name" binding:"required,max=200"`
	Description string    `json:"description,omitempty" binding:"max=1000"`
	EntryFee    int64     `json:"entry_fee" binding:"min=0"`
	MaxPlayers  int       `json:"max_players" binding:"required,min=2"`
	StartDate   time.Time `json:"start_date" binding:"required"`
}

type JoinRequest struct {
	GroupName string `json:"group_name,omitempty" binding:"max=100"`
	TeamSize  int    `json:"team_size,omitempty" binding:"omitempty,min=1,max=4"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required,oneof=Open Ongoing Completed Cancelled"`
}
