package notify

import "time"

type Notification struct {
	ID        int       `db:"id" json:"id"`
	MemberID  int       `db:"member_id" json:"member_id"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	Category  string    `db:"category" json:"category"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// job is what travels through the Redis delivery queue.
type job struct {
	ID       string    `json:"id"`
	MemberID int       `json:"member_id"`
	Title    string    `json:"title"`
	Message  string    `json:"message"`
	Category string    `json:"category"`
	Tries    int       `json:"tries"`
	Created  time.Time `json:"created"`
}
