package booking

import "time"

const (
	StatusConfirmed = "Confirmed"
	StatusCancelled = "Cancelled"
)

// Booking holds its price as computed at creation; it is never recomputed.
// Cancellation flips the status, rows are never deleted.
type Booking struct {
	ID          int        `db:"id" json:"id"`
	MemberID    int        `db:"member_id" json:"member_id"`
	CourtID     int        `db:"court_id" json:"court_id"`
	StartTime   time.Time  `db:"start_time" json:"start_time"`
	EndTime     time.Time  `db:"end_time" json:"end_time"`
	TotalPrice  int64      `db:"total_price" json:"total_price"`
	Status      string     `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	CancelledAt *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
}

type BookingWithCourt struct {
	Booking
	CourtName string `db:"court_name" json:"court_name"`
}

// RecurringRequest describes a weekly pattern over a date span. Each matching
// date yields one independent booking; the whole set is paid with a single
// aggregate debit.
type RecurringRequest struct {
	CourtID    int
	FromDate   time.Time
	ToDate     time.Time
	StartOfDay time.Duration
	EndOfDay   time.Duration
	DaysOfWeek []time.Weekday
}

type CreateBookingRequest struct {
	CourtID   int       `json:"court_id" binding:"required"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

type CreateRecurringBookingRequest struct {
	CourtID    int    `json:"court_id" binding:"required"`
	FromDate   string `json:"from_date" binding:"required"`
	ToDate     string `json:"to_date" binding:"required"`
	StartTime  string `json:"start_time" binding:"required"`
	EndTime    string `json:"end_time" binding:"required"`
	DaysOfWeek []int  `json:"days_of_week" binding:"required,min=1"`
}

type RecurringBookingResponse struct {
	Bookings   []Booking `json:"bookings"`
	TotalPrice int64     `json:"total_price"`
}

type CancelBookingResponse struct {
	Booking      *Booking `json:"booking"`
	RefundAmount int64    `json:"refund_amount"`
}
