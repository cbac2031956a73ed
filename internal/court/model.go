package court

import "time"

// Court is a read model for the settlement engine: bookings only consume
// PricePerHour, they never write back.
type Court struct {
	ID           int       `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Description  *string   `db:"description" json:"description,omitempty"`
	PricePerHour int64     `db:"price_per_hour" json:"price_per_hour"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type CreateCourtRequest struct {
	Name         string  `json:"name" binding:"required"`
	Description  *string `json:"description"`
	PricePerHour int64   `json:"price_per_hour" binding:"required,gt=0"`
}
