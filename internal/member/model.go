package member

import "time"

// Member is never deleted; admins flip is_active instead. WalletBalance and
// TotalSpent are written exclusively by the wallet service.
type Member struct {
	ID            int       `db:"id" json:"id"`
	Email         string    `db:"email" json:"email"`
	FullName      string    `db:"full_name" json:"full_name"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	Role          string    `db:"role" json:"role"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	WalletBalance int64     `db:"wallet_balance" json:"wallet_balance"`
	TotalSpent    int64     `db:"total_spent" json:"total_spent"`
	PhoneNumber   *string   `db:"phone_number" json:"phone_number,omitempty"`
	Address       *string   `db:"address" json:"address,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type AuthResponse struct {
	Member       *Member `json:"member"`
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
}
