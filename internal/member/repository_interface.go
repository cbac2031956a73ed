package member

import "context"

type Repository interface {
	Create(ctx context.Context, email, fullName, passwordHash, role string) (*Member, error)
	FindByID(ctx context.Context, id int) (*Member, error)
	FindByEmail(ctx context.Context, email string) (*Member, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
	Deactivate(ctx context.Context, id int) error
}
