package court

import "context"

type Repository interface {
	Create(ctx context.Context, name string, description *string, pricePerHour int64) (*Court, error)
	GetByID(ctx context.Context, id int) (*Court, error)
	List(ctx context.Context) ([]Court, error)
}
