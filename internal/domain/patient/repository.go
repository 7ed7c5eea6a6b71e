package patient

import "context"

// Repository defines the operations for persisting and retrieving Patient entities.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*Patient, error)
}
