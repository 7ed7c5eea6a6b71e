package cycle

import "context"

// Repository defines the operations for persisting and retrieving Cycle entities.
type Repository interface {
	Create(ctx context.Context, c *Cycle) error
	GetByID(ctx context.Context, id int64) (*Cycle, error)
	GetActiveByPatient(ctx context.Context, patientID int64) (*Cycle, error)
	Update(ctx context.Context, c *Cycle) error // Status changes only; type and start date are fixed
	ListActive(ctx context.Context) ([]*Cycle, error)
}
