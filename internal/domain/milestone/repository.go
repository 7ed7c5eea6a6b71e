package milestone

import "context"

// Repository defines operations for cycle milestones.
type Repository interface {
	Create(ctx context.Context, m *Milestone) error
	GetByID(ctx context.Context, id int64) (*Milestone, error)
	GetByCycleAndType(ctx context.Context, cycleID int64, milestoneType string) (*Milestone, error)
	ListByCycle(ctx context.Context, cycleID int64) ([]*Milestone, error)
	Update(ctx context.Context, m *Milestone) error // Status, date, title and notes
}
