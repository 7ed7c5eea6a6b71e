package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ivf_stage_bot/internal/domain/milestone"
)

var ErrMilestoneNotFound = errors.New("milestone not found")
var ErrDuplicateMilestone = errors.New("duplicate milestone (cycle_id, milestone_type)")

type PostgresMilestoneRepository struct {
	db *sql.DB
}

func NewPostgresMilestoneRepository(db *sql.DB) *PostgresMilestoneRepository {
	return &PostgresMilestoneRepository{db: db}
}

const milestoneColumns = `id, cycle_id, milestone_type, title, milestone_date, status, notes, created_at, updated_at`

func scanMilestone(row interface{ Scan(...any) error }) (*milestone.Milestone, error) {
	m := &milestone.Milestone{}
	err := row.Scan(&m.ID, &m.CycleID, &m.Type, &m.Title, &m.Date, &m.Status, &m.Notes, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *PostgresMilestoneRepository) Create(ctx context.Context, m *milestone.Milestone) error {
	query := `INSERT INTO cycle_milestones (cycle_id, milestone_type, title, milestone_date, status, notes)
               VALUES ($1, $2, $3, $4, $5, $6)
               RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, m.CycleID, m.Type, m.Title, m.Date, m.Status, m.Notes).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "cycle_milestone_type_unique") {
			return ErrDuplicateMilestone
		}
		return fmt.Errorf("error creating milestone: %w", err)
	}
	return nil
}

func (r *PostgresMilestoneRepository) GetByID(ctx context.Context, id int64) (*milestone.Milestone, error) {
	query := `SELECT ` + milestoneColumns + ` FROM cycle_milestones WHERE id = $1`
	m, err := scanMilestone(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMilestoneNotFound
		}
		return nil, fmt.Errorf("error getting milestone by ID: %w", err)
	}
	return m, nil
}

func (r *PostgresMilestoneRepository) GetByCycleAndType(ctx context.Context, cycleID int64, milestoneType string) (*milestone.Milestone, error) {
	query := `SELECT ` + milestoneColumns + ` FROM cycle_milestones WHERE cycle_id = $1 AND milestone_type = $2`
	m, err := scanMilestone(r.db.QueryRowContext(ctx, query, cycleID, milestoneType))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMilestoneNotFound
		}
		return nil, fmt.Errorf("error getting milestone by cycle and type: %w", err)
	}
	return m, nil
}

func (r *PostgresMilestoneRepository) ListByCycle(ctx context.Context, cycleID int64) ([]*milestone.Milestone, error) {
	query := `SELECT ` + milestoneColumns + ` FROM cycle_milestones
               WHERE cycle_id = $1 ORDER BY milestone_date NULLS LAST, id`
	rows, err := r.db.QueryContext(ctx, query, cycleID)
	if err != nil {
		return nil, fmt.Errorf("error querying milestones by cycle: %w", err)
	}
	defer rows.Close()

	milestones := make([]*milestone.Milestone, 0)
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning milestone row: %w", err)
		}
		milestones = append(milestones, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating milestone rows: %w", err)
	}
	return milestones, nil
}

func (r *PostgresMilestoneRepository) Update(ctx context.Context, m *milestone.Milestone) error {
	query := `UPDATE cycle_milestones
               SET title = $1, milestone_date = $2, status = $3, notes = $4, updated_at = NOW()
               WHERE id = $5
               RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, m.Title, m.Date, m.Status, m.Notes, m.ID).Scan(&m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMilestoneNotFound
		}
		return fmt.Errorf("error updating milestone: %w", err)
	}
	return nil
}
