package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ivf_stage_bot/internal/domain/cycle"
)

var ErrCycleNotFound = errors.New("treatment cycle not found")
var ErrActiveCycleExists = errors.New("patient already has an active cycle")

type PostgresCycleRepository struct {
	db *sql.DB
}

func NewPostgresCycleRepository(db *sql.DB) *PostgresCycleRepository {
	return &PostgresCycleRepository{db: db}
}

const cycleColumns = `id, patient_id, cycle_type, start_date, status, created_at, updated_at`

func scanCycle(row interface{ Scan(...any) error }) (*cycle.Cycle, error) {
	c := &cycle.Cycle{}
	if err := row.Scan(&c.ID, &c.PatientID, &c.Type, &c.StartDate, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PostgresCycleRepository) Create(ctx context.Context, c *cycle.Cycle) error {
	query := `INSERT INTO treatment_cycles (patient_id, cycle_type, start_date, status)
               VALUES ($1, $2, $3, $4)
               RETURNING id, created_at, updated_at`
	if c.Status == "" {
		c.Status = cycle.StatusActive
	}
	err := r.db.QueryRowContext(ctx, query, c.PatientID, c.Type, c.StartDate, c.Status).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "treatment_cycles_one_active") {
			return ErrActiveCycleExists
		}
		return fmt.Errorf("error creating treatment cycle: %w", err)
	}
	return nil
}

func (r *PostgresCycleRepository) GetByID(ctx context.Context, id int64) (*cycle.Cycle, error) {
	query := `SELECT ` + cycleColumns + ` FROM treatment_cycles WHERE id = $1`
	c, err := scanCycle(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCycleNotFound
		}
		return nil, fmt.Errorf("error getting treatment cycle by ID: %w", err)
	}
	return c, nil
}

func (r *PostgresCycleRepository) GetActiveByPatient(ctx context.Context, patientID int64) (*cycle.Cycle, error) {
	query := `SELECT ` + cycleColumns + ` FROM treatment_cycles
               WHERE patient_id = $1 AND status = $2
               ORDER BY start_date DESC LIMIT 1`
	c, err := scanCycle(r.db.QueryRowContext(ctx, query, patientID, cycle.StatusActive))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCycleNotFound
		}
		return nil, fmt.Errorf("error getting active cycle: %w", err)
	}
	return c, nil
}

func (r *PostgresCycleRepository) Update(ctx context.Context, c *cycle.Cycle) error {
	query := `UPDATE treatment_cycles
               SET status = $1, updated_at = NOW()
               WHERE id = $2
               RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, c.Status, c.ID).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCycleNotFound
		}
		return fmt.Errorf("error updating treatment cycle: %w", err)
	}
	return nil
}

func (r *PostgresCycleRepository) ListActive(ctx context.Context) ([]*cycle.Cycle, error) {
	query := `SELECT ` + cycleColumns + ` FROM treatment_cycles WHERE status = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, cycle.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("error listing active cycles: %w", err)
	}
	defer rows.Close()

	cycles := make([]*cycle.Cycle, 0)
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning active cycle: %w", err)
		}
		cycles = append(cycles, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active cycles: %w", err)
	}
	return cycles, nil
}
