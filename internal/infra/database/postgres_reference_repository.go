package database

import (
	"context"
	"database/sql"
	"fmt"

	"ivf_stage_bot/internal/domain/cycle"
	"ivf_stage_bot/internal/domain/stage"

	"github.com/lib/pq" // For pq.Array
)

// PostgresReferenceRepository serves stage reference data from the stage_reference table.
type PostgresReferenceRepository struct {
	db *sql.DB
}

func NewPostgresReferenceRepository(db *sql.DB) *PostgresReferenceRepository {
	return &PostgresReferenceRepository{db: db}
}

// Load returns every reference entry. It satisfies referencedata.Source.
func (r *PostgresReferenceRepository) Load(ctx context.Context) ([]stage.ReferenceEntry, error) {
	query := `SELECT cycle_type, milestone_type, name, description, details, tips
               FROM stage_reference ORDER BY cycle_type, milestone_type`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying stage reference: %w", err)
	}
	defer rows.Close()

	entries := make([]stage.ReferenceEntry, 0)
	for rows.Next() {
		var e stage.ReferenceEntry
		var cycleType string
		var tips []string
		if err := rows.Scan(&cycleType, &e.MilestoneType, &e.Name, &e.Description, &e.Details, pq.Array(&tips)); err != nil {
			return nil, fmt.Errorf("error scanning stage reference row: %w", err)
		}
		e.CycleType = cycle.Type(cycleType)
		e.Tips = tips
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stage reference rows: %w", err)
	}
	return entries, nil
}

// Upsert writes entries in one transaction, replacing rows with the same key.
func (r *PostgresReferenceRepository) Upsert(ctx context.Context, entries []stage.ReferenceEntry) error {
	if len(entries) == 0 {
		return nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for reference upsert: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	stmt, err := txn.PrepareContext(ctx, `INSERT INTO stage_reference (cycle_type, milestone_type, name, description, details, tips)
                                         VALUES ($1, $2, $3, $4, $5, $6)
                                         ON CONFLICT ON CONSTRAINT stage_reference_key
                                         DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description,
                                                       details = EXCLUDED.details, tips = EXCLUDED.tips`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for reference upsert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		tips := e.Tips
		if tips == nil {
			tips = []string{}
		}
		if _, err := stmt.ExecContext(ctx, string(e.CycleType), e.MilestoneType, e.Name, e.Description, e.Details, pq.Array(tips)); err != nil {
			return fmt.Errorf("error upserting reference entry (%s/%s): %w", e.CycleType, e.MilestoneType, err)
		}
	}

	return txn.Commit()
}
