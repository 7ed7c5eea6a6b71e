package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ivf_stage_bot/internal/domain/patient"
)

// Custom errors
var ErrPatientNotFound = errors.New("patient not found")
var ErrDuplicateTelegramID = errors.New("patient with this Telegram ID already exists")

type PostgresPatientRepository struct {
	db *sql.DB
}

func NewPostgresPatientRepository(db *sql.DB) *PostgresPatientRepository {
	return &PostgresPatientRepository{db: db}
}

func (r *PostgresPatientRepository) Create(ctx context.Context, p *patient.Patient) error {
	query := `INSERT INTO patients (telegram_id, first_name, last_name)
               VALUES ($1, $2, $3)
               RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, p.TelegramID, p.FirstName, p.LastName).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "patients_telegram_id_key") {
			return ErrDuplicateTelegramID
		}
		return fmt.Errorf("error creating patient: %w", err)
	}
	return nil
}

func (r *PostgresPatientRepository) GetByID(ctx context.Context, id int64) (*patient.Patient, error) {
	query := `SELECT id, telegram_id, first_name, last_name, created_at, updated_at
               FROM patients WHERE id = $1`
	p := &patient.Patient{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.TelegramID, &p.FirstName, &p.LastName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("error getting patient by ID: %w", err)
	}
	return p, nil
}

func (r *PostgresPatientRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*patient.Patient, error) {
	query := `SELECT id, telegram_id, first_name, last_name, created_at, updated_at
               FROM patients WHERE telegram_id = $1`
	p := &patient.Patient{}
	err := r.db.QueryRowContext(ctx, query, telegramID).Scan(&p.ID, &p.TelegramID, &p.FirstName, &p.LastName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("error getting patient by Telegram ID: %w", err)
	}
	return p, nil
}
