package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ivf_stage_bot/internal/domain/cycle"
	"ivf_stage_bot/internal/domain/patient"
	idb "ivf_stage_bot/internal/infra/database"
)

// Clock returns the current time. Services take one so "today" can be pinned in tests.
type Clock func() time.Time

func findPatient(ctx context.Context, repo patient.Repository, telegramID int64) (*patient.Patient, error) {
	p, err := repo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, idb.ErrPatientNotFound) {
			return nil, ErrNotRegistered
		}
		return nil, fmt.Errorf("failed to get patient by Telegram ID: %w", err)
	}
	return p, nil
}

func findActiveCycle(ctx context.Context, repo cycle.Repository, patientID int64) (*cycle.Cycle, error) {
	c, err := repo.GetActiveByPatient(ctx, patientID)
	if err != nil {
		if errors.Is(err, idb.ErrCycleNotFound) {
			return nil, ErrNoActiveCycle
		}
		return nil, fmt.Errorf("failed to get active cycle: %w", err)
	}
	return c, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
