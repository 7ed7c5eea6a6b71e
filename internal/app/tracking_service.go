package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ivf_stage_bot/internal/domain/cycle"
	"ivf_stage_bot/internal/domain/milestone"
	"ivf_stage_bot/internal/domain/patient"
	"ivf_stage_bot/internal/domain/stage"
	idb "ivf_stage_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// TrackingService handles the write side: patients, cycles and milestones.
type TrackingService struct {
	patientRepo   patient.Repository
	cycleRepo     cycle.Repository
	milestoneRepo milestone.Repository
	timeline      stage.Timeline
	now           Clock
	logger        *logrus.Entry
}

func NewTrackingService(
	pr patient.Repository,
	cr cycle.Repository,
	mr milestone.Repository,
	timeline stage.Timeline,
	now Clock,
	logger *logrus.Entry,
) *TrackingService {
	return &TrackingService{
		patientRepo:   pr,
		cycleRepo:     cr,
		milestoneRepo: mr,
		timeline:      timeline,
		now:           now,
		logger:        logger,
	}
}

// RegisterPatient creates the patient on first contact. The bool reports whether
// a new record was created.
func (s *TrackingService) RegisterPatient(ctx context.Context, telegramID int64, firstName, lastNameValue string) (*patient.Patient, bool, error) {
	existing, err := s.patientRepo.GetByTelegramID(ctx, telegramID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, idb.ErrPatientNotFound) {
		return nil, false, fmt.Errorf("failed to check existing patient: %w", err)
	}

	var lastName sql.NullString
	if lastNameValue != "" {
		lastName = sql.NullString{String: lastNameValue, Valid: true}
	}
	p := &patient.Patient{TelegramID: telegramID, FirstName: firstName, LastName: lastName}
	if err := s.patientRepo.Create(ctx, p); err != nil {
		if errors.Is(err, idb.ErrDuplicateTelegramID) {
			// Lost a race with a concurrent /start.
			existing, getErr := s.patientRepo.GetByTelegramID(ctx, telegramID)
			if getErr != nil {
				return nil, false, fmt.Errorf("failed to reload patient after duplicate insert: %w", getErr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to create patient in repository: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"patient_id": p.ID, "telegram_id": telegramID}).Info("Patient registered")
	return p, true, nil
}

// StartCycle opens a new active cycle. A patient may have only one.
func (s *TrackingService) StartCycle(ctx context.Context, telegramID int64, cycleType cycle.Type, startDate time.Time) (*cycle.Cycle, error) {
	p, err := findPatient(ctx, s.patientRepo, telegramID)
	if err != nil {
		return nil, err
	}

	start := dateOnly(startDate)
	if start.After(dateOnly(s.now())) {
		return nil, ErrStartDateInFuture
	}

	if _, err := findActiveCycle(ctx, s.cycleRepo, p.ID); err == nil {
		return nil, ErrActiveCycleExists
	} else if !errors.Is(err, ErrNoActiveCycle) {
		return nil, err
	}

	c := &cycle.Cycle{PatientID: p.ID, Type: cycleType, StartDate: start, Status: cycle.StatusActive}
	if err := s.cycleRepo.Create(ctx, c); err != nil {
		if errors.Is(err, idb.ErrActiveCycleExists) {
			return nil, ErrActiveCycleExists
		}
		return nil, fmt.Errorf("failed to create cycle in repository: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"patient_id": p.ID,
		"cycle_id":   c.ID,
		"cycle_type": c.Type,
		"start_date": start.Format(time.DateOnly),
	}).Info("Cycle started")
	return c, nil
}

// CloseCycle marks the active cycle completed or cancelled.
func (s *TrackingService) CloseCycle(ctx context.Context, telegramID int64, status cycle.Status) (*cycle.Cycle, error) {
	if !status.Closed() {
		return nil, ErrInvalidCloseStatus
	}
	p, err := findPatient(ctx, s.patientRepo, telegramID)
	if err != nil {
		return nil, err
	}
	c, err := findActiveCycle(ctx, s.cycleRepo, p.ID)
	if err != nil {
		return nil, err
	}

	c.Status = status
	if err := s.cycleRepo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update cycle %d: %w", c.ID, err)
	}
	s.logger.WithFields(logrus.Fields{"cycle_id": c.ID, "status": status}).Info("Cycle closed")
	return c, nil
}

// RecordMilestone sets the status (and optionally the date) of a milestone in the
// active cycle. The first edit of an expected milestone promotes it from the
// template into a stored record; the bool reports that.
// A nil date keeps the stored date, or stamps today when the milestone becomes
// in-progress or completed without one.
func (s *TrackingService) RecordMilestone(ctx context.Context, telegramID int64, milestoneType, rawStatus string, date *time.Time) (*milestone.Milestone, bool, error) {
	status, match := milestone.ParseStatus(rawStatus)
	if match == milestone.MatchUnknown {
		return nil, false, fmt.Errorf("%w: %q", ErrUnknownStatus, rawStatus)
	}
	if match == milestone.MatchLenient {
		s.logger.WithField("raw_status", rawStatus).Warn("Milestone status accepted leniently as in-progress")
	}

	mt := milestone.BaseType(milestoneType)
	if mt == "" {
		return nil, false, ErrEmptyMilestoneType
	}

	p, err := findPatient(ctx, s.patientRepo, telegramID)
	if err != nil {
		return nil, false, err
	}
	c, err := findActiveCycle(ctx, s.cycleRepo, p.ID)
	if err != nil {
		return nil, false, err
	}

	logCtx := s.logger.WithFields(logrus.Fields{"cycle_id": c.ID, "milestone_type": mt, "status": status})

	m, err := s.milestoneRepo.GetByCycleAndType(ctx, c.ID, mt)
	if err != nil && !errors.Is(err, idb.ErrMilestoneNotFound) {
		return nil, false, fmt.Errorf("failed to get milestone %s: %w", mt, err)
	}

	if m == nil {
		created := &milestone.Milestone{
			CycleID: c.ID,
			Type:    mt,
			Title:   milestone.FormatTitle(mt),
			Status:  string(status),
			Date:    s.milestoneDate(sql.NullTime{}, status, date),
		}
		if _, expected := s.timeline.TypicalDay(c.Type, mt); expected {
			created.Notes = sql.NullString{String: fmt.Sprintf("%s on cycle day %d", milestone.NotePrefixPromoted, c.Day(s.now())), Valid: true}
		}
		err := s.milestoneRepo.Create(ctx, created)
		if err == nil {
			logCtx.WithField("milestone_id", created.ID).Info("Milestone recorded")
			return created, true, nil
		}
		if !errors.Is(err, idb.ErrDuplicateMilestone) {
			return nil, false, fmt.Errorf("failed to create milestone %s: %w", mt, err)
		}
		// Lost a race with a concurrent edit (double tap on a button); update the stored record instead.
		m, err = s.milestoneRepo.GetByCycleAndType(ctx, c.ID, mt)
		if err != nil {
			return nil, false, fmt.Errorf("failed to reload milestone %s after duplicate insert: %w", mt, err)
		}
	}

	m.Status = string(status)
	m.Date = s.milestoneDate(m.Date, status, date)
	if err := s.milestoneRepo.Update(ctx, m); err != nil {
		return nil, false, fmt.Errorf("failed to update milestone %d: %w", m.ID, err)
	}
	logCtx.WithField("milestone_id", m.ID).Info("Milestone updated")
	return m, false, nil
}

func (s *TrackingService) milestoneDate(current sql.NullTime, status milestone.Status, date *time.Time) sql.NullTime {
	if date != nil {
		return sql.NullTime{Time: dateOnly(*date), Valid: true}
	}
	if !current.Valid && (status == milestone.StatusInProgress || status == milestone.StatusCompleted) {
		return sql.NullTime{Time: dateOnly(s.now()), Valid: true}
	}
	return current
}

// UpdateMilestoneNotes replaces the notes of a recorded milestone. Empty text clears them.
func (s *TrackingService) UpdateMilestoneNotes(ctx context.Context, telegramID int64, milestoneType, notes string) (*milestone.Milestone, error) {
	mt := milestone.BaseType(milestoneType)
	if mt == "" {
		return nil, ErrEmptyMilestoneType
	}
	p, err := findPatient(ctx, s.patientRepo, telegramID)
	if err != nil {
		return nil, err
	}
	c, err := findActiveCycle(ctx, s.cycleRepo, p.ID)
	if err != nil {
		return nil, err
	}

	m, err := s.milestoneRepo.GetByCycleAndType(ctx, c.ID, mt)
	if err != nil {
		if errors.Is(err, idb.ErrMilestoneNotFound) {
			return nil, ErrMilestoneNotRecorded
		}
		return nil, fmt.Errorf("failed to get milestone %s: %w", mt, err)
	}

	m.Notes = sql.NullString{String: notes, Valid: notes != ""}
	if err := s.milestoneRepo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to update milestone notes %d: %w", m.ID, err)
	}
	return m, nil
}
