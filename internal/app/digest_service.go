package app

import (
	"context"
	"fmt"

	"ivf_stage_bot/internal/domain/cycle"
	"ivf_stage_bot/internal/domain/patient"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// Messenger sends a message to a patient's private chat.
// The Telegram adapter in infra implements it.
type Messenger interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
}

// DigestService pushes the morning stage message to every active cycle.
type DigestService struct {
	patientRepo patient.Repository
	cycleRepo   cycle.Repository
	stages      *StageService
	messenger   Messenger
	logger      *logrus.Entry
}

func NewDigestService(pr patient.Repository, cr cycle.Repository, stages *StageService, messenger Messenger, logger *logrus.Entry) *DigestService {
	return &DigestService{
		patientRepo: pr,
		cycleRepo:   cr,
		stages:      stages,
		messenger:   messenger,
		logger:      logger,
	}
}

// SendDailyDigest returns how many messages were delivered. A failure for one
// patient is logged and does not stop the rest.
func (s *DigestService) SendDailyDigest(ctx context.Context) (int, error) {
	cycles, err := s.cycleRepo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active cycles: %w", err)
	}
	if len(cycles) == 0 {
		s.logger.Info("No active cycles; daily digest has nothing to send")
		return 0, nil
	}

	sent := 0
	for _, c := range cycles {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		logCtx := s.logger.WithFields(logrus.Fields{"cycle_id": c.ID, "patient_id": c.PatientID})

		p, err := s.patientRepo.GetByID(ctx, c.PatientID)
		if err != nil {
			logCtx.WithError(err).Error("Failed to load patient for digest")
			continue
		}
		view, err := s.stages.StageForCycle(ctx, c)
		if err != nil {
			logCtx.WithError(err).Error("Failed to resolve stage for digest")
			continue
		}

		text := fmt.Sprintf("Good morning, %s!\n\n%s", p.FirstName, FormatStage(view))
		if err := s.messenger.SendMessage(p.TelegramID, text, nil); err != nil {
			logCtx.WithError(err).Error("Failed to send daily digest")
			continue
		}
		sent++
	}
	s.logger.WithFields(logrus.Fields{"sent": sent, "active_cycles": len(cycles)}).Info("Daily digest finished")
	return sent, nil
}
