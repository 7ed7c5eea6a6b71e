package app

import (
	"context"
	"fmt"

	"ivf_stage_bot/internal/domain/cycle"
	"ivf_stage_bot/internal/domain/stage"
)

// ReferenceReloader reloads stage reference data. *referencedata.Cache implements it.
type ReferenceReloader interface {
	Refresh(ctx context.Context) (*stage.Catalog, error)
}

// AdminService holds the operator commands of the bot.
type AdminService struct {
	cycleRepo       cycle.Repository
	reference       ReferenceReloader
	adminTelegramID int64
}

func NewAdminService(cr cycle.Repository, reference ReferenceReloader, adminID int64) *AdminService {
	return &AdminService{
		cycleRepo:       cr,
		reference:       reference,
		adminTelegramID: adminID,
	}
}

// IsAdmin reports whether the Telegram user is the configured admin.
func (s *AdminService) IsAdmin(telegramID int64) bool {
	return telegramID == s.adminTelegramID
}

// ReloadReference refreshes the reference catalog and returns how many keys it indexes.
func (s *AdminService) ReloadReference(ctx context.Context, performingAdminID int64) (int, error) {
	if !s.IsAdmin(performingAdminID) {
		return 0, ErrAdminNotAuthorized
	}
	cat, err := s.reference.Refresh(ctx)
	if err != nil {
		return cat.Len(), fmt.Errorf("failed to reload reference data: %w", err)
	}
	return cat.Len(), nil
}

// CountActiveCycles returns the number of active cycles per cycle type.
func (s *AdminService) CountActiveCycles(ctx context.Context, performingAdminID int64) (map[cycle.Type]int, error) {
	if !s.IsAdmin(performingAdminID) {
		return nil, ErrAdminNotAuthorized
	}
	cycles, err := s.cycleRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active cycles: %w", err)
	}
	counts := make(map[cycle.Type]int)
	for _, c := range cycles {
		counts[c.Type]++
	}
	return counts, nil
}
