package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ivf_stage_bot/internal/domain/cycle"
	"ivf_stage_bot/internal/domain/milestone"
	"ivf_stage_bot/internal/domain/patient"
	"ivf_stage_bot/internal/domain/stage"

	"github.com/sirupsen/logrus"
)

// CatalogProvider supplies the current stage reference catalog.
// *referencedata.Cache implements it.
type CatalogProvider interface {
	Catalog(ctx context.Context) (*stage.Catalog, error)
}

// StageView is what the bot shows for "where am I now".
type StageView struct {
	Cycle    *cycle.Cycle
	CycleDay int
	Result   *stage.Result // nil: stage information pending
	Next     *stage.ExpectedMilestone
	NextWhen string // predictive text for Next
}

// TimelineItem is one row of the cycle timeline, expected or recorded.
type TimelineItem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   string `json:"status"` // display form
	When     string `json:"when"`   // date, or predictive text when undated
	Notes    string `json:"notes,omitempty"`
	Recorded bool   `json:"recorded"`
	Expected bool   `json:"expected"`
}

// TimelineView lists the expected milestones of the active cycle merged with
// what the patient has recorded.
type TimelineView struct {
	Cycle    *cycle.Cycle
	CycleDay int
	Items    []TimelineItem
}

// StageService is the read side: it gathers a cycle's records and resolves its stage.
type StageService struct {
	patientRepo   patient.Repository
	cycleRepo     cycle.Repository
	milestoneRepo milestone.Repository
	catalog       CatalogProvider
	resolver      *stage.Resolver
	now           Clock
	logger        *logrus.Entry
}

func NewStageService(
	pr patient.Repository,
	cr cycle.Repository,
	mr milestone.Repository,
	catalog CatalogProvider,
	resolver *stage.Resolver,
	now Clock,
	logger *logrus.Entry,
) *StageService {
	return &StageService{
		patientRepo:   pr,
		cycleRepo:     cr,
		milestoneRepo: mr,
		catalog:       catalog,
		resolver:      resolver,
		now:           now,
		logger:        logger,
	}
}

// CurrentStage resolves the stage of the patient's active cycle.
func (s *StageService) CurrentStage(ctx context.Context, telegramID int64) (*StageView, error) {
	p, err := findPatient(ctx, s.patientRepo, telegramID)
	if err != nil {
		return nil, err
	}
	c, err := findActiveCycle(ctx, s.cycleRepo, p.ID)
	if err != nil {
		return nil, err
	}
	return s.StageForCycle(ctx, c)
}

// StageForCycle resolves the stage of a known cycle. Reference data failures
// are logged and produce a pending view rather than an error.
func (s *StageService) StageForCycle(ctx context.Context, c *cycle.Cycle) (*StageView, error) {
	milestones, err := s.milestoneRepo.ListByCycle(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones for cycle %d: %w", c.ID, err)
	}

	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("cycle_id", c.ID).Warn("Reference data unavailable; resolving without it")
	}

	today := s.now()
	view := &StageView{
		Cycle:    c,
		CycleDay: c.Day(today),
		Result:   s.resolver.ResolveStage(c, milestones, catalog, today),
	}
	tl := s.resolver.Timeline()
	if next, ok := tl.Next(c.Type, view.CycleDay, milestones); ok {
		view.Next = &next
		view.NextWhen = tl.PredictiveText(c.Type, next.Type)
	}

	logCtx := s.logger.WithFields(logrus.Fields{"cycle_id": c.ID, "cycle_day": view.CycleDay})
	if view.Result == nil {
		logCtx.Info("Stage information pending")
	} else {
		logCtx.WithFields(logrus.Fields{"source": view.Result.Source, "stage": view.Result.Stage.Name}).Debug("Stage resolved")
	}
	return view, nil
}

// Timeline lists the active cycle's expected and recorded milestones in order.
func (s *StageService) Timeline(ctx context.Context, telegramID int64) (*TimelineView, error) {
	p, err := findPatient(ctx, s.patientRepo, telegramID)
	if err != nil {
		return nil, err
	}
	c, err := findActiveCycle(ctx, s.cycleRepo, p.ID)
	if err != nil {
		return nil, err
	}
	milestones, err := s.milestoneRepo.ListByCycle(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones for cycle %d: %w", c.ID, err)
	}

	return &TimelineView{
		Cycle:    c,
		CycleDay: c.Day(s.now()),
		Items:    buildTimeline(s.resolver.Timeline(), c.Type, milestones),
	}, nil
}

func buildTimeline(tl stage.Timeline, ct cycle.Type, milestones []*milestone.Milestone) []TimelineItem {
	recorded := make(map[string]*milestone.Milestone, len(milestones))
	for _, m := range milestones {
		recorded[milestone.BaseType(m.Type)] = m
	}

	items := make([]TimelineItem, 0, len(milestones)+len(tl.For(ct)))
	for _, e := range tl.For(ct) {
		if m, ok := recorded[e.Type]; ok {
			item := recordedItem(tl, ct, m)
			item.Expected = true
			items = append(items, item)
			delete(recorded, e.Type)
			continue
		}
		items = append(items, TimelineItem{
			Type:     e.Type,
			Title:    milestone.FormatTitle(e.Type),
			Status:   milestone.StatusPending.Display(),
			When:     tl.PredictiveText(ct, e.Type),
			Expected: true,
		})
	}

	extra := make([]*milestone.Milestone, 0, len(recorded))
	for _, m := range milestones {
		if _, ok := recorded[milestone.BaseType(m.Type)]; ok {
			extra = append(extra, m)
		}
	}
	sort.SliceStable(extra, func(i, j int) bool {
		a, b := extra[i].Date, extra[j].Date
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Time.Before(b.Time)
	})
	for _, m := range extra {
		items = append(items, recordedItem(tl, ct, m))
	}
	return items
}

func recordedItem(tl stage.Timeline, ct cycle.Type, m *milestone.Milestone) TimelineItem {
	when := tl.PredictiveText(ct, m.Type)
	if m.Date.Valid {
		when = m.Date.Time.Format(time.DateOnly)
	}
	return TimelineItem{
		Type:     milestone.BaseType(m.Type),
		Title:    m.DisplayTitle(),
		Status:   m.ParsedStatus().Display(),
		When:     when,
		Notes:    m.EditableNotes(),
		Recorded: true,
	}
}
