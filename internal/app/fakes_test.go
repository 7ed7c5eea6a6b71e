package app

import (
	"context"
	"io"
	"sync"
	"time"

	"ivf_stage_bot/internal/domain/cycle"
	"ivf_stage_bot/internal/domain/milestone"
	"ivf_stage_bot/internal/domain/patient"
	"ivf_stage_bot/internal/domain/stage"
	idb "ivf_stage_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

type memPatients struct {
	mu     sync.Mutex
	byID   map[int64]*patient.Patient
	nextID int64
}

func newMemPatients() *memPatients { return &memPatients{byID: map[int64]*patient.Patient{}} }

func (r *memPatients) Create(_ context.Context, p *patient.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.TelegramID == p.TelegramID {
			return idb.ErrDuplicateTelegramID
		}
	}
	r.nextID++
	p.ID = r.nextID
	cp := *p
	r.byID[p.ID] = &cp
	return nil
}

func (r *memPatients) GetByID(_ context.Context, id int64) (*patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, idb.ErrPatientNotFound
}

func (r *memPatients) GetByTelegramID(_ context.Context, telegramID int64) (*patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if p.TelegramID == telegramID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, idb.ErrPatientNotFound
}

type memCycles struct {
	mu     sync.Mutex
	byID   map[int64]*cycle.Cycle
	nextID int64
}

func newMemCycles() *memCycles { return &memCycles{byID: map[int64]*cycle.Cycle{}} }

func (r *memCycles) Create(_ context.Context, c *cycle.Cycle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.PatientID == c.PatientID && existing.Status == cycle.StatusActive {
			return idb.ErrActiveCycleExists
		}
	}
	r.nextID++
	c.ID = r.nextID
	cp := *c
	r.byID[c.ID] = &cp
	return nil
}

func (r *memCycles) GetByID(_ context.Context, id int64) (*cycle.Cycle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byID[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, idb.ErrCycleNotFound
}

func (r *memCycles) GetActiveByPatient(_ context.Context, patientID int64) (*cycle.Cycle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byID {
		if c.PatientID == patientID && c.Status == cycle.StatusActive {
			cp := *c
			return &cp, nil
		}
	}
	return nil, idb.ErrCycleNotFound
}

func (r *memCycles) Update(_ context.Context, c *cycle.Cycle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[c.ID]
	if !ok {
		return idb.ErrCycleNotFound
	}
	existing.Status = c.Status
	return nil
}

func (r *memCycles) ListActive(context.Context) ([]*cycle.Cycle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*cycle.Cycle, 0)
	for id := int64(1); id <= r.nextID; id++ {
		if c, ok := r.byID[id]; ok && c.Status == cycle.StatusActive {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memMilestones struct {
	mu     sync.Mutex
	byID   map[int64]*milestone.Milestone
	nextID int64
}

func newMemMilestones() *memMilestones { return &memMilestones{byID: map[int64]*milestone.Milestone{}} }

func (r *memMilestones) Create(_ context.Context, m *milestone.Milestone) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.CycleID == m.CycleID && existing.Type == m.Type {
			return idb.ErrDuplicateMilestone
		}
	}
	r.nextID++
	m.ID = r.nextID
	cp := *m
	r.byID[m.ID] = &cp
	return nil
}

func (r *memMilestones) GetByID(_ context.Context, id int64) (*milestone.Milestone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.byID[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, idb.ErrMilestoneNotFound
}

func (r *memMilestones) GetByCycleAndType(_ context.Context, cycleID int64, milestoneType string) (*milestone.Milestone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.byID {
		if m.CycleID == cycleID && m.Type == milestoneType {
			cp := *m
			return &cp, nil
		}
	}
	return nil, idb.ErrMilestoneNotFound
}

func (r *memMilestones) ListByCycle(_ context.Context, cycleID int64) ([]*milestone.Milestone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*milestone.Milestone, 0)
	for id := int64(1); id <= r.nextID; id++ {
		if m, ok := r.byID[id]; ok && m.CycleID == cycleID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memMilestones) Update(_ context.Context, m *milestone.Milestone) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[m.ID]; !ok {
		return idb.ErrMilestoneNotFound
	}
	cp := *m
	r.byID[m.ID] = &cp
	return nil
}

// staleMilestones misses the next lookup, as if a concurrent request inserted
// the milestone between the read and the write.
type staleMilestones struct {
	*memMilestones
	missNext bool
}

func (r *staleMilestones) GetByCycleAndType(ctx context.Context, cycleID int64, milestoneType string) (*milestone.Milestone, error) {
	if r.missNext {
		r.missNext = false
		return nil, idb.ErrMilestoneNotFound
	}
	return r.memMilestones.GetByCycleAndType(ctx, cycleID, milestoneType)
}

type staticCatalog struct {
	catalog *stage.Catalog
	err     error
	reloads int
}

func (s *staticCatalog) Catalog(context.Context) (*stage.Catalog, error) { return s.catalog, s.err }

func (s *staticCatalog) Refresh(context.Context) (*stage.Catalog, error) {
	s.reloads++
	return s.catalog, s.err
}

type sentMessage struct {
	chatID int64
	text   string
}

type recordingMessenger struct {
	sent   []sentMessage
	failTo int64
}

func (m *recordingMessenger) SendMessage(chatID int64, text string, _ *telebot.SendOptions) error {
	if chatID == m.failTo {
		return io.ErrClosedPipe
	}
	m.sent = append(m.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func fixedClock(day string) Clock {
	t, err := time.Parse(time.DateOnly, day)
	if err != nil {
		panic(err)
	}
	t = t.Add(10 * time.Hour)
	return func() time.Time { return t }
}

type fixture struct {
	patients   *memPatients
	cycles     *memCycles
	milestones *memMilestones
	catalog    *staticCatalog
	tracking   *TrackingService
	stages     *StageService
}

func newFixture(today string) *fixture {
	f := &fixture{
		patients:   newMemPatients(),
		cycles:     newMemCycles(),
		milestones: newMemMilestones(),
		catalog: &staticCatalog{catalog: stage.NewCatalog([]stage.ReferenceEntry{
			{MilestoneType: "stimulation-start", Name: "Ovarian Stimulation", Description: "Injections.", Tips: []string{"Same time daily"}},
			{MilestoneType: "baseline-ultrasound", Name: "Baseline Check", Description: "Scan."},
			{MilestoneType: "trigger-shot", Name: "Trigger", Description: "Timed shot."},
			{MilestoneType: "egg-retrieval", Name: "Egg Retrieval", Description: "Collection."},
		})},
	}
	clock := fixedClock(today)
	resolver := stage.NewResolver()
	f.tracking = NewTrackingService(f.patients, f.cycles, f.milestones, resolver.Timeline(), clock, quietLogger())
	f.stages = NewStageService(f.patients, f.cycles, f.milestones, f.catalog, resolver, clock, quietLogger())
	return f
}
