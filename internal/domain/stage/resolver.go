package stage

import (
	"io"
	"time"

	"ivf_stage_bot/internal/domain/cycle"
	"ivf_stage_bot/internal/domain/milestone"

	"github.com/sirupsen/logrus"
)

// DefaultRecencyWindow is how many days a completed milestone keeps describing
// the current stage.
const DefaultRecencyWindow = 3

// Resolver works out which stage of treatment a cycle is in.
// It does no I/O and is safe for concurrent use.
type Resolver struct {
	recencyWindow int
	timeline      Timeline
	logger        *logrus.Entry
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRecencyWindow sets the inclusive window, in days, for the completed-milestone fallback.
func WithRecencyWindow(days int) Option {
	return func(r *Resolver) {
		if days >= 0 {
			r.recencyWindow = days
		}
	}
}

// WithTimeline replaces the built-in expected-milestone table.
func WithTimeline(t Timeline) Option {
	return func(r *Resolver) {
		if t != nil {
			r.timeline = t
		}
	}
}

// WithLogger sets the entry used to report odd milestone statuses.
func WithLogger(l *logrus.Entry) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

func NewResolver(opts ...Option) *Resolver {
	silent := logrus.New()
	silent.SetOutput(io.Discard)
	r := &Resolver{
		recencyWindow: DefaultRecencyWindow,
		timeline:      DefaultTimeline(),
		logger:        logrus.NewEntry(silent),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Timeline returns the expected-milestone table the resolver uses.
func (r *Resolver) Timeline() Timeline { return r.timeline }

// RecencyWindow returns the fallback window in days.
func (r *Resolver) RecencyWindow() int { return r.recencyWindow }

// ResolveStage returns the stage for c as of today, or nil when no reference
// entry matches by any route. Tiers, first hit wins:
//  1. an in-progress milestone (high confidence)
//  2. the latest completed milestone within the recency window (medium)
//  3. the expected milestone for the current cycle day (low)
//
// The inputs are not modified.
func (r *Resolver) ResolveStage(c *cycle.Cycle, milestones []*milestone.Milestone, catalog *Catalog, today time.Time) *Result {
	if c == nil {
		return nil
	}
	day := c.Day(today)
	log := r.logger.WithFields(logrus.Fields{"cycle_id": c.ID, "cycle_type": c.Type, "cycle_day": day})

	if m := r.currentMilestone(milestones, log); m != nil {
		if e, ok := catalog.Lookup(c.Type, m.Type); ok {
			return newResult(e, SourceCurrentMilestone, ConfidenceHigh, m.Type, day)
		}
		log.WithField("milestone_type", m.Type).Debug("No reference entry for in-progress milestone")
	}

	if m := latestCompleted(milestones, today); m != nil {
		daysAgo := cycle.DaysBetween(m.Date.Time, today)
		if daysAgo >= 0 && daysAgo <= r.recencyWindow {
			if e, ok := catalog.Lookup(c.Type, m.Type); ok {
				res := newResult(e, SourceFallbackMilestone, ConfidenceMedium, m.Type, day)
				res.FallbackMilestone = &FallbackMilestone{Title: m.DisplayTitle(), DaysAgo: daysAgo}
				return res
			}
			log.WithField("milestone_type", m.Type).Debug("No reference entry for recent milestone")
		}
	}

	if exp, ok := r.timeline.AtDay(c.Type, day); ok {
		if e, ok := catalog.Lookup(c.Type, exp.Type); ok {
			return newResult(e, SourceDayBased, ConfidenceLow, exp.Type, day)
		}
		log.WithField("milestone_type", exp.Type).Debug("No reference entry for expected milestone")
	}
	return nil
}

// currentMilestone picks the in-progress milestone, preferring the most
// recently dated one. Statuses that only matched leniently or not at all are logged.
func (r *Resolver) currentMilestone(milestones []*milestone.Milestone, log *logrus.Entry) *milestone.Milestone {
	var best *milestone.Milestone
	for _, m := range milestones {
		if m == nil {
			continue
		}
		status, match := milestone.ParseStatus(m.Status)
		switch match {
		case milestone.MatchLenient:
			log.WithFields(logrus.Fields{"milestone_id": m.ID, "raw_status": m.Status}).Warn("Milestone status matched leniently as in-progress")
		case milestone.MatchUnknown:
			log.WithFields(logrus.Fields{"milestone_id": m.ID, "raw_status": m.Status}).Warn("Unknown milestone status")
		}
		if status != milestone.StatusInProgress {
			continue
		}
		if best == nil || laterDated(m, best) {
			best = m
		}
	}
	return best
}

// latestCompleted returns the completed milestone with the latest date on or
// before today. Undated and future-dated milestones are ignored.
func latestCompleted(milestones []*milestone.Milestone, today time.Time) *milestone.Milestone {
	var best *milestone.Milestone
	for _, m := range milestones {
		if m == nil || !m.Date.Valid || m.ParsedStatus() != milestone.StatusCompleted {
			continue
		}
		if cycle.DaysBetween(m.Date.Time, today) < 0 {
			continue
		}
		if best == nil || m.Date.Time.After(best.Date.Time) {
			best = m
		}
	}
	return best
}

// laterDated reports whether a should win over b. Dated beats undated.
func laterDated(a, b *milestone.Milestone) bool {
	if !a.Date.Valid {
		return false
	}
	if !b.Date.Valid {
		return true
	}
	return a.Date.Time.After(b.Date.Time)
}
