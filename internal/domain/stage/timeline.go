package stage

import (
	"fmt"

	"ivf_stage_bot/internal/domain/cycle"
	"ivf_stage_bot/internal/domain/milestone"
)

// ExpectedMilestone is one step of a cycle type's usual order, with the cycle
// days it normally falls on.
type ExpectedMilestone struct {
	Type       string `yaml:"type" json:"type"`
	FromDay    int    `yaml:"from_day" json:"from_day"`
	ToDay      int    `yaml:"to_day" json:"to_day"`
	TypicalDay int    `yaml:"typical_day" json:"typical_day"`
}

// Contains reports whether day falls inside the expected range.
func (e ExpectedMilestone) Contains(day int) bool {
	return day >= e.FromDay && day <= e.ToDay
}

// DefaultKey holds the order used for cycle types without their own entry.
const DefaultKey cycle.Type = "default"

// Timeline maps a cycle type to its ordered list of expected milestones.
type Timeline map[cycle.Type][]ExpectedMilestone

// DefaultTimeline returns a fresh copy of the built-in table.
// Fresh IVF uses the default order.
func DefaultTimeline() Timeline {
	return Timeline{
		DefaultKey: {
			{Type: "cycle-day-1", FromDay: 1, ToDay: 1, TypicalDay: 1},
			{Type: "baseline-ultrasound", FromDay: 2, ToDay: 2, TypicalDay: 2},
			{Type: "stimulation-start", FromDay: 3, ToDay: 4, TypicalDay: 3},
			{Type: "monitoring-scan-1", FromDay: 5, ToDay: 6, TypicalDay: 6},
			{Type: "monitoring-scan-2", FromDay: 7, ToDay: 8, TypicalDay: 8},
			{Type: "monitoring-scan-3", FromDay: 9, ToDay: 10, TypicalDay: 10},
			{Type: "trigger-shot", FromDay: 11, ToDay: 12, TypicalDay: 12},
			{Type: "egg-retrieval", FromDay: 13, ToDay: 14, TypicalDay: 14},
			{Type: "fertilization-report", FromDay: 15, ToDay: 15, TypicalDay: 15},
			{Type: "embryo-development", FromDay: 16, ToDay: 18, TypicalDay: 17},
			{Type: "embryo-transfer", FromDay: 19, ToDay: 19, TypicalDay: 19},
			{Type: "two-week-wait", FromDay: 20, ToDay: 28, TypicalDay: 20},
			{Type: "pregnancy-test", FromDay: 29, ToDay: 35, TypicalDay: 29},
		},
		cycle.TypeFrozen: {
			{Type: "cycle-day-1", FromDay: 1, ToDay: 1, TypicalDay: 1},
			{Type: "baseline-ultrasound", FromDay: 2, ToDay: 3, TypicalDay: 2},
			{Type: "estrogen-start", FromDay: 4, ToDay: 9, TypicalDay: 4},
			{Type: "lining-check", FromDay: 10, ToDay: 13, TypicalDay: 12},
			{Type: "progesterone-start", FromDay: 14, ToDay: 18, TypicalDay: 14},
			{Type: "embryo-transfer", FromDay: 19, ToDay: 19, TypicalDay: 19},
			{Type: "pregnancy-test", FromDay: 20, ToDay: 30, TypicalDay: 28},
		},
		cycle.TypeIUI: {
			{Type: "cycle-day-1", FromDay: 1, ToDay: 1, TypicalDay: 1},
			{Type: "baseline-ultrasound", FromDay: 2, ToDay: 2, TypicalDay: 2},
			{Type: "medication-start", FromDay: 3, ToDay: 7, TypicalDay: 3},
			{Type: "follicle-monitoring", FromDay: 8, ToDay: 11, TypicalDay: 10},
			{Type: "trigger-shot", FromDay: 12, ToDay: 13, TypicalDay: 12},
			{Type: "insemination", FromDay: 14, ToDay: 14, TypicalDay: 14},
			{Type: "luteal-support", FromDay: 15, ToDay: 16, TypicalDay: 15},
			{Type: "two-week-wait", FromDay: 17, ToDay: 27, TypicalDay: 17},
			{Type: "pregnancy-test", FromDay: 28, ToDay: 32, TypicalDay: 28},
		},
		cycle.TypeEggFreezing: {
			{Type: "cycle-day-1", FromDay: 1, ToDay: 1, TypicalDay: 1},
			{Type: "baseline-ultrasound", FromDay: 2, ToDay: 2, TypicalDay: 2},
			{Type: "stimulation-start", FromDay: 3, ToDay: 4, TypicalDay: 3},
			{Type: "monitoring-scan-1", FromDay: 5, ToDay: 6, TypicalDay: 6},
			{Type: "monitoring-scan-2", FromDay: 7, ToDay: 8, TypicalDay: 8},
			{Type: "monitoring-scan-3", FromDay: 9, ToDay: 10, TypicalDay: 10},
			{Type: "trigger-shot", FromDay: 11, ToDay: 12, TypicalDay: 12},
			{Type: "egg-retrieval", FromDay: 13, ToDay: 14, TypicalDay: 14},
			{Type: "recovery", FromDay: 15, ToDay: 17, TypicalDay: 15},
			{Type: "eggs-frozen", FromDay: 18, ToDay: 21, TypicalDay: 18},
		},
	}
}

// For returns the expected order for a cycle type, falling back to the default order.
func (t Timeline) For(ct cycle.Type) []ExpectedMilestone {
	if list, ok := t[ct]; ok {
		return list
	}
	return t[DefaultKey]
}

// AtDay returns the first expected milestone whose day range contains day.
func (t Timeline) AtDay(ct cycle.Type, day int) (ExpectedMilestone, bool) {
	for _, e := range t.For(ct) {
		if e.Contains(day) {
			return e, true
		}
	}
	return ExpectedMilestone{}, false
}

// TypicalDay returns the usual cycle day of a milestone for the cycle type.
func (t Timeline) TypicalDay(ct cycle.Type, milestoneType string) (int, bool) {
	base := milestone.BaseType(milestoneType)
	for _, e := range t.For(ct) {
		if e.Type == base {
			return e.TypicalDay, true
		}
	}
	return 0, false
}

// PredictiveText is shown for a milestone that has no real date yet.
func (t Timeline) PredictiveText(ct cycle.Type, milestoneType string) string {
	if day, ok := t.TypicalDay(ct, milestoneType); ok {
		return fmt.Sprintf("Usually day %d of cycle", day)
	}
	return "Pending"
}

// Next returns the first expected milestone that is not over yet and has not
// been started, completed or cancelled.
func (t Timeline) Next(ct cycle.Type, day int, milestones []*milestone.Milestone) (ExpectedMilestone, bool) {
	touched := make(map[string]bool, len(milestones))
	for _, m := range milestones {
		if m == nil {
			continue
		}
		s := m.ParsedStatus()
		if s.Settled() || s == milestone.StatusInProgress {
			touched[milestone.BaseType(m.Type)] = true
		}
	}
	for _, e := range t.For(ct) {
		if e.ToDay < day || touched[e.Type] {
			continue
		}
		return e, true
	}
	return ExpectedMilestone{}, false
}
