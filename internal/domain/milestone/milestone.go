package milestone

import (
	"database/sql"
	"time"
)

// Milestone is a recorded step of a treatment cycle.
// Corresponds to the 'cycle_milestones' table.
type Milestone struct {
	ID        int64
	CycleID   int64  // Foreign Key to treatment_cycles.id
	Type      string // Catalog identifier, e.g. "embryo-transfer"
	Title     string
	Date      sql.NullTime   // Unset while the milestone is only expected
	Status    string         // Raw status as stored; see ParseStatus
	Notes     sql.NullString // Optional free text
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ParsedStatus is a shortcut for ParseStatus(m.Status) that drops the match kind.
func (m *Milestone) ParsedStatus() Status {
	s, _ := ParseStatus(m.Status)
	return s
}

// DisplayTitle prefers the stored title and falls back to the formatted type.
func (m *Milestone) DisplayTitle() string {
	if m.Title != "" {
		return FormatTitle(m.Title)
	}
	return FormatTitle(m.Type)
}
