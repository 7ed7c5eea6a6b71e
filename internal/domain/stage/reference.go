package stage

import (
	"strings"

	"ivf_stage_bot/internal/domain/cycle"
	"ivf_stage_bot/internal/domain/milestone"
)

// ReferenceEntry is one row of stage reference data: what a milestone means for
// a given cycle type. An empty CycleType applies to every cycle type.
type ReferenceEntry struct {
	CycleType     cycle.Type `yaml:"cycle_type,omitempty" json:"cycle_type,omitempty"`
	MilestoneType string     `yaml:"milestone_type" json:"milestone_type"`
	Name          string     `yaml:"name" json:"name"`
	Description   string     `yaml:"description" json:"description"`
	Details       string     `yaml:"details,omitempty" json:"details,omitempty"`
	Tips          []string   `yaml:"tips,omitempty" json:"tips,omitempty"`
}

type catalogKey struct {
	cycleType     cycle.Type
	milestoneType string
}

type nameKey struct {
	cycleType cycle.Type
	name      string
}

// Catalog is a read-only index over reference entries.
// The zero value and a nil *Catalog are valid and find nothing.
type Catalog struct {
	byKey  map[catalogKey]ReferenceEntry
	byName map[nameKey]ReferenceEntry
}

// NewCatalog indexes entries. Entries without a name or milestone type are
// skipped, and the first entry for a key wins.
func NewCatalog(entries []ReferenceEntry) *Catalog {
	c := &Catalog{
		byKey:  make(map[catalogKey]ReferenceEntry, len(entries)),
		byName: make(map[nameKey]ReferenceEntry, len(entries)),
	}
	for _, e := range entries {
		if strings.TrimSpace(e.Name) == "" || milestone.BaseType(e.MilestoneType) == "" {
			continue
		}
		ct := catalogCycleType(e.CycleType)
		k := catalogKey{cycleType: ct, milestoneType: milestone.BaseType(e.MilestoneType)}
		if _, dup := c.byKey[k]; !dup {
			c.byKey[k] = e
		}
		nk := nameKey{cycleType: ct, name: strings.ToLower(strings.TrimSpace(e.Name))}
		if _, dup := c.byName[nk]; !dup {
			c.byName[nk] = e
		}
	}
	return c
}

func catalogCycleType(t cycle.Type) cycle.Type {
	if strings.TrimSpace(string(t)) == "" {
		return ""
	}
	if parsed, err := cycle.ParseType(string(t)); err == nil {
		return parsed
	}
	return cycle.Type(strings.ToLower(strings.TrimSpace(string(t))))
}

// Len returns the number of indexed (cycle type, milestone type) keys.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byKey)
}

// Lookup finds the entry for a milestone: first by (cycleType, milestoneType),
// then by milestone type alone, then by entry name against the formatted title.
// Entries scoped to another cycle type never match.
func (c *Catalog) Lookup(cycleType cycle.Type, milestoneType string) (ReferenceEntry, bool) {
	if c == nil {
		return ReferenceEntry{}, false
	}
	base := milestone.BaseType(milestoneType)
	if base == "" {
		return ReferenceEntry{}, false
	}
	if e, ok := c.byKey[catalogKey{cycleType: cycleType, milestoneType: base}]; ok {
		return e, true
	}
	if e, ok := c.byKey[catalogKey{milestoneType: base}]; ok {
		return e, true
	}
	name := strings.ToLower(milestone.FormatTitle(milestoneType))
	if e, ok := c.byName[nameKey{cycleType: cycleType, name: name}]; ok {
		return e, true
	}
	if e, ok := c.byName[nameKey{name: name}]; ok {
		return e, true
	}
	return ReferenceEntry{}, false
}
