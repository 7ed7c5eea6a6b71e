package milestone

import (
	"regexp"
	"strings"
)

// Status is the normalized state of a milestone.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusUnknown    Status = "unknown"
)

// Match tells how a raw status string was mapped onto a Status.
type Match int

const (
	MatchExact   Match = iota // normalized form is one of the known statuses
	MatchLenient              // not exact, but contains "progress"; treated as in-progress
	MatchUnknown              // nothing matched; Status is StatusUnknown
)

func (m Match) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchLenient:
		return "lenient"
	default:
		return "unknown"
	}
}

var separatorRuns = regexp.MustCompile(`[\s_\-]+`)

// NormalizeStatus lowercases and trims raw, then collapses runs of spaces,
// underscores and hyphens into one hyphen. "In_Progress", "in progress" and
// "in-progress" all become "in-progress". Idempotent.
func NormalizeStatus(raw string) string {
	return normalizeKey(raw)
}

func normalizeKey(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = separatorRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ParseStatus maps a raw status onto the fixed set. Anything that is not an
// exact match is reported through Match so callers can log upstream data issues.
func ParseStatus(raw string) (Status, Match) {
	n := NormalizeStatus(raw)
	switch Status(n) {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return Status(n), MatchExact
	}
	if strings.Contains(n, "progress") {
		return StatusInProgress, MatchLenient
	}
	return StatusUnknown, MatchUnknown
}

// Display renders the status for users. Unknown values show as pending.
func (s Status) Display() string {
	switch s {
	case StatusInProgress:
		return "in progress"
	case StatusCompleted, StatusCancelled:
		return string(s)
	default:
		return string(StatusPending)
	}
}

// Settled reports whether the milestone no longer needs attention.
func (s Status) Settled() bool {
	return s == StatusCompleted || s == StatusCancelled
}
