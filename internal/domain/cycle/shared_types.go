package cycle

import (
	"fmt"
	"regexp"
	"strings"
)

// Type is the treatment category of a cycle.
type Type string

const (
	TypeFreshIVF    Type = "fresh-ivf"
	TypeFrozen      Type = "ivf-frozen" // frozen embryo transfer (FET)
	TypeIUI         Type = "iui"
	TypeEggFreezing Type = "egg-freezing"
)

// Label is the human-readable name of the cycle type.
func (t Type) Label() string {
	switch t {
	case TypeFreshIVF:
		return "Fresh IVF"
	case TypeFrozen:
		return "Frozen Embryo Transfer"
	case TypeIUI:
		return "IUI"
	case TypeEggFreezing:
		return "Egg Freezing"
	default:
		return string(t)
	}
}

// Status is the lifecycle state of a cycle.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Closed reports whether the cycle has left the active state.
func (s Status) Closed() bool {
	return s == StatusCompleted || s == StatusCancelled
}

var typeAliases = map[string]Type{
	"fresh-ivf":    TypeFreshIVF,
	"ivf-fresh":    TypeFreshIVF,
	"fresh":        TypeFreshIVF,
	"ivf":          TypeFreshIVF,
	"ivf-frozen":   TypeFrozen,
	"frozen-ivf":   TypeFrozen,
	"frozen":       TypeFrozen,
	"fet":          TypeFrozen,
	"iui":          TypeIUI,
	"egg-freezing": TypeEggFreezing,
	"egg-freeze":   TypeEggFreezing,
	"oocyte-cryo":  TypeEggFreezing,
}

var separatorRuns = regexp.MustCompile(`[\s_\-]+`)

func normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	return strings.Trim(separatorRuns.ReplaceAllString(s, "-"), "-")
}

// ParseType maps user input such as "FET" or "ivf fresh" onto a known Type.
func ParseType(raw string) (Type, error) {
	if t, ok := typeAliases[normalize(raw)]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown cycle type %q", raw)
}

// ParseStatus accepts only the two terminal statuses plus active.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(normalize(raw)); s {
	case StatusActive, StatusCompleted, StatusCancelled:
		return s, nil
	case "canceled":
		return StatusCancelled, nil
	}
	return "", fmt.Errorf("unknown cycle status %q", raw)
}
