package cycle

import "time"

// Cycle is a single treatment cycle a patient is tracking.
// Corresponds to the 'treatment_cycles' table.
type Cycle struct {
	ID        int64
	PatientID int64     // Foreign Key to patients.id
	Type      Type      // e.g. fresh-ivf, ivf-frozen
	StartDate time.Time // Day 1 of the cycle
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Day returns the cycle day for today: whole calendar days since StartDate, never less than 1.
func (c *Cycle) Day(today time.Time) int {
	d := DaysBetween(c.StartDate, today)
	if d < 1 {
		return 1
	}
	return d
}

// DaysBetween counts whole calendar days from a to b, ignoring the time of day.
// Both dates are read in their own location.
func DaysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
