package cycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCycleDay(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &Cycle{StartDate: start}

	assert.Equal(t, 3, c.Day(time.Date(2025, 1, 4, 23, 30, 0, 0, time.UTC)))
	assert.Equal(t, 1, c.Day(start))
	assert.Equal(t, 1, c.Day(start.AddDate(0, 0, -5)))
	assert.Equal(t, 59, c.Day(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)))
}

func TestDaysBetweenIgnoresClock(t *testing.T) {
	a := time.Date(2025, 3, 29, 23, 59, 0, 0, time.UTC)
	b := time.Date(2025, 3, 31, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 2, DaysBetween(a, b))
	assert.Equal(t, -2, DaysBetween(b, a))
}

func TestParseType(t *testing.T) {
	for raw, want := range map[string]Type{
		"FET":          TypeFrozen,
		"ivf frozen":   TypeFrozen,
		"Fresh_IVF":    TypeFreshIVF,
		"ivf":          TypeFreshIVF,
		"IUI":          TypeIUI,
		"egg freezing": TypeEggFreezing,
	} {
		got, err := ParseType(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseType("surrogacy")
	assert.Error(t, err)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("Canceled")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, s)
	assert.True(t, s.Closed())

	s, err = ParseStatus("active")
	require.NoError(t, err)
	assert.False(t, s.Closed())

	_, err = ParseStatus("paused")
	assert.Error(t, err)
}
