package stage

import (
	"testing"

	"ivf_stage_bot/internal/domain/cycle"
	"ivf_stage_bot/internal/domain/milestone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTimelineShape(t *testing.T) {
	tl := DefaultTimeline()

	assert.Len(t, tl.For(cycle.TypeFrozen), 7)
	assert.Len(t, tl.For(cycle.TypeFreshIVF), 13)
	assert.Len(t, tl.For(cycle.Type("unlisted")), 13)
	assert.Len(t, tl.For(cycle.TypeIUI), 9)
	assert.Len(t, tl.For(cycle.TypeEggFreezing), 10)

	for ct, list := range tl {
		prev := 0
		for _, e := range list {
			assert.LessOrEqual(t, e.FromDay, e.ToDay, "%s/%s", ct, e.Type)
			assert.True(t, e.Contains(e.TypicalDay), "%s/%s typical day outside range", ct, e.Type)
			assert.Greater(t, e.FromDay, prev, "%s/%s out of order", ct, e.Type)
			prev = e.ToDay
		}
	}
}

func TestDefaultTimelineReturnsCopy(t *testing.T) {
	a := DefaultTimeline()
	a[cycle.TypeFrozen][0].Type = "changed"
	assert.Equal(t, "cycle-day-1", DefaultTimeline()[cycle.TypeFrozen][0].Type)
}

func TestTimelineAtDay(t *testing.T) {
	tl := DefaultTimeline()
	tests := []struct {
		ct   cycle.Type
		day  int
		want string
		ok   bool
	}{
		{cycle.TypeFreshIVF, 1, "cycle-day-1", true},
		{cycle.TypeFreshIVF, 3, "stimulation-start", true},
		{cycle.TypeFreshIVF, 19, "embryo-transfer", true},
		{cycle.TypeFrozen, 3, "baseline-ultrasound", true},
		{cycle.TypeFrozen, 12, "lining-check", true},
		{cycle.TypeIUI, 14, "insemination", true},
		{cycle.TypeFreshIVF, 90, "", false},
	}
	for _, tt := range tests {
		e, ok := tl.AtDay(tt.ct, tt.day)
		assert.Equal(t, tt.ok, ok, "%s day %d", tt.ct, tt.day)
		assert.Equal(t, tt.want, e.Type, "%s day %d", tt.ct, tt.day)
	}
}

func TestTimelinePredictiveText(t *testing.T) {
	tl := DefaultTimeline()
	assert.Equal(t, "Usually day 19 of cycle", tl.PredictiveText(cycle.TypeFrozen, "embryo-transfer"))
	assert.Equal(t, "Usually day 19 of cycle", tl.PredictiveText(cycle.TypeFrozen, "ivf-frozen-embryo-transfer"))
	assert.Equal(t, "Usually day 14 of cycle", tl.PredictiveText(cycle.TypeFreshIVF, "Egg_Retrieval"))
	assert.Equal(t, "Pending", tl.PredictiveText(cycle.TypeFrozen, "egg-retrieval"))
	assert.Equal(t, "Pending", tl.PredictiveText(cycle.TypeIUI, "acupuncture"))
}

func TestTimelineNext(t *testing.T) {
	tl := DefaultTimeline()
	ms := []*milestone.Milestone{
		{Type: "stimulation-start", Status: "completed"},
		{Type: "monitoring-scan-1", Status: "in-progress"},
	}

	next, ok := tl.Next(cycle.TypeFreshIVF, 3, ms)
	require.True(t, ok)
	assert.Equal(t, "monitoring-scan-2", next.Type)

	next, ok = tl.Next(cycle.TypeFreshIVF, 1, nil)
	require.True(t, ok)
	assert.Equal(t, "cycle-day-1", next.Type)

	_, ok = tl.Next(cycle.TypeFrozen, 40, nil)
	assert.False(t, ok)
}
