package app

import (
	"context"
	"errors"
	"testing"

	"ivf_stage_bot/internal/domain/cycle"
	"ivf_stage_bot/internal/domain/stage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentStage_DayBased(t *testing.T) {
	f := newFixture("2025-01-04")
	registerWithCycle(t, f, cycle.TypeFreshIVF, "2025-01-01")

	view, err := f.stages.CurrentStage(context.Background(), testTelegramID)
	require.NoError(t, err)
	assert.Equal(t, 3, view.CycleDay)
	require.NotNil(t, view.Result)
	assert.Equal(t, "Ovarian Stimulation", view.Result.Stage.Name)
	assert.Equal(t, stage.SourceDayBased, view.Result.Source)
	assert.Equal(t, stage.ConfidenceLow, view.Result.Confidence)
	assert.Equal(t, []string{"Same time daily"}, view.Result.Tips)

	require.NotNil(t, view.Next)
	assert.Equal(t, "stimulation-start", view.Next.Type)
	assert.Equal(t, "Usually day 3 of cycle", view.NextWhen)
}

func TestCurrentStage_InProgressMilestoneWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture("2025-01-04")
	registerWithCycle(t, f, cycle.TypeFreshIVF, "2025-01-01")

	_, _, err := f.tracking.RecordMilestone(ctx, testTelegramID, "trigger-shot", "in progress", nil)
	require.NoError(t, err)

	view, err := f.stages.CurrentStage(ctx, testTelegramID)
	require.NoError(t, err)
	require.NotNil(t, view.Result)
	assert.Equal(t, "Trigger", view.Result.Stage.Name)
	assert.Equal(t, stage.SourceCurrentMilestone, view.Result.Source)
	assert.Equal(t, stage.ConfidenceHigh, view.Result.Confidence)
}

func TestCurrentStage_FrozenCycleUsesItsOwnTimeline(t *testing.T) {
	f := newFixture("2025-01-04")
	registerWithCycle(t, f, cycle.TypeFrozen, "2025-01-01")

	view, err := f.stages.CurrentStage(context.Background(), testTelegramID)
	require.NoError(t, err)
	require.NotNil(t, view.Result)
	assert.Equal(t, "Baseline Check", view.Result.Stage.Name)
	assert.Equal(t, "baseline-ultrasound", view.Result.MilestoneType)
}

func TestCurrentStage_PendingPastTimeline(t *testing.T) {
	f := newFixture("2025-03-01")
	registerWithCycle(t, f, cycle.TypeFreshIVF, "2025-01-01")

	view, err := f.stages.CurrentStage(context.Background(), testTelegramID)
	require.NoError(t, err)
	assert.Nil(t, view.Result)
	assert.Nil(t, view.Next)
}

func TestCurrentStage_ReferenceDataFailureIsNotFatal(t *testing.T) {
	f := newFixture("2025-01-04")
	f.catalog.catalog = nil
	f.catalog.err = errors.New("database is down")
	registerWithCycle(t, f, cycle.TypeFreshIVF, "2025-01-01")

	view, err := f.stages.CurrentStage(context.Background(), testTelegramID)
	require.NoError(t, err)
	assert.Nil(t, view.Result)
	assert.NotNil(t, view.Next)
}

func TestCurrentStage_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture("2025-01-04")

	_, err := f.stages.CurrentStage(ctx, testTelegramID)
	assert.ErrorIs(t, err, ErrNotRegistered)

	_, _, err = f.tracking.RegisterPatient(ctx, testTelegramID, "Dana", "")
	require.NoError(t, err)
	_, err = f.stages.CurrentStage(ctx, testTelegramID)
	assert.ErrorIs(t, err, ErrNoActiveCycle)
}

func TestTimeline_MergesRecordedAndExpected(t *testing.T) {
	ctx := context.Background()
	f := newFixture("2025-01-04")
	registerWithCycle(t, f, cycle.TypeFreshIVF, "2025-01-01")

	start := mustDate(t, "2025-01-03")
	_, _, err := f.tracking.RecordMilestone(ctx, testTelegramID, "stimulation-start", "completed", &start)
	require.NoError(t, err)
	_, _, err = f.tracking.RecordMilestone(ctx, testTelegramID, "acupuncture", "pending", nil)
	require.NoError(t, err)

	view, err := f.stages.Timeline(ctx, testTelegramID)
	require.NoError(t, err)
	require.Len(t, view.Items, 14)

	first := view.Items[0]
	assert.Equal(t, "cycle-day-1", first.Type)
	assert.Equal(t, "pending", first.Status)
	assert.Equal(t, "Usually day 1 of cycle", first.When)
	assert.False(t, first.Recorded)

	stim := view.Items[2]
	assert.Equal(t, "stimulation-start", stim.Type)
	assert.True(t, stim.Recorded)
	assert.True(t, stim.Expected)
	assert.Equal(t, "completed", stim.Status)
	assert.Equal(t, "2025-01-03", stim.When)
	assert.Empty(t, stim.Notes, "template note is hidden")

	extra := view.Items[13]
	assert.Equal(t, "acupuncture", extra.Type)
	assert.Equal(t, "Acupuncture", extra.Title)
	assert.Equal(t, "Pending", extra.When)
	assert.True(t, extra.Recorded)
	assert.False(t, extra.Expected)
}
