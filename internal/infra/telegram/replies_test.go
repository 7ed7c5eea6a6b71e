package telegram

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"ivf_stage_bot/internal/app"
	"ivf_stage_bot/internal/domain/cycle"
	"ivf_stage_bot/internal/domain/milestone"
	"ivf_stage_bot/internal/domain/stage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStartCycleArgs(t *testing.T) {
	ct, start, err := parseStartCycleArgs([]string{"FET", "2025-01-01"})
	require.NoError(t, err)
	assert.Equal(t, cycle.TypeFrozen, ct)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), start)

	_, _, err = parseStartCycleArgs([]string{"fresh-ivf"})
	assert.ErrorIs(t, err, errUsage)

	_, _, err = parseStartCycleArgs([]string{"surrogacy", "2025-01-01"})
	assert.Error(t, err)

	_, _, err = parseStartCycleArgs([]string{"iui", "01/02/2025"})
	assert.Error(t, err)
}

func TestParseEndCycleArgs(t *testing.T) {
	s, err := parseEndCycleArgs([]string{"canceled"})
	require.NoError(t, err)
	assert.Equal(t, cycle.StatusCancelled, s)

	_, err = parseEndCycleArgs(nil)
	assert.ErrorIs(t, err, errUsage)
}

func TestParseMilestoneArgs(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantType   string
		wantStatus string
		wantDate   string
		wantErr    bool
	}{
		{name: "type and status", args: []string{"trigger-shot", "completed"}, wantType: "trigger-shot", wantStatus: "completed"},
		{name: "multi-word status", args: []string{"egg-retrieval", "in", "progress"}, wantType: "egg-retrieval", wantStatus: "in progress"},
		{name: "with date", args: []string{"embryo-transfer", "completed", "2025-02-01"}, wantType: "embryo-transfer", wantStatus: "completed", wantDate: "2025-02-01"},
		{name: "date-like status alone stays status", args: []string{"x", "2025-02-01"}, wantType: "x", wantStatus: "2025-02-01"},
		{name: "missing status", args: []string{"trigger-shot"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mt, status, date, err := parseMilestoneArgs(tt.args)
			if tt.wantErr {
				assert.ErrorIs(t, err, errUsage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, mt)
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantDate == "" {
				assert.Nil(t, date)
			} else {
				require.NotNil(t, date)
				assert.Equal(t, tt.wantDate, date.Format(time.DateOnly))
			}
		})
	}
}

func TestParseNoteArgs(t *testing.T) {
	mt, text, err := parseNoteArgs([]string{"egg-retrieval", "clinic", "at", "7:30"})
	require.NoError(t, err)
	assert.Equal(t, "egg-retrieval", mt)
	assert.Equal(t, "clinic at 7:30", text)

	_, _, err = parseNoteArgs([]string{"egg-retrieval"})
	assert.ErrorIs(t, err, errUsage)
}

func TestParseCallbackData(t *testing.T) {
	mt, status, ok := parseCallbackData("ms_start_trigger-shot")
	assert.True(t, ok)
	assert.Equal(t, "trigger-shot", mt)
	assert.Equal(t, milestone.StatusInProgress, status)

	mt, status, ok = parseCallbackData("\fms_done_egg-retrieval")
	assert.True(t, ok)
	assert.Equal(t, "egg-retrieval", mt)
	assert.Equal(t, milestone.StatusCompleted, status)

	_, _, ok = parseCallbackData("ms_done_")
	assert.False(t, ok)
	_, _, ok = parseCallbackData("ans_yes_12")
	assert.False(t, ok)
}

func TestStageKeyboard(t *testing.T) {
	assert.Nil(t, stageKeyboard(&app.StageView{}))

	markup := stageKeyboard(&app.StageView{Next: &stage.ExpectedMilestone{Type: "trigger-shot"}})
	require.NotNil(t, markup)
	require.Len(t, markup.InlineKeyboard, 1)
	row := markup.InlineKeyboard[0]
	require.Len(t, row, 2)
	assert.Equal(t, "ms_start_trigger-shot", row[0].Data)
	assert.Equal(t, "Done: Trigger Shot", row[1].Text)

	mt, status, ok := parseCallbackData(row[1].Data)
	assert.True(t, ok)
	assert.Equal(t, "trigger-shot", mt)
	assert.Equal(t, milestone.StatusCompleted, status)
}

func TestErrorReply(t *testing.T) {
	reply, expected := errorReply(fmt.Errorf("wrapped: %w", app.ErrNoActiveCycle))
	assert.True(t, expected)
	assert.Contains(t, reply, "/startcycle")

	reply, expected = errorReply(errors.New("connection refused"))
	assert.False(t, expected)
	assert.NotContains(t, reply, "connection refused")
}

func TestFormatStats(t *testing.T) {
	assert.Equal(t, "No active cycles.", formatStats(nil))
	assert.Equal(t,
		"Active cycles: 3\nFresh IVF: 1\nFrozen Embryo Transfer: 2",
		formatStats(map[cycle.Type]int{cycle.TypeFrozen: 2, cycle.TypeFreshIVF: 1}))
}
