package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"ivf_stage_bot/internal/domain/stage"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDigest struct {
	calls int
	sent  int
	err   error
}

func (f *fakeDigest) SendDailyDigest(ctx context.Context) (int, error) {
	f.calls++
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("job context has no deadline")
	}
	return f.sent, f.err
}

type fakeRefresher struct {
	calls int
	err   error
}

func (f *fakeRefresher) Refresh(context.Context) (*stage.Catalog, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return stage.NewCatalog([]stage.ReferenceEntry{{MilestoneType: "trigger-shot", Name: "Trigger"}}), nil
}

func newTestLogger() (*logrus.Entry, *test.Hook) {
	l, hook := test.NewNullLogger()
	return logrus.NewEntry(l), hook
}

func TestStart_RejectsBadSpec(t *testing.T) {
	logger, _ := newTestLogger()
	s := NewStageScheduler(&fakeDigest{}, &fakeRefresher{}, logger, time.UTC, "not a cron spec", "")
	assert.Error(t, s.Start())
}

func TestStartStop(t *testing.T) {
	logger, _ := newTestLogger()
	s := NewStageScheduler(&fakeDigest{}, &fakeRefresher{}, logger, time.UTC, "0 8 * * *", "0 */6 * * *")
	require.NoError(t, s.Start())
	assert.Len(t, s.cronEngine.Entries(), 2)
	s.Stop()
}

func TestRunDailyDigest(t *testing.T) {
	logger, hook := newTestLogger()
	digest := &fakeDigest{sent: 4}
	s := NewStageScheduler(digest, &fakeRefresher{}, logger, nil, "0 8 * * *", "")

	s.RunDailyDigest()
	assert.Equal(t, 1, digest.calls)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, 4, hook.LastEntry().Data["sent"])

	digest.err = errors.New("boom")
	s.RunDailyDigest()
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestRunReferenceRefresh(t *testing.T) {
	logger, hook := newTestLogger()
	ref := &fakeRefresher{}
	s := NewStageScheduler(&fakeDigest{}, ref, logger, time.UTC, "0 8 * * *", "0 */6 * * *")

	s.RunReferenceRefresh()
	assert.Equal(t, 1, ref.calls)
	assert.Equal(t, 1, hook.LastEntry().Data["entries"])

	ref.err = errors.New("file missing")
	s.RunReferenceRefresh()
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}
