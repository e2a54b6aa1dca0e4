package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"counselor_recommend/config"
)

type fakeRefresher struct {
	calls atomic.Int32
	err   error
}

func (f *fakeRefresher) Refresh(context.Context) (int, error) {
	f.calls.Add(1)
	return 3, f.err
}

func testConfig(refreshSec int) *config.Config {
	cfg := config.Default()
	cfg.Scheduler.HotListRefreshSec = refreshSec
	cfg.Scheduler.CheckIntervalSec = 1
	return cfg
}

func TestCheckTasksRunsDueTask(t *testing.T) {
	refresher := &fakeRefresher{}
	s := NewScheduler(testConfig(300), refresher)
	now := time.Date(2026, 3, 9, 10, 0, 0, 0, time.Local)
	s.initTasks(now)

	s.checkTasks(context.Background(), now)
	s.Wait()

	assert.Equal(t, int32(1), refresher.calls.Load())
	status, ok := s.Status(TaskHotListRefresh)
	require.True(t, ok)
	assert.False(t, status.IsRunning)
	assert.Equal(t, now, status.LastRun)
	assert.Equal(t, now.Add(300*time.Second), status.NextRun)
	assert.Empty(t, status.LastError)

	// 未到下次运行时间
	s.checkTasks(context.Background(), now.Add(time.Minute))
	s.Wait()
	assert.Equal(t, int32(1), refresher.calls.Load())

	s.checkTasks(context.Background(), now.Add(300*time.Second))
	s.Wait()
	assert.Equal(t, int32(2), refresher.calls.Load())
}

func TestRunTaskRecordsError(t *testing.T) {
	refresher := &fakeRefresher{err: errors.New("redis down")}
	s := NewScheduler(testConfig(60), refresher)
	now := time.Date(2026, 3, 9, 10, 0, 0, 0, time.Local)
	s.initTasks(now)

	s.checkTasks(context.Background(), now)
	s.Wait()

	status, _ := s.Status(TaskHotListRefresh)
	assert.Equal(t, "redis down", status.LastError)
	assert.Equal(t, now.Add(time.Minute), status.NextRun)
}

func TestStartDisabled(t *testing.T) {
	assert.Nil(t, Start(context.Background(), testConfig(0), &fakeRefresher{}))
	assert.Nil(t, Start(context.Background(), testConfig(60), nil))
}

func TestStartRefreshesImmediatelyAndStops(t *testing.T) {
	refresher := &fakeRefresher{}
	ctx, cancel := context.WithCancel(context.Background())

	s := Start(ctx, testConfig(60), refresher)
	require.NotNil(t, s)

	assert.Eventually(t, func() bool {
		return refresher.calls.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	s.Wait()
}
