package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleIntervalRunsJob(t *testing.T) {
	s := New()
	var runs int32

	require.NoError(t, s.ScheduleInterval("count", 20*time.Millisecond, func() error {
		atomic.AddInt32(&runs, 1)
		return errors.New("job errors are logged, not fatal")
	}))
	assert.Equal(t, 1, s.Jobs())

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestRemoveJob(t *testing.T) {
	s := New()
	require.NoError(t, s.ScheduleInterval("tmp", time.Hour, func() error { return nil }))
	require.NoError(t, s.RemoveJob("tmp"))
	assert.Equal(t, 0, s.Jobs())

	// Tags are unique
	require.NoError(t, s.ScheduleInterval("dup", time.Hour, func() error { return nil }))
	assert.Error(t, s.ScheduleInterval("dup", time.Hour, func() error { return nil }))
}
