//nolint:funlen // ok for tests
package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/motorsport-analytics/log"
)

func newManager(opts ...Option) *Manager {
	return New(append([]Option{WithLogger(log.Nop())}, opts...)...)
}

func waitFor(t *testing.T, m *Manager, id string, status Status) Job {
	t.Helper()
	var job Job
	require.Eventually(t, func() bool {
		var err error
		job, err = m.Poll(id)
		return err == nil && job.Status == status
	}, 2*time.Second, 5*time.Millisecond)
	return job
}

func TestSubmitCompleted(t *testing.T) {
	m := newManager()
	id := m.Submit("stints", func(ctx context.Context) (any, error) {
		return []string{"VER", "HAM"}, nil
	})
	_, err := m.Poll(id)
	require.NoError(t, err)

	m.Wait()
	job, err := m.Poll(id)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, job.Status)
	assert.Equal(t, []string{"VER", "HAM"}, job.Result)
	assert.Empty(t, job.Error)
	assert.Equal(t, "stints", job.Name)
	assert.False(t, job.CreatedAt.IsZero())
}

func TestSubmitFailed(t *testing.T) {
	m := newManager()
	id := m.Submit("laps", func(ctx context.Context) (any, error) {
		return nil, errors.New("upstream unavailable")
	})
	m.Wait()
	job, err := m.Poll(id)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, job.Status)
	assert.Equal(t, "upstream unavailable", job.Error)
	assert.Nil(t, job.Result)
}

func TestSubmitPanic(t *testing.T) {
	m := newManager()
	id := m.Submit("boom", func(ctx context.Context) (any, error) {
		panic("index out of range")
	})
	m.Wait()
	job, err := m.Poll(id)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, job.Status)
	assert.Contains(t, job.Error, "index out of range")
}

func TestPollUnknown(t *testing.T) {
	m := newManager()
	_, err := m.Poll("does-not-exist")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestStateProgression(t *testing.T) {
	m := newManager(WithWorkers(1))
	release := make(chan struct{})
	started := make(chan struct{})

	first := m.Submit("first", func(ctx context.Context) (any, error) {
		close(started)
		<-release
		return 1, nil
	})
	<-started
	second := m.Submit("second", func(ctx context.Context) (any, error) {
		return 2, nil
	})

	waitFor(t, m, first, StatusProcessing)
	// the only worker is busy
	time.Sleep(20 * time.Millisecond)
	job, err := m.Poll(second)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, job.Status)

	close(release)
	m.Wait()
	assert.Equal(t, 1, waitFor(t, m, first, StatusCompleted).Result)
	assert.Equal(t, 2, waitFor(t, m, second, StatusCompleted).Result)
}

func TestPollReturnsCopy(t *testing.T) {
	m := newManager()
	id := m.Submit("copy", func(ctx context.Context) (any, error) { return "x", nil })
	m.Wait()
	job, err := m.Poll(id)
	require.NoError(t, err)
	job.Status = StatusFailed

	again, err := m.Poll(id)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, again.Status)
}

func TestJobsIgnoreCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := newManager(WithContext(ctx))
	cancel()
	id := m.Submit("cancelled", func(ctx context.Context) (any, error) {
		return "done", ctx.Err()
	})
	m.Wait()
	job, err := m.Poll(id)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, job.Status)
	assert.Equal(t, "done", job.Result)
}
