package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	var processed atomic.Int32
	queue := NewQueue("test", func(ctx context.Context, job Job[string]) error {
		processed.Add(1)
		return nil
	}, QueueConfig{Workers: 2})

	queue.Start(context.Background())
	defer queue.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, queue.Enqueue(Job[string]{ID: "job", Payload: "payload"}))
	}

	require.Eventually(t, func() bool { return processed.Load() == 5 }, time.Second, 5*time.Millisecond)
}

func TestQueueEnqueueBeforeStartFails(t *testing.T) {
	queue := NewQueue("idle", func(context.Context, Job[int]) error { return nil }, QueueConfig{})
	assert.Error(t, queue.Enqueue(Job[int]{ID: "early"}))
}

func TestQueueRetriesUntilSuccess(t *testing.T) {
	var attempts atomic.Int32
	queue := NewQueue("retry", func(ctx context.Context, job Job[int]) error {
		if attempts.Add(1) == 1 {
			return errors.New("transient")
		}
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: 5 * time.Millisecond})

	queue.Start(context.Background())
	defer queue.Stop()

	require.NoError(t, queue.Enqueue(Job[int]{ID: "flaky", Payload: 7}))
	require.Eventually(t, func() bool { return attempts.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestQueueDropsJobAfterRetryBudget(t *testing.T) {
	var attempts atomic.Int32
	queue := NewQueue("drop", func(ctx context.Context, job Job[int]) error {
		attempts.Add(1)
		return errors.New("permanent")
	}, QueueConfig{MaxRetries: 1, RetryDelay: time.Millisecond})

	queue.Start(context.Background())
	defer queue.Stop()

	require.NoError(t, queue.Enqueue(Job[int]{ID: "doomed"}))

	// The first run plus one retry, then the job is dropped.
	require.Eventually(t, func() bool { return attempts.Load() == 2 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestQueueStopWaitsForInFlightJob(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	queue := NewQueue("stop", func(ctx context.Context, job Job[int]) error {
		close(entered)
		<-release
		finished.Store(true)
		return nil
	}, QueueConfig{})

	queue.Start(context.Background())
	require.NoError(t, queue.Enqueue(Job[int]{ID: "slow"}))

	<-entered
	close(release)
	queue.Stop()

	assert.True(t, finished.Load())
	assert.Error(t, queue.Enqueue(Job[int]{ID: "late"}), "a stopped queue refuses new jobs")
}
