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
	var handled atomic.Int32
	q := NewQueue("refresh", func(ctx context.Context, job Job) error {
		handled.Add(1)
		return nil
	}, QueueConfig{Workers: 2})

	q.Start(context.Background())
	defer q.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(Job{ID: "job", Type: "wallet"}))
	}

	require.Eventually(t, func() bool { return handled.Load() == 5 }, time.Second, 5*time.Millisecond)
}

func TestQueueWithoutRetriesDropsFailedJob(t *testing.T) {
	var attempts atomic.Int32
	q := NewQueue("refresh", func(ctx context.Context, job Job) error {
		attempts.Add(1)
		return errors.New("backend down")
	}, QueueConfig{Workers: 1, RetryDelay: time.Millisecond})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-1", Type: "dashboard"}))
	require.Eventually(t, func() bool { return attempts.Load() == 1 }, time.Second, 5*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestQueueRetriesWhenConfigured(t *testing.T) {
	var attempts atomic.Int32
	q := NewQueue("refresh", func(ctx context.Context, job Job) error {
		if attempts.Add(1) < 3 {
			return errors.New("flaky")
		}
		return nil
	}, QueueConfig{Workers: 1, MaxRetries: 3, RetryDelay: time.Millisecond})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-1", Type: "wallet"}))
	require.Eventually(t, func() bool { return attempts.Load() == 3 }, time.Second, 5*time.Millisecond)
}

func TestQueueRejectsBeforeStart(t *testing.T) {
	q := NewQueue("refresh", func(context.Context, Job) error { return nil }, QueueConfig{})

	assert.Error(t, q.Enqueue(Job{ID: "job"}))
	_, err := q.TryEnqueue(Job{ID: "job"})
	assert.Error(t, err)
}

func TestQueueTryEnqueueDropsWhenFull(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue("refresh", func(ctx context.Context, job Job) error {
		<-block
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})

	q.Start(context.Background())
	defer func() {
		close(block)
		q.Stop()
	}()

	// first job occupies the worker, second fills the buffer
	require.NoError(t, q.Enqueue(Job{ID: "a"}))
	require.Eventually(t, func() bool {
		ok, err := q.TryEnqueue(Job{ID: "b"})
		return err == nil && ok
	}, time.Second, time.Millisecond)

	ok, err := q.TryEnqueue(Job{ID: "c"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQueueCoalescesWaitingJobsByKey(t *testing.T) {
	block := make(chan struct{})
	var handled atomic.Int32
	q := NewQueue("refresh", func(ctx context.Context, job Job) error {
		if job.ID == "first" {
			<-block
		}
		handled.Add(1)
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 4})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "first", Type: "other"}))
	for i := 0; i < 3; i++ {
		ok, err := q.TryEnqueue(Job{ID: "wallet", Type: "wallet", Key: "wallet"})
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, 1, q.Pending())

	close(block)
	require.Eventually(t, func() bool { return handled.Load() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, q.Pending())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(2), handled.Load())
}
