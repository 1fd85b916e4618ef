package queue_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/promo-dashboard/internal/queue"
)

func newTestQueue() *queue.InMemoryQueue {
	q := queue.NewInMemoryQueue()
	q.Backoff = time.Millisecond
	return q
}

func TestPublishWithoutSubscribers(t *testing.T) {
	q := newTestQueue()
	err := q.Publish("nobody", "x")
	assert.ErrorIs(t, err, queue.ErrNoSubscribers)
}

func TestPublishDeliversToEverySubscriber(t *testing.T) {
	q := newTestQueue()

	var mu sync.Mutex
	got := []string{}
	for i := 0; i < 2; i++ {
		require.NoError(t, q.Subscribe("topic", func(payload any) error {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, payload.(string))
			return nil
		}))
	}

	require.NoError(t, q.Publish("topic", "hello"))
	require.NoError(t, q.Close())

	assert.Equal(t, []string{"hello", "hello"}, got)
}

func TestFailedJobIsRetried(t *testing.T) {
	q := newTestQueue()

	var attempts atomic.Int32
	require.NoError(t, q.Subscribe("topic", func(payload any) error {
		if attempts.Add(1) < 3 {
			return errors.New("temporary")
		}
		return nil
	}))

	require.NoError(t, q.Publish("topic", 1))
	require.NoError(t, q.Close())

	assert.Equal(t, int32(3), attempts.Load())
}

func TestRetriesAreBounded(t *testing.T) {
	q := newTestQueue()
	q.MaxRetries = 2

	var attempts atomic.Int32
	require.NoError(t, q.Subscribe("topic", func(payload any) error {
		attempts.Add(1)
		return errors.New("permanent")
	}))

	require.NoError(t, q.Publish("topic", 1))
	require.NoError(t, q.Close())

	assert.Equal(t, int32(3), attempts.Load())
}
