// internal/queue/queue.go
package queue

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/unclebandit/promo-dashboard/internal/logging"
)

// TopicDrawingReplies carries model.ReplyJob payloads for newly enrolled participants.
const TopicDrawingReplies = "drawing_replies"

// ErrNoSubscribers is returned by Publish when nobody listens on the topic.
var ErrNoSubscribers = errors.New("no subscribers")

// Handler processes one payload. A non-nil error asks the queue to retry.
type Handler func(payload any) error

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler Handler) error
	Close() error
}

// InMemoryQueue delivers payloads to in-process subscribers with retry
type InMemoryQueue struct {
	MaxRetries int
	Backoff    time.Duration

	mu       sync.Mutex
	handlers map[string][]Handler
	wg       sync.WaitGroup
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		MaxRetries: 3,
		Backoff:    500 * time.Millisecond,
		handlers:   make(map[string][]Handler),
	}
}

// job wraps a payload with retry info
type job struct {
	topic      string
	payload    any
	retryCount int
}

// Publish hands the payload to every subscriber of the topic
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("publish to %s: %w", topic, ErrNoSubscribers)
	}

	for _, handler := range handlers {
		q.wg.Add(1)
		go func(h Handler) {
			defer q.wg.Done()
			q.process(h, &job{topic: topic, payload: payload})
		}(handler)
	}
	return nil
}

// process retries with a linear backoff until the handler succeeds or retries run out
func (q *InMemoryQueue) process(handler Handler, j *job) {
	for {
		err := handler(j.payload)
		if err == nil {
			logging.Debug().Str("topic", j.topic).Int("attempts", j.retryCount+1).Msg("job processed")
			return
		}

		j.retryCount++
		if j.retryCount > q.MaxRetries {
			logging.Error().Err(err).Str("topic", j.topic).Int("attempts", j.retryCount).Msg("job permanently failed")
			return
		}
		logging.Warn().Err(err).Str("topic", j.topic).Int("attempt", j.retryCount).Int("max_retries", q.MaxRetries).Msg("job failed, retrying")

		time.Sleep(time.Duration(j.retryCount) * q.Backoff)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler Handler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// Close waits for in-flight jobs to finish.
func (q *InMemoryQueue) Close() error {
	q.wg.Wait()
	return nil
}
