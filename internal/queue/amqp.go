// internal/queue/amqp.go
package queue

import (
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"github.com/streadway/amqp"

	"github.com/unclebandit/promo-dashboard/internal/logging"
)

const retryHeader = "x-retry-count"

// AMQPQueue publishes JSON payloads to one durable RabbitMQ queue per topic.
// Subscribers receive the raw message body as []byte.
type AMQPQueue struct {
	MaxRetries int

	conn *amqp.Connection
	mu   sync.Mutex
	ch   *amqp.Channel
	wg   sync.WaitGroup
}

// DialAMQP connects to the broker and opens the publishing channel.
func DialAMQP(url string) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return &AMQPQueue{MaxRetries: 3, conn: conn, ch: ch}, nil
}

func declare(ch *amqp.Channel, topic string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		topic, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
}

// Publish encodes payload as JSON unless it already is a []byte.
func (q *AMQPQueue) Publish(topic string, payload any) error {
	body, ok := payload.([]byte)
	if !ok {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return fmt.Errorf("encode payload for %s: %w", topic, err)
		}
	}
	return q.publish(topic, body, 0)
}

func (q *AMQPQueue) publish(topic string, body []byte, retries int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, err := declare(q.ch, topic); err != nil {
		return fmt.Errorf("declare queue %s: %w", topic, err)
	}
	err := q.ch.Publish(
		"",    // default exchange
		topic, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Headers:      amqp.Table{retryHeader: int32(retries)},
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe consumes the topic on a dedicated channel. A failed delivery is
// republished with an incremented retry header and dropped after MaxRetries.
func (q *AMQPQueue) Subscribe(topic string, handler Handler) error {
	ch, err := q.conn.Channel()
	if err != nil {
		return fmt.Errorf("open consumer channel: %w", err)
	}
	if _, err := declare(ch, topic); err != nil {
		ch.Close()
		return fmt.Errorf("declare queue %s: %w", topic, err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		return fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := ch.Consume(
		topic,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		return fmt.Errorf("register consumer on %s: %w", topic, err)
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer ch.Close()
		for d := range deliveries {
			q.handle(topic, d, handler)
		}
	}()
	return nil
}

func (q *AMQPQueue) handle(topic string, d amqp.Delivery, handler Handler) {
	err := handler(d.Body)
	if err == nil {
		d.Ack(false)
		return
	}

	retries := retryCount(d.Headers)
	if retries >= q.MaxRetries {
		logging.Error().Err(err).Str("topic", topic).Int("attempts", retries+1).Msg("job permanently failed")
		d.Ack(false)
		return
	}
	logging.Warn().Err(err).Str("topic", topic).Int("attempt", retries+1).Msg("job failed, requeueing")
	if perr := q.publish(topic, d.Body, retries+1); perr != nil {
		logging.Error().Err(perr).Str("topic", topic).Msg("requeue failed")
		d.Nack(false, true)
		return
	}
	d.Ack(false)
}

func retryCount(headers amqp.Table) int {
	switch v := headers[retryHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// Close shuts the connection down, which ends every consumer loop.
func (q *AMQPQueue) Close() error {
	q.mu.Lock()
	q.ch.Close()
	q.mu.Unlock()
	err := q.conn.Close()
	q.wg.Wait()
	return err
}
