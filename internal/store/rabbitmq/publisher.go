// Package rabbitmq queues outbound email jobs so HTTP handlers never block
// on SMTP.
package rabbitmq

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EmailWelcome    = "welcome"
	EmailReset      = "reset"
	EmailNewsletter = "newsletter"
)

// MaxDeliveries bounds how often a job is retried before it is parked
// on the dead-letter queue.
const MaxDeliveries = 5

// attemptsHeader carries the delivery attempt count across retries.
const attemptsHeader = "x-attempts"

// RetryQueue names the TTL holding queue that feeds back into the main
// queue.
func RetryQueue(queue string) string { return queue + ".retry" }

// DeadLetterQueue names the parking queue for jobs that exhausted their
// retries or cannot be decoded.
func DeadLetterQueue(queue string) string { return queue + ".dlq" }

type EmailJob struct {
	Kind  string `json:"kind"`
	To    string `json:"to"`
	Name  string `json:"name,omitempty"`
	Token string `json:"token,omitempty"`
}

type Publisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := DeclareTopology(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

// DeclareTopology declares the main queue plus its retry and dead-letter
// companions. Publisher and worker both call it so the declarations
// always agree.
func DeclareTopology(ch *amqp.Channel, queue string) error {
	mainQ := queue
	retryQ := RetryQueue(queue)
	dlqQ := DeadLetterQueue(queue)

	// DLQ
	if _, err := ch.QueueDeclare(
		dlqQ,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false,
		nil,
	); err != nil {
		return err
	}

	// Retry queue: message TTL -> dead-letter back to main queue
	if _, err := ch.QueueDeclare(
		retryQ,
		true,
		false,
		false,
		false,
		amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": mainQ,
		},
	); err != nil {
		return err
	}

	// Main queue: dead-letter to DLQ on reject/nack(requeue=false)
	if _, err := ch.QueueDeclare(
		mainQ,
		true,
		false,
		false,
		false,
		amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": dlqQ,
		},
	); err != nil {
		return err
	}

	return nil
}

// DeliveryAttempts reads the attempt counter a retry publish stamped on
// the message. A first delivery has no header and counts as attempt 1.
func DeliveryAttempts(headers amqp.Table) int {
	if headers == nil {
		return 1
	}
	switch v := headers[attemptsHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 1
	}
}

// ScheduleRetry parks a failed delivery on the retry queue with a
// per-message TTL, so the broker feeds it back to the main queue after
// the delay. attempt is the count the redelivered message will carry.
func ScheduleRetry(ctx context.Context, ch *amqp.Channel, queue string, body []byte, attempt int, delay time.Duration) error {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return ch.PublishWithContext(cctx,
		"",
		RetryQueue(queue),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
			Expiration:   strconv.FormatInt(delay.Milliseconds(), 10),
			Headers:      amqp.Table{attemptsHeader: int32(attempt)},
		},
	)
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func (p *Publisher) PublishEmail(ctx context.Context, job EmailJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(cctx,
		"",      // default exchange
		p.queue, // routing key = queue
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
}
