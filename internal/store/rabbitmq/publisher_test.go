package rabbitmq

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestQueueNames(t *testing.T) {
	if got := RetryQueue("email_jobs"); got != "email_jobs.retry" {
		t.Fatalf("RetryQueue = %q", got)
	}
	if got := DeadLetterQueue("email_jobs"); got != "email_jobs.dlq" {
		t.Fatalf("DeadLetterQueue = %q", got)
	}
}

func TestDeliveryAttempts(t *testing.T) {
	cases := []struct {
		name    string
		headers amqp.Table
		want    int
	}{
		{"nil headers", nil, 1},
		{"no counter", amqp.Table{}, 1},
		{"int32 counter", amqp.Table{"x-attempts": int32(3)}, 3},
		{"int64 counter", amqp.Table{"x-attempts": int64(4)}, 4},
		{"int counter", amqp.Table{"x-attempts": 2}, 2},
		{"garbage counter", amqp.Table{"x-attempts": "lots"}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeliveryAttempts(tc.headers); got != tc.want {
				t.Fatalf("DeliveryAttempts = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRetriesAreBounded(t *testing.T) {
	// A message at the delivery cap must not be rescheduled again.
	headers := amqp.Table{"x-attempts": int32(MaxDeliveries)}
	if got := DeliveryAttempts(headers); got < MaxDeliveries {
		t.Fatalf("attempt %d still under the cap %d", got, MaxDeliveries)
	}
}
