package queue

import (
	"context"
	"time"
)

// MessageInterface is the delivery seen by job processors. Implementations
// settle exactly once: Ack on success, Nack(true) to retry via the delayed
// exchange, Nack(false) to dead-letter.
type MessageInterface interface {
	Ack() error
	Nack(requeue bool) error
	GetJob() *Job
}

// JobQueue is the transport for refresh jobs.
type JobQueue interface {
	// Enqueue publishes a job. Jobs with NotBefore in the future are routed
	// through the delayed exchange and delivered when due.
	Enqueue(ctx context.Context, job *Job) error

	// Consume starts delivering jobs. prefetchCount bounds unacknowledged
	// deliveries per consumer. Both channels close when ctx is cancelled or
	// the underlying connection drops; the caller settles every message.
	Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error)

	Close() error

	// HealthCheck reports whether the connection is usable.
	HealthCheck(ctx context.Context) error
}

// DLQPurger is implemented by queues that can discard dead-lettered
// messages older than a retention period.
type DLQPurger interface {
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error)
}
