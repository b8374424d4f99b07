package refresher

import (
	"context"
	"fmt"

	"github.com/josephshahen/nibras-api/internal/queue"
	"go.uber.org/zap"
)

// Worker consumes refresh jobs from the queue and runs them
type Worker struct {
	refresher *Refresher
	jobQueue  queue.JobQueue
	logger    *zap.Logger
}

// NewWorker creates a new refresh job worker
func NewWorker(refresher *Refresher, jobQueue queue.JobQueue, logger *zap.Logger) *Worker {
	return &Worker{
		refresher: refresher,
		jobQueue:  jobQueue,
		logger:    logger,
	}
}

// ProcessJob runs one queued refresh job. Failed jobs are re-enqueued
// until their retry budget runs out, then dead-lettered.
func (w *Worker) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	var processed int
	var err error
	switch job.Type {
	case queue.JobTypeRefreshAll:
		processed, err = w.refresher.Run(ctx)
	case queue.JobTypeRefreshUser:
		processed, err = w.refresher.RefreshUser(ctx, job.UserID)
	default:
		// Unknown job type: dead-letter it, a retry cannot help.
		if nackErr := msg.Nack(false); nackErr != nil {
			w.logger.Warn("failed_to_nack_unknown_job", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}

	if err != nil {
		return w.retryOrDeadLetter(ctx, msg, job, err)
	}

	w.logger.Info("refresh_job_complete",
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.Type)),
		zap.Int("processed_users", processed),
	)

	if ackErr := msg.Ack(); ackErr != nil {
		return fmt.Errorf("failed to ack job: %w", ackErr)
	}
	return nil
}

func (w *Worker) retryOrDeadLetter(ctx context.Context, msg queue.MessageInterface, job *queue.Job, cause error) error {
	if !job.CanRetry() {
		w.logger.Error("refresh_job_exhausted_retries",
			zap.String("job_id", job.ID.String()),
			zap.Int("retry_count", job.RetryCount),
			zap.Error(cause),
		)
		if nackErr := msg.Nack(false); nackErr != nil {
			w.logger.Warn("failed_to_nack_job", zap.Error(nackErr))
		}
		return cause
	}

	// Requeue a copy with the bumped retry count; the original delivery
	// is acked so the broker does not double-deliver.
	job.IncrementRetry()
	if enqErr := w.jobQueue.Enqueue(ctx, job); enqErr != nil {
		w.logger.Error("failed_to_requeue_job",
			zap.String("job_id", job.ID.String()),
			zap.Error(enqErr),
		)
		if nackErr := msg.Nack(true); nackErr != nil {
			w.logger.Warn("failed_to_nack_job", zap.Error(nackErr))
		}
		return cause
	}

	if ackErr := msg.Ack(); ackErr != nil {
		w.logger.Warn("failed_to_ack_retried_job", zap.Error(ackErr))
	}

	w.logger.Warn("refresh_job_retried",
		zap.String("job_id", job.ID.String()),
		zap.Int("retry_count", job.RetryCount),
		zap.Error(cause),
	)
	return nil
}
