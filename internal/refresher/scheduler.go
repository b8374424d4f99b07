package refresher

import (
	"context"
	"fmt"
	"time"

	"github.com/josephshahen/nibras-api/internal/queue"
	"go.uber.org/zap"
)

const (
	// MorningSweepHour is the local hour of the first daily sweep
	MorningSweepHour = 8
	// EveningSweepHour is the local hour of the second daily sweep
	EveningSweepHour = 20
)

// Scheduler enqueues the twice-daily full refresh sweeps. It plays the
// role of the external scheduler the client controller's nudge exists to
// paper over.
type Scheduler struct {
	jobQueue queue.JobQueue
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a new sweep scheduler
func NewScheduler(jobQueue queue.JobQueue, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		jobQueue: jobQueue,
		logger:   logger,
		now:      time.Now,
	}
}

// NextSweepTimes returns the next morning and evening sweep times after now
func (s *Scheduler) NextSweepTimes() (time.Time, time.Time) {
	now := s.now()
	morning := time.Date(now.Year(), now.Month(), now.Day(), MorningSweepHour, 0, 0, 0, now.Location())
	evening := time.Date(now.Year(), now.Month(), now.Day(), EveningSweepHour, 0, 0, 0, now.Location())

	if now.After(morning) {
		morning = morning.Add(24 * time.Hour)
	}
	if now.After(evening) {
		evening = evening.Add(24 * time.Hour)
	}

	return morning, evening
}

// ScheduleSweeps enqueues one full-sweep job for each of the next two
// daily slots, carried on the delayed exchange via NotBefore.
func (s *Scheduler) ScheduleSweeps(ctx context.Context) error {
	morning, evening := s.NextSweepTimes()

	for _, at := range []time.Time{morning, evening} {
		if err := s.enqueueSweep(ctx, at); err != nil {
			return fmt.Errorf("failed to schedule sweep at %s: %w", at, err)
		}
	}

	s.logger.Info("scheduled_refresh_sweeps",
		zap.Time("next_morning", morning),
		zap.Time("next_evening", evening),
	)

	return nil
}

// Start keeps sweeps scheduled: it enqueues the next pair, sleeps until
// the later one has fired, then repeats. Runs until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	for {
		if err := s.ScheduleSweeps(ctx); err != nil {
			s.logger.Error("failed_to_schedule_sweeps", zap.Error(err))
		}

		_, evening := s.NextSweepTimes()
		wait := time.Until(evening.Add(time.Minute))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (s *Scheduler) enqueueSweep(ctx context.Context, notBefore time.Time) error {
	job := queue.NewJob(queue.JobTypeRefreshAll, "")
	job.NotBefore = &notBefore

	// Garbage-collect sweeps nobody picked up within a day
	notAfter := notBefore.Add(24 * time.Hour)
	job.NotAfter = &notAfter

	if err := s.jobQueue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue sweep job: %w", err)
	}

	return nil
}
