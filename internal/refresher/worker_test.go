package refresher

import (
	"context"
	"errors"
	"testing"

	"github.com/josephshahen/nibras-api/internal/models"
	"github.com/josephshahen/nibras-api/internal/queue"
	"go.uber.org/zap"
)

type mockMessage struct {
	job     *queue.Job
	acked   bool
	nacked  bool
	requeue bool
}

func (m *mockMessage) Ack() error {
	m.acked = true
	return nil
}

func (m *mockMessage) Nack(requeue bool) error {
	m.nacked = true
	m.requeue = requeue
	return nil
}

func (m *mockMessage) GetJob() *queue.Job {
	return m.job
}

type mockJobQueue struct {
	enqueued []*queue.Job
	failNext error
}

func (m *mockJobQueue) Enqueue(ctx context.Context, job *queue.Job) error {
	if m.failNext != nil {
		return m.failNext
	}
	m.enqueued = append(m.enqueued, job)
	return nil
}

func (m *mockJobQueue) Consume(ctx context.Context, prefetchCount int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, errors.New("not implemented")
}

func (m *mockJobQueue) Close() error {
	return nil
}

func (m *mockJobQueue) HealthCheck(ctx context.Context) error {
	return nil
}

var (
	_ queue.MessageInterface = (*mockMessage)(nil)
	_ queue.JobQueue         = (*mockJobQueue)(nil)
)

func newTestWorker(users *mockUserRepo, activities *mockActivityRepo, jobQueue queue.JobQueue) *Worker {
	r := New(users, activities, nil, zap.NewNop())
	return NewWorker(r, jobQueue, zap.NewNop())
}

func TestProcessJobRefreshAll(t *testing.T) {
	t.Parallel()

	users := &mockUserRepo{
		GetActiveUsersFunc: func(ctx context.Context) ([]*models.User, error) {
			return activeUsers("user-00000001", "user-00000002"), nil
		},
	}
	createdCount := 0
	activities := &mockActivityRepo{
		CreateFunc: func(ctx context.Context, activity *models.Activity) error {
			createdCount++
			return nil
		},
	}

	w := newTestWorker(users, activities, &mockJobQueue{})
	msg := &mockMessage{job: queue.NewJob(queue.JobTypeRefreshAll, "")}

	if err := w.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("ProcessJob returned error: %v", err)
	}
	if createdCount != 2 {
		t.Errorf("Expected 2 activities, got %d", createdCount)
	}
	if !msg.acked {
		t.Error("Expected successful job to be acked")
	}
	if msg.nacked {
		t.Error("Successful job must not be nacked")
	}
}

func TestProcessJobRefreshUser(t *testing.T) {
	t.Parallel()

	users := &mockUserRepo{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, Status: models.UserStatusActive}, nil
		},
	}
	var gotUser string
	activities := &mockActivityRepo{
		CreateFunc: func(ctx context.Context, activity *models.Activity) error {
			gotUser = activity.UserID
			return nil
		},
	}

	w := newTestWorker(users, activities, &mockJobQueue{})
	msg := &mockMessage{job: queue.NewJob(queue.JobTypeRefreshUser, "user-cafe0123")}

	if err := w.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("ProcessJob returned error: %v", err)
	}
	if gotUser != "user-cafe0123" {
		t.Errorf("Expected activity for user-cafe0123, got %q", gotUser)
	}
	if !msg.acked {
		t.Error("Expected successful job to be acked")
	}
}

func TestProcessJobUnknownTypeDeadLetters(t *testing.T) {
	t.Parallel()

	w := newTestWorker(&mockUserRepo{}, &mockActivityRepo{}, &mockJobQueue{})
	msg := &mockMessage{job: queue.NewJob(queue.JobType("bogus"), "")}

	if err := w.ProcessJob(context.Background(), msg); err == nil {
		t.Fatal("Expected error for unknown job type")
	}
	if !msg.nacked || msg.requeue {
		t.Error("Expected unknown job to be dead-lettered (nack without requeue)")
	}
}

func TestProcessJobFailureRequeuesWithRetryBudget(t *testing.T) {
	t.Parallel()

	users := &mockUserRepo{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, Status: models.UserStatusActive}, nil
		},
	}
	activities := &mockActivityRepo{
		CreateFunc: func(ctx context.Context, activity *models.Activity) error {
			return errors.New("insert failed")
		},
	}

	jobQueue := &mockJobQueue{}
	w := newTestWorker(users, activities, jobQueue)
	msg := &mockMessage{job: queue.NewJob(queue.JobTypeRefreshUser, "user-cafe0123")}

	if err := w.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("Expected retried job to not surface the error, got %v", err)
	}
	if len(jobQueue.enqueued) != 1 {
		t.Fatalf("Expected 1 requeued job, got %d", len(jobQueue.enqueued))
	}
	if jobQueue.enqueued[0].RetryCount != 1 {
		t.Errorf("Expected retry count 1, got %d", jobQueue.enqueued[0].RetryCount)
	}
	if !msg.acked {
		t.Error("Expected original delivery to be acked after requeue")
	}
}

func TestProcessJobExhaustedRetriesDeadLetters(t *testing.T) {
	t.Parallel()

	users := &mockUserRepo{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, Status: models.UserStatusActive}, nil
		},
	}
	activities := &mockActivityRepo{
		CreateFunc: func(ctx context.Context, activity *models.Activity) error {
			return errors.New("insert failed")
		},
	}

	jobQueue := &mockJobQueue{}
	w := newTestWorker(users, activities, jobQueue)

	job := queue.NewJob(queue.JobTypeRefreshUser, "user-cafe0123")
	job.RetryCount = job.MaxRetries
	msg := &mockMessage{job: job}

	if err := w.ProcessJob(context.Background(), msg); err == nil {
		t.Fatal("Expected error for exhausted retries")
	}
	if len(jobQueue.enqueued) != 0 {
		t.Errorf("Expected no requeue, got %d", len(jobQueue.enqueued))
	}
	if !msg.nacked || msg.requeue {
		t.Error("Expected exhausted job to be dead-lettered (nack without requeue)")
	}
}
