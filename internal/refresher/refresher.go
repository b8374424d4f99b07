// Package refresher implements the background refresh job: one canned
// activity per active user per invocation, plus the 30-day expiry sweep.
package refresher

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/josephshahen/nibras-api/internal/database"
	"github.com/josephshahen/nibras-api/internal/models"
	"go.uber.org/zap"
)

const (
	// DefaultInactivityWindow is how long a user can stay inactive before
	// the sweep expires the subscription
	DefaultInactivityWindow = 30 * 24 * time.Hour
)

// Option configures a Refresher
type Option func(*Refresher)

// WithRand overrides the random source used for template selection, for tests
func WithRand(rng *rand.Rand) Option {
	return func(r *Refresher) { r.rng = rng }
}

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) Option {
	return func(r *Refresher) { r.now = now }
}

// WithInactivityWindow overrides the expiry window
func WithInactivityWindow(d time.Duration) Option {
	return func(r *Refresher) { r.inactivityWindow = d }
}

// Refresher runs the background refresh job. It is invoked by the worker
// (scheduled sweeps), by the HTTP trigger, and by the client controller's
// manual nudge.
type Refresher struct {
	users      database.UserRepositoryInterface
	activities database.ActivityRepositoryInterface
	catalog    *Catalog
	logger     *zap.Logger

	mu               sync.Mutex
	rng              *rand.Rand
	now              func() time.Time
	inactivityWindow time.Duration
}

// New creates a refresher. A nil catalog falls back to the built-in one.
func New(users database.UserRepositoryInterface, activities database.ActivityRepositoryInterface, catalog *Catalog, logger *zap.Logger, opts ...Option) *Refresher {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	r := &Refresher{
		users:            users,
		activities:       activities,
		catalog:          catalog,
		logger:           logger,
		rng:              rand.New(rand.NewSource(time.Now().UnixNano())),
		now:              time.Now,
		inactivityWindow: DefaultInactivityWindow,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes every active user: one random catalog activity appended,
// last_active refreshed, then the expiry sweep. A failure for one user is
// logged and does not affect the others; the sweep runs regardless.
// Returns the number of users processed successfully.
func (r *Refresher) Run(ctx context.Context) (int, error) {
	users, err := r.users.GetActiveUsers(ctx)
	if err != nil {
		// Can't process anyone, but the sweep contract still holds.
		r.sweep(ctx)
		return 0, err
	}

	processed := 0
	for _, user := range users {
		if err := r.refreshOne(ctx, user.ID); err != nil {
			r.logger.Warn("failed_to_refresh_user",
				zap.String("user_id", user.ID),
				zap.Error(err),
			)
			continue
		}
		processed++
	}

	r.sweep(ctx)

	r.logger.Info("refresh_run_complete",
		zap.Int("active_users", len(users)),
		zap.Int("processed_users", processed),
	)

	return processed, nil
}

// RefreshUser processes a single active user, then runs the expiry sweep.
// This is the on-demand form used by the client controller's nudge.
// Returns 1 when the user was processed, 0 otherwise.
func (r *Refresher) RefreshUser(ctx context.Context, userID string) (int, error) {
	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		r.sweep(ctx)
		return 0, err
	}
	if user.Status != models.UserStatusActive {
		r.sweep(ctx)
		return 0, nil
	}

	if err := r.refreshOne(ctx, user.ID); err != nil {
		r.sweep(ctx)
		return 0, err
	}

	r.sweep(ctx)
	return 1, nil
}

// refreshOne appends one randomly picked catalog activity and refreshes
// last_active for the user.
func (r *Refresher) refreshOne(ctx context.Context, userID string) error {
	r.mu.Lock()
	tmpl := r.catalog.Pick(r.rng)
	r.mu.Unlock()

	activity := &models.Activity{
		UserID:      userID,
		Type:        tmpl.Type,
		Title:       tmpl.Title,
		Description: tmpl.Description,
	}
	if err := r.activities.Create(ctx, activity); err != nil {
		return err
	}

	return r.users.TouchLastActive(ctx, userID)
}

// sweep expires every active user inactive for longer than the window.
// Its own failure is logged, not retried within this invocation.
func (r *Refresher) sweep(ctx context.Context) {
	cutoff := r.now().Add(-r.inactivityWindow)
	expired, err := r.users.ExpireInactive(ctx, cutoff)
	if err != nil {
		r.logger.Error("failed_to_expire_inactive_users", zap.Error(err))
		return
	}
	if expired > 0 {
		r.logger.Info("expired_inactive_users",
			zap.Int("count", expired),
			zap.Time("cutoff", cutoff),
		)
	}
}
