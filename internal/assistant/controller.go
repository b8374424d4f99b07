package assistant

import (
	"context"
	"sync"
	"time"

	"github.com/josephshahen/nibras-api/internal/database"
	"github.com/josephshahen/nibras-api/internal/models"
	"go.uber.org/zap"
)

// State is the controller's session state
type State string

const (
	StateUnregistered State = "unregistered"
	StateLoading      State = "loading"
	StateActive       State = "active"
	StateInactive     State = "inactive"
)

const (
	// DefaultPollInterval is how often an active session re-fetches its feeds
	DefaultPollInterval = 30 * time.Second
	// DefaultNudgeIdle is the absence threshold after which the controller
	// triggers the refresh job itself instead of waiting for the scheduler
	DefaultNudgeIdle = 3 * time.Minute
	// DefaultNudgeDelay is the wait between triggering a refresh and
	// re-querying recommendations
	DefaultNudgeDelay = 5 * time.Second
)

// RefreshTrigger invokes the background refresh job for a single user.
// Implemented by refresher.Refresher and by remote-procedure clients.
type RefreshTrigger interface {
	RefreshUser(ctx context.Context, userID string) (int, error)
}

// Snapshot is the view the controller surfaces to the UI layer after every
// poll: the feeds, the unread counts (the notification payload) and
// whether the one-time welcome dialog should show.
type Snapshot struct {
	State                 State                    `json:"state"`
	User                  *models.User             `json:"user,omitempty"`
	Activities            []*models.Activity       `json:"activities"`
	Recommendations       []*models.Recommendation `json:"recommendations"`
	UnreadActivities      int                      `json:"unread_activities"`
	UnreadRecommendations int                      `json:"unread_recommendations"`
	ShowWelcome           bool                     `json:"show_welcome"`
}

// ControllerOption configures a Controller
type ControllerOption func(*Controller)

// WithPollInterval overrides the feed polling interval
func WithPollInterval(d time.Duration) ControllerOption {
	return func(c *Controller) { c.pollInterval = d }
}

// WithNudgeIdle overrides the absence threshold for the manual refresh nudge
func WithNudgeIdle(d time.Duration) ControllerOption {
	return func(c *Controller) { c.nudgeIdle = d }
}

// WithNudgeDelay overrides the wait before re-querying after a nudge
func WithNudgeDelay(d time.Duration) ControllerOption {
	return func(c *Controller) { c.nudgeDelay = d }
}

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = now }
}

// Controller drives one mounted assistant session. It owns the session
// state machine, the 30-second feed poll and the manual refresh nudge.
// All store operations are asynchronous network calls; the controller
// never blocks the caller beyond the individual request.
type Controller struct {
	service         *Service
	activities      database.ActivityRepositoryInterface
	recommendations database.RecommendationRepositoryInterface
	refresh         RefreshTrigger
	storage         SessionStore
	logger          *zap.Logger
	onUpdate        func(Snapshot)

	pollInterval time.Duration
	nudgeIdle    time.Duration
	nudgeDelay   time.Duration
	now          func() time.Time

	mu         sync.Mutex
	state      State
	user       *models.User
	lastActive time.Time
	cancelPoll context.CancelFunc
	pollDone   chan struct{}
}

// NewController creates a controller for one session. onUpdate receives a
// snapshot after every poll; it may be nil.
func NewController(
	service *Service,
	activities database.ActivityRepositoryInterface,
	recommendations database.RecommendationRepositoryInterface,
	refresh RefreshTrigger,
	storage SessionStore,
	logger *zap.Logger,
	onUpdate func(Snapshot),
	opts ...ControllerOption,
) *Controller {
	c := &Controller{
		service:         service,
		activities:      activities,
		recommendations: recommendations,
		refresh:         refresh,
		storage:         storage,
		logger:          logger,
		onUpdate:        onUpdate,
		pollInterval:    DefaultPollInterval,
		nudgeIdle:       DefaultNudgeIdle,
		nudgeDelay:      DefaultNudgeDelay,
		now:             time.Now,
		state:           StateUnregistered,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current session state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentUser returns the session's user, or nil before activation
func (c *Controller) CurrentUser() *models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// Start mounts the session. If a cached identity exists it is resolved
// against the store; a dangling or expired identity clears the cache and
// the session starts Unregistered, with no error surfaced to the user.
func (c *Controller) Start(ctx context.Context) error {
	userID, ok, err := c.storage.Get(ctx, KeyUserID)
	if err != nil {
		return err
	}
	if !ok || userID == "" {
		c.setState(StateUnregistered, nil)
		return nil
	}

	c.setState(StateLoading, nil)

	user, err := c.service.LoadAccount(ctx, userID)
	if err == database.ErrNotFound {
		// Dangling local cache: the account no longer exists remotely.
		// Soft reset, never an error dialog.
		c.clearCachedIdentity(ctx)
		c.setState(StateUnregistered, nil)
		return nil
	}
	if err != nil {
		c.setState(StateUnregistered, nil)
		return err
	}

	switch user.Status {
	case models.UserStatusExpired:
		// Expired is terminal: drop the cached id so the next activation
		// gets a fresh identity.
		c.clearCachedIdentity(ctx)
		c.setState(StateUnregistered, nil)
		return nil
	case models.UserStatusInactive:
		c.setState(StateInactive, user)
		return nil
	default:
		c.enterActive(ctx, user)
		return nil
	}
}

// Activate creates an account (from Unregistered) or reactivates the
// existing one (from Inactive). On a failed creation nothing is cached
// locally, so the call is safely retryable.
func (c *Controller) Activate(ctx context.Context, prefs models.Preferences) error {
	c.mu.Lock()
	state := c.state
	user := c.user
	c.mu.Unlock()

	switch state {
	case StateInactive:
		if err := c.service.Reactivate(ctx, user.ID); err != nil {
			return err
		}
		user.Status = models.UserStatusActive
		if err := c.storage.Set(ctx, KeyActive, "true"); err != nil {
			c.logger.Warn("failed_to_cache_active_flag", zap.Error(err))
		}
		c.enterActive(ctx, user)
		return nil
	default:
		created, err := c.service.CreateAccount(ctx, "", prefs)
		if err != nil {
			return err
		}
		c.cacheIdentity(ctx, created)
		c.enterActive(ctx, created)
		return nil
	}
}

// Deactivate stops the session and marks the account inactive. The cached
// identity is retained so the user can come back later.
func (c *Controller) Deactivate(ctx context.Context) error {
	c.mu.Lock()
	user := c.user
	c.mu.Unlock()
	if user == nil {
		return nil
	}

	if err := c.service.Deactivate(ctx, user.ID); err != nil {
		return err
	}
	if err := c.storage.Set(ctx, KeyActive, "false"); err != nil {
		c.logger.Warn("failed_to_cache_active_flag", zap.Error(err))
	}

	c.stopPolling()
	user.Status = models.UserStatusInactive
	c.setState(StateInactive, user)
	return nil
}

// MarkActivitiesRead marks every unread activity of the session user as read
func (c *Controller) MarkActivitiesRead(ctx context.Context) error {
	user := c.CurrentUser()
	if user == nil {
		return nil
	}
	return c.activities.MarkAllRead(ctx, user.ID)
}

// MarkRecommendationsRead marks every unread recommendation of the session user as read
func (c *Controller) MarkRecommendationsRead(ctx context.Context) error {
	user := c.CurrentUser()
	if user == nil {
		return nil
	}
	return c.recommendations.MarkAllRead(ctx, user.ID)
}

// DismissWelcome permanently suppresses the welcome dialog for this session store
func (c *Controller) DismissWelcome(ctx context.Context) error {
	return c.storage.Set(ctx, KeyWelcomeShown, "true")
}

// Close unmounts the session and cancels the poll timer. Responses from
// requests still in flight are discarded.
func (c *Controller) Close() {
	c.stopPolling()
}

func (c *Controller) setState(state State, user *models.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
	c.user = user
	if user != nil {
		c.lastActive = user.LastActive
	}
}

func (c *Controller) enterActive(ctx context.Context, user *models.User) {
	c.stopPolling()
	c.setState(StateActive, user)

	pollCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.mu.Lock()
	c.cancelPoll = cancel
	c.pollDone = done
	c.mu.Unlock()

	// First poll (and possible nudge) happens on entry, not after the
	// first interval.
	c.pollOnce(ctx)

	go c.pollLoop(pollCtx, done)
}

func (c *Controller) stopPolling() {
	c.mu.Lock()
	cancel := c.cancelPoll
	done := c.pollDone
	c.cancelPoll = nil
	c.pollDone = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (c *Controller) pollLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.pollOnce(ctx)
		}
	}
}

// pollOnce re-fetches both feeds, evaluates the nudge condition against
// the pre-tick last_active, refreshes last_active and publishes a
// snapshot. Errors leave the previous UI state unchanged.
func (c *Controller) pollOnce(ctx context.Context) {
	c.mu.Lock()
	user := c.user
	prevLastActive := c.lastActive
	c.mu.Unlock()
	if user == nil {
		return
	}

	snap, unreadRecs, err := c.fetchSnapshot(ctx, user)
	if err != nil {
		c.logger.Warn("assistant_poll_failed",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
		return
	}

	now := c.now()
	if err := c.service.Touch(ctx, user.ID); err != nil {
		c.logger.Warn("failed_to_touch_last_active",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	} else {
		c.mu.Lock()
		c.lastActive = now
		if c.user != nil {
			c.user.LastActive = now
		}
		c.mu.Unlock()
	}

	c.publish(snap)

	// Manual nudge: the external scheduler may not have run recently. If
	// the user came back after a long absence and has nothing unread, ask
	// the refresh job to run for just this user, then look again. The job
	// currently produces only activities, so the recommendation re-query
	// may legitimately come back empty; the UI keeps its "searching"
	// state until a later tick.
	if unreadRecs == 0 && now.Sub(prevLastActive) > c.nudgeIdle {
		c.nudge(ctx, user)
	}
}

func (c *Controller) fetchSnapshot(ctx context.Context, user *models.User) (Snapshot, int, error) {
	activities, err := c.activities.ListByUserID(ctx, user.ID, database.DefaultActivityLimit)
	if err != nil {
		return Snapshot{}, 0, err
	}
	recs, err := c.recommendations.ListUnread(ctx, user.ID, database.DefaultUnreadRecommendationLimit)
	if err != nil {
		return Snapshot{}, 0, err
	}
	unreadActivities, err := c.activities.CountUnread(ctx, user.ID)
	if err != nil {
		return Snapshot{}, 0, err
	}
	unreadRecs, err := c.recommendations.CountUnread(ctx, user.ID)
	if err != nil {
		return Snapshot{}, 0, err
	}

	showWelcome := false
	if unreadRecs > 0 {
		_, shown, err := c.storage.Get(ctx, KeyWelcomeShown)
		if err != nil {
			c.logger.Warn("failed_to_read_welcome_flag", zap.Error(err))
		} else if !shown {
			showWelcome = true
		}
	}

	snap := Snapshot{
		State:                 StateActive,
		User:                  user,
		Activities:            activities,
		Recommendations:       recs,
		UnreadActivities:      unreadActivities,
		UnreadRecommendations: unreadRecs,
		ShowWelcome:           showWelcome,
	}
	return snap, unreadRecs, nil
}

func (c *Controller) nudge(ctx context.Context, user *models.User) {
	if c.refresh == nil {
		return
	}

	if _, err := c.refresh.RefreshUser(ctx, user.ID); err != nil {
		// Non-fatal: the next periodic tick re-polls anyway.
		c.logger.Warn("manual_refresh_failed",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
		return
	}

	select {
	case <-ctx.Done():
		return
	case <-time.After(c.nudgeDelay):
	}

	snap, _, err := c.fetchSnapshot(ctx, user)
	if err != nil {
		c.logger.Warn("post_nudge_poll_failed",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
		return
	}
	c.publish(snap)
}

func (c *Controller) publish(snap Snapshot) {
	c.mu.Lock()
	active := c.state == StateActive
	cb := c.onUpdate
	c.mu.Unlock()

	// Discard results that complete after the session left Active.
	if !active || cb == nil {
		return
	}
	cb(snap)
}

func (c *Controller) cacheIdentity(ctx context.Context, user *models.User) {
	pairs := map[string]string{
		KeyUserID:       user.ID,
		KeyActive:       "true",
		KeyCategory:     user.Preferences.SearchCategory,
		KeyCustomSearch: user.Preferences.CustomSearch,
	}
	for key, value := range pairs {
		if err := c.storage.Set(ctx, key, value); err != nil {
			c.logger.Warn("failed_to_cache_session_key",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
}

// clearCachedIdentity drops everything except the welcome flag, which is
// suppressed permanently per browser.
func (c *Controller) clearCachedIdentity(ctx context.Context) {
	for _, key := range []string{KeyUserID, KeyActive, KeyCategory, KeyCustomSearch} {
		if err := c.storage.Delete(ctx, key); err != nil {
			c.logger.Warn("failed_to_clear_session_key",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
}
