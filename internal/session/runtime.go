// Package session drives one trainee's timed execution of a plan: start,
// per-exercise rest countdowns, and finish with a persisted workout log.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ironplan/training-app/internal/domain"
	"ironplan/training-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidOperation marks a state-machine transition attempted from the
// wrong state. The session state is left unchanged.
var ErrInvalidOperation = errors.New("invalid session operation")

// Status of the session state machine.
type Status string

const (
	StatusIdle   Status = "idle"
	StatusActive Status = "active"
)

// RestState describes the countdown currently running, if any.
type RestState struct {
	EntryID          primitive.ObjectID `json:"entryId"`
	RemainingSeconds int                `json:"remainingSeconds"`
}

// Snapshot is a point-in-time view of the runtime for the API layer.
type Snapshot struct {
	Status         Status             `json:"status"`
	PlanName       string             `json:"planName"`
	StartedAt      *time.Time         `json:"startedAt,omitempty"`
	ElapsedSeconds int                `json:"elapsedSeconds"`
	Rest           *RestState         `json:"rest,omitempty"`
	OwnerID        primitive.ObjectID `json:"ownerId"`
}

// restCountdown is the Active sub-state. gen ties scheduled ticks to this
// particular countdown: a cancel or a superseding BeginRest bumps the
// runtime's generation, so in-flight ticks from the old countdown no-op.
type restCountdown struct {
	entryID   primitive.ObjectID
	remaining int
	gen       uint64
}

// Runtime is the execution state machine for one trainee and one plan slot.
// All methods are safe for concurrent use; the countdown is a rescheduled
// timer callback, never a blocking sleep, so Cancel/Finish stay responsive
// while a countdown runs.
type Runtime struct {
	mu sync.Mutex

	ownerID  primitive.ObjectID
	planName string
	entries  map[primitive.ObjectID]domain.PlanEntry
	suppress map[primitive.ObjectID]bool

	logRepo repository.WorkoutLogRepository

	status    Status
	startedAt time.Time
	rest      *restCountdown
	gen       uint64

	now          func() time.Time
	tickInterval time.Duration
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Runtime) { r.now = now }
}

// WithTickInterval overrides the 1 Hz countdown cadence.
func WithTickInterval(d time.Duration) Option {
	return func(r *Runtime) { r.tickInterval = d }
}

// NewRuntime builds an Idle runtime over an ordered plan slot. Rest
// suppression for superset leads is derived once from the entry list.
func NewRuntime(ownerID primitive.ObjectID, planName string, entries []domain.PlanEntry, logRepo repository.WorkoutLogRepository, opts ...Option) *Runtime {
	byID := make(map[primitive.ObjectID]domain.PlanEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	r := &Runtime{
		ownerID:      ownerID,
		planName:     planName,
		entries:      byID,
		suppress:     domain.SuppressRest(entries),
		logRepo:      logRepo,
		status:       StatusIdle,
		now:          time.Now,
		tickInterval: time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start transitions Idle -> Active and records the session start time.
// No repository write happens until Finish.
func (r *Runtime) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusIdle {
		return fmt.Errorf("%w: start requires an idle session", ErrInvalidOperation)
	}
	r.status = StatusActive
	r.startedAt = r.now()
	return nil
}

// BeginRest starts the rest countdown for an entry. It fails for entries
// whose rest is suppressed (superset leads) and outside the Active state.
// A running countdown for another entry is superseded, not queued.
func (r *Runtime) BeginRest(entryID primitive.ObjectID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusActive {
		return 0, fmt.Errorf("%w: rest requires an active session", ErrInvalidOperation)
	}
	entry, ok := r.entries[entryID]
	if !ok {
		return 0, fmt.Errorf("%w: entry %s is not part of this plan", ErrInvalidOperation, entryID.Hex())
	}
	if r.suppress[entryID] {
		return 0, fmt.Errorf("%w: entry %s is a superset lead, rest is taken after its pair", ErrInvalidOperation, entryID.Hex())
	}

	// Invalidate any prior countdown's in-flight ticks.
	r.gen++

	if entry.RestSeconds <= 0 {
		// Nothing to count down; back to plain Active immediately.
		r.rest = nil
		return 0, nil
	}

	r.rest = &restCountdown{
		entryID:   entryID,
		remaining: entry.RestSeconds,
		gen:       r.gen,
	}
	r.schedule(r.gen)
	return entry.RestSeconds, nil
}

// schedule arms the next tick. Caller must hold the mutex.
func (r *Runtime) schedule(gen uint64) {
	time.AfterFunc(r.tickInterval, func() { r.tick(gen) })
}

// tick decrements the countdown by one second. Stale ticks (from a canceled
// or superseded countdown, or after Finish) are dropped by the generation
// check, so remaining seconds are strictly ordered and monotonic.
func (r *Runtime) tick(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rest == nil || r.rest.gen != gen || r.status != StatusActive {
		return
	}
	r.rest.remaining--
	if r.rest.remaining <= 0 {
		// Countdown auto-completes; back to plain Active.
		r.rest = nil
		return
	}
	r.schedule(gen)
}

// CancelRest discards the running countdown and returns to plain Active.
func (r *Runtime) CancelRest() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusActive || r.rest == nil {
		return fmt.Errorf("%w: no rest countdown is running", ErrInvalidOperation)
	}
	r.gen++
	r.rest = nil
	return nil
}

// Finish computes the session duration (floor of elapsed minutes), appends
// one workout log, and transitions back to Idle. If the log write fails the
// session stays Active so the trainee can retry.
func (r *Runtime) Finish(ctx context.Context) (*domain.WorkoutLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusActive {
		return nil, fmt.Errorf("%w: finish requires an active session", ErrInvalidOperation)
	}

	now := r.now()
	log := &domain.WorkoutLog{
		OwnerID:         r.ownerID,
		PlanName:        r.planName,
		DurationMinutes: int(now.Sub(r.startedAt).Seconds()) / 60,
		OccurredAt:      now,
	}

	logID, err := r.logRepo.Append(ctx, log)
	if err != nil {
		return nil, err
	}
	log.ID = logID

	r.status = StatusIdle
	r.startedAt = time.Time{}
	r.rest = nil
	r.gen++
	return log, nil
}

// Snapshot returns the current state for display.
func (r *Runtime) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		Status:   r.status,
		PlanName: r.planName,
		OwnerID:  r.ownerID,
	}
	if r.status == StatusActive {
		started := r.startedAt
		snap.StartedAt = &started
		snap.ElapsedSeconds = int(r.now().Sub(r.startedAt).Seconds())
	}
	if r.rest != nil {
		snap.Rest = &RestState{
			EntryID:          r.rest.entryID,
			RemainingSeconds: r.rest.remaining,
		}
	}
	return snap
}
