package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"ironplan/training-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeLogRepo is an in-memory WorkoutLogRepository whose Append can be made
// to fail, to exercise the finish-retry path.
type fakeLogRepo struct {
	logs      []domain.WorkoutLog
	appendErr error
}

func (f *fakeLogRepo) Append(_ context.Context, log *domain.WorkoutLog) (primitive.ObjectID, error) {
	if f.appendErr != nil {
		return primitive.NilObjectID, f.appendErr
	}
	log.ID = primitive.NewObjectID()
	f.logs = append(f.logs, *log)
	return log.ID, nil
}

func (f *fakeLogRepo) ListByOwner(_ context.Context, ownerID primitive.ObjectID) ([]domain.WorkoutLog, error) {
	var out []domain.WorkoutLog
	for _, l := range f.logs {
		if l.OwnerID == ownerID {
			out = append(out, l)
		}
	}
	return out, nil
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// testPlan builds the canonical two-entry superset plan: A (rest 90, lead)
// followed by B (rest 60, comboWith = A).
func testPlan() (a, b domain.PlanEntry) {
	a = domain.PlanEntry{ID: primitive.NewObjectID(), RestSeconds: 90, Order: 0}
	b = domain.PlanEntry{ID: primitive.NewObjectID(), RestSeconds: 60, Order: 1, ComboWith: &a.ID}
	return a, b
}

// newTestRuntime wires a runtime over the given entries with a fake clock
// and an effectively disabled autonomous timer, so tests drive ticks by hand.
func newTestRuntime(t *testing.T, repo *fakeLogRepo, clock *fakeClock, entries ...domain.PlanEntry) *Runtime {
	t.Helper()
	return NewRuntime(primitive.NewObjectID(), "A", entries, repo,
		WithClock(clock.Now),
		WithTickInterval(time.Hour),
	)
}

// TestRuntime_StartRequiresIdle verifies that Start is only legal from Idle.
func TestRuntime_StartRequiresIdle(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 28, 18, 0, 0, 0, time.UTC)}
	a, b := testPlan()
	r := newTestRuntime(t, &fakeLogRepo{}, clock, a, b)

	if err := r.Start(); err != nil {
		t.Fatalf("Start from Idle failed: %v", err)
	}
	if err := r.Start(); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("second Start: expected ErrInvalidOperation, got %v", err)
	}
	if snap := r.Snapshot(); snap.Status != StatusActive {
		t.Errorf("status = %q, want %q", snap.Status, StatusActive)
	}
}

// TestRuntime_BeginRestSuppressedLead verifies the superset scenario: rest
// on the lead entry is rejected and leaves the session untouched, rest on
// the trailing entry counts down from its own RestSeconds.
func TestRuntime_BeginRestSuppressedLead(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 28, 18, 0, 0, 0, time.UTC)}
	a, b := testPlan()
	r := newTestRuntime(t, &fakeLogRepo{}, clock, a, b)

	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	before := r.Snapshot()

	if _, err := r.BeginRest(a.ID); !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("BeginRest on lead: expected ErrInvalidOperation, got %v", err)
	}
	after := r.Snapshot()
	if after.Rest != nil || after.Status != before.Status {
		t.Error("failed BeginRest must leave the session state unchanged")
	}

	seconds, err := r.BeginRest(b.ID)
	if err != nil {
		t.Fatalf("BeginRest on trailing entry failed: %v", err)
	}
	if seconds != 60 {
		t.Errorf("countdown starts at %d, want 60", seconds)
	}
}

// TestRuntime_BeginRestRequiresActive verifies rest is rejected while Idle.
func TestRuntime_BeginRestRequiresActive(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	a, b := testPlan()
	r := newTestRuntime(t, &fakeLogRepo{}, clock, a, b)

	if _, err := r.BeginRest(b.ID); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("BeginRest while Idle: expected ErrInvalidOperation, got %v", err)
	}
}

// TestRuntime_TickCountsDown verifies that ticks decrement monotonically and
// the countdown auto-completes back to plain Active at zero.
func TestRuntime_TickCountsDown(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	a := domain.PlanEntry{ID: primitive.NewObjectID(), RestSeconds: 3}
	r := newTestRuntime(t, &fakeLogRepo{}, clock, a)

	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := r.BeginRest(a.ID); err != nil {
		t.Fatalf("BeginRest failed: %v", err)
	}
	gen := r.gen

	r.tick(gen)
	if snap := r.Snapshot(); snap.Rest == nil || snap.Rest.RemainingSeconds != 2 {
		t.Fatalf("after one tick remaining = %+v, want 2", snap.Rest)
	}
	r.tick(gen)
	r.tick(gen)
	if snap := r.Snapshot(); snap.Rest != nil {
		t.Errorf("countdown should auto-complete at zero, still %+v", snap.Rest)
	}
	if snap := r.Snapshot(); snap.Status != StatusActive {
		t.Errorf("status after countdown = %q, want %q", snap.Status, StatusActive)
	}
}

// TestRuntime_StaleTickAfterCancel verifies that a tick scheduled before
// CancelRest is invalidated: it must not decrement anything.
func TestRuntime_StaleTickAfterCancel(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	a := domain.PlanEntry{ID: primitive.NewObjectID(), RestSeconds: 30}
	r := newTestRuntime(t, &fakeLogRepo{}, clock, a)

	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := r.BeginRest(a.ID); err != nil {
		t.Fatalf("BeginRest failed: %v", err)
	}
	staleGen := r.gen

	if err := r.CancelRest(); err != nil {
		t.Fatalf("CancelRest failed: %v", err)
	}
	r.tick(staleGen) // in-flight tick from the canceled countdown

	if snap := r.Snapshot(); snap.Rest != nil {
		t.Errorf("stale tick revived a canceled countdown: %+v", snap.Rest)
	}
}

// TestRuntime_NewRestSupersedesOld verifies that starting a new countdown
// invalidates the previous one instead of queueing, and stale ticks from
// the old countdown cannot touch the new one.
func TestRuntime_NewRestSupersedesOld(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	a := domain.PlanEntry{ID: primitive.NewObjectID(), RestSeconds: 30}
	b := domain.PlanEntry{ID: primitive.NewObjectID(), RestSeconds: 45}
	r := newTestRuntime(t, &fakeLogRepo{}, clock, a, b)

	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := r.BeginRest(a.ID); err != nil {
		t.Fatalf("BeginRest(a) failed: %v", err)
	}
	staleGen := r.gen

	if _, err := r.BeginRest(b.ID); err != nil {
		t.Fatalf("BeginRest(b) failed: %v", err)
	}
	r.tick(staleGen)

	snap := r.Snapshot()
	if snap.Rest == nil || snap.Rest.EntryID != b.ID {
		t.Fatalf("active countdown = %+v, want entry b", snap.Rest)
	}
	if snap.Rest.RemainingSeconds != 45 {
		t.Errorf("stale tick decremented the new countdown: remaining = %d, want 45", snap.Rest.RemainingSeconds)
	}
}

// TestRuntime_CancelRestRequiresCountdown verifies CancelRest outside a
// countdown is rejected.
func TestRuntime_CancelRestRequiresCountdown(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	a, b := testPlan()
	r := newTestRuntime(t, &fakeLogRepo{}, clock, a, b)

	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := r.CancelRest(); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("CancelRest without countdown: expected ErrInvalidOperation, got %v", err)
	}
}

// TestRuntime_FinishFloorsDuration verifies that 125 elapsed seconds log as
// 2 minutes (floor, not round) and exactly one log record is written.
func TestRuntime_FinishFloorsDuration(t *testing.T) {
	start := time.Date(2026, 8, 28, 18, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: start}
	repo := &fakeLogRepo{}
	a, b := testPlan()
	r := newTestRuntime(t, repo, clock, a, b)

	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	clock.Advance(125 * time.Second)

	log, err := r.Finish(context.Background())
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if log.DurationMinutes != 2 {
		t.Errorf("DurationMinutes = %d, want 2 (floor of 125s)", log.DurationMinutes)
	}
	if !log.OccurredAt.Equal(start.Add(125 * time.Second)) {
		t.Errorf("OccurredAt = %s, want finish time", log.OccurredAt)
	}
	if len(repo.logs) != 1 {
		t.Fatalf("wrote %d logs, want exactly 1", len(repo.logs))
	}
	if snap := r.Snapshot(); snap.Status != StatusIdle {
		t.Errorf("status after Finish = %q, want %q", snap.Status, StatusIdle)
	}
}

// TestRuntime_FinishRepoFailureKeepsSessionActive verifies that a failed log
// write surfaces the error and leaves the session Active so the trainee can
// retry Finish without losing the session.
func TestRuntime_FinishRepoFailureKeepsSessionActive(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	repo := &fakeLogRepo{appendErr: context.DeadlineExceeded}
	a, b := testPlan()
	r := newTestRuntime(t, repo, clock, a, b)

	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	clock.Advance(10 * time.Minute)

	if _, err := r.Finish(context.Background()); err == nil {
		t.Fatal("Finish with failing repo: expected error, got nil")
	}
	if snap := r.Snapshot(); snap.Status != StatusActive {
		t.Fatalf("status after failed Finish = %q, want %q", snap.Status, StatusActive)
	}

	// Retry once the repository recovers.
	repo.appendErr = nil
	log, err := r.Finish(context.Background())
	if err != nil {
		t.Fatalf("Finish retry failed: %v", err)
	}
	if log.DurationMinutes != 10 {
		t.Errorf("DurationMinutes = %d, want 10", log.DurationMinutes)
	}
}

// TestRuntime_FinishRequiresActive verifies Finish from Idle is rejected.
func TestRuntime_FinishRequiresActive(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	a, b := testPlan()
	r := newTestRuntime(t, &fakeLogRepo{}, clock, a, b)

	if _, err := r.Finish(context.Background()); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("Finish while Idle: expected ErrInvalidOperation, got %v", err)
	}
}

// TestRuntime_ZeroRestCompletesImmediately verifies that an entry with no
// rest interval returns straight to plain Active.
func TestRuntime_ZeroRestCompletesImmediately(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	a := domain.PlanEntry{ID: primitive.NewObjectID(), RestSeconds: 0}
	r := newTestRuntime(t, &fakeLogRepo{}, clock, a)

	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	seconds, err := r.BeginRest(a.ID)
	if err != nil {
		t.Fatalf("BeginRest failed: %v", err)
	}
	if seconds != 0 {
		t.Errorf("restSeconds = %d, want 0", seconds)
	}
	if snap := r.Snapshot(); snap.Rest != nil {
		t.Errorf("zero-rest entry left a countdown running: %+v", snap.Rest)
	}
}

// TestRuntime_RealTimerTick exercises the scheduled AfterFunc path with a
// short interval to confirm the countdown progresses without manual ticks.
func TestRuntime_RealTimerTick(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	a := domain.PlanEntry{ID: primitive.NewObjectID(), RestSeconds: 2}
	r := NewRuntime(primitive.NewObjectID(), "A", []domain.PlanEntry{a}, &fakeLogRepo{},
		WithClock(clock.Now),
		WithTickInterval(5*time.Millisecond),
	)

	if err := r.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := r.BeginRest(a.ID); err != nil {
		t.Fatalf("BeginRest failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if r.Snapshot().Rest == nil {
			return // countdown completed on its own
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("countdown did not complete within the deadline")
}
