package session

import (
	"context"
	"errors"
	"sync"

	"ironplan/training-app/internal/domain"
	"ironplan/training-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrNoPlanEntries   = errors.New("plan has no entries to run")
	ErrNoActiveSession = errors.New("no active session for this trainee")
	ErrSessionActive   = errors.New("a session is already active for this trainee")
)

// Manager owns at most one Runtime per trainee, looked up by owner id. A
// trainee cannot run two sessions at once.
type Manager struct {
	mu       sync.Mutex
	runtimes map[primitive.ObjectID]*Runtime

	planRepo repository.PlanEntryRepository
	logRepo  repository.WorkoutLogRepository
	opts     []Option
}

// NewManager creates a session manager backed by the plan and log repositories.
// Extra options are forwarded to every Runtime it creates.
func NewManager(planRepo repository.PlanEntryRepository, logRepo repository.WorkoutLogRepository, opts ...Option) *Manager {
	return &Manager{
		runtimes: make(map[primitive.ObjectID]*Runtime),
		planRepo: planRepo,
		logRepo:  logRepo,
		opts:     opts,
	}
}

// Start loads the plan slot and starts a session over it. Fails if the
// trainee already has an active session or the slot is empty.
func (m *Manager) Start(ctx context.Context, ownerID primitive.ObjectID, planName string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.runtimes[ownerID]; ok && existing.Snapshot().Status == StatusActive {
		return Snapshot{}, ErrSessionActive
	}

	entries, err := m.planRepo.ListByPlan(ctx, ownerID, planName)
	if err != nil {
		return Snapshot{}, err
	}
	if len(entries) == 0 {
		return Snapshot{}, ErrNoPlanEntries
	}

	runtime := NewRuntime(ownerID, planName, entries, m.logRepo, m.opts...)
	if err := runtime.Start(); err != nil {
		return Snapshot{}, err
	}
	m.runtimes[ownerID] = runtime
	return runtime.Snapshot(), nil
}

// get returns the trainee's runtime, active or not.
func (m *Manager) get(ownerID primitive.ObjectID) (*Runtime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	runtime, ok := m.runtimes[ownerID]
	if !ok {
		return nil, ErrNoActiveSession
	}
	return runtime, nil
}

// BeginRest starts the rest countdown for one entry of the running session.
func (m *Manager) BeginRest(ownerID, entryID primitive.ObjectID) (int, error) {
	runtime, err := m.get(ownerID)
	if err != nil {
		return 0, err
	}
	return runtime.BeginRest(entryID)
}

// CancelRest discards the running countdown.
func (m *Manager) CancelRest(ownerID primitive.ObjectID) error {
	runtime, err := m.get(ownerID)
	if err != nil {
		return err
	}
	return runtime.CancelRest()
}

// Finish ends the session and emits the workout log. The runtime is only
// released once the log write succeeded; on failure it stays registered and
// Active so the trainee can retry.
func (m *Manager) Finish(ctx context.Context, ownerID primitive.ObjectID) (*domain.WorkoutLog, error) {
	runtime, err := m.get(ownerID)
	if err != nil {
		return nil, err
	}

	log, err := runtime.Finish(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	delete(m.runtimes, ownerID)
	m.mu.Unlock()
	return log, nil
}

// Status returns the current snapshot of the trainee's session.
func (m *Manager) Status(ownerID primitive.ObjectID) (Snapshot, error) {
	runtime, err := m.get(ownerID)
	if err != nil {
		return Snapshot{}, err
	}
	return runtime.Snapshot(), nil
}
