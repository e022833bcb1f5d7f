package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"ironplan/training-app/internal/domain"
	"ironplan/training-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakePlanRepo serves a fixed set of plan entries keyed by owner and plan name.
type fakePlanRepo struct {
	entries map[string][]domain.PlanEntry
}

func planKey(ownerID primitive.ObjectID, planName string) string {
	return ownerID.Hex() + "/" + planName
}

func (f *fakePlanRepo) Create(_ context.Context, _ *domain.PlanEntry) (primitive.ObjectID, error) {
	return primitive.NilObjectID, errors.New("not implemented")
}

func (f *fakePlanRepo) GetByID(_ context.Context, _ primitive.ObjectID) (*domain.PlanEntry, error) {
	return nil, repository.ErrNotFound
}

func (f *fakePlanRepo) ListByPlan(_ context.Context, ownerID primitive.ObjectID, planName string) ([]domain.PlanEntry, error) {
	return f.entries[planKey(ownerID, planName)], nil
}

func (f *fakePlanRepo) UpdateOrder(_ context.Context, _ primitive.ObjectID, _ int) error {
	return errors.New("not implemented")
}

func (f *fakePlanRepo) Delete(_ context.Context, _ primitive.ObjectID) error {
	return errors.New("not implemented")
}

func (f *fakePlanRepo) DeletePlan(_ context.Context, _ primitive.ObjectID, _ string) (int64, error) {
	return 0, errors.New("not implemented")
}

func newTestManager(planRepo *fakePlanRepo, logRepo *fakeLogRepo) *Manager {
	return NewManager(planRepo, logRepo, WithTickInterval(time.Hour))
}

// TestManager_StartRejectsSecondSession verifies one active session per
// trainee, while a different trainee can still start their own.
func TestManager_StartRejectsSecondSession(t *testing.T) {
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	planRepo := &fakePlanRepo{entries: map[string][]domain.PlanEntry{
		planKey(alice, "A"): {{ID: primitive.NewObjectID(), RestSeconds: 60}},
		planKey(alice, "B"): {{ID: primitive.NewObjectID(), RestSeconds: 90}},
		planKey(bob, "A"):   {{ID: primitive.NewObjectID(), RestSeconds: 30}},
	}}
	m := newTestManager(planRepo, &fakeLogRepo{})

	snap, err := m.Start(context.Background(), alice, "A")
	if err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	if snap.Status != StatusActive || snap.PlanName != "A" {
		t.Errorf("snapshot = %+v, want active plan A", snap)
	}

	if _, err := m.Start(context.Background(), alice, "B"); !errors.Is(err, ErrSessionActive) {
		t.Errorf("second Start for same trainee: expected ErrSessionActive, got %v", err)
	}
	if _, err := m.Start(context.Background(), bob, "A"); err != nil {
		t.Errorf("Start for a different trainee failed: %v", err)
	}
}

// TestManager_StartEmptyPlan verifies that a plan slot without entries
// cannot be started.
func TestManager_StartEmptyPlan(t *testing.T) {
	m := newTestManager(&fakePlanRepo{entries: map[string][]domain.PlanEntry{}}, &fakeLogRepo{})

	if _, err := m.Start(context.Background(), primitive.NewObjectID(), "A"); !errors.Is(err, ErrNoPlanEntries) {
		t.Errorf("Start on empty plan: expected ErrNoPlanEntries, got %v", err)
	}
}

// TestManager_FinishReleasesRuntime verifies that after a successful Finish
// the trainee has no session and can start a new one.
func TestManager_FinishReleasesRuntime(t *testing.T) {
	trainee := primitive.NewObjectID()
	planRepo := &fakePlanRepo{entries: map[string][]domain.PlanEntry{
		planKey(trainee, "A"): {{ID: primitive.NewObjectID(), RestSeconds: 60}},
	}}
	logRepo := &fakeLogRepo{}
	m := newTestManager(planRepo, logRepo)

	if _, err := m.Start(context.Background(), trainee, "A"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	log, err := m.Finish(context.Background(), trainee)
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if log.PlanName != "A" || log.OwnerID != trainee {
		t.Errorf("log = %+v, want plan A owned by the trainee", log)
	}

	if _, err := m.Status(trainee); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("Status after Finish: expected ErrNoActiveSession, got %v", err)
	}
	if _, err := m.Start(context.Background(), trainee, "A"); err != nil {
		t.Errorf("Start after Finish failed: %v", err)
	}
}

// TestManager_FinishFailureKeepsRuntime verifies that a failed log write
// leaves the session registered and Active so Finish can be retried.
func TestManager_FinishFailureKeepsRuntime(t *testing.T) {
	trainee := primitive.NewObjectID()
	planRepo := &fakePlanRepo{entries: map[string][]domain.PlanEntry{
		planKey(trainee, "A"): {{ID: primitive.NewObjectID(), RestSeconds: 60}},
	}}
	logRepo := &fakeLogRepo{appendErr: context.DeadlineExceeded}
	m := newTestManager(planRepo, logRepo)

	if _, err := m.Start(context.Background(), trainee, "A"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := m.Finish(context.Background(), trainee); err == nil {
		t.Fatal("Finish with failing repo: expected error, got nil")
	}

	snap, err := m.Status(trainee)
	if err != nil {
		t.Fatalf("Status after failed Finish: %v", err)
	}
	if snap.Status != StatusActive {
		t.Errorf("status = %q, want %q", snap.Status, StatusActive)
	}

	logRepo.appendErr = nil
	if _, err := m.Finish(context.Background(), trainee); err != nil {
		t.Errorf("Finish retry failed: %v", err)
	}
}

// TestManager_OperationsWithoutSession verifies the no-session error paths.
func TestManager_OperationsWithoutSession(t *testing.T) {
	m := newTestManager(&fakePlanRepo{}, &fakeLogRepo{})
	trainee := primitive.NewObjectID()

	if _, err := m.BeginRest(trainee, primitive.NewObjectID()); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("BeginRest: expected ErrNoActiveSession, got %v", err)
	}
	if err := m.CancelRest(trainee); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("CancelRest: expected ErrNoActiveSession, got %v", err)
	}
	if _, err := m.Finish(context.Background(), trainee); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("Finish: expected ErrNoActiveSession, got %v", err)
	}
}
