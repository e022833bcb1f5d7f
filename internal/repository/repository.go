package repository

import (
	"context"

	"ironplan/training-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	AddTraineeIDToCoach(ctx context.Context, coachID, traineeID primitive.ObjectID) error
	GetTraineesByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
	SetCoachForTrainee(ctx context.Context, traineeID, coachID primitive.ObjectID) error
}

// ExerciseRepository defines the interface for interacting with the exercise catalog.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error // Ensure coach owns the exercise
}

// PlanEntryRepository defines the interface for interacting with plan entries.
type PlanEntryRepository interface {
	Create(ctx context.Context, entry *domain.PlanEntry) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanEntry, error)
	// ListByPlan returns all entries of one (owner, plan) ordered by Order then ID.
	ListByPlan(ctx context.Context, ownerID primitive.ObjectID, planName string) ([]domain.PlanEntry, error)
	UpdateOrder(ctx context.Context, id primitive.ObjectID, order int) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// DeletePlan removes every entry of the (owner, plan) and returns how many were removed.
	DeletePlan(ctx context.Context, ownerID primitive.ObjectID, planName string) (int64, error)
}

// WorkoutLogRepository defines the interface for interacting with session logs.
type WorkoutLogRepository interface {
	Append(ctx context.Context, log *domain.WorkoutLog) (primitive.ObjectID, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]domain.WorkoutLog, error)
}
