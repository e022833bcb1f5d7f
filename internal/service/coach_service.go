package service

import (
	"context"
	"errors"

	"ironplan/training-app/internal/domain"
	"ironplan/training-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrTraineeNotFound        = errors.New("trainee user not found")
	ErrTraineeNotRole         = errors.New("user found but is not a trainee")
	ErrTraineeAlreadyAssigned = errors.New("trainee is already assigned to a coach")
	ErrTraineeNotManaged      = errors.New("trainee is not managed by this coach")
)

// --- Service Interface ---
type CoachService interface {
	AddTraineeByEmail(ctx context.Context, coachID primitive.ObjectID, traineeEmail string) (*domain.User, error)
	GetManagedTrainees(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
	// VerifyManages reports whether the trainee belongs to this coach's roster.
	VerifyManages(ctx context.Context, coachID, traineeID primitive.ObjectID) error
}

// --- Service Implementation ---

// coachService implements the CoachService interface.
type coachService struct {
	userRepo repository.UserRepository
}

// NewCoachService creates a new instance of coachService.
func NewCoachService(userRepo repository.UserRepository) CoachService {
	return &coachService{userRepo: userRepo}
}

// AddTraineeByEmail finds a trainee by email and assigns them to the coach.
func (s *coachService) AddTraineeByEmail(ctx context.Context, coachID primitive.ObjectID, traineeEmail string) (*domain.User, error) {
	// 1. Validate Input
	if coachID == primitive.NilObjectID || traineeEmail == "" {
		return nil, errors.New("coach ID and trainee email are required")
	}

	// 2. Find the potential trainee user
	trainee, err := s.userRepo.GetByEmail(ctx, traineeEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTraineeNotFound
		}
		return nil, err
	}

	// 3. Verify the user is actually a trainee
	if trainee.Role != domain.RoleTrainee {
		return nil, ErrTraineeNotRole
	}

	// 4. Check if the trainee is already assigned to any coach
	if trainee.CoachID != nil && *trainee.CoachID != primitive.NilObjectID {
		if *trainee.CoachID == coachID {
			// Already managed by this coach
			return trainee, nil
		}
		return nil, ErrTraineeAlreadyAssigned
	}

	// 5. Assign trainee to coach (update both records)
	err = s.userRepo.AddTraineeIDToCoach(ctx, coachID, trainee.ID)
	if err != nil {
		return nil, err
	}

	err = s.userRepo.SetCoachForTrainee(ctx, trainee.ID, coachID)
	if err != nil {
		// The first write is not rolled back; the error is surfaced instead.
		return nil, err
	}

	trainee.CoachID = &coachID // Update in-memory object for return
	return trainee, nil
}

// GetManagedTrainees retrieves the list of trainees managed by the coach.
func (s *coachService) GetManagedTrainees(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	trainees, err := s.userRepo.GetTraineesByCoachID(ctx, coachID)
	if err != nil {
		return nil, err
	}
	// Clear password hashes before returning
	for i := range trainees {
		trainees[i].PasswordHash = ""
	}
	return trainees, nil
}

// VerifyManages checks that the trainee exists and belongs to this coach.
func (s *coachService) VerifyManages(ctx context.Context, coachID, traineeID primitive.ObjectID) error {
	trainee, err := s.userRepo.GetByID(ctx, traineeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTraineeNotFound
		}
		return err
	}
	if trainee.CoachID == nil || *trainee.CoachID != coachID {
		return ErrTraineeNotManaged
	}
	return nil
}
