package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"ironplan/training-app/internal/domain"
	"ironplan/training-app/internal/repository"
	"ironplan/training-app/internal/storage"

	"github.com/google/uuid" // For generating unique identifiers for S3 keys
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound     = errors.New("exercise not found")
	ErrExerciseAccessDenied = errors.New("access denied to modify or delete this exercise")
	ErrValidationFailed     = errors.New("exercise validation failed")
	ErrMediaURLError        = errors.New("failed to generate media URL")
	ErrMediaMissing         = errors.New("exercise has no media attached")
)

// MediaUploadResponse carries the presigned URL and the object key the coach
// reports back on confirm.
type MediaUploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// --- Service Interface ---
type ExerciseService interface {
	CreateExercise(ctx context.Context, coachID primitive.ObjectID, name, muscleGroup, executionTechnic, difficulty string) (*domain.Exercise, error)
	GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	GetExercisesByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID, name, muscleGroup, executionTechnic, difficulty string) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID) error

	// Media flow: the coach uploads the demo clip straight to object storage
	// via a presigned URL, then confirms; trainees fetch a temporary view URL.
	RequestMediaUploadURL(ctx context.Context, coachID, exerciseID primitive.ObjectID, contentType string) (*MediaUploadResponse, error)
	ConfirmMediaUpload(ctx context.Context, coachID, exerciseID primitive.ObjectID, objectKey string) (*domain.Exercise, error)
	GetMediaDownloadURL(ctx context.Context, exerciseID primitive.ObjectID) (string, error)
}

// --- Service Implementation ---

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	fileStorage  storage.FileStorage
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, fileStorage storage.FileStorage) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		fileStorage:  fileStorage,
	}
}

// CreateExercise handles the creation of a new catalog exercise by a coach.
func (s *exerciseService) CreateExercise(ctx context.Context, coachID primitive.ObjectID, name, muscleGroup, executionTechnic, difficulty string) (*domain.Exercise, error) {
	if name == "" {
		return nil, ErrValidationFailed
	}
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required to create an exercise")
	}

	exercise := &domain.Exercise{
		CoachID:          coachID,
		Name:             name,
		MuscleGroup:      muscleGroup,
		ExecutionTechnic: executionTechnic,
		Difficulty:       difficulty,
	}

	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	exercise.ID = exerciseID
	// Fetch again to get the repository-populated timestamps
	return s.exerciseRepo.GetByID(ctx, exerciseID)
}

// GetExerciseByID retrieves a single exercise.
func (s *exerciseService) GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// GetExercisesByCoach retrieves all exercises for a specific coach.
func (s *exerciseService) GetExercisesByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.Exercise, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID cannot be nil")
	}
	return s.exerciseRepo.GetByCoachID(ctx, coachID)
}

// UpdateExercise handles updating an existing exercise, ensuring ownership.
func (s *exerciseService) UpdateExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID, name, muscleGroup, executionTechnic, difficulty string) (*domain.Exercise, error) {
	if name == "" {
		return nil, ErrValidationFailed
	}
	if coachID == primitive.NilObjectID || exerciseID == primitive.NilObjectID {
		return nil, errors.New("coach ID and exercise ID are required")
	}

	existing, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if existing.CoachID != coachID {
		return nil, ErrExerciseAccessDenied
	}

	existing.Name = name
	existing.MuscleGroup = muscleGroup
	existing.ExecutionTechnic = executionTechnic
	existing.Difficulty = difficulty

	if err := s.exerciseRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return s.exerciseRepo.GetByID(ctx, exerciseID)
}

// DeleteExercise removes an exercise and any attached media object.
func (s *exerciseService) DeleteExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID) error {
	if coachID == primitive.NilObjectID || exerciseID == primitive.NilObjectID {
		return errors.New("coach ID and exercise ID are required")
	}

	existing, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	if existing.CoachID != coachID {
		return ErrExerciseAccessDenied
	}

	if err := s.exerciseRepo.Delete(ctx, exerciseID, coachID); err != nil {
		return err
	}

	// Best-effort cleanup; the catalog record is already gone.
	if existing.MediaObjectKey != "" {
		_ = s.fileStorage.DeleteObject(ctx, existing.MediaObjectKey)
	}
	return nil
}

// RequestMediaUploadURL generates a presigned URL for a coach to upload a demo clip.
func (s *exerciseService) RequestMediaUploadURL(ctx context.Context, coachID, exerciseID primitive.ObjectID, contentType string) (*MediaUploadResponse, error) {
	if coachID == primitive.NilObjectID || exerciseID == primitive.NilObjectID {
		return nil, errors.New("coach ID and exercise ID are required")
	}
	lower := strings.ToLower(contentType)
	if contentType == "" || (!strings.HasPrefix(lower, "video/") && !strings.HasPrefix(lower, "image/")) {
		return nil, errors.New("invalid or missing media content type")
	}

	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if exercise.CoachID != coachID {
		return nil, ErrExerciseAccessDenied
	}

	// Unique object key: exercises/{exerciseId}/{uuid}{ext}
	ext := extensionForContentType(lower)
	objectKey := path.Join("exercises", exerciseID.Hex(), uuid.NewString()+ext)

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrMediaURLError
	}

	return &MediaUploadResponse{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
	}, nil
}

// ConfirmMediaUpload records the uploaded object key on the exercise,
// replacing (and deleting) any previous media object.
func (s *exerciseService) ConfirmMediaUpload(ctx context.Context, coachID, exerciseID primitive.ObjectID, objectKey string) (*domain.Exercise, error) {
	if objectKey == "" {
		return nil, errors.New("object key is required")
	}
	// Keys are generated by RequestMediaUploadURL under this prefix only.
	if !strings.HasPrefix(objectKey, path.Join("exercises", exerciseID.Hex())+"/") {
		return nil, fmt.Errorf("object key %q does not belong to exercise %s", objectKey, exerciseID.Hex())
	}

	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if exercise.CoachID != coachID {
		return nil, ErrExerciseAccessDenied
	}

	previousKey := exercise.MediaObjectKey
	exercise.MediaObjectKey = objectKey
	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		return nil, err
	}

	if previousKey != "" && previousKey != objectKey {
		_ = s.fileStorage.DeleteObject(ctx, previousKey)
	}
	return exercise, nil
}

// GetMediaDownloadURL returns a temporary view URL for the exercise's media.
func (s *exerciseService) GetMediaDownloadURL(ctx context.Context, exerciseID primitive.ObjectID) (string, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrExerciseNotFound
		}
		return "", err
	}
	if exercise.MediaObjectKey == "" {
		return "", ErrMediaMissing
	}

	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, exercise.MediaObjectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", ErrMediaURLError
	}
	return url, nil
}

func extensionForContentType(contentType string) string {
	switch contentType {
	case "video/mp4":
		return ".mp4"
	case "video/quicktime":
		return ".mov"
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	default:
		return ""
	}
}
