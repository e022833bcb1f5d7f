package api

import (
	"errors"
	"net/http"
	"time"

	"ironplan/training-app/internal/domain"
	"ironplan/training-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- DTOs for API (Data Transfer Objects) ---

// CreateExerciseRequest defines the expected JSON for creating an exercise.
type CreateExerciseRequest struct {
	Name             string `json:"name" binding:"required"`
	MuscleGroup      string `json:"muscleGroup" binding:"omitempty"`      // e.g., "Chest", "Legs"
	ExecutionTechnic string `json:"executionTechnic" binding:"omitempty"` // How to do it
	Difficulty       string `json:"difficulty" binding:"omitempty"`       // e.g., "Novice", "Medium", "Advanced"
}

// RequestMediaUploadRequest asks for a presigned URL to upload a demo clip.
type RequestMediaUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

// ConfirmMediaUploadRequest reports the object key back after the upload.
type ConfirmMediaUploadRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

// ExerciseResponse is the DTO for returning exercise details.
type ExerciseResponse struct {
	ID               string    `json:"id"`
	CoachID          string    `json:"coachId"`
	Name             string    `json:"name"`
	MuscleGroup      string    `json:"muscleGroup,omitempty"`
	ExecutionTechnic string    `json:"executionTechnic,omitempty"`
	Difficulty       string    `json:"difficulty,omitempty"`
	HasMedia         bool      `json:"hasMedia"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
func MapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	return ExerciseResponse{
		ID:               ex.ID.Hex(),
		CoachID:          ex.CoachID.Hex(),
		Name:             ex.Name,
		MuscleGroup:      ex.MuscleGroup,
		ExecutionTechnic: ex.ExecutionTechnic,
		Difficulty:       ex.Difficulty,
		HasMedia:         ex.MediaObjectKey != "",
		CreatedAt:        ex.CreatedAt,
		UpdatedAt:        ex.UpdatedAt,
	}
}

// MapExercisesToResponse converts a slice of domain.Exercise to response DTOs.
func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i, ex := range exercises {
		responses[i] = MapExerciseToResponse(&ex)
	}
	return responses
}

// --- Handler Methods ---

// CreateExercise godoc
// @Summary Create a new exercise
// @Description Creates a new catalog exercise for the authenticated coach.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body CreateExerciseRequest true "Exercise details"
// @Success 201 {object} ExerciseResponse
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Router /exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), coachID, req.Name, req.MuscleGroup, req.ExecutionTechnic, req.Difficulty)
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create exercise.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

// GetCoachExercises lists the catalog of the authenticated coach.
func (h *ExerciseHandler) GetCoachExercises(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}

	exercises, err := h.exerciseService.GetExercisesByCoach(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve exercises.")
		return
	}

	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// UpdateExercise replaces the mutable fields of a catalog exercise.
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	exercise, err := h.exerciseService.UpdateExercise(c.Request.Context(), coachID, exerciseID, req.Name, req.MuscleGroup, req.ExecutionTechnic, req.Difficulty)
	if err != nil {
		mapExerciseError(c, err)
		return
	}

	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// DeleteExercise removes a catalog exercise and its media object.
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	if err := h.exerciseService.DeleteExercise(c.Request.Context(), coachID, exerciseID); err != nil {
		mapExerciseError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RequestMediaUpload returns a presigned PUT URL for the demo clip.
func (h *ExerciseHandler) RequestMediaUpload(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	var req RequestMediaUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	resp, err := h.exerciseService.RequestMediaUploadURL(c.Request.Context(), coachID, exerciseID, req.ContentType)
	if err != nil {
		mapExerciseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ConfirmMediaUpload records the uploaded object key on the exercise.
func (h *ExerciseHandler) ConfirmMediaUpload(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	var req ConfirmMediaUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	exercise, err := h.exerciseService.ConfirmMediaUpload(c.Request.Context(), coachID, exerciseID, req.ObjectKey)
	if err != nil {
		mapExerciseError(c, err)
		return
	}

	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// GetMediaURL returns a temporary view URL for an exercise's demo clip.
// Available to coaches and trainees.
func (h *ExerciseHandler) GetMediaURL(c *gin.Context) {
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	url, err := h.exerciseService.GetMediaDownloadURL(c.Request.Context(), exerciseID)
	if err != nil {
		if errors.Is(err, service.ErrMediaMissing) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			mapExerciseError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

func mapExerciseError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrExerciseNotFound) {
		abortWithError(c, http.StatusNotFound, err.Error())
	} else if errors.Is(err, service.ErrExerciseAccessDenied) {
		abortWithError(c, http.StatusForbidden, err.Error())
	} else if errors.Is(err, service.ErrValidationFailed) {
		abortWithError(c, http.StatusBadRequest, err.Error())
	} else {
		abortWithError(c, http.StatusInternalServerError, "Exercise operation failed.")
	}
}
