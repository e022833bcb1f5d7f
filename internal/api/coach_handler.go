// internal/api/coach_handler.go
package api

import (
	"errors"
	"net/http"

	"ironplan/training-app/internal/service"

	"github.com/gin-gonic/gin"
)

type CoachHandler struct {
	coachService service.CoachService
}

func NewCoachHandler(coachService service.CoachService) *CoachHandler {
	return &CoachHandler{coachService: coachService}
}

// --- DTOs ---

type AddTraineeRequest struct {
	TraineeEmail string `json:"traineeEmail" binding:"required,email"`
}

// --- Handler Methods ---

// AddTraineeByEmail godoc
// @Summary Add a trainee to the coach's roster by email
// @Description Associates an existing trainee user with the authenticated coach.
// @Tags Coach
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param traineeRequest body AddTraineeRequest true "Trainee's email"
// @Success 200 {object} UserResponse "Trainee successfully added/associated"
// @Failure 403 {object} gin.H "User is not a trainee, or already has a coach"
// @Failure 404 {object} gin.H "Trainee not found"
// @Router /coach/trainees [post]
func (h *CoachHandler) AddTraineeByEmail(c *gin.Context) {
	var req AddTraineeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}

	trainee, err := h.coachService.AddTraineeByEmail(c.Request.Context(), coachID, req.TraineeEmail)
	if err != nil {
		if errors.Is(err, service.ErrTraineeNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrTraineeNotRole) || errors.Is(err, service.ErrTraineeAlreadyAssigned) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to add trainee.")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(trainee))
}

// GetManagedTrainees retrieves the roster of the authenticated coach.
func (h *CoachHandler) GetManagedTrainees(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}

	trainees, err := h.coachService.GetManagedTrainees(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve managed trainees.")
		return
	}

	if trainees == nil {
		c.JSON(http.StatusOK, []UserResponse{}) // Return empty JSON array, not null
		return
	}
	responses := make([]UserResponse, len(trainees))
	for i := range trainees {
		responses[i] = MapUserToResponse(&trainees[i])
	}
	c.JSON(http.StatusOK, responses)
}
