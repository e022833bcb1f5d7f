// internal/api/plan_handler.go
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

// PlanHandler exposes the coach-side plan building operations.
type PlanHandler struct {
	planService  service.PlanService
	coachService service.CoachService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService service.PlanService, coachService service.CoachService) *PlanHandler {
	return &PlanHandler{
		planService:  planService,
		coachService: coachService,
	}
}

// --- DTOs ---

// AddPlanEntryRequest defines the expected JSON for appending an entry to a
// trainee's plan slot.
type AddPlanEntryRequest struct {
	ExerciseID     string  `json:"exerciseId" binding:"required"`
	SetCount       int     `json:"setCount" binding:"required"`
	RepSchemeKind  string  `json:"repSchemeKind" binding:"required,oneof=fixed timed pyramid"`
	RepSchemeValue string  `json:"repSchemeValue" binding:"required"` // Flat form; pyramid values joined with " - "
	Load           string  `json:"load"`
	RestSeconds    int     `json:"restSeconds"`
	Note           string  `json:"note"`
	ComboWithID    *string `json:"comboWithId"`
	ValidityDays   *int    `json:"validityDays"`
}

// ReorderPlanRequest lists the slot's entry ids in their new execution order.
type ReorderPlanRequest struct {
	EntryIDs []string `json:"entryIds" binding:"required,min=1"`
}

// PlanEntryResponse is the DTO for one plan entry, including the fields
// derived for the trainee view (suppressRest, validity, exercise name).
type PlanEntryResponse struct {
	ID           string     `json:"id"`
	OwnerID      string     `json:"ownerId"`
	PlanName     string     `json:"planName"`
	ExerciseID   string     `json:"exerciseId"`
	ExerciseName string     `json:"exerciseName,omitempty"`
	SetCount     int        `json:"setCount"`
	RepScheme    string     `json:"repScheme"`
	RepKind      string     `json:"repKind"`
	Load         string     `json:"load,omitempty"`
	RestSeconds  int        `json:"restSeconds"`
	Note         string     `json:"note,omitempty"`
	ComboWith    *string    `json:"comboWith,omitempty"`
	SuppressRest bool       `json:"suppressRest"`
	ExpiresOn    *time.Time `json:"expiresOn,omitempty"`
	Validity     string     `json:"validity,omitempty"`
	Order        int        `json:"order"`
}

func mapEntryToResponse(entry *domain.PlanEntry, exerciseName string, suppressRest bool, validity domain.ValidityStatus) PlanEntryResponse {
	encoded, _ := entry.RepScheme.Encode(entry.SetCount)
	resp := PlanEntryResponse{
		ID:           entry.ID.Hex(),
		OwnerID:      entry.OwnerID.Hex(),
		PlanName:     entry.PlanName,
		ExerciseID:   entry.ExerciseID.Hex(),
		ExerciseName: exerciseName,
		SetCount:     entry.SetCount,
		RepScheme:    encoded,
		RepKind:      string(entry.RepScheme.Kind),
		Load:         entry.Load,
		RestSeconds:  entry.RestSeconds,
		Note:         entry.Note,
		SuppressRest: suppressRest,
		ExpiresOn:    entry.ExpiresOn,
		Validity:     string(validity),
		Order:        entry.Order,
	}
	if entry.ComboWith != nil {
		hex := entry.ComboWith.Hex()
		resp.ComboWith = &hex
	}
	return resp
}

// --- Handler Methods ---

// AddPlanEntry godoc
// @Summary Append an exercise entry to a trainee's plan slot
// @Description Validates the entry (set count, rest bounds, rep scheme, combo reference) and appends it.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param traineeId path string true "Trainee ID"
// @Param planName path string true "Plan slot name, e.g. A"
// @Param entry body AddPlanEntryRequest true "Entry details"
// @Success 201 {object} PlanEntryResponse
// @Failure 400 {object} gin.H "Validation error"
// @Failure 403 {object} gin.H "Trainee not managed by this coach"
// @Router /coach/trainees/{traineeId}/plans/{planName}/entries [post]
func (h *PlanHandler) AddPlanEntry(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	traineeID, err := primitive.ObjectIDFromHex(c.Param("traineeId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainee ID format.")
		return
	}
	planName := c.Param("planName")

	var req AddPlanEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	exerciseID, err := primitive.ObjectIDFromHex(req.ExerciseID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	if err := h.coachService.VerifyManages(c.Request.Context(), coachID, traineeID); err != nil {
		mapRosterError(c, err)
		return
	}

	scheme, err := domain.DecodeRepScheme(req.RepSchemeValue, domain.RepSchemeKind(req.RepSchemeKind), req.SetCount)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	input := service.AddEntryInput{
		OwnerID:      traineeID,
		CoachID:      coachID,
		PlanName:     planName,
		ExerciseID:   exerciseID,
		SetCount:     req.SetCount,
		RepScheme:    scheme,
		Load:         req.Load,
		RestSeconds:  req.RestSeconds,
		Note:         req.Note,
		ValidityDays: req.ValidityDays,
	}
	if req.ComboWithID != nil {
		comboID, err := primitive.ObjectIDFromHex(*req.ComboWithID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid combo reference ID format.")
			return
		}
		input.ComboWithID = &comboID
	}

	entry, err := h.planService.AddEntry(c.Request.Context(), input)
	if err != nil {
		var validationErr domain.ValidationError
		if errors.As(err, &validationErr) {
			abortWithError(c, http.StatusBadRequest, validationErr.Error())
		} else if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to add plan entry.")
		}
		return
	}

	c.JSON(http.StatusCreated, mapEntryToResponse(entry, "", false, domain.ClassifyValidity(entry.ExpiresOn, time.Now().UTC())))
}

// GetPlanEntries returns the ordered plan slot for a managed trainee.
func (h *PlanHandler) GetPlanEntries(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	traineeID, err := primitive.ObjectIDFromHex(c.Param("traineeId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainee ID format.")
		return
	}

	if err := h.coachService.VerifyManages(c.Request.Context(), coachID, traineeID); err != nil {
		mapRosterError(c, err)
		return
	}

	details, err := h.planService.ListEntries(c.Request.Context(), traineeID, c.Param("planName"))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list plan entries.")
		return
	}

	c.JSON(http.StatusOK, mapDetailsToResponses(details))
}

// ReorderPlan rewrites the execution order of a plan slot.
func (h *PlanHandler) ReorderPlan(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	traineeID, err := primitive.ObjectIDFromHex(c.Param("traineeId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainee ID format.")
		return
	}

	var req ReorderPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	orderedIDs := make([]primitive.ObjectID, 0, len(req.EntryIDs))
	for _, raw := range req.EntryIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid entry ID format: "+raw)
			return
		}
		orderedIDs = append(orderedIDs, id)
	}

	err = h.planService.Reorder(c.Request.Context(), coachID, traineeID, c.Param("planName"), orderedIDs)
	if err != nil {
		if errors.Is(err, service.ErrReorderMismatch) || errors.Is(err, service.ErrPlanEmpty) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else if errors.Is(err, service.ErrEntryAccessDenied) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to reorder plan.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// DeletePlanEntry removes one entry. Entries still referenced as a superset
// lead are rejected with 409.
func (h *PlanHandler) DeletePlanEntry(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	entryID, err := primitive.ObjectIDFromHex(c.Param("entryId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid entry ID format.")
		return
	}

	err = h.planService.DeleteEntry(c.Request.Context(), coachID, entryID)
	if err != nil {
		if errors.Is(err, service.ErrEntryNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrEntryReferenced) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else if errors.Is(err, service.ErrEntryAccessDenied) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete plan entry.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// DeletePlan removes every entry of a trainee's plan slot.
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	coachID, ok := coachIDFromContext(c)
	if !ok {
		return
	}
	traineeID, err := primitive.ObjectIDFromHex(c.Param("traineeId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainee ID format.")
		return
	}

	deleted, err := h.planService.DeletePlan(c.Request.Context(), coachID, traineeID, c.Param("planName"))
	if err != nil {
		if errors.Is(err, service.ErrEntryAccessDenied) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete plan.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// --- Shared helpers ---

// coachIDFromContext extracts and parses the authenticated coach id; on
// failure it writes the error response and returns ok=false.
func coachIDFromContext(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify coach from token.")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid coach ID format in token.")
		return primitive.NilObjectID, false
	}
	return id, true
}

func mapRosterError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrTraineeNotFound) {
		abortWithError(c, http.StatusNotFound, err.Error())
	} else if errors.Is(err, service.ErrTraineeNotManaged) {
		abortWithError(c, http.StatusForbidden, err.Error())
	} else {
		abortWithError(c, http.StatusInternalServerError, "Failed to verify trainee.")
	}
}

func mapDetailsToResponses(details []service.PlanEntryDetails) []PlanEntryResponse {
	responses := make([]PlanEntryResponse, len(details))
	for i := range details {
		responses[i] = mapEntryToResponse(&details[i].PlanEntry, details[i].ExerciseName, details[i].SuppressRest, details[i].Validity)
	}
	return responses
}
