// internal/api/session_handler.go
package api

import (
	"errors"
	"net/http"

	"ironplan/training-app/internal/repository"
	"ironplan/training-app/internal/service"
	"ironplan/training-app/internal/session"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionHandler exposes the trainee-side session execution endpoints and
// the trainee's own plan/history views.
type SessionHandler struct {
	sessions    *session.Manager
	planService service.PlanService
	logRepo     repository.WorkoutLogRepository
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *session.Manager, planService service.PlanService, logRepo repository.WorkoutLogRepository) *SessionHandler {
	return &SessionHandler{
		sessions:    sessions,
		planService: planService,
		logRepo:     logRepo,
	}
}

// --- DTOs ---

type StartSessionRequest struct {
	PlanName string `json:"planName" binding:"required"`
}

type WorkoutLogResponse struct {
	ID              string `json:"id"`
	PlanName        string `json:"planName"`
	DurationMinutes int    `json:"durationMinutes"`
	OccurredAt      string `json:"occurredAt"`
}

// --- Handler Methods ---

// GetMyPlan returns the trainee's own plan slot, ordered for execution.
func (h *SessionHandler) GetMyPlan(c *gin.Context) {
	ownerID, ok := traineeIDFromContext(c)
	if !ok {
		return
	}

	details, err := h.planService.ListEntries(c.Request.Context(), ownerID, c.Param("planName"))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load plan.")
		return
	}

	c.JSON(http.StatusOK, mapDetailsToResponses(details))
}

// StartSession godoc
// @Summary Start a timed workout session
// @Description Starts the session clock over the given plan slot. Fails if a session is already running.
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param session body StartSessionRequest true "Plan slot to run"
// @Success 200 {object} session.Snapshot
// @Failure 409 {object} gin.H "Session already active"
// @Router /trainee/session/start [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	ownerID, ok := traineeIDFromContext(c)
	if !ok {
		return
	}

	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	snap, err := h.sessions.Start(c.Request.Context(), ownerID, req.PlanName)
	if err != nil {
		if errors.Is(err, session.ErrSessionActive) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else if errors.Is(err, session.ErrNoPlanEntries) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to start session.")
		}
		return
	}

	c.JSON(http.StatusOK, snap)
}

// BeginRest starts the rest countdown for one entry of the running session.
// Superset leads have no rest of their own and are rejected.
func (h *SessionHandler) BeginRest(c *gin.Context) {
	ownerID, ok := traineeIDFromContext(c)
	if !ok {
		return
	}
	entryID, err := primitive.ObjectIDFromHex(c.Param("entryId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid entry ID format.")
		return
	}

	seconds, err := h.sessions.BeginRest(ownerID, entryID)
	if err != nil {
		mapSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"restSeconds": seconds})
}

// CancelRest discards the running countdown.
func (h *SessionHandler) CancelRest(c *gin.Context) {
	ownerID, ok := traineeIDFromContext(c)
	if !ok {
		return
	}

	if err := h.sessions.CancelRest(ownerID); err != nil {
		mapSessionError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// FinishSession ends the session, persists the workout log, and returns it.
// If the log write fails the session stays active and the trainee can retry.
func (h *SessionHandler) FinishSession(c *gin.Context) {
	ownerID, ok := traineeIDFromContext(c)
	if !ok {
		return
	}

	log, err := h.sessions.Finish(c.Request.Context(), ownerID)
	if err != nil {
		if errors.Is(err, session.ErrNoActiveSession) || errors.Is(err, session.ErrInvalidOperation) {
			mapSessionError(c, err)
		} else {
			// Repository failure: surfaced, session remains active.
			abortWithError(c, http.StatusInternalServerError, "Failed to persist workout log; session is still active.")
		}
		return
	}

	c.JSON(http.StatusOK, WorkoutLogResponse{
		ID:              log.ID.Hex(),
		PlanName:        log.PlanName,
		DurationMinutes: log.DurationMinutes,
		OccurredAt:      log.OccurredAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// SessionStatus returns the runtime snapshot (status, elapsed time, any
// running countdown) that drives the trainee's session screen.
func (h *SessionHandler) SessionStatus(c *gin.Context) {
	ownerID, ok := traineeIDFromContext(c)
	if !ok {
		return
	}

	snap, err := h.sessions.Status(ownerID)
	if err != nil {
		if errors.Is(err, session.ErrNoActiveSession) {
			c.JSON(http.StatusOK, session.Snapshot{Status: session.StatusIdle, OwnerID: ownerID})
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to read session status.")
		return
	}

	c.JSON(http.StatusOK, snap)
}

// GetMyLogs lists the trainee's workout history, newest first.
func (h *SessionHandler) GetMyLogs(c *gin.Context) {
	ownerID, ok := traineeIDFromContext(c)
	if !ok {
		return
	}

	logs, err := h.logRepo.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load workout history.")
		return
	}

	responses := make([]WorkoutLogResponse, len(logs))
	for i, log := range logs {
		responses[i] = WorkoutLogResponse{
			ID:              log.ID.Hex(),
			PlanName:        log.PlanName,
			DurationMinutes: log.DurationMinutes,
			OccurredAt:      log.OccurredAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	c.JSON(http.StatusOK, responses)
}

// --- Shared helpers ---

func traineeIDFromContext(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainee from token.")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainee ID format in token.")
		return primitive.NilObjectID, false
	}
	return id, true
}

func mapSessionError(c *gin.Context, err error) {
	if errors.Is(err, session.ErrNoActiveSession) {
		abortWithError(c, http.StatusNotFound, err.Error())
	} else if errors.Is(err, session.ErrInvalidOperation) {
		abortWithError(c, http.StatusConflict, err.Error())
	} else {
		abortWithError(c, http.StatusInternalServerError, "Session operation failed.")
	}
}
