package api

import (
	"net/http"

	"ironplan/training-app/internal/domain"
	"ironplan/training-app/internal/repository"
	"ironplan/training-app/internal/service"
	"ironplan/training-app/internal/session"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	coachService service.CoachService,
	planService service.PlanService,
	exerciseService service.ExerciseService,
	sessions *session.Manager,
	logRepo repository.WorkoutLogRepository,
) {
	authHandler := NewAuthHandler(authService)
	coachHandler := NewCoachHandler(coachService)
	planHandler := NewPlanHandler(planService, coachService)
	exerciseHandler := NewExerciseHandler(exerciseService)
	sessionHandler := NewSessionHandler(sessions, planService, logRepo)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Exercise Catalog Routes ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.POST("", RoleMiddleware(domain.RoleCoach), exerciseHandler.CreateExercise)
			exerciseGroup.GET("", RoleMiddleware(domain.RoleCoach), exerciseHandler.GetCoachExercises)
			exerciseGroup.PUT("/:id", RoleMiddleware(domain.RoleCoach), exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:id", RoleMiddleware(domain.RoleCoach), exerciseHandler.DeleteExercise)
			exerciseGroup.POST("/:id/media/upload-url", RoleMiddleware(domain.RoleCoach), exerciseHandler.RequestMediaUpload)
			exerciseGroup.POST("/:id/media/confirm", RoleMiddleware(domain.RoleCoach), exerciseHandler.ConfirmMediaUpload)
			// Trainees fetch the demo clip of an assigned exercise too.
			exerciseGroup.GET("/:id/media/url", exerciseHandler.GetMediaURL)
		}

		// --- Coach Routes ---
		coachGroup := protected.Group("/coach")
		coachGroup.Use(RoleMiddleware(domain.RoleCoach))
		{
			coachGroup.POST("/trainees", coachHandler.AddTraineeByEmail)
			coachGroup.GET("/trainees", coachHandler.GetManagedTrainees)

			// --- Plan Building ---
			coachGroup.POST("/trainees/:traineeId/plans/:planName/entries", planHandler.AddPlanEntry)
			coachGroup.GET("/trainees/:traineeId/plans/:planName/entries", planHandler.GetPlanEntries)
			coachGroup.PUT("/trainees/:traineeId/plans/:planName/order", planHandler.ReorderPlan)
			coachGroup.DELETE("/trainees/:traineeId/plans/:planName", planHandler.DeletePlan)
			coachGroup.DELETE("/entries/:entryId", planHandler.DeletePlanEntry)
		}

		// --- Trainee Routes ---
		traineeGroup := protected.Group("/trainee")
		traineeGroup.Use(RoleMiddleware(domain.RoleTrainee))
		{
			traineeGroup.GET("/plans/:planName", sessionHandler.GetMyPlan)
			traineeGroup.GET("/logs", sessionHandler.GetMyLogs)

			// --- Session Execution ---
			traineeGroup.POST("/session/start", sessionHandler.StartSession)
			traineeGroup.GET("/session", sessionHandler.SessionStatus)
			traineeGroup.POST("/session/rest/:entryId", sessionHandler.BeginRest)
			traineeGroup.DELETE("/session/rest", sessionHandler.CancelRest)
			traineeGroup.POST("/session/finish", sessionHandler.FinishSession)
		}
	}
}
