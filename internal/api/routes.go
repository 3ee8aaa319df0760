package api

import (
	"net/http"

	"coachapp/internal/domain"
	"coachapp/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	userService service.UserService,
	exerciseService service.ExerciseService,
	workoutService service.WorkoutService,
	trainingPlanService service.TrainingPlanService,
	nutritionPlanService service.NutritionPlanService,
	messageService service.MessageService,
) {
	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(userService)
	exerciseHandler := NewExerciseHandler(exerciseService)
	workoutHandler := NewWorkoutHandler(workoutService)
	trainingPlanHandler := NewTrainingPlanHandler(trainingPlanService)
	nutritionPlanHandler := NewNutritionPlanHandler(nutritionPlanService)
	messageHandler := NewMessageHandler(messageService)

	authMiddleware := AuthMiddleware(jwtSecret)
	coachOnly := RoleMiddleware(domain.RoleCoach)

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
		protected.GET("/me", userHandler.Me)

		// --- User Directory ---
		userGroup := protected.Group("/users")
		{
			userGroup.GET("", userHandler.ListUsers)
			userGroup.GET("/athletes", coachOnly, userHandler.ListAthletes)
			userGroup.GET("/:userId", userHandler.GetUser)
		}

		// --- Exercise Library ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.POST("", coachOnly, exerciseHandler.CreateExercise)
			exerciseGroup.GET("", exerciseHandler.GetMyExercises)
			exerciseGroup.GET("/:exerciseId", exerciseHandler.GetExercise)
			exerciseGroup.PUT("/:exerciseId", coachOnly, exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:exerciseId", coachOnly, exerciseHandler.DeleteExercise)
			exerciseGroup.POST("/:exerciseId/duplicate", exerciseHandler.DuplicateExercise)
			exerciseGroup.POST("/:exerciseId/assignments", coachOnly, exerciseHandler.AssignExercise)
			exerciseGroup.DELETE("/:exerciseId/assignments/:userId", coachOnly, exerciseHandler.UnassignExercise)
			exerciseGroup.POST("/:exerciseId/video", coachOnly, exerciseHandler.RequestVideoUpload)
			exerciseGroup.GET("/:exerciseId/video", exerciseHandler.GetVideoDownloadURL)
		}

		// --- Workout Catalog ---
		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.POST("", coachOnly, workoutHandler.CreateWorkout)
			workoutGroup.GET("", workoutHandler.GetMyWorkouts)
			workoutGroup.GET("/all", workoutHandler.ListWorkouts)
			workoutGroup.GET("/:workoutId", workoutHandler.GetWorkout)
			workoutGroup.GET("/:workoutId/detail", workoutHandler.GetWorkoutDetail)
			workoutGroup.PUT("/:workoutId", coachOnly, workoutHandler.UpdateWorkout)
			workoutGroup.DELETE("/:workoutId", coachOnly, workoutHandler.DeleteWorkout)
		}

		// --- Training Plans ---
		trainingGroup := protected.Group("/training-plans")
		{
			trainingGroup.GET("", trainingPlanHandler.ListPlans)
			trainingGroup.GET("/active", RoleMiddleware(domain.RoleAthlete), trainingPlanHandler.GetActivePlan)
			trainingGroup.GET("/:planId", trainingPlanHandler.GetPlan)
			trainingGroup.POST("", coachOnly, trainingPlanHandler.CreatePlan)
			trainingGroup.PUT("/:planId", coachOnly, trainingPlanHandler.UpdatePlan)
			trainingGroup.DELETE("/:planId", coachOnly, trainingPlanHandler.DeletePlan)
			trainingGroup.POST("/:planId/duplicate", coachOnly, trainingPlanHandler.DuplicatePlan)
			// Both the owning coach and the assigned athlete may toggle completion.
			trainingGroup.PUT("/:planId/completion", trainingPlanHandler.SetCompletion)
		}

		// --- Nutrition Plans ---
		nutritionGroup := protected.Group("/nutrition-plans")
		{
			nutritionGroup.GET("", nutritionPlanHandler.ListPlans)
			nutritionGroup.GET("/active", RoleMiddleware(domain.RoleAthlete), nutritionPlanHandler.GetActivePlan)
			nutritionGroup.GET("/:planId", nutritionPlanHandler.GetPlan)
			nutritionGroup.POST("", coachOnly, nutritionPlanHandler.CreatePlan)
			nutritionGroup.PUT("/:planId", coachOnly, nutritionPlanHandler.UpdatePlan)
			nutritionGroup.DELETE("/:planId", coachOnly, nutritionPlanHandler.DeletePlan)
			nutritionGroup.POST("/:planId/duplicate", coachOnly, nutritionPlanHandler.DuplicatePlan)
			nutritionGroup.PUT("/:planId/completion", nutritionPlanHandler.SetMealCompletion)
		}

		// --- Messaging ---
		messageGroup := protected.Group("/messages")
		{
			messageGroup.POST("", messageHandler.SendMessage)
			messageGroup.GET("", messageHandler.ListMessages)
			messageGroup.GET("/unread-count", messageHandler.UnreadCount)
			messageGroup.GET("/partners", messageHandler.ListPartners)
			messageGroup.PUT("/read/:userId", messageHandler.MarkConversationRead)
		}
	}
}
