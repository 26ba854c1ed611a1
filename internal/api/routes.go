package api

import (
	"net/http"

	"alcyxob/workout-tracker/internal/metrics"
	"alcyxob/workout-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const sharedRouterName = "shared"

// RouteDeps carries everything SetupRoutes wires into handlers.
type RouteDeps struct {
	JWTSecret string

	TrainingService  service.TrainingService
	TemplateService  service.TemplateService
	ExerciseService  service.ExerciseService
	ProfileService   service.ProfileService
	FollowService    service.FollowService
	AnalyticsService service.AnalyticsService
	ExportService    service.ExportService

	Metrics  *metrics.Manager
	Gatherer prometheus.Gatherer // nil disables /metrics

	// RateLimiter guards the public share endpoint; nil disables limiting.
	RateLimiter     RequestRateLimiter
	ShareRatePerMin int
}

func SetupRoutes(router *gin.Engine, deps RouteDeps) {
	trainingHandler := NewTrainingHandler(deps.TrainingService)
	templateHandler := NewTemplateHandler(deps.TemplateService)
	exerciseHandler := NewExerciseHandler(deps.ExerciseService)
	profileHandler := NewProfileHandler(deps.ProfileService)
	followHandler := NewFollowHandler(deps.FollowService)
	analyticsHandler := NewAnalyticsHandler(deps.AnalyticsService)
	exportHandler := NewExportHandler(deps.ExportService)

	router.Use(Recovery(deps.Metrics), RequestMetrics(deps.Metrics))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	apiV1 := router.Group("/api/v1")

	shared := apiV1.Group("/shared")
	if deps.RateLimiter != nil {
		shared.Use(RateLimit(deps.RateLimiter, sharedRouterName, deps.ShareRatePerMin))
	}
	shared.GET("/:token", trainingHandler.GetSharedTraining)

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(deps.JWTSecret))
	{
		protected.GET("/me", profileHandler.GetProfile)
		protected.PATCH("/me", profileHandler.UpdateProfile)
		protected.POST("/me/body-metrics", profileHandler.AddBodyMetric)

		// --- Trainings ---
		trainingGroup := protected.Group("/trainings")
		{
			trainingGroup.POST("", trainingHandler.CreateTraining)
			trainingGroup.GET("/:trainingId", trainingHandler.GetTraining)
			trainingGroup.PATCH("/:trainingId", trainingHandler.UpdateTraining)
			trainingGroup.DELETE("/:trainingId", trainingHandler.DeleteTraining)
			trainingGroup.POST("/:trainingId/share", trainingHandler.ShareTraining)
			trainingGroup.DELETE("/:trainingId/share", trainingHandler.UnshareTraining)
		}

		// --- Templates ---
		templateGroup := protected.Group("/templates")
		{
			templateGroup.POST("", templateHandler.CreateTemplate)
			templateGroup.GET("", templateHandler.ListTemplates)
			templateGroup.GET("/:templateId", templateHandler.GetTemplate)
			templateGroup.PUT("/:templateId", templateHandler.UpdateTemplate)
			templateGroup.DELETE("/:templateId", templateHandler.DeleteTemplate)
			templateGroup.POST("/:templateId/trainings", trainingHandler.CreateFromTemplate)
		}

		// --- Exercise library ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.POST("", exerciseHandler.CreateExercise)
			exerciseGroup.GET("", exerciseHandler.GetExercises)
			exerciseGroup.GET("/:exerciseId", exerciseHandler.GetExercise)
			exerciseGroup.PUT("/:exerciseId", exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:exerciseId", exerciseHandler.DeleteExercise)
			exerciseGroup.GET("/:exerciseId/last-implementation", trainingHandler.GetLastImplementation)
		}
		protected.GET("/muscle-groups", exerciseHandler.GetMuscleGroups)
		protected.POST("/muscle-groups", exerciseHandler.CreateMuscleGroup)

		// --- Follows ---
		protected.GET("/followers", followHandler.ListFollowers)
		protected.GET("/following", followHandler.ListFollowing)
		protected.POST("/followers/:userId/approve", followHandler.Approve)
		protected.POST("/followers/:userId/reject", followHandler.Reject)

		// --- Per-user data, "me" or a followed user ---
		userGroup := protected.Group("/users/:userId")
		{
			userGroup.POST("/follow", followHandler.Follow)
			userGroup.DELETE("/follow", followHandler.Unfollow)
			userGroup.GET("/trainings", trainingHandler.ListTrainings)
			userGroup.GET("/body-metrics", profileHandler.ListBodyMetrics)

			analyticsGroup := userGroup.Group("/analytics")
			analyticsGroup.GET("/summary", analyticsHandler.Summary)
			analyticsGroup.GET("/frequency", analyticsHandler.TrainingFrequency)
			analyticsGroup.GET("/volume", analyticsHandler.TotalVolume)
			analyticsGroup.GET("/streak", analyticsHandler.Streak)
			analyticsGroup.GET("/prs", analyticsHandler.AllPRs)
			analyticsGroup.GET("/exercises/:exerciseId/progress", analyticsHandler.ExerciseProgress)
			analyticsGroup.GET("/exercises/:exerciseId/pr", analyticsHandler.ExercisePR)
			analyticsGroup.GET("/muscle-groups/volume", analyticsHandler.MuscleGroupVolume)
			analyticsGroup.GET("/muscle-groups/frequency", analyticsHandler.MuscleGroupFrequency)
			analyticsGroup.GET("/body-weight", analyticsHandler.BodyWeightProgress)
			analyticsGroup.GET("/bmi", analyticsHandler.BMIProgress)
		}

		protected.GET("/analytics/one-rep-max", analyticsHandler.OneRepMax)
		protected.POST("/exports", exportHandler.CreateExport)
	}
}
