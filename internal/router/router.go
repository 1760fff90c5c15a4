package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/safework-dev/safework/internal/handlers"
	"github.com/safework-dev/safework/internal/middleware"
	"github.com/safework-dev/safework/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		ws := api.Group("/ws", middleware.AuthMiddleware())
		{
			ws.GET("/notifications", handlers.NotificationWebSocket)
			ws.GET("/:project_id", handlers.ProjectWebSocket)
		}
	}

	v1 := api.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.POST("/forgot-password", handlers.ForgotPassword)
			auth.POST("/reset-password", handlers.ResetPassword)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		users := v1.Group("/users", middleware.AuthMiddleware())
		{
			users.GET("", middleware.AdminOnly(), handlers.ListUsers)
			users.PATCH("/me", handlers.UpdateProfile)
			users.GET("/:id", handlers.GetUser)
			users.PATCH("/:id/role", middleware.AdminOnly(), handlers.UpdateUserRole)
		}

		projects := v1.Group("/projects", middleware.AuthMiddleware())
		{
			projects.GET("", handlers.ListProjects)
			projects.POST("", handlers.CreateProject)
			projects.GET("/:id", handlers.GetProject)
			projects.PATCH("/:id", handlers.UpdateProject)
			projects.DELETE("/:id", handlers.DeleteProject)

			projects.GET("/:id/statistics", handlers.GetProjectStatistics)
			projects.GET("/:id/statistics/workers", handlers.GetWorkerStatistics)

			projects.GET("/:id/members", handlers.ListMembers)
			projects.POST("/:id/members", handlers.AddMember)
			projects.PATCH("/:id/members/:member_id", handlers.UpdateMemberRole)
			projects.DELETE("/:id/members/:member_id", handlers.RemoveMember)

			projects.GET("/:id/risk-assessments", handlers.ListRiskAssessments)
			projects.POST("/:id/risk-assessments", handlers.CreateRiskAssessment)
			projects.GET("/:id/risk-assessments/:assessment_id", handlers.GetRiskAssessment)
			projects.PATCH("/:id/risk-assessments/:assessment_id", handlers.UpdateRiskAssessment)
			projects.DELETE("/:id/risk-assessments/:assessment_id", handlers.DeleteRiskAssessment)
			projects.GET("/:id/risk-assessments/:assessment_id/export", handlers.ExportRiskAssessmentPDF)

			projects.POST("/:id/risk-assessments/:assessment_id/factors", handlers.AddRiskFactor)
			projects.PATCH("/:id/risk-assessments/:assessment_id/factors/:factor_id", handlers.UpdateRiskFactor)
			projects.DELETE("/:id/risk-assessments/:assessment_id/factors/:factor_id", handlers.DeleteRiskFactor)

			projects.GET("/:id/workers", handlers.ListWorkers)
			projects.POST("/:id/workers", handlers.CreateWorker)
			projects.GET("/:id/workers/export", handlers.ExportWorkersExcel)
			projects.GET("/:id/workers/:worker_id", handlers.GetWorker)
			projects.PATCH("/:id/workers/:worker_id", handlers.UpdateWorker)
			projects.DELETE("/:id/workers/:worker_id", handlers.DeleteWorker)

			projects.POST("/:id/workers/:worker_id/educations", handlers.AddWorkerEducation)
			projects.DELETE("/:id/workers/:worker_id/educations/:education_id", handlers.DeleteWorkerEducation)

			projects.POST("/:id/workers/:worker_id/checkins", handlers.CheckinWorker)
			projects.PATCH("/:id/workers/:worker_id/checkins/:checkin_id/checkout", handlers.CheckoutWorker)
		}

		documents := v1.Group("/documents", middleware.AuthMiddleware())
		{
			documents.GET("", handlers.ListDocuments)
			documents.POST("", handlers.CreateDocument)
			documents.GET("/:id", handlers.GetDocument)
			documents.PATCH("/:id", handlers.UpdateDocument)
			documents.DELETE("/:id", handlers.DeleteDocument)
			documents.POST("/:id/access", handlers.GrantDocumentAccess)
			documents.DELETE("/:id/access/:user_id", handlers.RevokeDocumentAccess)
		}

		notifications := v1.Group("/notifications", middleware.AuthMiddleware())
		{
			notifications.GET("", handlers.ListNotifications)
			notifications.POST("", middleware.AdminOnly(), handlers.CreateNotification)
			notifications.PATCH("/read-all", handlers.MarkAllNotificationsRead)
			notifications.DELETE("/all", handlers.DeleteAllNotifications)
			notifications.PATCH("/:id/read", handlers.MarkNotificationRead)
			notifications.DELETE("/:id", handlers.DeleteNotification)
		}

		community := v1.Group("/community", middleware.AuthMiddleware())
		{
			community.GET("/posts", handlers.ListPosts)
			community.POST("/posts", handlers.CreatePost)
			community.GET("/posts/:id", handlers.GetPost)
			community.PATCH("/posts/:id", handlers.UpdatePost)
			community.DELETE("/posts/:id", handlers.DeletePost)
			community.POST("/posts/:id/comments", handlers.CreateComment)
			community.DELETE("/posts/:id/comments/:comment_id", handlers.DeleteComment)
		}

		chatbot := v1.Group("/chatbot", middleware.AuthMiddleware())
		{
			chatbot.POST("/messages", handlers.SendChatMessage)
			chatbot.GET("/messages", handlers.ListChatHistory)
			chatbot.DELETE("/messages", handlers.ClearChatHistory)
			chatbot.POST("/messages/:message_id/feedback", handlers.RecordChatFeedback)
		}

		statistics := v1.Group("/statistics", middleware.AuthMiddleware())
		{
			statistics.GET("/chatbot", middleware.AdminOnly(), handlers.GetChatbotStatistics)
		}
	}

	return r
}
