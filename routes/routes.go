package routes

import (
	"procurement-tracking-api/controllers"
	"procurement-tracking-api/middleware"
	"procurement-tracking-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/login", controllers.Login)

			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Procurement Tracking API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Reference data
			protected.GET("/departments", controllers.GetDepartments)

			// Projects
			projects := protected.Group("/projects")
			{
				projects.GET("", controllers.GetProjects)
				projects.GET("/:id", controllers.GetProject)
				projects.POST("", controllers.CreateProject)
				projects.PUT("/:id", controllers.UpdateProject)
				projects.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), controllers.DeleteProject)

				// Workflow steps
				projects.GET("/:id/steps", controllers.GetProjectSteps)
				projects.PUT("/:id/steps/:step_id", controllers.UpdateProjectStep)

				// Supervisor reviews
				projects.GET("/:id/reviews", controllers.GetProjectReviews)
				projects.POST("/:id/reviews",
					middleware.RequireRole(models.RoleSupervisor, models.RoleAdmin),
					controllers.CreateSupervisorReview)

				// Batch import (admin only; checked again inside the handler)
				projects.POST("/import", middleware.RequireRole(models.RoleAdmin), controllers.AdminImportProjects)
			}

			// Dashboard
			dashboard := protected.Group("/dashboard")
			{
				dashboard.GET("/stats", controllers.GetDashboardStats)
			}

			// Steps needing attention
			protected.GET("/steps/attention", controllers.GetAttentionSteps)

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetMyNotifications)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			}
		}
	}
}
