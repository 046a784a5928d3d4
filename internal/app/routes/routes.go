package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/selin/labmatch/internal/app/controllers"
	"github.com/selin/labmatch/internal/app/models"
	"github.com/selin/labmatch/internal/app/models/dto"
	"github.com/selin/labmatch/internal/middleware"
	"github.com/selin/labmatch/internal/pkg/obs"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	projectController *controllers.ProjectController,
	applicationController *controllers.ApplicationController,
	authMiddleware *middleware.AuthMiddleware,
) {
	v1 := router.Group("/api/v1")

	// --- Public auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
		auth.POST("/logout", authController.Logout)
		auth.POST("/oauth/callback", authController.OAuthCallback)
	}

	// --- Authenticated auth routes ---
	authProtected := v1.Group("/auth")
	authProtected.Use(authMiddleware.JWTAuth())
	{
		authProtected.POST("/complete-setup", authController.CompleteSetup)
		authProtected.GET("/profile", authController.GetProfile)
		authProtected.PUT("/profile", authController.UpdateProfile)
	}

	// --- Project routes ---
	projects := v1.Group("/projects")
	{
		// Browsing is public; a token widens what a teacher or admin can see
		projects.GET("", authMiddleware.OptionalJWTAuth(), projectController.ListProjects)
		projects.GET("/:id", authMiddleware.OptionalJWTAuth(), projectController.GetProject)
		projects.GET("/:id/documents", projectController.ListDocuments)

		projectsTeacherProtected := projects.Group("")
		projectsTeacherProtected.Use(authMiddleware.JWTAuth(),
			authMiddleware.RoleRequired(models.RoleTeacher, models.RoleAdmin))
		{
			projectsTeacherProtected.POST("", projectController.CreateProject)
			projectsTeacherProtected.PUT("/:id", projectController.UpdateProject)
			projectsTeacherProtected.DELETE("/:id", projectController.DeleteProject)
			projectsTeacherProtected.POST("/:id/documents", projectController.UploadDocument)
			projectsTeacherProtected.DELETE("/:id/documents/:fileId", projectController.DeleteDocument)
		}
	}

	// --- Application routes ---
	applications := v1.Group("/applications")
	applications.Use(authMiddleware.JWTAuth())
	{
		applications.GET("", applicationController.ListApplications)
		applications.GET("/:id", applicationController.GetApplication)
		applications.GET("/:id/resume", applicationController.DownloadResume)
		applications.DELETE("/:id", applicationController.Withdraw)

		applicationsStudentProtected := applications.Group("")
		applicationsStudentProtected.Use(authMiddleware.RoleRequired(models.RoleStudent))
		{
			applicationsStudentProtected.POST("", applicationController.Apply)
		}

		applicationsTeacherProtected := applications.Group("")
		applicationsTeacherProtected.Use(authMiddleware.RoleRequired(models.RoleTeacher, models.RoleAdmin))
		{
			applicationsTeacherProtected.PATCH("/:id/status", applicationController.UpdateStatus)
		}
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.SuccessResponse{Message: "ok"})
	})

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(obs.Handler()))
}
