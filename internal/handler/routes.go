package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-adm-api/internal/middleware"
	"github.com/noah-isme/uni-adm-api/internal/models"
	"github.com/noah-isme/uni-adm-api/internal/service"
)

// Handlers groups the HTTP handlers wired by RegisterRoutes.
type Handlers struct {
	Auth         *AuthHandler
	Users        *UserHandler
	Profiles     *ProfileHandler
	Programs     *ProgramHandler
	Applications *ApplicationHandler
	Documents    *DocumentHandler
	Exports      *ExportHandler
}

// RegisterRoutes mounts the API surface under the given prefix. Role
// gates live here; ownership rules are enforced inside the services.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, authService *service.AuthService) {
	api := r.Group(prefix)
	authed := middleware.JWT(authService)
	students := middleware.RequireRoles(models.RoleStudent)
	reviewers := middleware.RequireRoles(models.RoleStaff, models.RoleAdmin)
	admins := middleware.RequireRoles(models.RoleAdmin)

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.GET("/me", authed, h.Auth.Me)
	}

	users := api.Group("/users", authed)
	{
		users.GET("", reviewers, h.Users.List)
		users.POST("/profile", h.Profiles.Create)
		users.GET("/profile/:userId", h.Profiles.Get)
		users.PUT("/profile/:userId", h.Profiles.Update)
		users.GET("/:id", h.Users.Get)
		users.PUT("/:id", h.Users.Update)
	}

	programs := api.Group("/programs")
	{
		programs.GET("", h.Programs.ListActive)
		programs.GET("/all", authed, reviewers, h.Programs.ListAll)
		programs.GET("/:id", h.Programs.Get)
		programs.POST("", authed, admins, h.Programs.Create)
		programs.PUT("/:id", authed, admins, h.Programs.Update)
		programs.DELETE("/:id", authed, admins, h.Programs.Delete)
	}

	applications := api.Group("/applications")
	{
		// The download route is public: the signed token is the credential.
		applications.GET("/export/download", h.Exports.Download)

		applications.Use(authed)
		applications.POST("", students, h.Applications.Create)
		applications.GET("", h.Applications.List)
		applications.GET("/export", reviewers, h.Exports.Generate)
		applications.GET("/student/:id", h.Applications.ListByStudent)
		applications.PUT("/submit/:id", h.Applications.Submit)
		applications.PUT("/status/:id", reviewers, h.Applications.UpdateStatus)
		applications.PUT("/payment/:id", h.Applications.UpdatePayment)
		applications.GET("/:id", h.Applications.Get)
	}

	documents := api.Group("/documents", authed)
	{
		documents.POST("/upload", h.Documents.Upload)
		documents.PUT("/verify/:id", reviewers, h.Documents.Verify)
		documents.GET("/student/:id", h.Documents.ListByStudent)
		documents.GET("/application/:id", h.Documents.ListByApplication)
		documents.GET("/download/:id", h.Documents.Download)
		documents.DELETE("/:id", h.Documents.Delete)
	}
}
