package routes

import (
	"gantt-planner-api/internal/auth"
	"gantt-planner-api/internal/handlers"
	"gantt-planner-api/internal/middleware"
	"gantt-planner-api/internal/realtime"
	"gantt-planner-api/internal/services"

	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers the router mounts.
type Handlers struct {
	Auth    *handlers.AuthHandler
	User    *handlers.UserHandler
	Project *handlers.ProjectHandler
	Task    *handlers.TaskHandler
	Tag     *handlers.TagHandler
	Excel   *handlers.ExcelHandler
	WS      *handlers.WSHandler
}

// NewHandlers builds every handler over the shared service environment.
func NewHandlers(env *services.Env, users *services.UserService, hub *realtime.Hub) Handlers {
	projects := services.NewProjectService(env)
	return Handlers{
		Auth:    handlers.NewAuthHandler(users),
		User:    handlers.NewUserHandler(users),
		Project: handlers.NewProjectHandler(projects),
		Task:    handlers.NewTaskHandler(services.NewTaskService(env)),
		Tag:     handlers.NewTagHandler(services.NewTagService(env)),
		Excel:   handlers.NewExcelHandler(services.NewImportService(env)),
		WS:      handlers.NewWSHandler(projects, hub),
	}
}

func SetupRoutes(h Handlers, tokens *auth.TokenManager, corsOrigin string) *gin.Engine {
	// Create a new GIN Router
	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger())

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", corsOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Gantt Planner API is running",
		})
	})

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/register", h.Auth.Register)
		api.POST("/login", h.Auth.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware(tokens))
	{
		protectedRoutes.GET("/me", h.User.Me)

		// Project endpoints
		protectedRoutes.GET("/projects", h.Project.GetProjects)
		protectedRoutes.POST("/projects", h.Project.CreateProject)
		protectedRoutes.GET("/projects/:id", h.Project.GetProject)
		protectedRoutes.PUT("/projects/:id", h.Project.UpdateProject)
		protectedRoutes.DELETE("/projects/:id", h.Project.DeleteProject)
		protectedRoutes.GET("/projects/:id/validate", h.Project.ValidateProject)
		protectedRoutes.GET("/projects/:id/timeline", h.Project.GetTimeline)
		protectedRoutes.GET("/projects/:id/ws", h.WS.Watch)

		// Task endpoints
		protectedRoutes.GET("/projects/:id/tasks", h.Task.GetTasks)
		protectedRoutes.POST("/projects/:id/tasks", h.Task.CreateTask)
		protectedRoutes.GET("/tasks/:id", h.Task.GetTaskByID)
		protectedRoutes.PUT("/tasks/:id", h.Task.UpdateTask)
		protectedRoutes.DELETE("/tasks/:id", h.Task.DeleteTask)
		protectedRoutes.PATCH("/tasks/:id/dates", h.Task.UpdateTaskDates)
		protectedRoutes.PATCH("/tasks/:id/duration", h.Task.UpdateTaskDuration)
		protectedRoutes.PUT("/tasks/:id/dependencies", h.Task.SetDependencies)
		protectedRoutes.PUT("/tasks/:id/sync", h.Task.SetSync)

		// Tag endpoints
		protectedRoutes.GET("/projects/:id/tags", h.Tag.GetTags)
		protectedRoutes.POST("/projects/:id/tags", h.Tag.CreateTag)
		protectedRoutes.PUT("/tags/:id", h.Tag.UpdateTag)
		protectedRoutes.DELETE("/tags/:id", h.Tag.DeleteTag)

		// Excel endpoints
		protectedRoutes.POST("/projects/:id/import", h.Excel.ImportTasks)
		protectedRoutes.GET("/projects/:id/export", h.Excel.ExportTasks)
		protectedRoutes.GET("/import/template", h.Excel.DownloadTemplate)
	}

	return ginRouter
}
