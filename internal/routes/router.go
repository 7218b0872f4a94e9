package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-api/internal/auth"
	"todo-api/internal/config"
	"todo-api/internal/controller"
	"todo-api/internal/middleware"
)

// Router wires middleware and controllers onto the gin engine.
func Router(cfg *config.Config, tokens *auth.TokenManager, authCtl *controller.AuthController, todoCtl *controller.TodoController, healthCtl *controller.HealthController) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Welcome to the To-Do API with Authentication")
	})

	// Health for load balancers and K8s probes
	router.GET("/health", healthCtl.Health)
	router.GET("/ready", healthCtl.Ready)

	// Uploaded images are served back statically.
	router.Static("/uploads", cfg.UploadDir)

	// Auth: register/login are rate limited per IP.
	limiter := middleware.AuthRateLimit(cfg.AuthRateLimit, cfg.AuthRateWindow)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", limiter, authCtl.Register)
		authGroup.POST("/login", limiter, authCtl.Login)
		authGroup.GET("/me", middleware.RequireAuth(tokens), authCtl.Me)
	}

	// Todos: one surface for guests and authenticated users, branching on
	// the resolved scope.
	optional := middleware.OptionalAuth(tokens)
	router.GET("/todos", optional, todoCtl.List)
	router.GET("/api/todos/:id", optional, todoCtl.GetByID)
	router.POST("/todo", optional, todoCtl.Create)
	router.PUT("/todo/:id", optional, todoCtl.Update)
	router.DELETE("/todo/:id", optional, todoCtl.Delete)

	router.GET("/guest/todo-count", todoCtl.GuestCount)

	return router
}
