package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/pathforge-backend/internal/handlers"
	"github.com/yungbote/pathforge-backend/internal/middleware"
	"github.com/yungbote/pathforge-backend/internal/sse"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	UserHandler    *handlers.UserHandler
	RoadmapHandler *handlers.RoadmapHandler
	AIHandler      *handlers.AIHandler
	SSEHandler     *handlers.SSEHandler
	SSEHub         *sse.SSEHub
	AllowOrigins   []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	allowOrigins := cfg.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/auth/register", cfg.AuthHandler.Register)
		api.POST("/auth/login", cfg.AuthHandler.Login)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	protected.Use(middleware.AttachSSEData(cfg.SSEHub))
	// Auth
	protected.POST("/auth/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/auth/logout", cfg.AuthHandler.Logout)
	// AI
	protected.POST("/ai/generate", cfg.AIHandler.Generate)
	protected.POST("/ai/tutor", cfg.AIHandler.Tutor)
	// Roadmaps
	protected.GET("/roadmaps", cfg.RoadmapHandler.List)
	protected.GET("/roadmaps/:id", cfg.RoadmapHandler.Get)
	protected.DELETE("/roadmaps/:id", cfg.RoadmapHandler.Delete)
	protected.PATCH("/roadmaps/:id/topics/:topicId", cfg.RoadmapHandler.UpdateTopicStatus)
	// User
	protected.GET("/user/profile", cfg.UserHandler.GetProfile)
	protected.PATCH("/user/profile", cfg.UserHandler.UpdateProfile)
	protected.DELETE("/user/profile", cfg.UserHandler.DeleteAccount)
	protected.PATCH("/user/password", cfg.UserHandler.ChangePassword)
	// SSE
	protected.GET("/sse/stream", cfg.SSEHandler.Stream)

	return router
}
