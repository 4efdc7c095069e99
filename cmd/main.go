package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/pathforge-backend/internal/db"
	"github.com/yungbote/pathforge-backend/internal/handlers"
	"github.com/yungbote/pathforge-backend/internal/logger"
	"github.com/yungbote/pathforge-backend/internal/middleware"
	"github.com/yungbote/pathforge-backend/internal/repos"
	"github.com/yungbote/pathforge-backend/internal/server"
	"github.com/yungbote/pathforge-backend/internal/services"
	"github.com/yungbote/pathforge-backend/internal/sse"
	"github.com/yungbote/pathforge-backend/internal/utils"
)

func main() {
	_ = godotenv.Load()

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	roadmapRepo := repos.NewRoadmapRepo(thePG, log)
	phaseRepo := repos.NewPhaseRepo(thePG, log)
	topicRepo := repos.NewTopicRepo(thePG, log)

	// SSE
	log.Info("Setting up SSE hub now...")
	sseHub := sse.NewSSEHub(log)

	// Services
	log.Info("Setting up services from main...")
	aiConfig, err := services.LoadAIConfig(log)
	if err != nil {
		log.Error("Could not resolve AI provider config", "error", err)
		os.Exit(1)
	}
	aiClient, err := services.NewAIClient(log, aiConfig)
	if err != nil {
		log.Error("Could not init AIClient", "error", err)
		os.Exit(1)
	}
	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(thePG, log, userRepo, userTokenRepo, roadmapRepo, phaseRepo, topicRepo)
	roadmapService := services.NewRoadmapService(thePG, log, roadmapRepo, phaseRepo, topicRepo)
	generationService := services.NewRoadmapGenerationService(thePG, log, aiClient, roadmapService)
	tutorService := services.NewTutorService(log, aiClient)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	roadmapHandler := handlers.NewRoadmapHandler(roadmapService)
	aiHandler := handlers.NewAIHandler(generationService, tutorService)
	sseHandler := handlers.NewSSEHandler(log, sseHub)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	var allowOrigins []string
	if raw := utils.GetEnv("CORS_ALLOW_ORIGINS", "", log); raw != "" {
		allowOrigins = strings.Split(raw, ",")
	}
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:    authHandler,
		AuthMiddleware: authMiddleware,
		UserHandler:    userHandler,
		RoadmapHandler: roadmapHandler,
		AIHandler:      aiHandler,
		SSEHandler:     sseHandler,
		SSEHub:         sseHub,
		AllowOrigins:   allowOrigins,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
