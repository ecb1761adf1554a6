package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	redisclient "github.com/scrummood/scrummood-backend/internal/clients/redis"
	"github.com/scrummood/scrummood-backend/internal/db"
	"github.com/scrummood/scrummood-backend/internal/engine"
	"github.com/scrummood/scrummood-backend/internal/handlers"
	"github.com/scrummood/scrummood-backend/internal/logger"
	"github.com/scrummood/scrummood-backend/internal/middleware"
	"github.com/scrummood/scrummood-backend/internal/repos"
	"github.com/scrummood/scrummood-backend/internal/server"
	"github.com/scrummood/scrummood-backend/internal/services"
	"github.com/scrummood/scrummood-backend/internal/sse"
	"github.com/scrummood/scrummood-backend/internal/utils"
)

func main() {
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

	// Database
	dbService, err := db.New(log)
	if err != nil {
		log.Fatal("Database init failed", "error", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Fatal("Database auto migration failed", "error", err)
	}
	gdb := dbService.DB()

	// Rule engine thresholds
	thresholds := engine.DefaultThresholds()
	if path := utils.GetEnv("THRESHOLDS_FILE", "", log); path != "" {
		loaded, err := engine.LoadThresholds(path)
		if err != nil {
			log.Warn("Failed to load thresholds file, using defaults", "path", path, "error", err)
		} else {
			thresholds = loaded
		}
	}

	// Repos
	log.Info("Setting up repos...")
	userRepo := repos.NewUserRepo(gdb, log)
	userTokenRepo := repos.NewUserTokenRepo(gdb, log)
	emotionRepo := repos.NewEmotionRepo(gdb, log)
	suggestionRepo := repos.NewSuggestionRepo(gdb, log)
	sessionRepo := repos.NewSessionRepo(gdb, log)
	journalRepo := repos.NewJournalRepo(gdb, log)

	// SSE hub, plus the optional Redis bus for multi-instance fanout.
	log.Info("Setting up SSE hub...")
	sseHub := sse.NewSSEHub(log)
	var sseBus redisclient.SSEBus
	if os.Getenv("REDIS_ADDR") != "" {
		bus, err := redisclient.NewSSEBus(log)
		if err != nil {
			log.Warn("Redis SSE bus init failed, running single-instance", "error", err)
		} else {
			sseBus = bus
			if err := sseBus.StartForwarder(context.Background(), sseHub.Broadcast); err != nil {
				log.Warn("Redis SSE forwarder failed to start", "error", err)
			}
			defer sseBus.Close()
		}
	}

	// Services
	log.Info("Setting up services...")
	var textClient services.TextAnalysisClient
	client, err := services.NewTextAnalysisClient(log)
	if err != nil {
		log.Warn("Text analysis client unavailable, text submissions will use the fallback estimate", "error", err)
	} else {
		textClient = client
	}
	classifier := engine.NewClassifier(textClient)

	notifier := services.NewNotifier(sseHub, sseBus, log)
	authService := services.NewAuthService(userRepo, userTokenRepo, log)
	userService := services.NewUserService(userRepo, log)
	emotionService := services.NewEmotionService(classifier, emotionRepo, sessionRepo, userRepo, notifier, log)
	suggestionService := services.NewSuggestionService(thresholds, suggestionRepo, emotionRepo, sessionRepo, notifier, log)
	reflectionService := services.NewReflectionService(thresholds, classifier, emotionRepo, sessionRepo, suggestionRepo, journalRepo, userRepo, log)
	sessionService := services.NewSessionService(sessionRepo, notifier, log)

	// Handlers and middleware
	log.Info("Setting up handlers...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	emotionHandler := handlers.NewEmotionHandler(emotionService)
	suggestionHandler := handlers.NewSuggestionHandler(suggestionService)
	reflectionHandler := handlers.NewReflectionHandler(reflectionService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	sseHandler := handlers.NewSSEHandler(log, sseHub)
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	var allowOrigins []string
	if v := utils.GetEnv("CORS_ALLOW_ORIGINS", "", log); v != "" {
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowOrigins = append(allowOrigins, origin)
			}
		}
	}

	router := server.NewRouter(server.RouterConfig{
		AuthHandler:       authHandler,
		AuthMiddleware:    authMiddleware,
		UserHandler:       userHandler,
		EmotionHandler:    emotionHandler,
		SuggestionHandler: suggestionHandler,
		ReflectionHandler: reflectionHandler,
		SessionHandler:    sessionHandler,
		SSEHandler:        sseHandler,
		AllowOrigins:      allowOrigins,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
