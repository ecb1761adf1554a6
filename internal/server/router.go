package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/scrummood/scrummood-backend/internal/handlers"
	"github.com/scrummood/scrummood-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler       *handlers.AuthHandler
	AuthMiddleware    *middleware.AuthMiddleware
	UserHandler       *handlers.UserHandler
	EmotionHandler    *handlers.EmotionHandler
	SuggestionHandler *handlers.SuggestionHandler
	ReflectionHandler *handlers.ReflectionHandler
	SessionHandler    *handlers.SessionHandler
	SSEHandler        *handlers.SSEHandler

	AllowOrigins []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	allowOrigins := cfg.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)
	router.POST("/refresh", cfg.AuthHandler.Refresh)

	// Protected
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	protected.POST("/logout", cfg.AuthHandler.Logout)

	// SSE
	protected.GET("/sse/stream", cfg.SSEHandler.SSEStream)
	protected.POST("/sse/subscribe", cfg.SSEHandler.SSESubscribe)
	protected.POST("/sse/unsubscribe", cfg.SSEHandler.SSEUnsubscribe)

	// User
	protected.GET("/api/user", cfg.UserHandler.GetMe)
	protected.PUT("/api/user/privacy", cfg.UserHandler.UpdatePrivacy)

	// Emotions
	emotions := protected.Group("/api/emotions")
	{
		emotions.POST("", cfg.EmotionHandler.Submit)
		emotions.POST("/batch", cfg.EmotionHandler.BatchAnalyze)
		emotions.GET("/history", cfg.EmotionHandler.History)
		emotions.GET("/session/:sessionID", cfg.EmotionHandler.ListSession)
		emotions.GET("/session/:sessionID/summary", cfg.EmotionHandler.SessionSummary)
	}

	// Suggestions
	suggestions := protected.Group("/api/suggestions")
	{
		suggestions.POST("/session/:sessionID/generate", cfg.SuggestionHandler.Generate)
		suggestions.GET("/session/:sessionID", cfg.SuggestionHandler.ListSession)
		suggestions.GET("/personal", cfg.SuggestionHandler.ListPersonal)
		suggestions.POST("/:suggestionID/respond", cfg.SuggestionHandler.Respond)
		suggestions.GET("/analytics", cfg.SuggestionHandler.Analytics)
	}

	// Reflections
	reflections := protected.Group("/api/reflections")
	{
		reflections.GET("/session/:sessionID/personal", cfg.ReflectionHandler.Personal)
		reflections.GET("/session/:sessionID/team", cfg.ReflectionHandler.Team)
		reflections.POST("/journal", cfg.ReflectionHandler.SaveJournal)
		reflections.GET("/session/:sessionID/journal", cfg.ReflectionHandler.GetJournal)
	}

	// Sessions
	sessions := protected.Group("/api/sessions")
	{
		sessions.POST("", cfg.SessionHandler.Create)
		sessions.GET("/today", cfg.SessionHandler.Today)
		sessions.GET("/:sessionID", cfg.SessionHandler.Get)
		sessions.POST("/:sessionID/start", cfg.SessionHandler.Start)
		sessions.POST("/:sessionID/end", cfg.SessionHandler.End)
		sessions.POST("/:sessionID/join", cfg.SessionHandler.Join)
		sessions.POST("/:sessionID/leave", cfg.SessionHandler.Leave)
	}

	return router
}
