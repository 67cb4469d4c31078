package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/quizzine/quizzine-backend/internal/config"
	"github.com/quizzine/quizzine-backend/internal/handler"
	"github.com/quizzine/quizzine-backend/internal/middleware"
	"github.com/quizzine/quizzine-backend/internal/response"
	"github.com/quizzine/quizzine-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Quiz    *handler.QuizHandler
	Folder  *handler.FolderHandler
	Session *handler.SessionHandler
	Attempt *handler.AttemptHandler
	WS      *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for credential endpoints (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", authLimiter.Middleware(), handlers.Auth.Register)
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)
		auth.GET("/me", middleware.RequireAuth(authService), handlers.Auth.Me)
	}

	// ─── 2. Authenticated API ──────────────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireAuth(authService))
	{
		// Quiz authoring and sharing
		api.POST("/quizzes", handlers.Quiz.Create)
		api.GET("/quizzes", handlers.Quiz.List)
		api.GET("/quizzes/:id", handlers.Quiz.Get)
		api.PUT("/quizzes/:id", handlers.Quiz.Update)
		api.DELETE("/quizzes/:id", handlers.Quiz.Delete)
		api.POST("/quizzes/:id/share-code", handlers.Quiz.RegenerateShareCode)
		api.GET("/share-codes/:code", handlers.Quiz.ResolveShareCode)

		// Grants
		api.POST("/quizzes/:id/grants", handlers.Quiz.AddGrant)
		api.GET("/quizzes/:id/grants", handlers.Quiz.ListGrants)
		api.DELETE("/quizzes/:id/grants/:user_id", handlers.Quiz.RemoveGrant)

		// Folders
		api.POST("/folders", handlers.Folder.Create)
		api.GET("/folders", handlers.Folder.List)
		api.GET("/folders/:id/quizzes", handlers.Folder.ListQuizzes)
		api.PUT("/folders/:id", handlers.Folder.Rename)
		api.DELETE("/folders/:id", handlers.Folder.Delete)

		// Live sessions
		api.POST("/quizzes/:id/sessions", handlers.Session.Start)
		api.GET("/sessions/active", handlers.Session.GetActive)
		api.GET("/sessions/:id", handlers.Session.Get)
		api.POST("/sessions/:id/answer", handlers.Session.Answer)
		api.POST("/sessions/:id/mark", handlers.Session.Mark)
		api.POST("/sessions/:id/next", handlers.Session.Next)
		api.POST("/sessions/:id/previous", handlers.Session.Previous)
		api.POST("/sessions/:id/jump", handlers.Session.Jump)
		api.POST("/sessions/:id/submit", handlers.Session.Submit)
		api.POST("/sessions/:id/end-early", handlers.Session.EndEarly)
		api.DELETE("/sessions/:id", handlers.Session.Abandon)

		// Attempt records
		api.GET("/attempts", handlers.Attempt.ListMine)
		api.GET("/attempts/:id", handlers.Attempt.Get)
		api.GET("/quizzes/:id/attempts", handlers.Attempt.ListForQuiz)
	}

	// ─── 3. WebSocket Group (token in query) ───────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/sessions/:id/stream", handlers.WS.SessionStream)
	}

	return router
}
