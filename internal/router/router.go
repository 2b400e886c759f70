package router

import (
	"net/http"
	"time"

	"github.com/docquiz/docquiz-backend/internal/config"
	"github.com/docquiz/docquiz-backend/internal/handler"
	"github.com/docquiz/docquiz-backend/internal/middleware"
	"github.com/docquiz/docquiz-backend/internal/response"
	"github.com/docquiz/docquiz-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Document   *handler.DocumentHandler
	Extraction *handler.ExtractionHandler
	Session    *handler.SessionHandler
	Result     *handler.ResultHandler
	System     *handler.SystemHandler
	WS         *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	sessionService *service.SessionService,
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

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Serve source documents statically with aggressive caching (1 year);
	// uploads keep UUID names so stale caches can't collide.
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}
	samplesGroup := router.Group("/samples")
	samplesGroup.Use(middleware.CacheControl(3600))
	{
		samplesGroup.Static("/", cfg.SampleDir)
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for upload and extraction routes (10 per minute per IP) —
	// both are expensive (disk writes, PDF parsing).
	heavyLimiter := middleware.NewRateLimiter(10, time.Minute)

	// ─── 1. Documents ──────────────────────────────────────────────────
	documents := router.Group("/api/v1/documents")
	{
		documents.GET("/samples", handlers.Document.ListSamples)
		documents.GET("/samples/preview", handlers.Document.PreviewSamples)
		documents.POST("/upload", heavyLimiter.Middleware(), handlers.Document.Upload)
	}

	// ─── 2. Extractions and questions ──────────────────────────────────
	extractions := router.Group("/api/v1/extractions")
	{
		extractions.POST("", heavyLimiter.Middleware(), handlers.Extraction.Start)
		extractions.GET("/:job_id/progress", handlers.Extraction.Progress)
	}
	router.GET("/api/v1/questions", handlers.Extraction.Questions)

	// ─── 3. Exam sessions ──────────────────────────────────────────────
	sessions := router.Group("/api/v1/sessions")
	{
		sessions.POST("", handlers.Session.Create)

		// Every per-session operation requires the session's own token.
		one := sessions.Group("/:session_id")
		one.Use(middleware.RequireSessionToken(sessionService))
		{
			one.GET("/state", handlers.Session.State)
			one.GET("/progress", handlers.Session.Progress)
			one.POST("/goto", handlers.Session.GoTo)
			one.POST("/next", handlers.Session.Next)
			one.POST("/previous", handlers.Session.Previous)
			one.POST("/answer", handlers.Session.Answer)
			one.DELETE("/answer", handlers.Session.ClearAnswer)
			one.POST("/mark", handlers.Session.ToggleMark)
			one.POST("/submit", handlers.Session.Submit)
		}
	}

	// ─── 4. Results ────────────────────────────────────────────────────
	router.GET("/api/v1/results", handlers.Result.List)

	// ─── 5. System Monitoring ──────────────────────────────────────────
	router.GET("/api/v1/system/metrics", handlers.System.SystemMetricsSSE)

	// ─── 6. WebSocket (token via ?token=) ──────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireSessionToken(sessionService))
	{
		ws.GET("/sessions/:session_id/stream", handlers.WS.SessionStream)
	}

	return router
}
