// Package httpapi wires the HTTP transport (Gin) to the travel services,
// middleware and route handlers. It owns the cross-cutting request pipeline:
// tracing, correlation ids, caller identity, redacted logging, panic
// recovery, compression, metrics, idempotency, rate limiting, CORS and
// security headers.
//
// Dependencies are injected through Deps; RegisterRoutes builds the
// services from them so tests can swap the outbound providers for fakes.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-travel-backend/docs"
	"github.com/tbourn/go-travel-backend/internal/config"
	"github.com/tbourn/go-travel-backend/internal/http/handlers"
	"github.com/tbourn/go-travel-backend/internal/http/middleware"
	"github.com/tbourn/go-travel-backend/internal/intent"
	"github.com/tbourn/go-travel-backend/internal/planner"
	"github.com/tbourn/go-travel-backend/internal/repo"
	"github.com/tbourn/go-travel-backend/internal/search"
	"github.com/tbourn/go-travel-backend/internal/services"
)

// maxBodyBytes caps every request body.
const maxBodyBytes = 1 << 20

// WeatherSource serves both the planner's per-day lookups and the weather
// endpoints.
type WeatherSource interface {
	planner.WeatherFetcher
	handlers.WeatherService
}

// Deps are the collaborators the API is built from.
type Deps struct {
	DB      *gorm.DB
	Index   search.Index
	Places  planner.PlaceFetcher
	Weather WeatherSource
}

// NewHandlers builds the services over deps and groups them into the HTTP
// handlers.
func NewHandlers(deps Deps, cfg config.Config) *handlers.Handlers {
	assembler := planner.NewAssembler(deps.Places, deps.Weather, planner.OptionsFrom(cfg))

	fbSvc := services.NewFeedbackService(deps.DB, cfg)
	planSvc := services.NewPlanService(deps.DB, assembler, cfg)
	convSvc := services.NewConversationService(deps.DB, cfg)
	chatSvc := services.NewChatbotService(deps.DB, intent.New(), planSvc, fbSvc, deps.Index, cfg)

	return handlers.New(chatSvc, planSvc, convSvc, fbSvc, deps.Weather)
}

// idempotencyLookup reports whether a live record exists for the key. A
// missing record is a miss, not an error.
func idempotencyLookup(db *gorm.DB) middleware.IdempotencyLookup {
	return func(ctx context.Context, userID, conversationID, key string, now time.Time) (bool, error) {
		rec, err := repo.GetIdempotency(ctx, db, userID, conversationID, key, now)
		if errors.Is(err, repo.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return rec != nil, nil
	}
}

// RegisterRoutes attaches the middleware chain and every endpoint to r.
// The public API is mounted under cfg.APIBasePath; /health, /metrics and
// (when enabled) /swagger live at the root.
//
// Middleware order matters:
//  1. OpenTelemetry
//  2. RequestID, then Identity so logs carry both
//  3. RedactingLogger
//  4. Recovery, after the logger so panics are logged with the request
//  5. Body size limit and gzip
//  6. Metrics
//  7. Idempotency validator, before the limiter so replays bypass it
//  8. Rate limiter per user or IP
//  9. CORS and security headers
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID(), middleware.Identity())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-Api-Key"},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, idempotencyLookup(deps.DB)))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now().UTC()})
	})

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := NewHandlers(deps, cfg)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Chat
		api.POST("/chat", h.Chat)

		// Plans
		api.POST("/plans", h.CreatePlan)

		// Conversations
		api.GET("/conversations", h.ListConversations)
		api.GET("/conversations/:id/plan", h.GetPlan)
		api.GET("/conversations/:id/messages", h.ListMessages)
		api.POST("/conversations/:id/feedback", h.SubmitFeedback)

		// Users
		api.GET("/users/me/stats", h.GetUserStats)
		api.GET("/users/me/preferences", h.GetPreferences)
		api.PUT("/users/me/preferences", h.UpdatePreferences)

		// Destinations and weather
		api.GET("/destinations/popular", h.PopularDestinations)
		api.GET("/weather/:city", h.GetWeather)
		api.GET("/weather/:city/forecast", h.GetForecast)
	}
}

// corsMiddleware allows every origin when none are configured; otherwise it
// echoes allow-listed origins.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderUserID, middleware.HeaderIdempotencyKey},
		ExposeHeaders:    []string{"X-Request-ID", "ETag", "Idempotency-Replayed", "Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	if len(origins) == 0 {
		base.AllowAllOrigins = true
		// ACAO on requests without an Origin header too (health checks, curl).
		force := func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		}
		return []gin.HandlerFunc{force, cors.New(base)}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	echo := func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := allowed[origin]; ok {
				h := c.Writer.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
		}
		c.Next()
	}
	base.AllowOrigins = origins
	return []gin.HandlerFunc{echo, cors.New(base)}
}

// limitBody caps the request body at maxBytes; reads past the cap fail.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
