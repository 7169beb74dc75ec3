// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, CORS,
// security headers, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
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

	"github.com/jandibook/go-book-backend/internal/catalog"
	"github.com/jandibook/go-book-backend/internal/config"
	"github.com/jandibook/go-book-backend/internal/curator"
	"github.com/jandibook/go-book-backend/internal/http/handlers"
	"github.com/jandibook/go-book-backend/internal/http/middleware"
	"github.com/jandibook/go-book-backend/internal/services"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), rate limiting, CORS
// and security headers, health and metrics endpoints, and then mounts the
// versioned public API under cfg.APIBasePath.
//
// The catalog source and text generator are injected so tests can substitute
// fakes; production callers pass catalog.New(...) and curator.NewOpenAI(...).
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per user/IP)
//  8. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, src catalog.Source, gen curator.TextGenerator, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured access logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB) and response compression
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 8) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API docs (disabled by default; enable via SWAGGER_ENABLED)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← db/source/generator
	catalogSvc := &services.CatalogService{DB: db, Source: src, ListTTL: cfg.Catalog.ListTTL}
	grassSvc := &services.GrassService{DB: db}
	engagementSvc := &services.EngagementService{DB: db, Grass: grassSvc}
	communitySvc := &services.CommunityService{DB: db, Engagement: engagementSvc, Grass: grassSvc}
	reviewSvc := &services.ReviewService{DB: db, Engagement: engagementSvc, Grass: grassSvc}
	profileSvc := &services.ProfileService{DB: db, Catalog: catalogSvc}
	recommendSvc := &services.RecommendService{DB: db, Catalog: catalogSvc}
	curatorSvc := &services.CuratorService{DB: db, Source: src, Generator: gen}

	h := handlers.New(catalogSvc, engagementSvc, communitySvc, reviewSvc, profileSvc, recommendSvc, grassSvc, curatorSvc)

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Books: cached catalog views, detail, bookmarking, recommendations
		api.GET("/books/bestsellers", h.ListBestsellers)
		api.GET("/books/new/special", h.ListNewSpecial)
		api.GET("/books/search", h.SearchBooks)
		api.GET("/books/recommend/bookmark", h.RecommendByBookmarks)
		api.GET("/books/recommend/follow", h.RecommendByFollows)
		api.GET("/books/:isbn13", h.GetBook)
		api.POST("/books/:isbn13/bookmark", h.ToggleBookmark)

		// Community: boards, free-board posts, comments
		api.GET("/community/boards", h.ListBoards)
		api.GET("/community/free", h.ListPosts)
		api.POST("/community/free/write", h.CreatePost)
		api.GET("/community/free/prefixes", h.ListPrefixes)
		api.GET("/community/free/:id", h.GetPost)
		api.PATCH("/community/free/:id", h.UpdatePost)
		api.DELETE("/community/free/:id", h.DeletePost)
		api.POST("/community/free/:id/like", h.LikePost)
		api.GET("/community/free/:id/comments", h.ListPostComments)
		api.POST("/community/free/:id/comments/write", h.CreatePostComment)

		// Comments: shared delete/like across posts and reviews
		api.DELETE("/comments/:id", h.DeleteComment)
		api.POST("/comments/:id/like", h.LikeComment)

		// Reviews
		api.GET("/reviews", h.ListReviews)
		api.POST("/reviews/write", h.CreateReview)
		api.GET("/reviews/me", h.ListMyReviews)
		api.GET("/reviews/user/:user_id", h.ListUserReviews)
		api.GET("/reviews/:id", h.GetReview)
		api.PATCH("/reviews/:id", h.UpdateReview)
		api.DELETE("/reviews/:id", h.DeleteReview)
		api.POST("/reviews/:id/like", h.LikeReview)
		api.GET("/reviews/:id/comments", h.ListReviewComments)
		api.POST("/reviews/:id/comments/write", h.CreateReviewComment)

		// Grass: activity heatmap and levels
		api.GET("/grass/me", h.GetMyGrass)
		api.GET("/grass/users/:user_id", h.GetUserGrass)
		api.GET("/grass/level/me", h.GetMyLevel)
		api.GET("/grass/level/users/:user_id", h.GetUserLevel)

		// Curator: model-backed analysis and trait matching
		api.POST("/curator/recommend", h.CuratorRecommend)
		api.GET("/curator/books/:isbn13/analysis", h.AnalyzeBook)

		// My page: profile aggregation and follows
		api.GET("/mypage/me", h.GetMyPage)
		api.GET("/mypage/bookmarks", h.ListMyBookmarks)
		api.GET("/mypage/posts", h.ListMyPosts)
		api.GET("/mypage/comments", h.ListMyComments)
		api.POST("/mypage/follow/:user_id", h.ToggleFollow)
		api.GET("/mypage/followers", h.ListFollowers)
		api.GET("/mypage/followers/:user_id", h.ListFollowers)
		api.GET("/mypage/following", h.ListFollowing)
		api.GET("/mypage/following/:user_id", h.ListFollowing)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
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
