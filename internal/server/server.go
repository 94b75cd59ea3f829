// Package server assembles the HTTP engine from the domain packages.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"hubal/internal/config"
	"hubal/internal/domain/auth"
	"hubal/internal/domain/chat"
	"hubal/internal/domain/designer"
	"hubal/internal/domain/generation"
	"hubal/internal/domain/notification"
	"hubal/internal/domain/offer"
	"hubal/internal/domain/review"
	"hubal/internal/domain/roomdesign"
	"hubal/internal/domain/servicerequest"
	"hubal/internal/domain/upload"
	"hubal/internal/middleware"
	"hubal/internal/pkg/jwt"
	"hubal/internal/pkg/response"
	"hubal/internal/realtime"
	"hubal/internal/storage"
)

// Deps are the long-lived resources built by main.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Hub    *realtime.Hub
	Store  storage.Store

	// Search is optional; designer search falls back to SQL without it.
	Search designer.Searcher
	// Gateway overrides the AI client, mainly for tests.
	Gateway generation.Gateway
}

// Server exposes the engine plus the services main runs background work on.
type Server struct {
	Engine        *gin.Engine
	Designers     *designer.Service
	Notifications *notification.Service
}

func New(deps Deps) *Server {
	cfg := deps.Config
	jwtService := jwt.New(cfg.JWTSecret, cfg.JWTTTL)

	authRepo := auth.NewRepository(deps.DB)
	designerRepo := designer.NewRepository(deps.DB)
	designRepo := roomdesign.NewRepository(deps.DB)

	notificationService := notification.NewService(notification.NewRepository(deps.DB), deps.Hub)
	chatService := chat.NewService(chat.NewRepository(deps.DB), authRepo, deps.Hub)
	deps.Hub.SetAuthorizer(chatService)

	designerService := designer.NewService(designerRepo, authRepo, deps.Search)
	authService := auth.NewService(authRepo, jwtService, designerService)
	requestService := servicerequest.NewService(servicerequest.NewRepository(deps.DB), designerService, notificationService, chatService)
	designService := roomdesign.NewService(designRepo)
	offerService := offer.NewService(offer.NewRepository(deps.DB), designRepo, designerRepo, authRepo, notificationService, chatService)
	reviewService := review.NewService(review.NewRepository(deps.DB), requestService, offerService, authRepo, notificationService)

	gateway := deps.Gateway
	if gateway == nil {
		gateway = generation.NewClient(cfg.AI)
	}
	generationService := generation.NewService(designService, gateway, notificationService)
	uploadService := upload.NewService(upload.NewRepository(deps.DB), deps.Store)

	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		otelgin.Middleware(cfg.OTEL.ServiceName),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.Metrics(),
		middleware.CORS(cfg.CORSAllowedOrigins),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/ws"})),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	})
	r.GET("/metrics", middleware.InternalTokenAuth(cfg.InternalToken), gin.WrapH(promhttp.Handler()))

	if local, ok := deps.Store.(*storage.LocalStore); ok {
		r.Static(local.StaticBase(), local.Dir())
	}

	realtime.NewHandler(deps.Hub, jwtService, cfg.CORSAllowedOrigins).RegisterRoutes(r)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByTokenOrIP(jwtService)).Handler())

	authHandler := auth.NewHandler(authService)
	designerHandler := designer.NewHandler(designerService)
	reviewHandler := review.NewHandler(reviewService)

	authHandler.RegisterPublicRoutes(v1)
	designerHandler.RegisterPublicRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(jwtService))

	authHandler.RegisterProtectedRoutes(protected)
	designerHandler.RegisterProtectedRoutes(protected)
	reviewHandler.RegisterRoutes(v1, protected)
	notification.RegisterRoutes(protected, notification.NewHandler(notificationService))
	chat.RegisterRoutes(protected, chat.NewHandler(chatService))
	servicerequest.RegisterRoutes(protected, servicerequest.NewHandler(requestService))
	roomdesign.RegisterRoutes(protected, roomdesign.NewHandler(designService))
	offer.RegisterRoutes(protected, offer.NewHandler(offerService))
	upload.RegisterRoutes(protected, upload.NewHandler(uploadService))

	aiLimiter := middleware.NewRateLimiter(cfg.AI.RateRPS, cfg.AI.RateBurst, middleware.KeyByUserOrIP())
	generation.RegisterRoutes(protected, generation.NewHandler(generationService), aiLimiter.Handler())

	internal := r.Group("/internal", middleware.InternalTokenAuth(cfg.InternalToken))
	internal.POST("/designers/reindex", func(c *gin.Context) {
		if err := designerService.Reindex(c.Request.Context()); err != nil {
			middleware.LoggerFrom(c).Error().Err(err).Msg("designer reindex failed")
			response.Internal(c)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"reindexed": true})
	})

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Route not found")
	})

	return &Server{
		Engine:        r,
		Designers:     designerService,
		Notifications: notificationService,
	}
}
