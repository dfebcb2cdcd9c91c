package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/callwise/staffing/api/handlers"
	"github.com/callwise/staffing/api/middleware"
	"github.com/callwise/staffing/api/websocket"
	"github.com/callwise/staffing/internal/auth"
	"github.com/callwise/staffing/internal/events"
	"github.com/callwise/staffing/internal/planner"
	"github.com/callwise/staffing/pkg/config"
	"github.com/callwise/staffing/pkg/database"
	"github.com/callwise/staffing/pkg/database/queries"
)

type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	config      *config.Config
	db          *database.DB
	authService *auth.Service
	planner     *planner.Planner
	publisher   *events.Publisher
	wsHub       *websocket.Hub
	wsBridge    *websocket.EventBridge
}

func NewServer(cfg *config.Config, db *database.DB, pl *planner.Planner, bus *events.EventBus, publisher *events.Publisher) *Server {
	if cfg.API.JWTSecret == "" || cfg.API.JWTSecret == "change-me-in-production" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	authService := auth.NewService(cfg.API.JWTSecret, cfg.API.JWTDuration)
	wsHub := websocket.NewHub(&cfg.WebSocket)

	s := &Server{
		router:      router,
		config:      cfg,
		db:          db,
		authService: authService,
		planner:     pl,
		publisher:   publisher,
		wsHub:       wsHub,
	}

	s.setupMiddleware()
	s.setupRoutes()

	go wsHub.Run()

	// Forward bus events (plans, queue changes, alerts) to websocket clients.
	if bus != nil {
		s.wsBridge = websocket.NewEventBridge(wsHub, bus.SubscribeAll())
		s.wsBridge.Start()
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.CORS(s.corsConfig()))
	s.router.Use(middleware.SecurityHeaders())
	s.router.Use(middleware.RequestLogger())
	s.router.Use(middleware.TraceID())
	s.router.Use(middleware.RequestSizeLimit(s.config.API.MaxRequestSize))

	rateLimiter := middleware.NewRateLimiter(s.config.API.RateLimit, time.Minute)
	s.router.Use(middleware.RateLimit(rateLimiter))
}

func (s *Server) corsConfig() middleware.CORSConfig {
	cors := s.config.API.CORS
	if len(cors.AllowedOrigins) == 0 {
		return middleware.DefaultCORSConfig()
	}
	return middleware.CORSConfig{
		AllowOrigins:     cors.AllowedOrigins,
		AllowMethods:     cors.AllowedMethods,
		AllowHeaders:     cors.AllowedHeaders,
		ExposeHeaders:    cors.ExposedHeaders,
		AllowCredentials: cors.AllowCredentials,
	}
}

func (s *Server) setupRoutes() {
	userRepo := queries.NewUserRepository(s.db.DB)
	queueRepo := queries.NewQueueRepository(s.db.DB)
	planRepo := queries.NewPlanRepository(s.db.DB)
	eventRepo := queries.NewEventRepository(s.db.DB)

	healthHandler := handlers.NewHealthHandler(s.db)
	authHandler := handlers.NewAuthHandler(userRepo, s.authService)
	queueHandler := handlers.NewQueueHandler(queueRepo, s.publisher)
	staffingHandler := handlers.NewStaffingHandler(s.planner, planRepo, queueRepo, eventRepo, &s.config.API)

	// Public routes
	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)

	// Auth routes
	authLimiter := middleware.AuthRateLimiter()
	s.router.POST("/auth/register", authLimiter, authHandler.Register)
	s.router.POST("/auth/login", authLimiter, authHandler.Login)

	// WebSocket route
	s.router.GET("/ws", websocket.ServeWebSocket(s.wsHub))

	// Protected routes
	protected := s.router.Group("/")
	protected.Use(middleware.JWTAuth(s.authService))
	{
		// Queues
		protected.GET("/queues", queueHandler.List)
		protected.POST("/queues", queueHandler.Create)
		protected.GET("/queues/:id", queueHandler.Get)
		protected.PUT("/queues/:id", queueHandler.Update)
		protected.DELETE("/queues/:id", queueHandler.Delete)

		// Staffing plans
		protected.POST("/queues/:id/plans", staffingHandler.CreatePlan)
		protected.GET("/queues/:id/plans", staffingHandler.GetPlans)
		protected.GET("/queues/:id/plans/latest", staffingHandler.GetLatestPlan)

		// Events
		protected.GET("/queues/:id/events", staffingHandler.GetEvents)
		protected.GET("/events/recent", staffingHandler.GetRecentEvents)

		// Stateless calculator
		protected.POST("/staffing/metrics", staffingHandler.ComputeMetrics)
		protected.POST("/staffing/requirements", staffingHandler.ComputeRequirements)
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.API.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.API.ReadTimeout,
		WriteTimeout: s.config.API.WriteTimeout,
		IdleTimeout:  s.config.API.IdleTimeout,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	// Stop forwarding events before the hub drains.
	if s.wsBridge != nil {
		s.wsBridge.Stop()
	}

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}
