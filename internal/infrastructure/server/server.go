package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/labelboard/backend/internal/api/http"
	"github.com/labelboard/backend/internal/api/middleware"
	"github.com/labelboard/backend/internal/api/ws"
	"github.com/labelboard/backend/internal/domain/history"
	"github.com/labelboard/backend/internal/domain/session"
	"github.com/labelboard/backend/internal/domain/store"
	"github.com/labelboard/backend/internal/domain/view"
	"github.com/labelboard/backend/internal/events"
	"github.com/labelboard/backend/internal/infrastructure/config"
	"github.com/labelboard/backend/internal/infrastructure/logging"
	"github.com/labelboard/backend/internal/infrastructure/monitoring"
	"github.com/labelboard/backend/internal/transport"
)

// Server wraps the HTTP server and the orchestrator it owns
type Server struct {
	router  *gin.Engine
	http    *http.Server
	session *session.Session
	logger  *logging.Logger
	config  *config.Config
}

// NewServer assembles the orchestrator and its API surface
func NewServer(cfg *config.Config) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("initializing labelboard backend",
		zap.String("port", cfg.Server.Port),
		zap.String("remote", cfg.Remote.BaseURL),
	)

	metrics := monitoring.NewMetrics(nil)

	remote := transport.New(transport.Config{
		BaseURL:      cfg.Remote.BaseURL,
		Token:        cfg.Remote.Token,
		Timeout:      cfg.Remote.Timeout,
		RetryMax:     cfg.Remote.RetryMax,
		RetryWaitMin: cfg.Remote.RetryWaitMin,
		RetryWaitMax: cfg.Remote.RetryWaitMax,

		RequestsPerSecond: cfg.Remote.RequestsPerSecond,
	}).WithLogger(logger).WithMetrics(metrics)

	bus := events.NewBus()
	notifier := events.NewNotifier(bus)
	views := view.NewHub(bus)
	stores := store.NewRegistry()
	nav := history.NewMemory()

	// YAML presets give the hub defaults before the remote adds its views.
	seeder := view.NewSeeder(cfg.Views.PresetsDir, logger)
	if defs, err := seeder.Seed(); err != nil {
		logger.Warn("failed to seed view presets", zap.Error(err))
	} else {
		views.Apply(defs)
	}

	pollInterval := cfg.Polling.Interval
	if !cfg.Polling.Enabled {
		pollInterval = 0
	}
	sess := session.New(remote, notifier, views, stores, nav, bus, pollInterval).
		WithLogger(logger).
		WithMetrics(metrics)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(sess, views, nav, logger)
	wsHandler := ws.NewHandler(bus, notifier, logger).WithMetrics(metrics)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Session state
	router.GET("/state", handlers.GetState)
	router.GET("/project", handlers.GetProject)
	router.GET("/errors", handlers.GetLastErrors)
	router.PUT("/mode", handlers.SetMode)

	// Labeling flow
	router.POST("/labeling/start", handlers.StartLabeling)
	router.POST("/labeling/close", handlers.CloseLabeling)
	router.POST("/tasks/select", handlers.SelectTask)
	router.DELETE("/tasks/select", handlers.ClearSelection)

	// Actions
	router.GET("/actions", handlers.ListActions)
	router.POST("/actions/:id", handlers.InvokeAction)

	// Views
	router.GET("/views", handlers.ListViews)
	router.POST("/views/:id/select", handlers.SelectView)
	router.PATCH("/views/:id/selection", handlers.UpdateViewSelection)

	// Navigation
	router.GET("/navigation", handlers.GetNavigation)
	router.POST("/navigation/back", handlers.NavigateBack)
	router.POST("/navigation/forward", handlers.NavigateForward)

	// Event stream + metrics
	router.GET("/ws", wsHandler.HandleConnection)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &Server{
		router:  router,
		session: sess,
		logger:  logger,
		config:  cfg,
	}, nil
}

// Load runs the session's initial load sequence
func (s *Server) Load(ctx context.Context) error {
	return s.session.Load(ctx)
}

// Session exposes the orchestrator (tests and shutdown hooks)
func (s *Server) Session() *session.Session {
	return s.session
}

// Run starts the HTTP server and blocks until it stops
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("starting HTTP server", zap.String("addr", addr))

	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Close tears down the session (polling, navigation listener) and stops the
// HTTP server.
func (s *Server) Close() error {
	s.logger.Info("shutting down")
	s.session.Close()

	if s.http != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.http.Shutdown(ctx); err != nil {
			return err
		}
	}

	s.logger.Sync()
	return nil
}
