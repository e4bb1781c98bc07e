// Package server wires configuration, logging, metrics, the filesystem
// driver, the job host and the profile store into one HTTP server.
package server

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/filedock/backend/internal/api/http"
	"github.com/filedock/backend/internal/api/middleware"
	"github.com/filedock/backend/internal/filesystem"
	"github.com/filedock/backend/internal/infrastructure/config"
	"github.com/filedock/backend/internal/infrastructure/logging"
	"github.com/filedock/backend/internal/infrastructure/monitoring"
	"github.com/filedock/backend/internal/jobs"
	"github.com/filedock/backend/internal/profiles"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	router  *gin.Engine
	driver  *filesystem.Driver
	host    *jobs.Host
	runner  *jobs.Runner
	store   *profiles.Store
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer creates a server instance from configuration.
func NewServer(cfg *config.Config) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		l, err := logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			Development: false,
			OutputPaths: []string{"stdout"},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build logger: %w", err)
		}
		logger = l
	}

	logger.Info("Initializing Filedock Server",
		zap.String("port", cfg.Server.Port),
		zap.String("root", cfg.Storage.Root),
	)

	metrics := monitoring.NewMetrics()

	if err := os.MkdirAll(cfg.Storage.Root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}

	driver := filesystem.New(filesystem.Options{
		Root:         cfg.Storage.Root,
		MaxTextBytes: cfg.Text.MaxBytes,
		Logger:       logger,
	})

	host := jobs.NewHost(driver, logger, func(n jobs.Notification) {
		logger.Info("notification",
			zap.String("level", string(n.Level)),
			zap.String("title", n.Title),
			zap.String("message", n.Message),
		)
	}).WithRecorder(metrics)

	var runner *jobs.Runner
	if cfg.Jobs.TasksFile != "" {
		tasks, err := jobs.LoadTasks(cfg.Jobs.TasksFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load scheduled tasks: %w", err)
		}
		runner = jobs.NewRunner(host, logger, tasks)
		runner.Start()
		logger.Info("task runner started", zap.Int("tasks", len(tasks)))
	}

	store, err := profiles.Open(cfg.Profiles.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile store: %w", err)
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(metrics.Middleware())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(driver, host, store, metrics, logger)

	router.GET("/", handlers.Root)

	// Filesystem operations
	router.GET("/fs/list", handlers.List)
	router.POST("/fs/create", handlers.Create)
	router.POST("/fs/rename", handlers.Rename)
	router.POST("/fs/delete", handlers.Delete)
	router.POST("/fs/copy", handlers.Copy)
	router.GET("/fs/properties", handlers.Properties)
	router.GET("/fs/load", handlers.Load)
	router.POST("/fs/save", handlers.Save)
	router.GET("/fs/find", handlers.Find)

	// Archive jobs
	router.POST("/jobs/compress", handlers.StartCompress)
	router.POST("/jobs/extract", handlers.StartExtract)
	router.GET("/jobs", handlers.ListJobs)
	router.GET("/jobs/:id", handlers.GetJob)
	router.POST("/jobs/:id/cancel", handlers.CancelJob)

	// Connection profiles
	router.GET("/profiles", handlers.ListProfiles)
	router.POST("/profiles", handlers.SaveProfile)
	router.DELETE("/profiles/:id", handlers.DeleteProfile)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router:  router,
		driver:  driver,
		host:    host,
		runner:  runner,
		store:   store,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	if s.runner != nil {
		s.runner.Stop()
		s.logger.Info("Stopped task runner")
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error("Failed to close profile store", zap.Error(err))
		return fmt.Errorf("failed to close profile store: %w", err)
	}

	s.logger.Sync()
	return nil
}
