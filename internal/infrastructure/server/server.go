package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/webshell/backend/internal/api/http"
	"github.com/GriffinCanCode/webshell/backend/internal/api/middleware"
	"github.com/GriffinCanCode/webshell/backend/internal/api/ws"
	"github.com/GriffinCanCode/webshell/backend/internal/domain/navigation"
	"github.com/GriffinCanCode/webshell/backend/internal/domain/pathconfig"
	"github.com/GriffinCanCode/webshell/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/webshell/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/webshell/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webshell/backend/internal/providers/document"
	"github.com/GriffinCanCode/webshell/backend/internal/providers/http/client"
	"github.com/GriffinCanCode/webshell/backend/internal/providers/redirect"
	"github.com/GriffinCanCode/webshell/backend/internal/shell"
)

// DefaultDestinations are the screens every server can present.
func DefaultDestinations() navigation.Destinations {
	return navigation.Destinations{
		pathconfig.DefaultURI:                navigation.KindScreen,
		"hotwire://fragment/web/modal":       navigation.KindScreen,
		"hotwire://fragment/web/modal/sheet": navigation.KindOverlay,
	}
}

// Options supplies dependencies that are not read from the environment.
type Options struct {
	// Bundle holds the bundled path configuration file. When nil the file
	// is read from disk.
	Bundle       fs.FS
	Destinations navigation.Destinations
	Logger       *logging.Logger
}

// Server wraps the HTTP server and dependencies
type Server struct {
	router     *gin.Engine
	registry   *shell.Registry
	pathConfig *pathconfig.Configuration
	client     *client.Client
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, opts Options) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		var err error
		logger, err = logging.New(logging.Config{Level: cfg.Logging.Level, Development: cfg.Logging.Development})
		if err != nil {
			return nil, err
		}
	}
	if opts.Destinations == nil {
		opts.Destinations = DefaultDestinations()
	}

	logger.Info("Initializing WebShell server",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("start", cfg.Shell.StartLocation),
		zap.String("path_config_file", cfg.PathConfig.AssetFile),
		zap.String("path_config_url", cfg.PathConfig.RemoteURL),
	)

	metrics := monitoring.NewMetrics()

	httpClient := client.New(client.Config{
		Timeout:      cfg.HTTP.Timeout,
		RetryCount:   cfg.HTTP.RetryCount,
		UserAgent:    cfg.HTTP.UserAgent,
		RateLimit:    cfg.HTTP.RateLimit,
		MaxRedirects: cfg.HTTP.MaxRedirects,
		Metrics:      metrics,
	})

	pathConfig := pathconfig.New(pathconfig.Config{
		Debug:      cfg.Shell.Debug,
		Logger:     logger.Component("pathconfig"),
		Repository: pathconfig.NewRepository(httpClient, opts.Bundle, cfg.PathConfig.CacheDir),
		Metrics:    metrics,
	})

	registry := shell.NewRegistry(shell.Options{
		StartLocation:  cfg.Shell.StartLocation,
		PathConfig:     pathConfig,
		Destinations:   opts.Destinations,
		Prober:         redirect.NewHandler(httpClient, logger.Component("redirect"), metrics),
		Titles:         document.NewExtractor(),
		ThrottleWindow: cfg.Shell.ProposalThrottle,
		ProbeTimeout:   cfg.Shell.RedirectProbeTimeout,
		Logger:         logger.Component("shell"),
		Metrics:        metrics,
	})

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.Recovery(logger.Logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.Component("http")))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.Shell.AllowedOrigins...)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		limits := middleware.DefaultRateLimitConfig()
		limits.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		limits.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(limits))
	}

	handlers := apihttp.NewHandlers(registry, pathConfig, httpClient, logger.Component("api"))
	handlers.Register(router)

	bridge := ws.NewHandler(registry, ws.Config{AllowedOrigins: cfg.Shell.AllowedOrigins}, logger.Component("bridge"), metrics)
	router.GET("/bridge", bridge.HandleConnection)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router:     router,
		registry:   registry,
		pathConfig: pathConfig,
		client:     httpClient,
		logger:     logger,
		config:     cfg,
		metrics:    metrics,
	}, nil
}

// Router exposes the HTTP handler.
func (s *Server) Router() http.Handler {
	return s.router
}

// LoadPathConfiguration applies the bundled and cached path configuration
// and starts the remote download. The returned channel reports the remote
// outcome.
func (s *Server) LoadPathConfiguration(ctx context.Context) <-chan error {
	return s.pathConfig.Load(ctx, pathconfig.Location{
		AssetFilePath: s.config.PathConfig.AssetFile,
		RemoteFileURL: s.config.PathConfig.RemoteURL,
	})
}

// Run serves HTTP until ctx ends, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	remote := s.LoadPathConfiguration(ctx)
	go func() {
		if err := <-remote; err != nil {
			s.logger.Warn("Remote path configuration unavailable, using local copy", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:              s.config.Server.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	return err
}

// Close stops every shell and flushes the logger
func (s *Server) Close() {
	s.logger.Info("Shutting down server...", zap.Int("shells", s.registry.Count()))
	s.registry.CloseAll()
	_ = s.logger.Sync()
}
