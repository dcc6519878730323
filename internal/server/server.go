// Package server exposes the predictor over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gavl-predictor/internal/common/config"
	"gavl-predictor/internal/common/logger"
	"gavl-predictor/internal/common/observability"
	"gavl-predictor/internal/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Predictor is the ensemble pipeline behind POST /api/predict.
type Predictor interface {
	Predict(ctx context.Context, in models.CaseInput) (*models.PredictionResponse, error)
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type Server struct {
	cfg       config.ServerConfig
	app       config.AppConfig
	engine    *gin.Engine
	http      *http.Server
	predictor Predictor
	logger    logger.Logger
	obs       *observability.Observability
	checks    map[string]ReadinessCheck
	metrics   string
	now       func() time.Time
}

type Option func(*Server)

func WithObservability(obs *observability.Observability) Option {
	return func(s *Server) {
		if obs != nil {
			s.obs = obs
		}
	}
}

// WithReadinessCheck adds a named dependency probe to GET /ready.
func WithReadinessCheck(name string, check ReadinessCheck) Option {
	return func(s *Server) { s.checks[name] = check }
}

func WithAppInfo(app config.AppConfig) Option {
	return func(s *Server) { s.app = app }
}

// WithMetricsPath mounts promhttp at path; an empty path disables it.
func WithMetricsPath(path string) Option {
	return func(s *Server) { s.metrics = path }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func New(cfg config.ServerConfig, predictor Predictor, log logger.Logger, opts ...Option) *Server {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	s := &Server{
		cfg:       cfg,
		predictor: predictor,
		logger:    log.WithFields(map[string]interface{}{"component": "http"}),
		obs:       observability.NewNoop(),
		checks:    map[string]ReadinessCheck{},
		metrics:   "/metrics",
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine = s.setupRouter()
	s.http = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.engine,
		ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.WriteTimeout),
	}
	return s
}

func (s *Server) setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(cors.New(corsConfig(s.cfg.CORSOrigins)))
	router.Use(s.accessLog())

	router.OPTIONS("/api/predict", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.POST("/api/predict", s.handlePredict)

	router.GET("/health", s.handleHealth)
	router.GET("/ready", s.handleReady)
	if s.metrics != "" {
		router.GET(s.metrics, gin.WrapH(promhttp.Handler()))
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodPost, http.MethodGet, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

// Handler returns the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", map[string]interface{}{"addr": s.http.Addr})
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down", nil)
	return s.http.Shutdown(ctx)
}
