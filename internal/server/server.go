package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"timecast/internal/auth"
	"timecast/internal/config"
	"timecast/internal/models"
	"timecast/internal/store"
)

// Generator runs one full podcast generation; satisfied by
// pipeline.Generator and mocked in tests.
type Generator interface {
	Run(ctx context.Context, req models.GenerationRequest, user models.User) (models.PodcastRecord, error)
}

type Server struct {
	echo      *echo.Echo
	cfg       *config.Config
	records   *store.RecordStore
	blobs     *store.BlobStore
	verifier  auth.Verifier
	generator Generator
	log       *slog.Logger
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

func New(cfg *config.Config, records *store.RecordStore, blobs *store.BlobStore, verifier auth.Verifier, generator Generator, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{validate: validator.New()}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency)
			return nil
		},
	}))

	s := &Server{
		echo:      e,
		cfg:       cfg,
		records:   records,
		blobs:     blobs,
		verifier:  verifier,
		generator: generator,
		log:       log,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.echo

	e.POST("/api/auth/google", s.handleGoogleAuth)
	e.GET("/api/config", s.handleConfig)

	e.POST("/api/podcasts", s.handleGenerate)
	e.GET("/api/podcasts/:id", s.handleGetPublic)

	e.POST("/api/my/podcasts", s.handleListMine)
	e.POST("/api/my/podcasts/clear-all", s.handleClearAll)
	e.POST("/api/my/podcasts/:id", s.handleGetMine)
	e.POST("/api/my/podcasts/:id/delete", s.handleDeleteMine)

	e.Static("/audio", s.blobs.Dir())
}

func (s *Server) Start() error {
	return s.echo.Start(":" + s.cfg.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the routing tree for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
