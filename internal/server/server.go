package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"github.com/shinyyama/reconnect/internal/events"
	"github.com/shinyyama/reconnect/internal/handler"
	"github.com/shinyyama/reconnect/internal/media"
	"github.com/shinyyama/reconnect/internal/reqctx"
	"github.com/shinyyama/reconnect/internal/repository"
	"github.com/shinyyama/reconnect/internal/service"
	"gorm.io/gorm"
)

type Options struct {
	Repo      repository.FoundItemRepository
	Media     media.Store
	Publisher events.Publisher
	// StaticRoot is served under /uploads; empty disables the mount (remote media backends).
	StaticRoot     string
	MaxUploadBytes int64
	CORSOrigins    []string
}

type Server struct {
	e    *echo.Echo
	repo repository.FoundItemRepository
}

func New(opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, rid string) {
			req := c.Request()
			c.SetRequest(req.WithContext(reqctx.WithRID(req.Context(), rid)))
		},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info().
				Str("rid", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("HTTP request")
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType},
		AllowOriginFunc: func(origin string) (bool, error) {
			for _, o := range opts.CORSOrigins {
				if o == "*" || strings.EqualFold(strings.TrimSuffix(o, "/"), origin) {
					return true, nil
				}
			}
			return false, nil
		},
	}))

	intakeSvc := service.NewIntakeService(opts.Repo, opts.Media, opts.Publisher)
	searchSvc := service.NewSearchService(opts.Repo)
	foundHandler := handler.NewFoundHandler(intakeSvc, opts.MaxUploadBytes)
	searchHandler := handler.NewSearchHandler(searchSvc)
	healthHandler := handler.NewHealthHandler(opts.Repo)

	e.GET("/healthz", healthHandler.Get)

	if opts.StaticRoot != "" {
		e.Static("/uploads", opts.StaticRoot)
	}

	api := e.Group("/api")
	api.POST("/found/upload", foundHandler.Upload)
	api.GET("/search", searchHandler.Search)
	api.GET("/contact/:item_id", searchHandler.Contact)

	return &Server{e: e, repo: opts.Repo}
}

func (s *Server) Start(addr string) error {
	log.Info().Str("addr", addr).Msg("starting server")
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) SetDB(db *gorm.DB) {
	if s.repo != nil {
		s.repo.SetDB(db)
	}
}
