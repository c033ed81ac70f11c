package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spacesedan/ideiamap/internal/export"
	"github.com/spacesedan/ideiamap/internal/store"
)

const (
	API_PREFIX       = "/api/v1"
	MAX_UPLOAD_BYTES = "32M"
	SHUTDOWN_TIMEOUT = 10 * time.Second
)

type Server struct {
	Echo     *echo.Echo
	registry *store.Registry
	exporter *export.Exporter
	healthy  *atomic.Bool
}

// New builds the HTTP API. exporter and healthy may be nil.
func New(registry *store.Registry, exporter *export.Exporter, healthy *atomic.Bool) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(MAX_UPLOAD_BYTES))
	e.Use(requestLogger)

	s := &Server{
		Echo:     e,
		registry: registry,
		exporter: exporter,
		healthy:  healthy,
	}
	s.initRoutes()
	return s
}

func (s *Server) initRoutes() {
	s.Echo.GET("/healthz", s.Health)
	s.Echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.Echo.Group(API_PREFIX)
	api.POST("/sessions", s.CreateSession)
	api.DELETE("/sessions/:id", s.DeleteSession)

	sessions := api.Group("/sessions/:id", s.withSession)
	sessions.POST("/batch", s.LoadBatch)
	sessions.POST("/ideas", s.AddIdea)
	sessions.GET("/records", s.GetRecords)
	sessions.DELETE("/records", s.ResetRecords)
	sessions.GET("/markers", s.GetMarkers)
	sessions.GET("/table", s.GetTable)
	sessions.POST("/export", s.ExportRecords)
}

func (s *Server) Start(addr string) error {
	slog.Info("[Server] Listening", slog.String("addr", addr))
	if err := s.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, SHUTDOWN_TIMEOUT)
	defer cancel()
	slog.Info("[Server] Shutting down")
	return s.Echo.Shutdown(ctx)
}

func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		slog.Debug("[Server] Request handled",
			slog.String("method", c.Request().Method),
			slog.String("path", c.Path()),
			slog.Int("status", c.Response().Status),
			slog.Duration("elapsed", time.Since(start)))
		return nil
	}
}
