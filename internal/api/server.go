package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/trendfarm/internal/avatar"
	"github.com/trendfarm/internal/config"
	"github.com/trendfarm/internal/generation"
	"github.com/trendfarm/internal/media/imaging"
	"github.com/trendfarm/internal/research"
	"github.com/trendfarm/pkg/logger"
)

// Server is the HTTP API
type Server struct {
	echo *echo.Echo
	cfg  config.ServerConfig
	log  *logger.Logger
}

// NewServer builds the echo instance with middleware and every route of h
func NewServer(cfg config.ServerConfig, h *Handler, log *logger.Logger) *Server {
	s := &Server{
		echo: echo.New(),
		cfg:  cfg,
		log:  log.WithComponent("api"),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = s.httpErrorHandler

	s.setupMiddleware()
	h.RegisterRoutes(s.echo)
	return s
}

func (s *Server) setupMiddleware() {
	e := s.echo

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := s.log.Info()
			if v.Error != nil {
				ev = s.log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("Request")
			return nil
		},
	}))

	e.Use(middleware.Recover())

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))

	if s.cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(s.cfg.BodyLimit))
	}
}

// ServeHTTP lets the server be mounted or tested as a plain handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start serves on the configured port until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := ":" + s.cfg.Port
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("API server listening")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info().Msg("Shutting down API server")
	return s.echo.Shutdown(shutdownCtx)
}

// httpErrorHandler renders every error as {"error": message}
func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, msg := statusFor(err)
	if code >= 500 {
		s.log.Error().Err(err).Str("uri", c.Request().RequestURI).Int("status", code).Msg("Request failed")
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, echo.Map{"error": msg})
}

func statusFor(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil && he.Message == nil {
			return he.Code, he.Internal.Error()
		}
		return he.Code, fmt.Sprint(he.Message)
	}

	var missing *config.MissingError
	switch {
	case errors.As(err, &missing):
		return http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, imaging.ErrUndecodable),
		errors.Is(err, generation.ErrInvalidRigMethod),
		errors.Is(err, generation.ErrImageFetch),
		errors.Is(err, research.ErrInvalidURL):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, avatar.ErrTimedOut), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, err.Error()
	case errors.Is(err, avatar.ErrFailed), errors.Is(err, avatar.ErrUnexpectedResponse):
		return http.StatusBadGateway, err.Error()
	}
	return http.StatusInternalServerError, err.Error()
}
