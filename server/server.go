// Package server exposes feed building over HTTP.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"ytshorts/feed"
	ythttp "ytshorts/http"
	"ytshorts/internal/logging"
	"ytshorts/youtube"
)

// Response content types.
const (
	MIMEAtom     = "application/atom+xml; charset=utf-8"
	MIMEJSONFeed = "application/feed+json; charset=utf-8"
)

// FeedBuilder builds a feed for a source. *feed.Builder implements it.
type FeedBuilder interface {
	Build(ctx context.Context, src youtube.Source, limit int) (*feed.Feed, error)
}

// Server serves Shorts feeds.
type Server struct {
	echo       *echo.Echo
	builder    FeedBuilder
	metrics    http.Handler
	logger     *slog.Logger
	retryAfter time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithMetricsHandler serves h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRetryAfter sets the Retry-After header sent with 429 responses.
func WithRetryAfter(d time.Duration) Option {
	return func(s *Server) { s.retryAfter = d }
}

// New creates a server and registers its routes.
func New(builder FeedBuilder, opts ...Option) *Server {
	s := &Server{builder: builder}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrDefault(s.logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			)
			return nil
		},
	}))

	e.GET("/feed", s.handleFeed)
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if s.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.metrics))
	}

	s.echo = e
	return s
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleFeed(c echo.Context) error {
	src, err := youtube.ParseSource(c.QueryParam("u"), c.QueryParam("c"), c.QueryParam("custom"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "one of u, c or custom is required")
	}

	limit, err := parseLimit(c.QueryParam("item_limit"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	format := c.QueryParam("format")
	if format == "" {
		format = "atom"
	}
	if format != "atom" && format != "json" {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown format %q", format))
	}

	f, err := s.builder.Build(c.Request().Context(), src, limit)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if format == "json" {
		if err := feed.WriteJSON(&buf, f); err != nil {
			return err
		}
		return c.Blob(http.StatusOK, MIMEJSONFeed, buf.Bytes())
	}
	if err := feed.WriteAtom(&buf, f); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, MIMEAtom, buf.Bytes())
}

// parseLimit reads item_limit. Empty means the builder default; values above
// the maximum are capped.
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("item_limit must be a positive integer")
	}
	return min(n, feed.DefaultItemLimit), nil
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		code int
		msg  string
	)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	} else {
		code, msg = StatusFor(err)
	}

	if code == http.StatusTooManyRequests && s.retryAfter > 0 {
		c.Response().Header().Set("Retry-After", strconv.Itoa(int(s.retryAfter.Seconds())))
	}
	if code >= http.StatusInternalServerError {
		s.logger.Error("feed request failed", "uri", c.Request().RequestURI, "status", code, "error", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, map[string]string{"error": msg})
	}
	if err != nil {
		s.logger.Error("write error response", "error", err)
	}
}

// StatusFor maps a build error to an HTTP status and a client-facing message.
func StatusFor(err error) (int, string) {
	var httpErr *ythttp.HTTPError
	switch {
	case errors.Is(err, youtube.ErrInvalidSource):
		return http.StatusBadRequest, "invalid source"
	case errors.Is(err, feed.ErrRateLimited), ythttp.IsRateLimited(err):
		return http.StatusTooManyRequests, "rate limited by YouTube, try again later"
	case errors.Is(err, youtube.ErrStructuralData), errors.Is(err, youtube.ErrNoInitialData):
		return http.StatusBadGateway, "unable to get data from YouTube"
	case errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound:
		return http.StatusNotFound, "channel not found"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "YouTube did not respond in time"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
