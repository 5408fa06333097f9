package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"StockX/pkg/http/middleware"
	"StockX/pkg/logger"
)

type ServerOption func(*serverConfig)

type serverConfig struct {
	addr         string
	readTimeout  time.Duration
	writeTimeout time.Duration
	cors         bool
	metricsPath  string
	slowRequest  time.Duration
	log          *logger.Logger
}

// Server is the Echo server behind the prediction API. Training requests
// are synchronous, so the write timeout is long by default.
type Server struct {
	echo *echo.Echo
	addr string
	log  *logger.Logger
}

// NewServer builds the middleware chain and registers handler's routes.
// Metrics are off unless WithMetrics is given.
func NewServer(handler Handler, opts ...ServerOption) *Server {
	cfg := &serverConfig{
		addr:         ":8000",
		readTimeout:  15 * time.Second,
		writeTimeout: 10 * time.Minute,
		cors:         true,
		log:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.readTimeout
	e.Server.WriteTimeout = cfg.writeTimeout

	e.Use(middleware.Recover(cfg.log))
	e.Use(middleware.RequestLogging(cfg.log))
	if cfg.metricsPath != "" {
		e.Use(middleware.Metrics(cfg.log, cfg.slowRequest))
		e.GET(cfg.metricsPath, echo.WrapHandler(promhttp.Handler()))
	}
	if cfg.cors {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}
	if handler != nil {
		handler.RegisterRoutes(e)
	}

	return &Server{echo: e, addr: cfg.addr, log: cfg.log}
}

// Start binds the listener and serves in the background. A bind failure
// is returned to the caller.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.echo.Listener = ln
	s.log.Info("http server listening", logger.String("addr", ln.Addr().String()))

	go func() {
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("http server error", logger.Error(err))
		}
	}()
	return nil
}

// Addr reports the bound address once Start has returned.
func (s *Server) Addr() string {
	if s.echo.Listener != nil {
		return s.echo.Listener.Addr().String()
	}
	return s.addr
}

func (s *Server) Stop(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	s.log.Info("http server stopped")
	return nil
}

func (s *Server) Echo() *echo.Echo { return s.echo }

func WithAddr(host string, port int) ServerOption {
	return func(c *serverConfig) {
		c.addr = net.JoinHostPort(host, strconv.Itoa(port))
	}
}

func WithTimeouts(read, write time.Duration) ServerOption {
	return func(c *serverConfig) {
		c.readTimeout = read
		c.writeTimeout = write
	}
}

func WithCORS(enabled bool) ServerOption {
	return func(c *serverConfig) {
		c.cors = enabled
	}
}

// WithMetrics mounts the Prometheus scrape endpoint at path and records
// request metrics. Requests slower than slow are logged at warn.
func WithMetrics(path string, slow time.Duration) ServerOption {
	return func(c *serverConfig) {
		c.metricsPath = path
		c.slowRequest = slow
	}
}

func WithLogger(l *logger.Logger) ServerOption {
	return func(c *serverConfig) {
		if l != nil {
			c.log = l
		}
	}
}
