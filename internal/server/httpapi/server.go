// Package httpapi exposes the auth endpoints over HTTP/JSON using echo.
//
// Routes:
//
//	POST /api/auth/register  {username,email,password} -> 201 {message}
//	POST /api/auth/login     {email,password}          -> 200 {message,token,user}
//	POST /api/auth/logout                              -> 200 {message}
//	GET  /api/auth/profile   Authorization: Bearer ... -> 200 {user}
//	GET  /health                                       -> 200 {status}
//
// Every failure is rendered as {"code","message"} (plus "fields" for
// validation errors).
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/cakelibrary/internal/logging"
	"github.com/dmitrijs2005/cakelibrary/internal/server/models"
	"github.com/dmitrijs2005/cakelibrary/internal/server/services"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// UserService is the part of services.UserService the handlers use.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context, userID string) (*models.User, error)
	Authenticate(token string) (string, error)
}

type Server struct {
	address         string
	shutdownTimeout time.Duration
	users           UserService
	logger          logging.Logger
	e               *echo.Echo
	listenAddr      atomic.Value
}

func NewServer(address string, shutdownTimeout time.Duration, l logging.Logger, us UserService) *Server {
	s := &Server{
		address:         address,
		shutdownTimeout: shutdownTimeout,
		users:           us,
		logger:          l.With("module", "http_server"),
	}
	s.e = s.newEcho()
	return s
}

func (s *Server) newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:     true,
		LogURI:        true,
		LogStatus:     true,
		LogLatency:    true,
		LogRequestID:  true,
		LogError:      true,
		HandleError:   true,
		LogValuesFunc: s.logRequest,
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))

	e.GET("/health", s.health)

	g := e.Group("/api/auth")
	g.POST("/register", s.register)
	g.POST("/login", s.login)
	g.POST("/logout", s.logout)
	g.GET("/profile", s.profile, s.requireAuth)

	return e
}

// Handler returns the routed echo instance, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.e
}

// Run listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully within the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	s.e.Listener = listen
	s.listenAddr.Store(listen.Addr())

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
		case <-done:
			return
		}
		s.logger.Info(ctx, "Stopping HTTP server...")

		shCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.e.Shutdown(shCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := s.e.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// ListenAddr is the bound address once Run has started listening, else nil.
func (s *Server) ListenAddr() net.Addr {
	a, _ := s.listenAddr.Load().(net.Addr)
	return a
}

func (s *Server) logRequest(c echo.Context, v middleware.RequestLoggerValues) error {
	ctx := c.Request().Context()
	args := []any{
		"method", v.Method,
		"uri", v.URI,
		"status", v.Status,
		"latency", v.Latency,
		"request_id", v.RequestID,
	}

	switch {
	case v.Status >= http.StatusInternalServerError:
		s.logger.Error(ctx, "request", append(args, "error", v.Error)...)
	case v.Error != nil:
		s.logger.Warn(ctx, "request", append(args, "error", v.Error)...)
	default:
		s.logger.Info(ctx, "request", args...)
	}
	return nil
}
