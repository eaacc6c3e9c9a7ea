package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"twason/internal/app/adapters/http/handlers"
	"twason/internal/app/adapters/http/middlewares"
	"twason/internal/app/infrastructure/config"
	"twason/internal/app/ports"
	"twason/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

type Router struct {
	router      *gin.Engine
	handlers    *handlers.Handlers
	middlewares *middlewares.Middlewares

	log  logger.Logger
	addr string
}

// NewRouter serves health and status. When an auth token is set, /status
// needs it as a bearer token and /metrics and pprof need it as the
// "admin" basic auth password.
func NewRouter(log logger.Logger, app config.App, channel string, stats ports.StatsPort) *Router {
	gin.SetMode(gin.ReleaseMode)

	r := &Router{
		router:      gin.New(),
		handlers:    handlers.New(log, stats, channel),
		middlewares: middlewares.New(log),
		log:         log,
		addr:        app.HTTPAddr,
	}
	r.router.Use(gin.Recovery(), r.middlewares.Logger())

	r.router.GET("/healthz", r.handlers.HealthzHandler)

	if app.AuthToken == "" {
		r.router.GET("/status", r.handlers.StatusHandler)
		r.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		return r
	}

	r.router.GET("/status", r.middlewares.Auth(app.AuthToken), r.handlers.StatusHandler)

	admin := gin.BasicAuth(gin.Accounts{"admin": app.AuthToken})
	r.router.GET("/metrics", admin, gin.WrapH(promhttp.Handler()))
	pprof.RouteRegister(r.router.Group("/", admin))

	return r
}

func (r *Router) Handler() http.Handler {
	return r.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (r *Router) Run(ctx context.Context) error {
	srv := r.newServer(r.addr, r.router)

	errCh := make(chan error, 1)
	go func() {
		r.log.Info("HTTP server listening", slog.String("addr", r.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (r *Router) newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       30 * time.Second,
	}
}
