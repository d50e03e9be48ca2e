package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sharadkumardubey/billify-trip-generator/internal/config"
	"github.com/sharadkumardubey/billify-trip-generator/internal/handlers"
	"github.com/sharadkumardubey/billify-trip-generator/internal/logging"
	"github.com/sharadkumardubey/billify-trip-generator/internal/metrics"
	"github.com/sharadkumardubey/billify-trip-generator/internal/middleware"
)

// Options carries the collaborators the router needs besides handlers.
type Options struct {
	Resolver    middleware.SessionResolver
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	RateLimiter *middleware.RateLimiter
	Logger      *logging.LoggerV2
}

type Server struct {
	config     *config.Config
	router     *gin.Engine
	httpServer *http.Server
	logger     *logging.LoggerV2
}

func New(h *handlers.Handlers, cfg *config.Config, opts Options) *Server {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.SecurityHeaders(),
		middleware.RequestLogger(opts.Logger),
		middleware.Metrics(opts.Metrics),
	)
	if opts.RateLimiter != nil {
		router.Use(middleware.RateLimit(opts.RateLimiter, opts.Metrics))
	}

	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	h.RegisterRoutes(router, middleware.RequireSession(opts.Resolver, opts.Logger))

	return &Server{
		config: cfg,
		router: router,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		logger: opts.Logger,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", logging.Fields{"addr": s.httpServer.Addr})
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
