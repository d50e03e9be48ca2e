package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sharadkumardubey/billify-trip-generator/internal/auth"
	"github.com/sharadkumardubey/billify-trip-generator/internal/clients"
	"github.com/sharadkumardubey/billify-trip-generator/internal/config"
	"github.com/sharadkumardubey/billify-trip-generator/internal/events"
	"github.com/sharadkumardubey/billify-trip-generator/internal/handlers"
	"github.com/sharadkumardubey/billify-trip-generator/internal/logging"
	"github.com/sharadkumardubey/billify-trip-generator/internal/mailer"
	"github.com/sharadkumardubey/billify-trip-generator/internal/metrics"
	"github.com/sharadkumardubey/billify-trip-generator/internal/middleware"
	"github.com/sharadkumardubey/billify-trip-generator/internal/repository"
	"github.com/sharadkumardubey/billify-trip-generator/internal/server"
	"github.com/sharadkumardubey/billify-trip-generator/internal/service"
)

func main() {
	cfg := config.Load()

	logger := logging.NewLoggerV2(cfg.ServiceName)
	if err := cfg.Auth.Validate(); err != nil {
		logger.Fatal("Invalid auth configuration", logging.Fields{"error": err.Error()})
	}
	logging.Infof("Starting %s on port %d", cfg.ServiceName, cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", logging.Fields{"error": err.Error()})
	}
	defer db.Close()
	logger.Info("Database connected", logging.Fields{
		"host": cfg.Database.Host,
		"name": cfg.Database.Name,
	})

	if cfg.Features.AutoMigrate {
		if err := repository.Migrate(ctx, db.DB, "up"); err != nil {
			logger.Fatal("Failed to migrate database", logging.Fields{"error": err.Error()})
		}
	}

	cache := repository.NewRedisCache(cfg.Redis)
	defer cache.Close()

	m := metrics.New(prometheus.DefaultRegisterer)

	publisher := events.NewKafkaPublisher(cfg.Kafka, m, logging.NewLoggerV2("event-publisher"))
	defer publisher.Close()

	invoiceMailer := mailer.NewSMTPMailer(cfg.SMTP, m, logging.NewLoggerV2("mailer"))

	businessStore := repository.NewPostgresBusinessStore(db, logger)
	invoiceStore := repository.NewPostgresInvoiceStore(db, logger)

	businessService := service.NewBusinessService(businessStore, cache, publisher, m, cfg)
	invoiceService := service.NewInvoiceService(
		invoiceStore,
		cache,
		businessService,
		service.NewNumberGenerator(nil),
		publisher,
		invoiceMailer,
		m,
		cfg,
	)

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	google := clients.NewGoogleClient(cfg.Auth, logging.NewLoggerV2("google-client"))
	authService := auth.NewService(google, tokens, cache, businessService, publisher, cfg.Features.EnableEvents)
	resolver := auth.NewResolver(tokens, cache, businessService)

	h := handlers.NewHandlers(authService, businessService, invoiceService, cfg,
		handlers.ReadinessCheck{Name: "postgres", Check: db.PingContext},
		handlers.ReadinessCheck{Name: "redis", Check: cache.Ping},
	)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	go limiter.Run(10*time.Minute, ctx.Done())

	srv := server.New(h, cfg, server.Options{
		Resolver:    resolver,
		Metrics:     m,
		Gatherer:    prometheus.DefaultGatherer,
		RateLimiter: limiter,
		Logger:      logging.NewLoggerV2("http"),
	})

	go func() {
		logger.Info("Server starting", logging.Fields{
			"port":          cfg.Server.Port,
			"enable_events": cfg.Features.EnableEvents,
			"enable_email":  cfg.Features.EnableInvoiceEmail,
			"enable_cache":  cfg.Features.EnableCaching,
		})
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", logging.Fields{"error": err.Error()})
		}
	}()

	var consumer *events.KafkaConsumer
	if cfg.Features.EnableEvents && cfg.Features.EnableInvoiceEmail {
		consumer = events.NewKafkaConsumer(cfg.Kafka, invoiceStore, invoiceMailer, logging.NewLoggerV2("event-consumer"))
		go func() {
			if err := consumer.Start(ctx); err != nil && err != context.Canceled {
				logger.Error("Event consumer failed", logging.Fields{"error": err.Error()})
			}
		}()
	}

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if consumer != nil {
		consumer.Stop()
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", logging.Fields{"error": err.Error()})
	}

	logger.Info("Server exited")
}
