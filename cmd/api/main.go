package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/acube-health/acube-api/internal/config"
	"github.com/acube-health/acube-api/internal/handler"
	authhandler "github.com/acube-health/acube-api/internal/handler/auth"
	bookinghandler "github.com/acube-health/acube-api/internal/handler/booking"
	communityhandler "github.com/acube-health/acube-api/internal/handler/community"
	intakehandler "github.com/acube-health/acube-api/internal/handler/intake"
	paymenthandler "github.com/acube-health/acube-api/internal/handler/payment"
	portalhandler "github.com/acube-health/acube-api/internal/handler/portal"
	"github.com/acube-health/acube-api/internal/middleware"
	"github.com/acube-health/acube-api/internal/repository/postgres"
	"github.com/acube-health/acube-api/internal/router"
	authservice "github.com/acube-health/acube-api/internal/service/auth"
	bookingservice "github.com/acube-health/acube-api/internal/service/booking"
	communityservice "github.com/acube-health/acube-api/internal/service/community"
	intakeservice "github.com/acube-health/acube-api/internal/service/intake"
	paymentservice "github.com/acube-health/acube-api/internal/service/payment"
	psychologistservice "github.com/acube-health/acube-api/internal/service/psychologist"
	"github.com/acube-health/acube-api/internal/session"
	pkgauth "github.com/acube-health/acube-api/pkg/auth"
	"github.com/acube-health/acube-api/pkg/logger"
	"github.com/acube-health/acube-api/pkg/messaging"
	redisbroker "github.com/acube-health/acube-api/pkg/messaging/redis"
	"github.com/acube-health/acube-api/pkg/metrics"
	"github.com/acube-health/acube-api/pkg/worker"
)

const sessionTTL = 30 * time.Minute

func main() {
	l := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		l.Fatal(err, "failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		l.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		l.Fatal(err, "invalid Redis URL")
	}
	redisOpts.PoolSize = cfg.Redis.PoolSize
	redisOpts.MinIdleConns = cfg.Redis.MinIdleConns
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	m := metrics.NewMetrics("acube")

	// Repositories
	postRepo := postgres.NewPostRepository(db)
	intakeRepo := postgres.NewIntakeRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	availabilityRepo := postgres.NewAvailabilityRepository(db)
	userRepo := postgres.NewUserRepository(db)
	psychologistRepo := postgres.NewPsychologistRepository(db)
	tokenRepo := postgres.NewTokenRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Services
	sessions := session.NewStore(sessionTTL)
	jwtSvc := pkgauth.NewJWTService(pkgauth.Config{
		Secret:        cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		Expiry:        time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
		RefreshExpiry: time.Duration(cfg.JWT.RefreshExpiryHours) * time.Hour,
	})

	feedCache := communityservice.NewRedisFeedCache(redisClient, l)
	communitySvc := communityservice.NewService(postRepo, outboxRepo, feedCache, l, m)
	intakeSvc := intakeservice.NewService(intakeRepo, outboxRepo, l, m)
	paymentSvc := paymentservice.NewService(cfg.Payment, paymentRepo, l, m)
	bookingSvc := bookingservice.NewService(bookingRepo, availabilityRepo, psychologistRepo, outboxRepo, paymentSvc, l, m)
	authSvc := authservice.NewService(userRepo, psychologistRepo, tokenRepo, jwtSvc, sessions, l)
	psychologistSvc := psychologistservice.NewService(psychologistRepo, bookingRepo, l)

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	// Handlers
	h := handler.NewHandler(db)
	communityHandler := communityhandler.NewHandler(communitySvc)
	intakeHandler := intakehandler.NewHandler(intakeSvc)
	bookingHandler := bookinghandler.NewHandler(bookingSvc)
	paymentHandler := paymenthandler.NewHandler(paymentSvc)
	authHandler := authhandler.NewHandler(authSvc)
	portalHandler := portalhandler.NewHandler(psychologistSvc, bookingSvc)

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORS.AllowOrigins
	}

	r := router.NewRouter(
		authMiddleware,
		communityHandler,
		intakeHandler,
		bookingHandler,
		paymentHandler,
		authHandler,
		portalHandler,
		h,
		router.Config{
			RateLimitRPS:   cfg.RateLimit.RPS,
			RateLimitBurst: cfg.RateLimit.Burst,
			CORSConfig:     corsConfig,
			MetricsPrefix:  "acube_http",
			Timeout:        time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			Logger:         l,
		},
	)
	r.Setup()

	// Outbox processor publishes queued events to Redis for the worker
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker, err := newBroker(cfg, l)
	if err != nil {
		l.Fatal(err, "failed to connect to Redis broker")
	}
	defer broker.Close()

	outboxProcessor := worker.NewOutboxProcessor(outboxRepo, broker, worker.DefaultOutboxProcessorConfig(), l, m)
	go outboxProcessor.Start(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		l.Info("server listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal(err, "failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	l.Info("shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Fatal(err, "server forced to shutdown")
	}

	l.Info("server exited properly")
}

func newBroker(cfg *config.Config, l *logger.Logger) (messaging.Broker, error) {
	return redisbroker.NewRedisBroker(redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, l.Zerolog())
}
