package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/acube-health/acube-api/internal/config"
	"github.com/acube-health/acube-api/internal/email"
	"github.com/acube-health/acube-api/internal/model"
	"github.com/acube-health/acube-api/internal/repository"
	"github.com/acube-health/acube-api/internal/repository/postgres"
	"github.com/acube-health/acube-api/pkg/logger"
	"github.com/acube-health/acube-api/pkg/messaging"
	redisbroker "github.com/acube-health/acube-api/pkg/messaging/redis"
	"github.com/acube-health/acube-api/pkg/metrics"
	"github.com/acube-health/acube-api/pkg/worker"
)

// notifier consumes platform events off the broker and sends the mails
// they call for.
type notifier struct {
	emails email.Service
	users  repository.UserRepository
	logger *logger.Logger
}

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

	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, l.Zerolog())
	if err != nil {
		l.Fatal(err, "failed to connect to Redis")
	}
	defer broker.Close()

	m := metrics.NewMetrics("acube_worker")
	emailSvc := email.NewService(cfg.Email, l, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	userRepo := postgres.NewUserRepository(db)
	n := &notifier{emails: emailSvc, users: userRepo, logger: l}
	for _, eventType := range []string{
		model.EventIntakeSubmitted,
		model.EventBookingCreated,
		model.EventBookingCancelled,
	} {
		if err := n.listen(ctx, broker, eventType); err != nil {
			l.Fatal(err, "failed to subscribe", "event_type", eventType)
		}
	}

	// Periodic purge of processed outbox events and expired tokens
	outboxRepo := postgres.NewOutboxRepository(db)
	tokenRepo := postgres.NewTokenRepository(db)
	cleanup := worker.NewCleanup(outboxRepo, tokenRepo, worker.DefaultCleanupConfig(), l)
	go cleanup.Start(ctx)

	l.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("worker shutting down")
	cancel()
}

func (n *notifier) listen(ctx context.Context, broker messaging.Broker, eventType string) error {
	messages, err := broker.Subscribe(ctx, eventType)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case data, ok := <-messages:
				if !ok {
					return
				}
				n.handle(eventType, data)
			}
		}
	}()
	return nil
}

func (n *notifier) handle(eventType string, data []byte) {
	var msg messaging.Message
	payload := data
	if err := json.Unmarshal(data, &msg); err == nil && msg.Payload != nil {
		if raw, err := json.Marshal(msg.Payload); err == nil {
			payload = raw
		}
	}

	switch eventType {
	case model.EventIntakeSubmitted:
		var req model.IntakeRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			n.logger.Error(err, "failed to decode intake event")
			return
		}
		if err := n.emails.SendIntakeNotification(&req); err != nil {
			n.logger.Error(err, "failed to notify care team", "intake_id", req.ID)
		}

	case model.EventBookingCreated, model.EventBookingCancelled:
		var booking model.Booking
		if err := json.Unmarshal(payload, &booking); err != nil {
			n.logger.Error(err, "failed to decode booking event")
			return
		}

		client, err := n.users.Get(context.Background(), booking.ClientID)
		if err != nil {
			n.logger.Error(err, "failed to load booking client", "booking_id", booking.ID)
			return
		}

		if eventType == model.EventBookingCreated {
			err = n.emails.SendBookingConfirmation(client.Email, &booking)
		} else {
			err = n.emails.SendBookingCancellation(client.Email, &booking)
		}
		if err != nil {
			n.logger.Error(err, "failed to send booking email",
				"event_type", eventType,
				"booking_id", booking.ID)
		}

	default:
		n.logger.Warn("unhandled event type", "event_type", eventType)
	}
}
