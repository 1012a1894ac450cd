package app

import (
	"context"
	"github.com/ilindan-dev/safeguard/internal/config"
	"github.com/ilindan-dev/safeguard/internal/consumer"
	deliveryHTTP "github.com/ilindan-dev/safeguard/internal/delivery/http"
	"github.com/ilindan-dev/safeguard/internal/dispatcher"
	repo "github.com/ilindan-dev/safeguard/internal/domain/repository"
	"github.com/ilindan-dev/safeguard/internal/logger"
	"github.com/ilindan-dev/safeguard/internal/notifiers"
	"github.com/ilindan-dev/safeguard/internal/service"
	"github.com/ilindan-dev/safeguard/internal/sms"
	"github.com/ilindan-dev/safeguard/internal/storage/postgres"
	"github.com/ilindan-dev/safeguard/internal/storage/rabbitmq"
	"github.com/ilindan-dev/safeguard/internal/storage/redis"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"net/http"
)

// CommonModule provides dependencies that are shared between the API and Worker applications.
var CommonModule = fx.Options(
	fx.Provide(
		// Core components
		config.NewConfig,
		logger.NewLogger,

		// Messaging
		rabbitmq.NewConnection,
		rabbitmq.NewAlertQueue,
		func(q *rabbitmq.AlertQueue) repo.AlertQueue { return q },
	),

	fx.Invoke(func(q *rabbitmq.AlertQueue, lc fx.Lifecycle) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return q.Close()
			},
		})
	}),
)

// APIModule defines the Fx module for the HTTP API application.
var APIModule = fx.Options(
	CommonModule, // Include all shared components
	fx.Provide(
		// Storage Layer - concrete implementations
		postgres.NewPool,
		redis.NewClient,
		redis.NewContactCache,
		postgres.NewContactRepository,
		fx.Annotate(postgres.NewProfileRepository, fx.As(new(repo.ProfileRepository))),
		fx.Annotate(postgres.NewAlertRepository, fx.As(new(repo.AlertRepository))),

		// Contacts are read on every SOS, so the list is served through the cache.
		func(
			pgRepo *postgres.ContactRepository,
			cache *redis.ContactCache,
			cfg *config.Config,
			logger *zerolog.Logger,
		) repo.ContactRepository {
			return redis.NewCachedContactRepository(pgRepo, cache, cfg, logger)
		},

		// Alert fan-out
		sms.NewSender,
		dispatcher.NewDispatcher,

		// Service Layer
		service.NewAlertService,
		service.NewContactService,
		service.NewProfileService,

		// API-specific components
		deliveryHTTP.NewHandlers,
		deliveryHTTP.NewServer,
	),

	fx.Invoke(func(server *deliveryHTTP.Server, lc fx.Lifecycle) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go func() {
					if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						panic(err)
					}
				}()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return server.Shutdown(ctx)
			},
		})
	}),
)

// WorkerModule defines the Fx module for the background worker application.
var WorkerModule = fx.Options(
	CommonModule, // Include all shared components
	fx.Provide(
		// Worker-specific components
		fx.Annotate(notifiers.NewFanout, fx.As(new(notifiers.Notifier))),
		consumer.New,
	),
	fx.Invoke(func(consumer *consumer.Consumer, lc fx.Lifecycle) {
		// The start context expires once startup is over, so the pool gets its own.
		runCtx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go func() {
					defer close(done)
					consumer.Start(runCtx)
				}()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				cancel()
				select {
				case <-done:
				case <-ctx.Done():
				}
				return nil
			},
		})
	}),
)
