// Package sender assembles the report sender: storage, rabbitmq
// consumer, CSV renderer and SMTP transport.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/zenibo-dev/zenibo/internal/cache"
	"github.com/zenibo-dev/zenibo/internal/config"
	"github.com/zenibo-dev/zenibo/internal/lib/smtp"
	"github.com/zenibo-dev/zenibo/internal/rabbitmq"
	closingservice "github.com/zenibo-dev/zenibo/internal/services/closing"
	senderservice "github.com/zenibo-dev/zenibo/internal/services/sender"
	"github.com/zenibo-dev/zenibo/internal/storage/repository"
)

type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	conn, err := rabbitmq.Connect(cfg.RabbitConnectionString, cfg.RabbitMaxRetries, cfg.RabbitRetryDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg, logger)
	closingService := closingservice.NewClosingService(db, cacheRedis, logger)
	senderService := senderservice.NewSenderService(db, closingService, transport, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run consumes closing-report jobs until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumeMessages(ctx, a.ch, rabbitmq.ClosingQueue, func(body []byte) error {
		return a.senderService.HandleJob(ctx, body)
	})
	if err != nil {
		a.logger.Error("failed to start closing queue consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("report sender shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
