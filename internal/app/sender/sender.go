// Package sender собирает воркер отправки почты: подключение к RabbitMQ
// и потребление очереди сообщений обратной связи.
package sender

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/videohub-backend/internal/config"
	librabbitmq "github.com/magabrotheeeer/videohub-backend/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/videohub-backend/internal/lib/smtp"
	"github.com/magabrotheeeer/videohub-backend/internal/rabbitmq"
	senderservice "github.com/magabrotheeeer/videohub-backend/internal/services/sender"
)

// App хранит компоненты воркера отправки почты.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

// New подключается к RabbitMQ, объявляет очереди и готовит SMTP-транспорт.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitURL, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, librabbitmq.GetContactQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	senderService := senderservice.NewSenderService(transport, cfg.SMTP.ContactRecipient, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run запускает потребителя очереди и ждет отмены контекста.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, librabbitmq.ContactQueue, a.senderService.SendContactMessage)
	if err != nil {
		a.logger.Error("failed to start contact_messages consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
