// Package mailer собирает приложение почтового воркера: подключение
// к RabbitMQ, SMTP транспорт и потребителей очередей писем.
package mailer

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/novawriterhq/novawriter/internal/config"
	"github.com/novawriterhq/novawriter/internal/lib/rabbitmq"
	"github.com/novawriterhq/novawriter/internal/lib/smtp"
	mailerservice "github.com/novawriterhq/novawriter/internal/services/mailer"
)

// App — приложение почтового воркера.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	mailerService *mailerservice.MailerService
	logger        *slog.Logger
}

// New подключается к RabbitMQ и готовит потребителей очередей писем.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQ.RabbitMQURL, cfg.RabbitMQ.RabbitMQMaxRetries, cfg.RabbitMQ.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetEmailQueues())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg, logger)
	mailerService := mailerservice.New(transport, cfg.ContactInbox, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		mailerService: mailerService,
		logger:        logger,
	}, nil
}

// Run запускает потребителей и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.WelcomeQueue, a.mailerService.SendWelcomeEmail)
	if err != nil {
		a.logger.Error("failed to start welcome queue consumer", slog.Any("err", err))
		return err
	}

	err = rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.ContactQueue, a.mailerService.SendContactEmail)
	if err != nil {
		a.logger.Error("failed to start contact queue consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("mailer service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
