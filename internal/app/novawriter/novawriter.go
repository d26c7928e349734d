// Package novawriter собирает основное приложение: хранилище,
// сессии, брокер писем, внешних провайдеров, сервисы и HTTP-сервер.
package novawriter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/novawriterhq/novawriter/internal/aiprovider"
	"github.com/novawriterhq/novawriter/internal/config"
	"github.com/novawriterhq/novawriter/internal/lib/jwt"
	"github.com/novawriterhq/novawriter/internal/lib/rabbitmq"
	"github.com/novawriterhq/novawriter/internal/migrations"
	"github.com/novawriterhq/novawriter/internal/paymentprovider"
	"github.com/novawriterhq/novawriter/internal/services/admin"
	"github.com/novawriterhq/novawriter/internal/services/assist"
	"github.com/novawriterhq/novawriter/internal/services/auth"
	"github.com/novawriterhq/novawriter/internal/services/billing"
	"github.com/novawriterhq/novawriter/internal/services/chapter"
	"github.com/novawriterhq/novawriter/internal/services/character"
	"github.com/novawriterhq/novawriter/internal/services/document"
	"github.com/novawriterhq/novawriter/internal/services/project"
	"github.com/novawriterhq/novawriter/internal/services/style"
	"github.com/novawriterhq/novawriter/internal/session"
	"github.com/novawriterhq/novawriter/internal/storage"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	rabbit *amqp.Connection
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	redisURL := fmt.Sprintf("redis://%s:%s@%s/%d",
		cfg.RedisConnection.User, cfg.RedisConnection.Password,
		cfg.RedisConnection.AddressRedis, cfg.RedisConnection.DB)
	sessions, err := session.New(ctx, redisURL, cfg.SessionTTL)
	if err != nil {
		return nil, err
	}

	rabbitConn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	rabbitCh, err := rabbitmq.SetupChannel(rabbitConn, rabbitmq.GetEmailQueues())
	if err != nil {
		_ = rabbitConn.Close()
		return nil, err
	}
	emailPublisher := rabbitmq.NewEmailPublisher(rabbitCh)

	tokens := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	payments := paymentprovider.New(cfg.PaymentSecretKey, cfg.PaymentAPIURL)
	ai := aiprovider.New(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel)

	authService := auth.New(db, sessions, tokens, emailPublisher, cfg.SiteOwnerEmail, logger)
	documentService := document.New(db)
	projectService := project.New(db)
	chapterService := chapter.New(db)
	characterService := character.New(db)
	styleService := style.New(db, ai)
	assistService := assist.New(db, ai)
	billingService := billing.New(db, payments,
		cfg.BasicPriceID, cfg.ProPriceID, cfg.WebhookSecret, cfg.SiteOwnerEmail, logger)
	adminService := admin.New(db, sessions, payments, cfg.SiteOwnerEmail, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, &Services{
		Sessions:  sessions,
		Tokens:    tokens,
		Storage:   db,
		Auth:      authService,
		Document:  documentService,
		Project:   projectService,
		Chapter:   chapterService,
		Character: characterService,
		Style:     styleService,
		Assist:    assistService,
		Billing:   billingService,
		Admin:     adminService,
		Contact:   emailPublisher,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		rabbit: rabbitConn,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.rabbit.Close()
		_ = a.db.DB.Close()
		return err
	}
}
