// Package videohub собирает основное приложение платформы: хранилище,
// кэш, платёжный шлюз, очередь и HTTP-сервер.
package videohub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/videohub-backend/internal/cache"
	"github.com/magabrotheeeer/videohub-backend/internal/config"
	"github.com/magabrotheeeer/videohub-backend/internal/lib/jwt"
	librabbitmq "github.com/magabrotheeeer/videohub-backend/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/videohub-backend/internal/migrations"
	"github.com/magabrotheeeer/videohub-backend/internal/paymentprovider"
	"github.com/magabrotheeeer/videohub-backend/internal/rabbitmq"
	authservice "github.com/magabrotheeeer/videohub-backend/internal/services/auth"
	contentservice "github.com/magabrotheeeer/videohub-backend/internal/services/content"
	subscriptionservice "github.com/magabrotheeeer/videohub-backend/internal/services/subscription"
	"github.com/magabrotheeeer/videohub-backend/internal/storage/repository"
)

// App хранит компоненты приложения и управляет их жизненным циклом.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	amqp   *amqp.Connection
}

// New инициализирует приложение: подключает постгрес, прогоняет миграции,
// поднимает redis и rabbitmq, выбирает платёжного провайдера по конфигу
// и регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	gateway, err := selectGateway(cfg.Payment)
	if err != nil {
		return nil, err
	}
	logger.Info("payment provider selected", slog.String("provider", gateway.Name()))

	conn, err := rabbitmq.Connect(cfg.RabbitURL, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, librabbitmq.GetContactQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}
	publisher := librabbitmq.NewPublisher(ch)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)
	authService := authservice.New(db, jwtMaker, logger)
	subscriptionService := subscriptionservice.New(db, gateway, cacheRedis, logger)
	contentService := contentservice.New(db, subscriptionService, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Deps{
		Storage:      db,
		Auth:         authService,
		Subscription: subscriptionService,
		Content:      contentService,
		Gateway:      gateway,
		Publisher:    publisher,
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
		amqp:   conn,
	}, nil
}

// selectGateway возвращает платёжный шлюз по имени из конфига.
// Провайдеры взаимоисключающие: приложение работает ровно с одним.
func selectGateway(cfg config.Payment) (paymentprovider.Gateway, error) {
	switch cfg.Provider {
	case "paypal":
		return paymentprovider.NewPayPalGateway(cfg.PayPal), nil
	case "stripe":
		return paymentprovider.NewStripeGateway(cfg.Stripe), nil
	default:
		return nil, fmt.Errorf("unknown payment provider: %q", cfg.Provider)
	}
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
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
		a.amqp.Close()
		a.db.DB.Close()
		return err
	}
}
