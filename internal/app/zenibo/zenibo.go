// Package zenibo assembles the HTTP API: storage, cache, services,
// routes and the server lifecycle.
package zenibo

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/zenibo-dev/zenibo/internal/cache"
	"github.com/zenibo-dev/zenibo/internal/config"
	"github.com/zenibo-dev/zenibo/internal/lib/jwt"
	"github.com/zenibo-dev/zenibo/internal/migrations"
	authservice "github.com/zenibo-dev/zenibo/internal/services/auth"
	bookservice "github.com/zenibo-dev/zenibo/internal/services/book"
	closingservice "github.com/zenibo-dev/zenibo/internal/services/closing"
	couponservice "github.com/zenibo-dev/zenibo/internal/services/coupon"
	recipientservice "github.com/zenibo-dev/zenibo/internal/services/recipient"
	subjectservice "github.com/zenibo-dev/zenibo/internal/services/subject"
	transactionservice "github.com/zenibo-dev/zenibo/internal/services/transaction"
	"github.com/zenibo-dev/zenibo/internal/storage/repository"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	maker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	couponService := couponservice.NewCouponService(db, logger)
	authService := authservice.NewAuthService(db, couponService, maker, logger)
	bookService := bookservice.NewBookService(db, cacheRedis, logger)
	transactionService := transactionservice.NewTransactionService(db, cacheRedis, logger)
	subjectService := subjectservice.NewSubjectService(db, logger)
	recipientService := recipientservice.NewRecipientService(db, logger)
	closingService := closingservice.NewClosingService(db, cacheRedis, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, maker, &Services{
		Auth:        authService,
		Book:        bookService,
		Transaction: transactionService,
		Subject:     subjectService,
		Recipient:   recipientService,
		Closing:     closingService,
		Coupon:      couponService,
		Health:      db,
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
		a.db.DB.Close()
		return err
	}
}
