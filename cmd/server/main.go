package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"relytailors-be/internal/api"
	"relytailors-be/internal/auth"
	"relytailors-be/internal/config"
	"relytailors-be/internal/db"
	"relytailors-be/internal/logger"
	"relytailors-be/internal/metrics"
	"relytailors-be/internal/middleware"
	"relytailors-be/internal/notification"
	"relytailors-be/internal/order"
	"relytailors-be/internal/product"
	"relytailors-be/internal/user"

	"go.uber.org/zap"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
	limiterCleanup    = time.Minute
)

var (
	initDBFunc      = db.InitDB
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

type server struct {
	handler http.Handler
	worker  *notification.Worker
	pubsub  *notification.PubSub
	limiter *middleware.RateLimiter
}

// newServer wires repositories, services and the notification pipeline
// around an open database handle.
func newServer(cfg *config.Config, database *sql.DB) (*server, error) {
	pubsub, err := notification.NewPubSub(cfg, logger.L())
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo, tokens)

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo)

	queue := notification.NewQueue(pubsub.Publisher, cfg.NotificationTopic)
	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, userRepo, productRepo, notification.NewOrderNotifier(queue))

	worker := notification.NewWorker(
		pubsub.Subscriber,
		cfg.NotificationTopic,
		notification.NewDispatcher(cfg),
		m,
	)

	limiter := middleware.NewRateLimiter(cfg.InternalSecretKey)

	handler := api.NewRouter(api.Deps{
		Orders:              orderSvc,
		Users:               userSvc,
		Products:            productSvc,
		Auth:                middleware.NewAuthenticator(tokens),
		Limiter:             limiter,
		Metrics:             m,
		NotificationBackend: pubsub.Backend,
		CORSOrigin:          cfg.CORSOrigin,
		TokenTTL:            cfg.TokenTTL,
		SecureCookies:       cfg.IsProduction(),
	})

	return &server{handler: handler, worker: worker, pubsub: pubsub, limiter: limiter}, nil
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	database := initDBFunc(cfg)
	defer database.Close()

	srv, err := newServer(cfg, database)
	if err != nil {
		return err
	}
	defer srv.pubsub.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           srv.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	log.Info("http server listening",
		zap.String("port", cfg.AppPort),
		zap.String("env", cfg.AppEnv),
		zap.String("notification_backend", srv.pubsub.Backend),
	)
	return srv.serve(ctx, httpServer)
}

// serve runs httpServer until ctx is cancelled. The notification worker gets
// its own context and is stopped only after the HTTP server has drained, so
// emails enqueued by in-flight requests still reach the dispatcher.
func (s *server) serve(ctx context.Context, httpServer *http.Server) error {
	log := logger.L()

	workerCtx, stopWorker := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := s.worker.Run(workerCtx); err != nil {
			log.Error("notification worker exited", zap.Error(err))
		}
	}()
	defer func() {
		stopWorker()
		<-workerDone
	}()

	select {
	case <-s.worker.Subscribed():
	case <-workerDone:
		return errors.New("notification worker failed to start")
	}

	go s.limiter.Cleanup(ctx, limiterCleanup)

	errCh := make(chan error, 1)
	go func() {
		errCh <- startServerFunc(httpServer)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

func main() {
	if err := run(context.Background()); err != nil {
		logger.L().Fatal("server failed", zap.Error(err))
	}
}
