package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hummafaranpilot-stack/metatrim/internal/config"
	"github.com/hummafaranpilot-stack/metatrim/internal/infra"
	"github.com/hummafaranpilot-stack/metatrim/internal/repository"
	"github.com/hummafaranpilot-stack/metatrim/internal/router"
	"github.com/hummafaranpilot-stack/metatrim/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Worker pool for async jobs (IP reputation checks, alert emails).
	// Handlers are wired here at the composition root so the pool has
	// full access to infrastructure dependencies.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ipqsClient := infra.NewIPQSClient(cfg.IPQSAPIKey, cfg.IPQSAPIKey2)
	ipqsCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)
	orderRepo := repository.NewOrderRepository(db)

	handlers := worker.Handlers{
		Fraud: worker.NewFraudWorker(ipqsClient, ipqsCB, orderRepo, dispatcher, cfg.FraudAlertFrom, cfg.FraudAlertTo),
		Email: worker.NewEmailWorker(mailer),
	}
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, handlers)

	// Orders whose IP lookup failed get re-enqueued periodically.
	worker.StartRetryCron(ctx, worker.RetryCronConfig{
		OrderRepo:  orderRepo,
		CB:         ipqsCB,
		Dispatcher: dispatcher,
	})

	r := router.New(cfg, db, rdb, ipqsCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("metatrim analytics listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
