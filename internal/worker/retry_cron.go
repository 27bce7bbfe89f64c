package worker

// retry_cron.go
// Background goroutine that periodically re-enqueues orders whose IP
// analysis never completed (worker crash, IPQS outage). Uses the
// Circuit Breaker state to avoid hammering a downed API.

import (
	"context"
	"time"

	"github.com/hummafaranpilot-stack/metatrim/internal/infra"
	"github.com/hummafaranpilot-stack/metatrim/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 60 * time.Second
	retryBatchSize    = 25
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	OrderRepo  repository.OrderRepository
	CB         *infra.CircuitBreaker
	Dispatcher *Dispatcher
}

// StartRetryCron launches a background goroutine that ticks every 60s,
// finds unanalyzed orders, and re-enqueues fraud jobs for them.
// It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	// If CB is open, skip entirely — don't hammer a downed API
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	orders, err := cfg.OrderRepo.FindUnanalyzed(ctx, retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query unanalyzed orders")
		return
	}
	if len(orders) == 0 {
		return
	}

	log.Info().Int("count", len(orders)).Msg("retry_cron: re-enqueueing unanalyzed orders")

	for i := range orders {
		if err := cfg.Dispatcher.EnqueueFraudCheck(ctx, FraudJobPayload{OrderID: orders[i].ID}); err != nil {
			log.Warn().Err(err).Uint("order_id", orders[i].ID).Msg("retry_cron: enqueue failed")
			return
		}
	}
}
