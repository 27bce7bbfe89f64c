package worker

// fraud_worker.go
// Processes IP reputation jobs from QueueFraud.
// Looks the order's IP up on IPQualityScore with exponential backoff
// (max 3 retries), stores the result on the order row, and enqueues an
// alert email when the risk gate fires.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hummafaranpilot-stack/metatrim/internal/infra"
	"github.com/hummafaranpilot-stack/metatrim/internal/repository"

	"github.com/rs/zerolog/log"
)

// FraudJobPayload is the job envelope sent to QueueFraud.
type FraudJobPayload struct {
	OrderID uint `json:"order_id"`
}

// FraudWorker processes IP analysis jobs from QueueFraud.
type FraudWorker struct {
	ipqs       *infra.IPQSClient
	cb         *infra.CircuitBreaker
	orderRepo  repository.OrderRepository
	dispatcher *Dispatcher
	alertFrom  string
	alertTo    string
}

// NewFraudWorker wires all dependencies for the fraud screening worker.
func NewFraudWorker(
	ipqs *infra.IPQSClient,
	cb *infra.CircuitBreaker,
	orderRepo repository.OrderRepository,
	dispatcher *Dispatcher,
	alertFrom string,
	alertTo string,
) *FraudWorker {
	return &FraudWorker{
		ipqs:       ipqs,
		cb:         cb,
		orderRepo:  orderRepo,
		dispatcher: dispatcher,
		alertFrom:  alertFrom,
		alertTo:    alertTo,
	}
}

// Process handles a single fraud job:
//  1. Parse FraudJobPayload from the job envelope
//  2. Fetch the order from DB; skip if already analyzed or IP-less
//  3. Call IPQS through the circuit breaker with exponential backoff
//  4. Persist fraud columns and mark the order analyzed
//  5. Apply the alert gate and enqueue an email job when it fires
func (w *FraudWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload FraudJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("fraud_worker: invalid payload")
		return
	}

	order, err := w.orderRepo.FindByID(ctx, payload.OrderID)
	if err != nil {
		log.Error().Err(err).Uint("order_id", payload.OrderID).Msg("fraud_worker: order not found")
		return
	}
	if order.IPAnalyzed {
		return
	}
	if order.IPAddress == nil || *order.IPAddress == "" {
		// Nothing to look up; mark analyzed so the retry cron stops
		// picking the order up.
		_ = w.orderRepo.UpdateFraud(ctx, order.ID, map[string]any{"ip_analyzed": true})
		return
	}

	var result *infra.IPQSResult
	lookupErr := withRetry(ctx, 3, func(attempt int) error {
		return w.cb.Execute(func() error {
			res, err := w.ipqs.Analyze(ctx, *order.IPAddress)
			if err != nil {
				log.Warn().
					Err(err).
					Int("attempt", attempt+1).
					Str("ip", *order.IPAddress).
					Msg("fraud_worker: IPQS attempt failed, retrying")
				return err
			}
			result = res
			return nil
		})
	})
	if lookupErr != nil {
		log.Error().Err(lookupErr).Uint("order_id", order.ID).Msg("fraud_worker: IPQS failed after all retries")
		// Leave ip_analyzed false; the retry cron re-enqueues later.
		return
	}

	fields := map[string]any{
		"ip_country":     result.CountryCode,
		"ip_city":        result.City,
		"ip_region":      result.Region,
		"ip_proxy":       result.Proxy,
		"ip_tor":         result.Tor,
		"ip_vpn":         result.VPN,
		"ip_fraud_score": result.FraudScore,
		"ip_analyzed":    true,
	}
	if err := w.orderRepo.UpdateFraud(ctx, order.ID, fields); err != nil {
		log.Error().Err(err).Uint("order_id", order.ID).Msg("fraud_worker: failed to store result")
		return
	}

	ps := ScoreOrderPatterns(order.CustomerName, order.CustomerAddress, order.CustomerCity, order.CustomerEmail)
	alert, reason := ShouldAlert(result.FraudScore, ps.Score)

	log.Info().
		Uint("order_id", order.ID).
		Int("ipqs_score", result.FraudScore).
		Int("pattern_score", ps.Score).
		Str("risk", infra.RiskLevel(result.FraudScore)).
		Bool("alert", alert).
		Msg("fraud_worker: order analyzed")

	if !alert || w.alertTo == "" {
		return
	}

	emailJob := EmailJobPayload{
		From:    w.alertFrom,
		To:      w.alertTo,
		Subject: fmt.Sprintf("FRAUD ALERT: Order #%s - IPQS: %d | OA: %d", order.OrderID, result.FraudScore, ps.Score),
		HTML:    buildFraudAlertHTML(order, result, ps, reason),
	}
	if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
		log.Warn().Err(err).Uint("order_id", order.ID).Msg("fraud_worker: failed to enqueue alert email")
	}
}
