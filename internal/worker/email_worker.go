package worker

// email_worker.go
// Processes email jobs from QueueEmail.
// Delivers fraud alert emails to the configured address via SMTP.

import (
	"context"
	"encoding/json"

	"github.com/hummafaranpilot-stack/metatrim/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// EmailWorker processes email jobs from QueueEmail.
type EmailWorker struct {
	mailer *infra.Mailer
}

// NewEmailWorker creates an EmailWorker with the provided SMTP mailer.
func NewEmailWorker(mailer *infra.Mailer) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

// Process sends one HTML email.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if payload.To == "" {
		log.Warn().Msg("email_worker: empty to address — skipping")
		return
	}

	if err := w.mailer.SendHTML(payload.From, payload.To, payload.Subject, payload.HTML); err != nil {
		log.Error().Err(err).Str("to", payload.To).Msg("email_worker: failed to send email")
		return
	}
	log.Info().Str("to", payload.To).Str("subject", payload.Subject).Msg("email_worker: sent")
}
