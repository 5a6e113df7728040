package worker

// email_worker.go
// Processes notification email jobs from QueueEmail (pickup confirmations
// sent to the configured ops address). SMTP sends go through a circuit
// breaker so a downed relay fast-fails instead of stalling the pool; failed
// jobs are retried by the pool and eventually parked on the DLQ.

import (
	"context"
	"encoding/json"

	"github.com/EdinMesanovic/postinfo/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type EmailWorker struct {
	mailer *infra.Mailer
	cb     *infra.CircuitBreaker
}

func NewEmailWorker(mailer *infra.Mailer) *EmailWorker {
	return &EmailWorker{
		mailer: mailer,
		cb:     infra.NewCircuitBreaker(infra.DefaultCBConfig()),
	}
}

func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return err
	}
	if payload.ToEmail == "" {
		// Nothing to do, not an error worth retrying.
		log.Warn().Msg("email_worker: empty to_email — skipping")
		return nil
	}

	err := w.cb.Execute(func() error {
		return w.mailer.Send(payload.ToEmail, payload.Subject, payload.Body)
	})
	if err != nil {
		log.Error().Err(err).Str("to", payload.ToEmail).Msg("email_worker: failed to send email")
		return err
	}
	log.Info().Str("to", payload.ToEmail).Msg("email_worker: notification sent")
	return nil
}
