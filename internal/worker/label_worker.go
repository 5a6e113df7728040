package worker

// label_worker.go
// Renders the printable A4 QR label for a freshly created shipment so the
// first label download does not pay the rendering cost.

import (
	"context"
	"encoding/json"

	"github.com/EdinMesanovic/postinfo/internal/infra"
	"github.com/EdinMesanovic/postinfo/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// LabelJobPayload is the job envelope sent to QueueLabel.
type LabelJobPayload struct {
	ShipmentID string `json:"shipment_id"`
}

type LabelWorker struct {
	repo        repository.ShipmentRepository
	storagePath string
}

func NewLabelWorker(repo repository.ShipmentRepository, storagePath string) *LabelWorker {
	return &LabelWorker{repo: repo, storagePath: storagePath}
}

func (w *LabelWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload LabelJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("label_worker: invalid payload")
		return err
	}
	id, err := uuid.Parse(payload.ShipmentID)
	if err != nil {
		log.Error().Str("shipment_id", payload.ShipmentID).Msg("label_worker: bad shipment id")
		return err
	}

	shipment, err := w.repo.FindByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("shipment_id", payload.ShipmentID).Msg("label_worker: shipment not found")
		return err
	}

	path, err := infra.GenerateLabelPDF(shipment, w.storagePath)
	if err != nil {
		log.Error().Err(err).Str("qr_slug", shipment.QRSlug).Msg("label_worker: render failed")
		return err
	}
	log.Info().Str("qr_slug", shipment.QRSlug).Str("path", path).Msg("label_worker: label rendered")
	return nil
}
