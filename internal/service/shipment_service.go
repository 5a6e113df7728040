package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/EdinMesanovic/postinfo/internal/config"
	"github.com/EdinMesanovic/postinfo/internal/dto"
	"github.com/EdinMesanovic/postinfo/internal/infra"
	"github.com/EdinMesanovic/postinfo/internal/model"
	"github.com/EdinMesanovic/postinfo/internal/repository"
	"github.com/EdinMesanovic/postinfo/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// slugAttempts bounds the retry loop on qr_slug collisions. With 48 bits of
// entropy a collision is already vanishingly rare; hitting the bound means
// something else is wrong.
const slugAttempts = 5

// ScanResult is the outcome of a pickup scan. Exactly one concurrent scan
// of the same slug observes Picked=true; every later or losing scan gets
// AlreadyPicked=true with the stored winner's pickedBy/pickedAt.
type ScanResult struct {
	Picked        bool
	AlreadyPicked bool
	Shipment      *model.Shipment
}

type ShipmentService interface {
	Create(ctx context.Context, req dto.CreateShipmentRequest) (*dto.ShipmentResponse, error)
	List(ctx context.Context, q dto.ListShipmentsQuery) ([]dto.ShipmentResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ShipmentResponse, error)
	ScanPickup(ctx context.Context, qrSlug string, actorID uuid.UUID) (*ScanResult, error)
	LabelPath(ctx context.Context, id uuid.UUID) (string, error)
}

type shipmentService struct {
	repo        repository.ShipmentRepository
	jobs        *worker.Dispatcher // nil in tests — async side effects are skipped
	storagePath string
	notifyEmail string
}

func NewShipmentService(repo repository.ShipmentRepository, jobs *worker.Dispatcher, cfg *config.Config) ShipmentService {
	return &shipmentService{
		repo:        repo,
		jobs:        jobs,
		storagePath: cfg.LabelStoragePath,
		notifyEmail: cfg.NotifyEmail,
	}
}

// newQRSlug returns 12 hex characters (48 bits) from crypto/rand — the
// payload printed into the QR code.
func newQRSlug() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Create inserts a shipment with a server-generated slug. Uniqueness is
// enforced by the DB index; on the (improbable) duplicate we generate a new
// slug and retry.
func (s *shipmentService) Create(ctx context.Context, req dto.CreateShipmentRequest) (*dto.ShipmentResponse, error) {
	for attempt := 0; attempt < slugAttempts; attempt++ {
		slug, err := newQRSlug()
		if err != nil {
			return nil, err
		}

		shipment := &model.Shipment{
			PJCode:    req.PJCode,
			PJName:    req.PJName,
			Pieces:    req.Pieces,
			Notes:     req.Notes,
			Documents: req.Documents,
			QRSlug:    slug,
			Status:    model.StatusCreatedInPost,
		}
		err = s.repo.Create(ctx, shipment)
		if err == nil {
			s.enqueueLabel(ctx, shipment)
			return toShipmentResponse(shipment), nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("qr slug collision persisted after %d attempts", slugAttempts)
}

func (s *shipmentService) List(ctx context.Context, q dto.ListShipmentsQuery) ([]dto.ShipmentResponse, error) {
	shipments, err := s.repo.List(ctx, repository.ShipmentFilter{
		Status: q.Status,
		Query:  q.Q,
		Page:   q.Page,
		Limit:  q.Limit,
	})
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ShipmentResponse, len(shipments))
	for i := range shipments {
		resp[i] = *toShipmentResponse(&shipments[i])
	}
	return resp, nil
}

func (s *shipmentService) Get(ctx context.Context, id uuid.UUID) (*dto.ShipmentResponse, error) {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toShipmentResponse(shipment), nil
}

// ScanPickup performs the pickup transition. The write is a single
// conditional update, never a read-then-write: under N concurrent scans of
// the same slug exactly one matches, and every other caller re-reads and
// observes the already-picked shipment as idempotent success.
func (s *shipmentService) ScanPickup(ctx context.Context, qrSlug string, actorID uuid.UUID) (*ScanResult, error) {
	rows, err := s.repo.MarkPicked(ctx, qrSlug, actorID, time.Now())
	if err != nil {
		return nil, err
	}

	shipment, err := s.repo.FindBySlug(ctx, qrSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if rows > 0 {
		s.enqueuePickupNotification(ctx, shipment)
		return &ScanResult{Picked: true, Shipment: shipment}, nil
	}

	if shipment.Status == model.StatusPickedByDriver {
		// Repeat scan of an already-picked shipment — not an error, so a
		// client retrying after a timeout needs no special handling.
		return &ScanResult{AlreadyPicked: true, Shipment: shipment}, nil
	}
	// Guarded update matched nothing yet the shipment is not picked —
	// should not happen, recognized fallback.
	return nil, ErrConflict
}

// LabelPath returns the on-disk label PDF for a shipment, rendering it
// synchronously if the async worker has not produced it yet.
func (s *shipmentService) LabelPath(ctx context.Context, id uuid.UUID) (string, error) {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	path := infra.LabelFilePath(s.storagePath, shipment.QRSlug)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	return infra.GenerateLabelPDF(shipment, s.storagePath)
}

func (s *shipmentService) enqueueLabel(ctx context.Context, shipment *model.Shipment) {
	if s.jobs == nil {
		return
	}
	payload := worker.LabelJobPayload{ShipmentID: shipment.ID.String()}
	if err := s.jobs.EnqueueLabel(ctx, payload); err != nil {
		log.Warn().Err(err).Str("qr_slug", shipment.QRSlug).Msg("failed to enqueue label job")
	}
}

func (s *shipmentService) enqueuePickupNotification(ctx context.Context, shipment *model.Shipment) {
	if s.jobs == nil || s.notifyEmail == "" {
		return
	}
	payload := worker.EmailJobPayload{
		ToEmail: s.notifyEmail,
		Subject: fmt.Sprintf("Shipment %s picked up", shipment.QRSlug),
		Body:    fmt.Sprintf("Shipment %s (PJ %s — %s) was picked up by a driver.", shipment.QRSlug, shipment.PJCode, shipment.PJName),
	}
	if err := s.jobs.EnqueueEmail(ctx, payload); err != nil {
		log.Warn().Err(err).Str("qr_slug", shipment.QRSlug).Msg("failed to enqueue pickup notification")
	}
}

func toShipmentResponse(s *model.Shipment) *dto.ShipmentResponse {
	resp := &dto.ShipmentResponse{
		ID:        s.ID.String(),
		PJCode:    s.PJCode,
		PJName:    s.PJName,
		Pieces:    s.Pieces,
		Notes:     s.Notes,
		Documents: s.Documents,
		QRSlug:    s.QRSlug,
		Status:    s.Status,
		PickedAt:  s.PickedAt,
		CreatedAt: s.CreatedAt,
	}
	if s.PickedBy != nil {
		picked := s.PickedBy.String()
		resp.PickedBy = &picked
	}
	return resp
}
