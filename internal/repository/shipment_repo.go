package repository

import (
	"context"
	"time"

	"github.com/EdinMesanovic/postinfo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShipmentFilter narrows List results; zero values mean "no filter".
type ShipmentFilter struct {
	Status string
	Query  string // matches pj_code, pj_name or qr_slug (case-insensitive)
	Page   int
	Limit  int
}

type ShipmentRepository interface {
	Create(ctx context.Context, s *model.Shipment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Shipment, error)
	FindBySlug(ctx context.Context, slug string) (*model.Shipment, error)
	List(ctx context.Context, f ShipmentFilter) ([]model.Shipment, error)

	// MarkPicked performs the pickup transition as one conditional UPDATE:
	// it matches only while the shipment is not yet PICKED_BY_DRIVER, so
	// under concurrent scans exactly one caller observes RowsAffected == 1.
	// Never rewrite this as a read-then-write.
	MarkPicked(ctx context.Context, slug string, actorID uuid.UUID, at time.Time) (int64, error)
}

type shipmentRepo struct{ db *gorm.DB }

func NewShipmentRepository(db *gorm.DB) ShipmentRepository { return &shipmentRepo{db: db} }

func (r *shipmentRepo) Create(ctx context.Context, s *model.Shipment) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *shipmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Shipment, error) {
	var s model.Shipment
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *shipmentRepo) FindBySlug(ctx context.Context, slug string) (*model.Shipment, error) {
	var s model.Shipment
	err := r.db.WithContext(ctx).Where("qr_slug = ?", slug).First(&s).Error
	return &s, err
}

func (r *shipmentRepo) List(ctx context.Context, f ShipmentFilter) ([]model.Shipment, error) {
	q := r.db.WithContext(ctx).Model(&model.Shipment{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Query != "" {
		pattern := "%" + f.Query + "%"
		q = q.Where("pj_code ILIKE ? OR pj_name ILIKE ? OR qr_slug ILIKE ?", pattern, pattern, pattern)
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 50
	}

	var shipments []model.Shipment
	err := q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&shipments).Error
	return shipments, err
}

func (r *shipmentRepo) MarkPicked(ctx context.Context, slug string, actorID uuid.UUID, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Shipment{}).
		Where("qr_slug = ? AND status <> ?", slug, model.StatusPickedByDriver).
		Updates(map[string]interface{}{
			"status":    model.StatusPickedByDriver,
			"picked_at": at,
			"picked_by": actorID,
		})
	return res.RowsAffected, res.Error
}
