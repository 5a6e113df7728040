package model

import (
	"time"

	"github.com/google/uuid"
)

// Shipment lifecycle — linear, the scan path never regresses a shipment
// out of PICKED_BY_DRIVER.
const (
	StatusCreatedInPost  = "CREATED_IN_POST"
	StatusAtLDC          = "AT_LDC"
	StatusPickedByDriver = "PICKED_BY_DRIVER"
	StatusDelivered      = "DELIVERED"
)

// Shipment is a trackable parcel. QRSlug is the payload embedded in the
// printed QR label and the sole external key into the record; it is
// immutable and globally unique (enforced by the DB index).
// Status/PickedBy/PickedAt are written only via the conditional update in
// the shipment repository.
type Shipment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PJCode    string     `gorm:"column:pj_code;not null"` // originating branch code, e.g. "0123"
	PJName    string     `gorm:"column:pj_name;not null"`
	Pieces    *int
	Notes     *string
	Documents *string    // attached document file names
	QRSlug    string     `gorm:"column:qr_slug;uniqueIndex;not null"`
	Status    string     `gorm:"type:varchar(20);not null;default:'CREATED_IN_POST';index"`
	PickedBy  *uuid.UUID `gorm:"type:uuid"`
	PickedAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
