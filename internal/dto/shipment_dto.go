package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateShipmentRequest struct {
	PJCode    string  `json:"pjCode"    validate:"required,min=1,max=16"`
	PJName    string  `json:"pjName"    validate:"required,min=1,max=120"`
	Pieces    *int    `json:"pieces"    validate:"omitempty,gt=0"`
	Notes     *string `json:"notes"     validate:"omitempty,max=500"`
	Documents *string `json:"documents" validate:"omitempty,max=500"`
}

// ListShipmentsQuery is bound from query parameters.
type ListShipmentsQuery struct {
	Status string `form:"status" validate:"omitempty,oneof=CREATED_IN_POST AT_LDC PICKED_BY_DRIVER DELIVERED"`
	Q      string `form:"q"`
	Page   int    `form:"page"  validate:"omitempty,min=1"`
	Limit  int    `form:"limit" validate:"omitempty,min=1,max=200"`
}

type ScanPickupRequest struct {
	QRSlug string `json:"qrSlug" validate:"required,min=8,max=64"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ShipmentResponse struct {
	ID        string     `json:"id"`
	PJCode    string     `json:"pjCode"`
	PJName    string     `json:"pjName"`
	Pieces    *int       `json:"pieces,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	Documents *string    `json:"documents,omitempty"`
	QRSlug    string     `json:"qrSlug"`
	Status    string     `json:"status"`
	PickedBy  *string    `json:"pickedBy,omitempty"`
	PickedAt  *time.Time `json:"pickedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// ScanPickupResponse is returned for both the winning scan and idempotent
// repeat scans (the latter with Picked=false, AlreadyPicked=true).
type ScanPickupResponse struct {
	OK            bool       `json:"ok"`
	Picked        bool       `json:"picked"`
	AlreadyPicked bool       `json:"alreadyPicked,omitempty"`
	ShipmentID    string     `json:"shipmentId"`
	Status        string     `json:"status"`
	PickedAt      *time.Time `json:"pickedAt,omitempty"`
	PickedBy      *string    `json:"pickedBy,omitempty"`
}
