package model

import (
	"time"

	"github.com/google/uuid"
)

// Role: "ADMIN" creates shipments and prints labels, "DRIVER" scans pickups.
const (
	RoleAdmin  = "ADMIN"
	RoleDriver = "DRIVER"
)

const (
	UserStatusActive   = "ACTIVE"
	UserStatusDisabled = "DISABLED"
)

// User stores system users with role-based access.
// RefreshNonce/RefreshExpiresAt hold the single live refresh session for the
// user: there is at most one valid nonce at a time, so logout and rotation
// globally revoke any older refresh token. Both fields are mutated only
// through the atomic repository operations.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"not null"`
	Email        *string
	Phone        *string
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"type:varchar(10);not null"`
	Status       string `gorm:"type:varchar(10);not null;default:'ACTIVE'"`

	RefreshNonce     *string
	RefreshExpiresAt *time.Time
	LastLoginAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
