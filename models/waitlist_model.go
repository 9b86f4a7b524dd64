package models

import (
	"time"

	"github.com/google/uuid"
)

type WaitlistEntry struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ClassID      uuid.UUID `gorm:"not null;index" json:"class_id"`
	EnrollmentID uuid.UUID `gorm:"not null;unique" json:"enrollment_id"`

	// 1-based and dense per class; recomputed on every mutation, never
	// trusted as stale input.
	Position   int  `gorm:"not null" json:"position"`
	IsPriority bool `gorm:"default:false" json:"is_priority"`

	JoinedAt       time.Time  `gorm:"not null" json:"joined_at"`
	NotifiedAt     *time.Time `json:"notified_at"`
	ClaimExpiresAt *time.Time `json:"claim_expires_at"`

	Enrollment Enrollment `gorm:"foreignkey:EnrollmentID" json:"enrollment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
