package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	EnrollmentStatusPending   = "pending"
	EnrollmentStatusActive    = "active"
	EnrollmentStatusCompleted = "completed"
	EnrollmentStatusCancelled = "cancelled"
	EnrollmentStatusWaitlist  = "waitlist"
)

type Enrollment struct {
	ID      uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ChildID uuid.UUID  `gorm:"not null;index" json:"child_id"`
	ClassID uuid.UUID  `gorm:"not null;index" json:"class_id"`
	OrderID *uuid.UUID `gorm:"index" json:"order_id"`
	Status  string     `gorm:"size:20;not null;default:'pending'" json:"status"`

	FinalPriceCents int64   `gorm:"not null;default:0" json:"final_price_cents"`
	Notes           *string `gorm:"type:text" json:"notes"`

	// A cancellation whose gateway refund did not go through keeps this flag
	// until an admin reconciles it.
	RefundPending bool `gorm:"default:false" json:"refund_pending"`

	Child Child         `gorm:"foreignkey:ChildID" json:"child,omitempty"`
	Class ActivityClass `gorm:"foreignkey:ClassID" json:"class,omitempty"`

	ActivatedAt *time.Time `json:"activated_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
