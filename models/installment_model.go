package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PlanStatusActive    = "active"
	PlanStatusCompleted = "completed"
	PlanStatusCancelled = "cancelled"
	PlanStatusDefaulted = "defaulted"

	InstallmentStatusPending   = "pending"
	InstallmentStatusSucceeded = "succeeded"
	InstallmentStatusFailed    = "failed"

	FrequencyWeekly   = "weekly"
	FrequencyBiweekly = "biweekly"
	FrequencyMonthly  = "monthly"
)

type InstallmentPlan struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OrderID          uuid.UUID `gorm:"not null;unique" json:"order_id"`
	TotalCents       int64     `gorm:"not null" json:"total_cents"`
	Count            int       `gorm:"not null" json:"count"`
	Frequency        string    `gorm:"size:20;not null" json:"frequency"`
	PaymentMethodRef string    `gorm:"size:255;not null" json:"-"`
	Status           string    `gorm:"size:20;not null;default:'active'" json:"status"`

	Order    Order                `gorm:"foreignkey:OrderID" json:"-"`
	Payments []InstallmentPayment `gorm:"foreignkey:PlanID" json:"payments"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type InstallmentPayment struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	PlanID        uuid.UUID `gorm:"not null;index" json:"plan_id"`
	Sequence      int       `gorm:"not null" json:"sequence"`
	DueDate       time.Time `gorm:"not null" json:"due_date"`
	AmountCents   int64     `gorm:"not null" json:"amount_cents"`
	Status        string    `gorm:"size:20;not null;default:'pending'" json:"status"`
	AttemptCount  int       `gorm:"not null;default:0" json:"attempt_count"`
	FailureReason *string   `gorm:"size:255" json:"failure_reason"`
	ChargeID      *string   `gorm:"size:255" json:"charge_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
