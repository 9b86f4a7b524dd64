package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	OrderStatusDraft          = "draft"
	OrderStatusPendingPayment = "pending_payment"
	OrderStatusPartiallyPaid  = "partially_paid"
	OrderStatusPaid           = "paid"
	OrderStatusRefunded       = "refunded"
	OrderStatusCancelled      = "cancelled"
)

type Order struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OwnerID uuid.UUID `gorm:"not null;index" json:"owner_id"`
	Status  string    `gorm:"size:20;not null;default:'draft'" json:"status"`

	SubtotalCents      int64      `gorm:"not null;default:0" json:"subtotal_cents"`
	DiscountTotalCents int64      `gorm:"not null;default:0" json:"discount_total_cents"`
	TaxCents           int64      `gorm:"not null;default:0" json:"tax_cents"`
	TotalCents         int64      `gorm:"not null;default:0" json:"total_cents"`
	Currency           string     `gorm:"size:3;default:'USD'" json:"currency"`
	DiscountCodeID     *uuid.UUID `json:"discount_code_id"`

	AuthorizationToken *string `gorm:"size:255;index" json:"-"`
	ReceiptURL         *string `gorm:"size:255" json:"receipt_url"`

	// Refund annotations, the only fields written after an order is paid.
	RefundedCents int64   `gorm:"not null;default:0" json:"refunded_cents"`
	RefundRef     *string `gorm:"size:255" json:"refund_ref"`

	// Set when an installment plan defaults and the balance moves to
	// collections handling.
	FlaggedForCollections bool `gorm:"default:false" json:"flagged_for_collections"`

	Owner     User            `gorm:"foreignkey:OwnerID" json:"-"`
	LineItems []OrderLineItem `gorm:"foreignkey:OrderID" json:"line_items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OrderLineItem struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OrderID      uuid.UUID  `gorm:"not null;index" json:"order_id"`
	ClassID      uuid.UUID  `gorm:"not null" json:"class_id"`
	ChildID      uuid.UUID  `gorm:"not null" json:"child_id"`
	EnrollmentID *uuid.UUID `json:"enrollment_id"`
	UnitCents    int64      `gorm:"not null" json:"unit_cents"`

	Class ActivityClass `gorm:"foreignkey:ClassID" json:"class,omitempty"`
	Child Child         `gorm:"foreignkey:ChildID" json:"child,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
