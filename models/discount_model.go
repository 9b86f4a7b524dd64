package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DiscountTypePercentage  = "percentage"
	DiscountTypeFixedAmount = "fixed_amount"
)

type DiscountCode struct {
	ID    uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Code  string    `gorm:"size:50;not null;unique" json:"code"`
	Type  string    `gorm:"size:20;not null" json:"type"`
	Value int64     `gorm:"not null" json:"value"`

	ValidFrom  *time.Time `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`

	MaxUses        int   `gorm:"not null;default:0" json:"max_uses"`
	MaxUsesPerUser int   `gorm:"not null;default:0" json:"max_uses_per_user"`
	MinOrderCents  int64 `gorm:"not null;default:0" json:"min_order_cents"`
	FirstTimeOnly  bool  `gorm:"default:false" json:"first_time_only"`
	UseCount       int   `gorm:"not null;default:0" json:"use_count"`
	IsActive       bool  `gorm:"default:true" json:"is_active"`

	// Empty set means the code applies to every class.
	ApplicableClasses []DiscountCodeClass `gorm:"foreignkey:DiscountCodeID" json:"applicable_classes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DiscountCodeClass struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	DiscountCodeID uuid.UUID `gorm:"not null;index" json:"discount_code_id"`
	ClassID        uuid.UUID `gorm:"not null" json:"class_id"`
}

type DiscountRedemption struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	DiscountCodeID uuid.UUID `gorm:"not null;index" json:"discount_code_id"`
	UserID         uuid.UUID `gorm:"not null;index" json:"user_id"`
	OrderID        uuid.UUID `gorm:"not null" json:"order_id"`

	CreatedAt time.Time `json:"created_at"`
}
