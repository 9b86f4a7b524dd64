package models

import (
	"time"

	"github.com/google/uuid"
)

type ActivityClass struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Program       string    `gorm:"size:100" json:"program"`
	Description   *string   `gorm:"type:text" json:"description"`
	PriceCents    int64     `gorm:"not null" json:"price_cents"`
	Currency      string    `gorm:"size:3;default:'USD'" json:"currency"`
	Capacity      int       `gorm:"not null" json:"capacity"`
	SessionsTotal int       `gorm:"not null;default:1" json:"sessions_total"`
	StartDate     time.Time `gorm:"not null" json:"start_date"`
	EndDate       time.Time `gorm:"not null" json:"end_date"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
