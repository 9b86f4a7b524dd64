package models

import (
	"time"

	"github.com/google/uuid"
)

type Child struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ParentID  uuid.UUID `gorm:"not null" json:"parent_id"`
	FullName  string    `gorm:"size:255;not null" json:"full_name"`
	BirthDate *time.Time `json:"birth_date"`
	Notes     *string   `gorm:"type:text" json:"notes"`

	Parent User `gorm:"foreignkey:ParentID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
