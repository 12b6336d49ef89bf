package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Recruiter struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID      string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
	PhoneNumber string    `gorm:"size:20" json:"phone_number"`
	DateOfBirth time.Time `json:"date_of_birth"`
	Location    string    `gorm:"size:100" json:"location"`
	Image       string    `json:"image"`
	Thumb       string    `json:"thumb"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Recruiter) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
