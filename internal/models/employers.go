package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Employer struct {
	ID                   string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID               string `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
	PhoneNumber          string `gorm:"size:20;not null" json:"phone_number"`
	NameEnglish          string `gorm:"size:200;not null" json:"name_english"`
	NameLocal            string `gorm:"size:200;not null" json:"name_local"`
	AddressEnglish       string `gorm:"size:200;not null" json:"address_english"`
	AddressLocal         string `gorm:"size:200;not null" json:"address_local"`
	BusinessLicense      string `json:"business_license"`
	BusinessLicenseThumb string `json:"business_license_thumb"`
	IsActive             bool   `gorm:"not null;default:true" json:"is_active"`

	Requirements *EmployerRequirements `gorm:"constraint:OnDelete:CASCADE" json:"requirements,omitempty"`
	Images       []EmployerImage       `gorm:"constraint:OnDelete:CASCADE" json:"images,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *Employer) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// EmployerRequirements is the employer's default candidate filter.
type EmployerRequirements struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	EmployerID        string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"employer_id"`
	Education         string     `gorm:"size:25" json:"education"`
	EducationMajor    string     `gorm:"size:50" json:"education_major"`
	AgeRangeLow       *int       `json:"age_range_low"`
	AgeRangeHigh      *int       `json:"age_range_high"`
	YearsOfExperience *int       `json:"years_of_experience"`
	Citizenship       StringList `json:"citizenship"`
}

type EmployerImage struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	EmployerID string `gorm:"type:varchar(36);index;not null" json:"employer_id"`
	Image      string `gorm:"not null" json:"image"`
	Thumb      string `json:"thumb"`
	CoverImage bool   `gorm:"not null;default:false" json:"cover_image"`
	IsActive   bool   `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
