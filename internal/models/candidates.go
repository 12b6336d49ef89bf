package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"

	DocumentTypeResume = "Resume"
)

// Candidate is the job-seeker role record. One per User.
type Candidate struct {
	ID              string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID          string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
	BirthYear       string     `gorm:"size:4;not null" json:"birth_year"`
	DateOfBirth     *time.Time `json:"date_of_birth"`
	Gender          string     `gorm:"size:10" json:"gender"`
	Education       string     `gorm:"size:25" json:"education"`
	EducationMajor  string     `gorm:"size:250" json:"education_major"`
	CurrentLocation string     `gorm:"size:2" json:"current_location"`
	Image           string     `json:"image"`
	Thumb           string     `json:"thumb"`
	IsActive        bool       `gorm:"not null;default:true" json:"is_active"`

	Documents []CandidateDocument `gorm:"constraint:OnDelete:CASCADE" json:"documents,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Candidate) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CandidateDocument is an uploaded file such as a resume.
type CandidateDocument struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	CandidateID  string `gorm:"type:varchar(36);index;not null" json:"candidate_id"`
	Document     string `gorm:"not null" json:"document"`
	DocumentType string `gorm:"size:50;not null" json:"document_type"`
	ParsedText   string `json:"parsed_text"`
	IsActive     bool   `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CandidateRequirements holds what a candidate looks for in an employer.
type CandidateRequirements struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	UserID       string `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
	EmployerType string `gorm:"size:25" json:"employer_type"`
}
