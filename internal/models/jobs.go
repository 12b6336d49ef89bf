package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	LocationOnsite = "onsite"
	LocationRemote = "remote"

	CompensationOneTime = "One-time"
	CompensationMonthly = "Monthly"
)

// Job is a posting owned by one Employer and handled by one Recruiter.
type Job struct {
	ID                      string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	EmployerID              string `gorm:"type:varchar(36);index;not null" json:"employer_id"`
	RecruiterID             string `gorm:"type:varchar(36);index;not null" json:"recruiter_id"`
	Title                   string `gorm:"size:100;not null" json:"title"`
	Location                string `gorm:"size:50" json:"location"`
	WeeklyHours             int    `json:"weekly_hours"`
	SalaryLow               int    `json:"salary_low"`
	SalaryHigh              int    `json:"salary_high"`
	AccommodationIncluded   bool   `json:"accommodation_included"`
	AccommodationStipend    string `gorm:"size:100" json:"accommodation_stipend"`
	TravelStipend           string `gorm:"size:100" json:"travel_stipend"`
	InsuranceIncluded       bool   `json:"insurance_included"`
	InsuranceStipend        string `gorm:"size:100" json:"insurance_stipend"`
	ContractLength          int    `json:"contract_length"`
	ContractRenewBonus      *int   `json:"contract_renew_bonus"`
	ContractCompletionBonus *int   `json:"contract_completion_bonus"`
	CompensationType        string `gorm:"size:25;not null" json:"compensation_type"`
	CompensationAmount      string `gorm:"size:25;not null" json:"compensation_amount"`
	IsActive                bool   `gorm:"not null;default:true" json:"is_active"`

	Requirements *JobRequirements `gorm:"constraint:OnDelete:CASCADE" json:"requirements,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	return nil
}

// JobRequirements is the eligibility filter for a Job.
type JobRequirements struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	JobID       string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"job_id"`
	AgeLow      int        `json:"age_low"`
	AgeHigh     int        `json:"age_high"`
	Gender      string     `gorm:"size:10" json:"gender"`
	Citizenship StringList `json:"citizenship"`
}
