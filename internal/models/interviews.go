package models

import "time"

// InterviewRequest is a proposed interview waiting for both sides to agree.
// A nil flag means the side has not answered yet.
type InterviewRequest struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	CandidateID       string `gorm:"type:varchar(36);not null;uniqueIndex:idx_request_pair" json:"candidate_id"`
	JobID             string `gorm:"type:varchar(36);not null;uniqueIndex:idx_request_pair" json:"job_id"`
	CandidateAccepted *bool  `json:"candidate_accepted"`
	EmployerAccepted  *bool  `json:"employer_accepted"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MutuallyAccepted reports whether both parties said yes.
func (r InterviewRequest) MutuallyAccepted() bool {
	return r.CandidateAccepted != nil && *r.CandidateAccepted &&
		r.EmployerAccepted != nil && *r.EmployerAccepted
}

// InterviewInvitation is a confirmed or tracked interview. Status holds an
// interviews.Status value.
type InterviewInvitation struct {
	ID                        string     `gorm:"primaryKey;type:varchar(5)" json:"id"`
	CandidateID               string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_invitation_pair" json:"candidate_id"`
	JobID                     string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_invitation_pair" json:"job_id"`
	ConfirmedTime             *time.Time `json:"confirmed_time"`
	Status                    int        `gorm:"not null;default:0" json:"status"`
	RequestRemindersSent      int        `gorm:"not null;default:0" json:"request_reminders_sent"`
	ConfirmationRemindersSent int        `gorm:"not null;default:0" json:"confirmation_reminders_sent"`
	IsActive                  bool       `gorm:"not null;default:true" json:"is_active"`
	Result                    string     `gorm:"size:50" json:"result"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Available is one recurring weekly availability window. Times are "HH:MM".
type Available struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UserID    string `gorm:"type:varchar(36);index;not null" json:"user_id"`
	DayOfWeek int    `gorm:"not null" json:"day_of_week"`
	TimeStart string `gorm:"size:5;not null" json:"time_start"`
	TimeEnd   string `gorm:"size:5;not null" json:"time_end"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Exclusion marks a date on which the user is unavailable regardless of
// their weekly windows. Date uses DateLayout.
type Exclusion struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_exclusion_day" json:"user_id"`
	Date   string `gorm:"type:varchar(10);not null;uniqueIndex:idx_exclusion_day" json:"date"`
}
