package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the profile's user type. It is only ever stamped by the creation
// of a role record, never chosen by the profile owner.
type Role string

const (
	RoleUnset     Role = ""
	RoleCandidate Role = "Candidate"
	RoleRecruiter Role = "Recruiter"
	RoleEmployer  Role = "Employer"
)

// User is an identity with login credentials. PasswordHash is a bcrypt hash
// and stays empty for users who only sign in with Google.
type User struct {
	ID           string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	PasswordHash string `json:"-"`
	IsStaff      bool   `gorm:"not null;default:false" json:"is_staff"`

	Profile *Profile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Profile carries role and locale data, 1:1 with User.
type Profile struct {
	ID          string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID      string `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
	Timezone    string `gorm:"size:50" json:"timezone"`
	Citizenship string `gorm:"size:2" json:"citizenship"`
	SkypeID     string `gorm:"size:50" json:"skype_id"`
	Role        Role   `gorm:"type:varchar(50);not null;default:''" json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
