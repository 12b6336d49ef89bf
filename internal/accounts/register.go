package accounts

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/DeanLuus22021994/recruit/internal/models"
	"github.com/DeanLuus22021994/recruit/internal/storage"
)

// ErrAlreadyRegistered means an identity with the email exists already.
var ErrAlreadyRegistered = errors.New("already registered")

// ValidationError maps form fields to user-facing messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// Add records a message for field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
}

// Err returns e when any field failed, nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ApplicantInput is the first step of a candidate application.
type ApplicantInput struct {
	FirstName   string
	LastName    string
	Email       string
	Citizenship string
	SkypeID     string
	Timezone    string
}

func (in *ApplicantInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Citizenship = strings.ToUpper(strings.TrimSpace(in.Citizenship))
	in.SkypeID = strings.TrimSpace(in.SkypeID)
	in.Timezone = strings.TrimSpace(in.Timezone)
}

// Validate checks required fields and lengths.
func (in ApplicantInput) Validate() error {
	v := &ValidationError{}
	required := func(field, value string, max int) {
		switch {
		case value == "":
			v.Add(field, "This field is required.")
		case len(value) > max:
			v.Add(field, fmt.Sprintf("Ensure this value has at most %d characters.", max))
		}
	}
	required("first_name", in.FirstName, 50)
	required("last_name", in.LastName, 50)
	required("citizenship", in.Citizenship, 2)
	required("timezone", in.Timezone, 50)
	if len(in.SkypeID) > 50 {
		v.Add("skype_id", "Ensure this value has at most 50 characters.")
	}
	if in.Email == "" {
		v.Add("email", "This field is required.")
	} else if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		v.Add("email", "Enter a valid email address.")
	}
	return v.Err()
}

// RegisterApplicant creates an identity and a role-less profile for a new
// applicant. An existing email yields ErrAlreadyRegistered and no writes.
func RegisterApplicant(ctx context.Context, db *gorm.DB, in ApplicantInput) (*models.User, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if _, exists := storage.GetUserByEmail(ctx, db, in.Email); exists {
		return nil, fmt.Errorf("%s has already been registered: %w", in.Email, ErrAlreadyRegistered)
	}

	user := models.User{
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile := models.Profile{
			UserID:      user.ID,
			Timezone:    in.Timezone,
			Citizenship: in.Citizenship,
			SkypeID:     in.SkypeID,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		user.Profile = &profile
		return nil
	})
	if storage.IsDuplicate(err) {
		return nil, fmt.Errorf("%s has already been registered: %w", in.Email, ErrAlreadyRegistered)
	}
	if err != nil {
		return nil, fmt.Errorf("register applicant: %w", err)
	}
	return &user, nil
}

