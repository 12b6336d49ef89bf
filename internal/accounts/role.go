package accounts

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/DeanLuus22021994/recruit/internal/models"
	"github.com/DeanLuus22021994/recruit/internal/storage"
)

// ErrNotPermitted is returned when the caller's role does not allow an action.
var ErrNotPermitted = errors.New("permission denied")

// Role is what a user is allowed to act as. It is resolved once per request
// and is one of CandidateRole, RecruiterRole, EmployerRole or Unset.
type Role interface {
	Kind() models.Role
}

type CandidateRole struct{ Candidate models.Candidate }

type RecruiterRole struct{ Recruiter models.Recruiter }

type EmployerRole struct{ Employer models.Employer }

// Unset is a user whose profile has no role record behind it.
type Unset struct{}

func (CandidateRole) Kind() models.Role { return models.RoleCandidate }
func (RecruiterRole) Kind() models.Role { return models.RoleRecruiter }
func (EmployerRole) Kind() models.Role  { return models.RoleEmployer }
func (Unset) Kind() models.Role         { return models.RoleUnset }

// ResolveRole reads the profile's role and loads the matching role record.
// A stamped role whose record has gone missing resolves to Unset.
func ResolveRole(ctx context.Context, db *gorm.DB, user models.User) Role {
	profile, ok := storage.GetProfileByUserID(ctx, db, user.ID)
	if !ok {
		return Unset{}
	}
	switch profile.Role {
	case models.RoleCandidate:
		if c, ok := storage.GetCandidateByUserID(ctx, db, user.ID); ok {
			return CandidateRole{Candidate: c}
		}
	case models.RoleRecruiter:
		if r, ok := storage.GetRecruiterByUserID(ctx, db, user.ID); ok {
			return RecruiterRole{Recruiter: r}
		}
	case models.RoleEmployer:
		if e, ok := storage.GetEmployerByUserID(ctx, db, user.ID); ok {
			return EmployerRole{Employer: e}
		}
	}
	return Unset{}
}

// OnRoleRecordCreated stamps the owner's profile after a role record was
// created. Callers run it in the same transaction as the create.
func OnRoleRecordCreated(ctx context.Context, tx *gorm.DB, userID string, role models.Role) error {
	res := tx.WithContext(ctx).Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Update("role", role)
	if res.Error != nil {
		return fmt.Errorf("stamp %s role: %w", role, res.Error)
	}
	return nil
}
