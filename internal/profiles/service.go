// Package profiles manages role records (candidates, employers and
// recruiters) together with the files attached to them.
package profiles

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/DeanLuus22021994/recruit/internal/accounts"
	"github.com/DeanLuus22021994/recruit/internal/files"
	"github.com/DeanLuus22021994/recruit/internal/models"
	"github.com/DeanLuus22021994/recruit/internal/storage"
)

var (
	// ErrNotFound is returned for a missing role record or attachment.
	ErrNotFound = errors.New("record not found")
	// ErrRoleTaken means the user already acts under a different role.
	ErrRoleTaken = errors.New("user already has a role")
	// ErrExists means the user already owns a record of this kind.
	ErrExists = errors.New("record already exists")
)

const (
	candidatePrefix = "candidate"
	documentPrefix  = "candidate/documents"
	employerPrefix  = "employer"
	recruiterPrefix = "recruiter"
)

type Service struct {
	DB    *gorm.DB
	Files files.Storage

	pending *fileLog // set on services bound by InTx
}

// fileLog holds file cleanup that waits for a transaction to settle.
type fileLog struct {
	added    []string // removed on rollback
	replaced []string // removed after commit
}

func NewService(db *gorm.DB, store files.Storage) *Service {
	return &Service{DB: db, Files: store}
}

// InTx runs fn with a copy of the service bound to one transaction. Files
// stored by fn are removed if the transaction rolls back; files it replaces
// are removed only once it commits.
func (s *Service) InTx(ctx context.Context, fn func(*Service) error) error {
	bound := &Service{Files: s.Files, pending: &fileLog{}}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bound.DB = tx
		return fn(bound)
	})
	if err != nil {
		_ = files.DeleteAll(ctx, s.Files, bound.pending.added...)
		return err
	}
	_ = files.DeleteAll(ctx, s.Files, bound.pending.replaced...)
	return nil
}

// stored notes keys written for rows that are not committed yet.
func (s *Service) stored(keys ...string) {
	if s.pending != nil {
		s.pending.added = append(s.pending.added, keys...)
	}
}

// release removes files no longer referenced, deferring to commit when the
// service is bound to a transaction.
func (s *Service) release(ctx context.Context, keys ...string) {
	if s.pending != nil {
		s.pending.replaced = append(s.pending.replaced, keys...)
		return
	}
	_ = files.DeleteAll(ctx, s.Files, keys...)
}

// checkRole fails when the user's profile is stamped with a role other than want.
func checkRole(ctx context.Context, tx *gorm.DB, userID string, want models.Role) error {
	profile, ok := storage.GetProfileByUserID(ctx, tx, userID)
	if !ok {
		return fmt.Errorf("profile for user %s: %w", userID, ErrNotFound)
	}
	if profile.Role != models.RoleUnset && profile.Role != want {
		return fmt.Errorf("user is a %s: %w", profile.Role, ErrRoleTaken)
	}
	return nil
}

// createRoleRecord inserts rec and stamps the owner's profile in one
// transaction. A unique violation on the owner maps to ErrExists.
func (s *Service) createRoleRecord(ctx context.Context, userID string, role models.Role, rec any) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkRole(ctx, tx, userID, role); err != nil {
			return err
		}
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		return accounts.OnRoleRecordCreated(ctx, tx, userID, role)
	})
	if storage.IsDuplicate(err) {
		return fmt.Errorf("%s for user %s: %w", role, userID, ErrExists)
	}
	return err
}

func required(v *accounts.ValidationError, field, value string, max int) {
	switch {
	case value == "":
		v.Add(field, "This field is required.")
	case max > 0 && len(value) > max:
		v.Add(field, fmt.Sprintf("Ensure this value has at most %d characters.", max))
	}
}
