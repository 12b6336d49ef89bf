package profiles

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DeanLuus22021994/recruit/internal/accounts"
	"github.com/DeanLuus22021994/recruit/internal/files"
	"github.com/DeanLuus22021994/recruit/internal/models"
	"github.com/DeanLuus22021994/recruit/internal/storage"
)

type RecruiterInput struct {
	PhoneNumber string
	DateOfBirth time.Time
	Location    string
}

func (in RecruiterInput) Validate() error {
	v := &accounts.ValidationError{}
	required(v, "phone_number", in.PhoneNumber, 20)
	required(v, "location", in.Location, 100)
	if in.DateOfBirth.IsZero() {
		v.Add("date_of_birth", "This field is required.")
	}
	return v.Err()
}

// CreateRecruiter registers the user as a recruiter with a profile photo.
func (s *Service) CreateRecruiter(ctx context.Context, userID string, in RecruiterInput, photo files.Upload) (*models.Recruiter, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if photo.Empty() {
		return nil, &accounts.ValidationError{Fields: map[string]string{"image": "This field is required."}}
	}

	imageKey, thumbKey, err := files.SaveWithThumb(ctx, s.Files, recruiterPrefix, photo)
	if err != nil {
		return nil, err
	}
	recruiter := models.Recruiter{
		UserID:      userID,
		PhoneNumber: in.PhoneNumber,
		DateOfBirth: in.DateOfBirth,
		Location:    in.Location,
		Image:       imageKey,
		Thumb:       thumbKey,
		IsActive:    true,
	}
	if err := s.createRoleRecord(ctx, userID, models.RoleRecruiter, &recruiter); err != nil {
		_ = files.DeleteAll(ctx, s.Files, imageKey, thumbKey)
		return nil, fmt.Errorf("create recruiter: %w", err)
	}
	slog.Info("recruiter created", slog.String("recruiter_id", recruiter.ID), slog.String("user_id", userID))
	return &recruiter, nil
}

// ListRecruiters returns active recruiters, newest first.
func (s *Service) ListRecruiters(ctx context.Context) ([]models.Recruiter, error) {
	var recruiters []models.Recruiter
	err := s.DB.WithContext(ctx).Where("is_active = ?", true).Order("created_at DESC").Find(&recruiters).Error
	return recruiters, err
}

func (s *Service) DeleteRecruiter(ctx context.Context, id string) error {
	var recruiter models.Recruiter
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&recruiter).Error
	if storage.IsNotFound(err) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(&recruiter).Error; err != nil {
		return fmt.Errorf("delete recruiter: %w", err)
	}
	return files.DeleteAll(ctx, s.Files, recruiter.Image, recruiter.Thumb)
}
