package profiles

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DeanLuus22021994/recruit/internal/accounts"
	"github.com/DeanLuus22021994/recruit/internal/files"
	"github.com/DeanLuus22021994/recruit/internal/models"
	"github.com/DeanLuus22021994/recruit/internal/storage"
)

type EmployerInput struct {
	PhoneNumber    string
	NameEnglish    string
	NameLocal      string
	AddressEnglish string
	AddressLocal   string
}

func (in EmployerInput) Validate() error {
	v := &accounts.ValidationError{}
	required(v, "phone_number", in.PhoneNumber, 20)
	required(v, "name_english", in.NameEnglish, 200)
	required(v, "name_local", in.NameLocal, 200)
	required(v, "address_english", in.AddressEnglish, 200)
	required(v, "address_local", in.AddressLocal, 200)
	return v.Err()
}

// CreateEmployer registers the user as an employer with a business license
// scan and its thumbnail.
func (s *Service) CreateEmployer(ctx context.Context, userID string, in EmployerInput, license files.Upload) (*models.Employer, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if license.Empty() {
		return nil, &accounts.ValidationError{Fields: map[string]string{"business_license": "This field is required."}}
	}

	licenseKey, thumbKey, err := files.SaveWithThumb(ctx, s.Files, employerPrefix, license)
	if err != nil {
		return nil, err
	}
	employer := models.Employer{
		UserID:               userID,
		PhoneNumber:          in.PhoneNumber,
		NameEnglish:          in.NameEnglish,
		NameLocal:            in.NameLocal,
		AddressEnglish:       in.AddressEnglish,
		AddressLocal:         in.AddressLocal,
		BusinessLicense:      licenseKey,
		BusinessLicenseThumb: thumbKey,
		IsActive:             true,
	}
	if err := s.createRoleRecord(ctx, userID, models.RoleEmployer, &employer); err != nil {
		_ = files.DeleteAll(ctx, s.Files, licenseKey, thumbKey)
		return nil, fmt.Errorf("create employer: %w", err)
	}
	slog.Info("employer created", slog.String("employer_id", employer.ID), slog.String("user_id", userID))
	return &employer, nil
}

type EmployerRequirementsInput struct {
	Education         string
	EducationMajor    string
	AgeRangeLow       *int
	AgeRangeHigh      *int
	YearsOfExperience *int
	Citizenship       []string
}

// SetEmployerRequirements creates or replaces the employer's default
// candidate filter.
func (s *Service) SetEmployerRequirements(ctx context.Context, employerID string, in EmployerRequirementsInput) (*models.EmployerRequirements, error) {
	if in.AgeRangeLow != nil && in.AgeRangeHigh != nil && *in.AgeRangeLow > *in.AgeRangeHigh {
		return nil, &accounts.ValidationError{Fields: map[string]string{"age_range_low": "Must not exceed the upper bound."}}
	}
	req := models.EmployerRequirements{
		EmployerID:        employerID,
		Education:         in.Education,
		EducationMajor:    in.EducationMajor,
		AgeRangeLow:       in.AgeRangeLow,
		AgeRangeHigh:      in.AgeRangeHigh,
		YearsOfExperience: in.YearsOfExperience,
		Citizenship:       models.StringList(in.Citizenship),
	}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "employer_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"education", "education_major", "age_range_low", "age_range_high",
			"years_of_experience", "citizenship",
		}),
	}).Create(&req).Error
	if err != nil {
		return nil, fmt.Errorf("save employer requirements: %w", err)
	}

	var saved models.EmployerRequirements
	if err := s.DB.WithContext(ctx).Where("employer_id = ?", employerID).First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

// AddEmployerImage stores a gallery image. Marking it as the cover clears the
// flag on every other image of the employer.
func (s *Service) AddEmployerImage(ctx context.Context, employerID string, image files.Upload, cover bool) (*models.EmployerImage, error) {
	if image.Empty() {
		return nil, &accounts.ValidationError{Fields: map[string]string{"image": "This field is required."}}
	}
	imageKey, thumbKey, err := files.SaveWithThumb(ctx, s.Files, employerPrefix, image)
	if err != nil {
		return nil, err
	}
	record := models.EmployerImage{
		EmployerID: employerID,
		Image:      imageKey,
		Thumb:      thumbKey,
		CoverImage: cover,
		IsActive:   true,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cover {
			if err := tx.Model(&models.EmployerImage{}).
				Where("employer_id = ? AND cover_image = ?", employerID, true).
				Update("cover_image", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		_ = files.DeleteAll(ctx, s.Files, imageKey, thumbKey)
		return nil, fmt.Errorf("save employer image: %w", err)
	}
	return &record, nil
}

func (s *Service) DeleteEmployerImage(ctx context.Context, id uint) error {
	var img models.EmployerImage
	if err := s.DB.WithContext(ctx).First(&img, id).Error; err != nil {
		if storage.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(&img).Error; err != nil {
		return err
	}
	return files.DeleteAll(ctx, s.Files, img.Image, img.Thumb)
}

// DeleteEmployer removes the employer with its requirements and gallery,
// then deletes the license, gallery images and all their thumbnails.
func (s *Service) DeleteEmployer(ctx context.Context, id string) error {
	var employer models.Employer
	err := s.DB.WithContext(ctx).Preload("Images").Where("id = ?", id).First(&employer).Error
	if storage.IsNotFound(err) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	keys := []string{employer.BusinessLicense, employer.BusinessLicenseThumb}
	for _, img := range employer.Images {
		keys = append(keys, img.Image, img.Thumb)
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("employer_id = ?", id).Delete(&models.EmployerImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("employer_id = ?", id).Delete(&models.EmployerRequirements{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Employer{}, "id = ?", id).Error
	})
	if err != nil {
		return fmt.Errorf("delete employer: %w", err)
	}
	return files.DeleteAll(ctx, s.Files, keys...)
}
