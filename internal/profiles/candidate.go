package profiles

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DeanLuus22021994/recruit/internal/accounts"
	"github.com/DeanLuus22021994/recruit/internal/files"
	"github.com/DeanLuus22021994/recruit/internal/models"
	"github.com/DeanLuus22021994/recruit/internal/storage"
)

type CandidateInput struct {
	BirthYear       string
	DateOfBirth     *time.Time
	Gender          string
	Education       string
	EducationMajor  string
	CurrentLocation string
}

func (in CandidateInput) Validate() error {
	v := &accounts.ValidationError{}
	if len(in.BirthYear) != 4 || strings.Trim(in.BirthYear, "0123456789") != "" {
		v.Add("birth_year", "Enter a four digit year.")
	}
	if in.Gender != models.GenderMale && in.Gender != models.GenderFemale {
		v.Add("gender", "Select a valid choice.")
	}
	required(v, "education", in.Education, 25)
	if len(in.EducationMajor) > 250 {
		v.Add("education_major", "Ensure this value has at most 250 characters.")
	}
	return v.Err()
}

// UpsertCandidate creates the user's candidate record or updates the
// existing one, storing a new photo and thumbnail. The profile is stamped
// Candidate only when the record is created. The bool result reports
// whether a row was created.
func (s *Service) UpsertCandidate(ctx context.Context, userID string, in CandidateInput, image files.Upload) (*models.Candidate, bool, error) {
	if err := in.Validate(); err != nil {
		return nil, false, err
	}
	if image.Empty() {
		return nil, false, &accounts.ValidationError{Fields: map[string]string{"image": "This field is required."}}
	}

	imageKey, thumbKey, err := files.SaveWithThumb(ctx, s.Files, candidatePrefix, image)
	if err != nil {
		return nil, false, err
	}
	s.stored(imageKey, thumbKey)

	var (
		candidate models.Candidate
		created   bool
		stale     []string
	)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkRole(ctx, tx, userID, models.RoleCandidate); err != nil {
			return err
		}
		candidate = models.Candidate{
			UserID:          userID,
			BirthYear:       in.BirthYear,
			DateOfBirth:     in.DateOfBirth,
			Gender:          in.Gender,
			Education:       in.Education,
			EducationMajor:  in.EducationMajor,
			CurrentLocation: in.CurrentLocation,
			Image:           imageKey,
			Thumb:           thumbKey,
			IsActive:        true,
		}
		// The savepoint keeps the outer transaction usable when the insert
		// loses a race against a concurrent create.
		err := tx.Transaction(func(sp *gorm.DB) error {
			return sp.Create(&candidate).Error
		})
		switch {
		case err == nil:
			created = true
			return accounts.OnRoleRecordCreated(ctx, tx, userID, models.RoleCandidate)
		case !storage.IsDuplicate(err):
			return err
		}

		var existing models.Candidate
		if err := tx.Where("user_id = ?", userID).First(&existing).Error; err != nil {
			return err
		}
		stale = []string{existing.Image, existing.Thumb}
		existing.BirthYear = in.BirthYear
		existing.DateOfBirth = in.DateOfBirth
		existing.Gender = in.Gender
		existing.Education = in.Education
		existing.EducationMajor = in.EducationMajor
		existing.CurrentLocation = in.CurrentLocation
		existing.Image = imageKey
		existing.Thumb = thumbKey
		candidate = existing
		return tx.Save(&candidate).Error
	})
	if err != nil {
		_ = files.DeleteAll(ctx, s.Files, imageKey, thumbKey)
		return nil, false, fmt.Errorf("save candidate: %w", err)
	}
	s.release(ctx, stale...)

	slog.Info("candidate saved", slog.String("candidate_id", candidate.ID), slog.Bool("created", created))
	return &candidate, created, nil
}

// AddCandidateDocument stores an uploaded document and, for PDFs, keeps its
// extracted text for searching.
func (s *Service) AddCandidateDocument(ctx context.Context, candidateID, docType string, doc files.Upload) (*models.CandidateDocument, error) {
	if doc.Empty() {
		return nil, &accounts.ValidationError{Fields: map[string]string{"resume": "This field is required."}}
	}
	if docType == "" {
		docType = models.DocumentTypeResume
	}

	text, err := files.ExtractPDFText(doc.Data)
	if err != nil {
		slog.Warn("could not extract document text", slog.String("file", doc.Filename), slog.Any("error", err))
	}

	key, err := files.Save(ctx, s.Files, documentPrefix, doc)
	if err != nil {
		return nil, err
	}
	s.stored(key)
	record := models.CandidateDocument{
		CandidateID:  candidateID,
		Document:     key,
		DocumentType: docType,
		ParsedText:   text,
		IsActive:     true,
	}
	if err := s.DB.WithContext(ctx).Create(&record).Error; err != nil {
		_ = files.DeleteAll(ctx, s.Files, key)
		return nil, fmt.Errorf("save document: %w", err)
	}
	return &record, nil
}

// SetCandidateRequirements records the kind of employer the user is looking
// for, replacing any earlier choice. An empty type clears it.
func (s *Service) SetCandidateRequirements(ctx context.Context, userID, employerType string) (*models.CandidateRequirements, error) {
	employerType = strings.TrimSpace(employerType)
	if len(employerType) > 25 {
		return nil, &accounts.ValidationError{Fields: map[string]string{"employer_type": "Ensure this value has at most 25 characters."}}
	}
	req := models.CandidateRequirements{UserID: userID, EmployerType: employerType}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"employer_type"}),
	}).Create(&req).Error
	if err != nil {
		return nil, fmt.Errorf("save candidate requirements: %w", err)
	}
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Service) DeleteCandidateDocument(ctx context.Context, id uint) error {
	var doc models.CandidateDocument
	if err := s.DB.WithContext(ctx).First(&doc, id).Error; err != nil {
		if storage.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(&doc).Error; err != nil {
		return err
	}
	return files.DeleteAll(ctx, s.Files, doc.Document)
}

// DeleteCandidate removes the candidate, its documents and every backing file.
func (s *Service) DeleteCandidate(ctx context.Context, id string) error {
	var candidate models.Candidate
	err := s.DB.WithContext(ctx).Preload("Documents").Where("id = ?", id).First(&candidate).Error
	if storage.IsNotFound(err) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	keys := []string{candidate.Image, candidate.Thumb}
	for _, d := range candidate.Documents {
		keys = append(keys, d.Document)
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("candidate_id = ?", id).Delete(&models.CandidateDocument{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Candidate{}, "id = ?", id).Error
	})
	if err != nil {
		return fmt.Errorf("delete candidate: %w", err)
	}
	return files.DeleteAll(ctx, s.Files, keys...)
}
