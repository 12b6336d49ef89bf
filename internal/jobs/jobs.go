// Package jobs is the job catalog and the interview requests candidates
// raise against it.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DeanLuus22021994/recruit/internal/accounts"
	"github.com/DeanLuus22021994/recruit/internal/models"
	"github.com/DeanLuus22021994/recruit/internal/storage"
)

var (
	ErrNotFound   = errors.New("job not found")
	ErrUnknownJob = errors.New("unknown job")
)

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

type JobInput struct {
	EmployerID              string `json:"employer_id"`
	RecruiterID             string `json:"recruiter_id"`
	Title                   string `json:"title"`
	Location                string `json:"location"`
	WeeklyHours             int    `json:"weekly_hours"`
	SalaryLow               int    `json:"salary_low"`
	SalaryHigh              int    `json:"salary_high"`
	AccommodationIncluded   bool   `json:"accommodation_included"`
	AccommodationStipend    string `json:"accommodation_stipend"`
	TravelStipend           string `json:"travel_stipend"`
	InsuranceIncluded       bool   `json:"insurance_included"`
	InsuranceStipend        string `json:"insurance_stipend"`
	ContractLength          int    `json:"contract_length"`
	ContractRenewBonus      *int   `json:"contract_renew_bonus"`
	ContractCompletionBonus *int   `json:"contract_completion_bonus"`
	CompensationType        string `json:"compensation_type"`
	CompensationAmount      string `json:"compensation_amount"`
}

func (in JobInput) Validate() error {
	v := &accounts.ValidationError{}
	if in.EmployerID == "" {
		v.Add("employer_id", "This field is required.")
	}
	if in.RecruiterID == "" {
		v.Add("recruiter_id", "This field is required.")
	}
	switch {
	case in.Title == "":
		v.Add("title", "This field is required.")
	case len(in.Title) > 100:
		v.Add("title", "Ensure this value has at most 100 characters.")
	}
	if in.Location != "" && in.Location != models.LocationOnsite && in.Location != models.LocationRemote {
		v.Add("location", "Select a valid choice.")
	}
	if in.SalaryLow > in.SalaryHigh && in.SalaryHigh != 0 {
		v.Add("salary_low", "Must not exceed the upper bound.")
	}
	if in.CompensationType != models.CompensationOneTime && in.CompensationType != models.CompensationMonthly {
		v.Add("compensation_type", "Select a valid choice.")
	}
	if in.CompensationAmount == "" {
		v.Add("compensation_amount", "This field is required.")
	}
	return v.Err()
}

type RequirementsInput struct {
	AgeLow      int      `json:"age_low"`
	AgeHigh     int      `json:"age_high"`
	Gender      string   `json:"gender"`
	Citizenship []string `json:"citizenship"`
}

func (in RequirementsInput) Validate() error {
	v := &accounts.ValidationError{}
	if in.AgeLow < 0 || in.AgeHigh < 0 {
		v.Add("age_low", "Ages must be positive.")
	} else if in.AgeHigh != 0 && in.AgeLow > in.AgeHigh {
		v.Add("age_low", "Must not exceed the upper bound.")
	}
	if in.Gender != "" && in.Gender != models.GenderMale && in.Gender != models.GenderFemale {
		v.Add("gender", "Select a valid choice.")
	}
	return v.Err()
}

// Create adds a job and, when given, its requirements in one transaction.
func (s *Service) Create(ctx context.Context, in JobInput, req *RequirementsInput) (*models.Job, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if req != nil {
		if err := req.Validate(); err != nil {
			return nil, err
		}
	}

	job := models.Job{
		EmployerID:              in.EmployerID,
		RecruiterID:             in.RecruiterID,
		Title:                   in.Title,
		Location:                in.Location,
		WeeklyHours:             in.WeeklyHours,
		SalaryLow:               in.SalaryLow,
		SalaryHigh:              in.SalaryHigh,
		AccommodationIncluded:   in.AccommodationIncluded,
		AccommodationStipend:    in.AccommodationStipend,
		TravelStipend:           in.TravelStipend,
		InsuranceIncluded:       in.InsuranceIncluded,
		InsuranceStipend:        in.InsuranceStipend,
		ContractLength:          in.ContractLength,
		ContractRenewBonus:      in.ContractRenewBonus,
		ContractCompletionBonus: in.ContractCompletionBonus,
		CompensationType:        in.CompensationType,
		CompensationAmount:      in.CompensationAmount,
		IsActive:                true,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&job).Error; err != nil {
			return err
		}
		if req == nil {
			return nil
		}
		job.Requirements = &models.JobRequirements{
			JobID:       job.ID,
			AgeLow:      req.AgeLow,
			AgeHigh:     req.AgeHigh,
			Gender:      req.Gender,
			Citizenship: models.StringList(req.Citizenship),
		}
		return tx.Create(job.Requirements).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	slog.Info("job created", slog.String("job_id", job.ID), slog.String("employer_id", job.EmployerID))
	return &job, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Job, error) {
	job, ok := storage.GetJobByID(ctx, s.DB, id)
	if !ok {
		return nil, ErrNotFound
	}
	return &job, nil
}

// ListActive returns open jobs, newest first.
func (s *Service) ListActive(ctx context.Context) ([]models.Job, error) {
	return s.list(ctx, s.DB.Where("is_active = ?", true))
}

func (s *Service) ByRecruiter(ctx context.Context, recruiterID string) ([]models.Job, error) {
	return s.list(ctx, s.DB.Where("recruiter_id = ?", recruiterID))
}

func (s *Service) ByEmployer(ctx context.Context, employerID string) ([]models.Job, error) {
	return s.list(ctx, s.DB.Where("employer_id = ?", employerID))
}

func (s *Service) list(ctx context.Context, q *gorm.DB) ([]models.Job, error) {
	var jobs []models.Job
	err := q.WithContext(ctx).Preload("Requirements").Order("created_at DESC").Find(&jobs).Error
	return jobs, err
}

// Eligible reports whether a candidate satisfies a job's requirements. A nil
// requirement set admits everyone; zero age bounds are open.
func Eligible(req *models.JobRequirements, candidate models.Candidate, profile models.Profile, now time.Time) bool {
	if req == nil {
		return true
	}
	if req.AgeLow > 0 || req.AgeHigh > 0 {
		year, err := strconv.Atoi(candidate.BirthYear)
		if err != nil {
			return false
		}
		age := now.Year() - year
		if req.AgeLow > 0 && age < req.AgeLow {
			return false
		}
		if req.AgeHigh > 0 && age > req.AgeHigh {
			return false
		}
	}
	if req.Gender != "" && req.Gender != candidate.Gender {
		return false
	}
	if len(req.Citizenship) > 0 && !req.Citizenship.Contains(profile.Citizenship) {
		return false
	}
	return true
}

// Listing is a job as seen by one candidate.
type Listing struct {
	models.Job
	Eligible  bool `json:"eligible"`
	Requested bool `json:"requested"`
}

// ListForCandidate annotates the active jobs with the candidate's
// eligibility and whether an interview was already requested.
func (s *Service) ListForCandidate(ctx context.Context, candidate models.Candidate, profile models.Profile, now time.Time) ([]Listing, error) {
	jobs, err := s.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	var requested []string
	if err := s.DB.WithContext(ctx).Model(&models.InterviewRequest{}).
		Where("candidate_id = ?", candidate.ID).Pluck("job_id", &requested).Error; err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(requested))
	for _, id := range requested {
		seen[id] = true
	}

	out := make([]Listing, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, Listing{
			Job:       job,
			Eligible:  Eligible(job.Requirements, candidate, profile, now),
			Requested: seen[job.ID],
		})
	}
	return out, nil
}

// RequestInterviews records one interview request per (candidate, job) pair.
// Pairs that already exist are left untouched. An unknown job ID fails the
// whole call before anything is written. It returns how many requests were new.
func (s *Service) RequestInterviews(ctx context.Context, candidateID string, jobIDs []string) (int, error) {
	ids := dedupe(jobIDs)
	if len(ids) == 0 {
		return 0, nil
	}

	var created int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var found []string
		if err := tx.Model(&models.Job{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
			return err
		}
		if len(found) != len(ids) {
			known := make(map[string]bool, len(found))
			for _, id := range found {
				known[id] = true
			}
			for _, id := range ids {
				if !known[id] {
					return fmt.Errorf("%s: %w", id, ErrUnknownJob)
				}
			}
		}

		requests := make([]models.InterviewRequest, 0, len(ids))
		for _, id := range ids {
			requests = append(requests, models.InterviewRequest{CandidateID: candidateID, JobID: id})
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&requests)
		created = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, err
	}
	slog.Info("interview requests recorded",
		slog.String("candidate_id", candidateID),
		slog.Int("requested", len(ids)),
		slog.Int64("created", created),
	)
	return int(created), nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
