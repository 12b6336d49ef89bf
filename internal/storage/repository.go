package storage

import (
	"context"

	"gorm.io/gorm"

	"github.com/DeanLuus22021994/recruit/internal/models"
)

// User-related database functions

// GetUserByID retrieves a user by ID from the database
func GetUserByID(ctx context.Context, db *gorm.DB, id string) (models.User, bool) {
	var user models.User
	result := db.WithContext(ctx).Where("id = ?", id).First(&user)
	return user, result.Error == nil
}

// GetUserByEmail retrieves a user by email from the database
func GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (models.User, bool) {
	var user models.User
	result := db.WithContext(ctx).Where("email = ?", email).First(&user)
	return user, result.Error == nil
}

// GetProfileByUserID retrieves the profile owned by a user
func GetProfileByUserID(ctx context.Context, db *gorm.DB, userID string) (models.Profile, bool) {
	var profile models.Profile
	result := db.WithContext(ctx).Where("user_id = ?", userID).First(&profile)
	return profile, result.Error == nil
}

// Role record functions

// GetCandidateByUserID retrieves the candidate record of a user
func GetCandidateByUserID(ctx context.Context, db *gorm.DB, userID string) (models.Candidate, bool) {
	var candidate models.Candidate
	result := db.WithContext(ctx).Where("user_id = ?", userID).First(&candidate)
	return candidate, result.Error == nil
}

// GetEmployerByUserID retrieves the employer record of a user
func GetEmployerByUserID(ctx context.Context, db *gorm.DB, userID string) (models.Employer, bool) {
	var employer models.Employer
	result := db.WithContext(ctx).Where("user_id = ?", userID).First(&employer)
	return employer, result.Error == nil
}

// GetRecruiterByUserID retrieves the recruiter record of a user
func GetRecruiterByUserID(ctx context.Context, db *gorm.DB, userID string) (models.Recruiter, bool) {
	var recruiter models.Recruiter
	result := db.WithContext(ctx).Where("user_id = ?", userID).First(&recruiter)
	return recruiter, result.Error == nil
}

// Job-related database functions

// GetJobByID retrieves a job and its requirements by ID
func GetJobByID(ctx context.Context, db *gorm.DB, id string) (models.Job, bool) {
	var job models.Job
	result := db.WithContext(ctx).Preload("Requirements").Where("id = ?", id).First(&job)
	return job, result.Error == nil
}

// Interview request related functions

// HasRequested checks if a candidate already has a request open for a job
func HasRequested(ctx context.Context, db *gorm.DB, jobID, candidateID string) bool {
	var count int64
	db.WithContext(ctx).Model(&models.InterviewRequest{}).
		Where("job_id = ? AND candidate_id = ?", jobID, candidateID).
		Count(&count)
	return count > 0
}

// GetInterviewRequestsByCandidate retrieves all interview requests of a candidate
func GetInterviewRequestsByCandidate(ctx context.Context, db *gorm.DB, candidateID string) ([]models.InterviewRequest, error) {
	var requests []models.InterviewRequest
	result := db.WithContext(ctx).Where("candidate_id = ?", candidateID).Order("id").Find(&requests)
	return requests, result.Error
}

// GetInterviewRequestsByRecruiter retrieves the requests for jobs a recruiter handles
func GetInterviewRequestsByRecruiter(ctx context.Context, db *gorm.DB, recruiterID string) ([]models.InterviewRequest, error) {
	var requests []models.InterviewRequest
	result := db.WithContext(ctx).
		Where("job_id IN (?)", db.Model(&models.Job{}).Select("id").Where("recruiter_id = ?", recruiterID)).
		Order("id").Find(&requests)
	return requests, result.Error
}

// GetInterviewRequestsByEmployer retrieves the requests for an employer's jobs
func GetInterviewRequestsByEmployer(ctx context.Context, db *gorm.DB, employerID string) ([]models.InterviewRequest, error) {
	var requests []models.InterviewRequest
	result := db.WithContext(ctx).
		Where("job_id IN (?)", db.Model(&models.Job{}).Select("id").Where("employer_id = ?", employerID)).
		Order("id").Find(&requests)
	return requests, result.Error
}
