// Package interviews handles interview requests, the invitations produced
// when both sides accept, and the weekly availability used to schedule them.
package interviews

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"gorm.io/gorm"

	"github.com/DeanLuus22021994/recruit/internal/accounts"
	"github.com/DeanLuus22021994/recruit/internal/models"
	"github.com/DeanLuus22021994/recruit/internal/storage"
)

var ErrNotFound = errors.New("not found")

const (
	invitationIDLength   = 5
	invitationIDAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	invitationIDAttempts = 8
)

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// Respond records one side's answer to an interview request. A candidate
// answers for the candidate side; the job's employer or its recruiter
// answers for the employer side. When the write leaves both sides accepted,
// the pair's invitation is created in the same transaction unless it
// already exists. The invitation is returned when one exists after the write.
func (s *Service) Respond(ctx context.Context, actor accounts.Role, requestID uint, decision *bool) (*models.InterviewRequest, *models.InterviewInvitation, error) {
	var (
		req        models.InterviewRequest
		invitation *models.InterviewInvitation
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&req, requestID).Error; err != nil {
			if storage.IsNotFound(err) {
				return fmt.Errorf("interview request %d: %w", requestID, ErrNotFound)
			}
			return err
		}

		column, err := answeringSide(ctx, tx, actor, req)
		if err != nil {
			return err
		}
		if err := tx.Model(&req).Update(column, decision).Error; err != nil {
			return err
		}
		if column == "candidate_accepted" {
			req.CandidateAccepted = decision
		} else {
			req.EmployerAccepted = decision
		}

		if req.MutuallyAccepted() {
			inv, err := ensureInvitation(ctx, tx, req.CandidateID, req.JobID)
			if err != nil {
				return err
			}
			invitation = inv
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &req, invitation, nil
}

func answeringSide(ctx context.Context, tx *gorm.DB, actor accounts.Role, req models.InterviewRequest) (string, error) {
	switch a := actor.(type) {
	case accounts.CandidateRole:
		if a.Candidate.ID == req.CandidateID {
			return "candidate_accepted", nil
		}
	case accounts.EmployerRole, accounts.RecruiterRole:
		job, ok := storage.GetJobByID(ctx, tx, req.JobID)
		if !ok {
			return "", fmt.Errorf("job %s: %w", req.JobID, ErrNotFound)
		}
		if e, ok := a.(accounts.EmployerRole); ok && e.Employer.ID == job.EmployerID {
			return "employer_accepted", nil
		}
		if r, ok := a.(accounts.RecruiterRole); ok && r.Recruiter.ID == job.RecruiterID {
			return "employer_accepted", nil
		}
	}
	return "", accounts.ErrNotPermitted
}

// ensureInvitation returns the invitation for the pair, creating it when
// missing. The unique (candidate, job) index decides concurrent creators.
func ensureInvitation(ctx context.Context, tx *gorm.DB, candidateID, jobID string) (*models.InterviewInvitation, error) {
	for attempt := 0; attempt < invitationIDAttempts; attempt++ {
		var existing models.InterviewInvitation
		err := tx.Where("candidate_id = ? AND job_id = ?", candidateID, jobID).First(&existing).Error
		if err == nil {
			return &existing, nil
		}
		if !storage.IsNotFound(err) {
			return nil, err
		}

		id, err := newInvitationID()
		if err != nil {
			return nil, err
		}
		inv := models.InterviewInvitation{
			ID:          id,
			CandidateID: candidateID,
			JobID:       jobID,
			Status:      int(StatusOpen),
			IsActive:    true,
		}
		err = tx.Transaction(func(sp *gorm.DB) error {
			return sp.Create(&inv).Error
		})
		if err == nil {
			slog.Info("interview invitation created",
				slog.String("invitation_id", inv.ID),
				slog.String("candidate_id", candidateID),
				slog.String("job_id", jobID),
			)
			return &inv, nil
		}
		if !storage.IsDuplicate(err) {
			return nil, err
		}
		// Either the ID collided or another writer created the pair; the
		// next pass tells them apart.
	}
	return nil, fmt.Errorf("could not allocate an invitation id after %d attempts", invitationIDAttempts)
}

func newInvitationID() (string, error) {
	limit := big.NewInt(int64(len(invitationIDAlphabet)))
	b := make([]byte, invitationIDLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b[i] = invitationIDAlphabet[n.Int64()]
	}
	return string(b), nil
}

// ListRequests returns the interview requests visible to the caller:
// candidates see their own, recruiters the jobs they recruit for, employers
// their jobs, and staff everything.
func (s *Service) ListRequests(ctx context.Context, role accounts.Role, isStaff bool) ([]models.InterviewRequest, error) {
	switch r := role.(type) {
	case accounts.CandidateRole:
		return storage.GetInterviewRequestsByCandidate(ctx, s.DB, r.Candidate.ID)
	case accounts.RecruiterRole:
		return storage.GetInterviewRequestsByRecruiter(ctx, s.DB, r.Recruiter.ID)
	case accounts.EmployerRole:
		return storage.GetInterviewRequestsByEmployer(ctx, s.DB, r.Employer.ID)
	}
	if isStaff {
		var all []models.InterviewRequest
		err := s.DB.WithContext(ctx).Order("id").Find(&all).Error
		return all, err
	}
	return nil, accounts.ErrNotPermitted
}
