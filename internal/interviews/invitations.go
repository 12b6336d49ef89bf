package interviews

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/DeanLuus22021994/recruit/internal/accounts"
	"github.com/DeanLuus22021994/recruit/internal/models"
	"github.com/DeanLuus22021994/recruit/internal/storage"
)

const maxResultLen = 50

func (s *Service) GetInvitation(ctx context.Context, id string) (*models.InterviewInvitation, error) {
	var inv models.InterviewInvitation
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&inv).Error
	if storage.IsNotFound(err) {
		return nil, fmt.Errorf("invitation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// CheckRecruiter fails with accounts.ErrNotPermitted unless recruiterID
// handles the job the invitation is for.
func (s *Service) CheckRecruiter(ctx context.Context, recruiterID, id string) error {
	inv, err := s.GetInvitation(ctx, id)
	if err != nil {
		return err
	}
	job, ok := storage.GetJobByID(ctx, s.DB, inv.JobID)
	if !ok || job.RecruiterID != recruiterID {
		return fmt.Errorf("invitation %s: %w", id, accounts.ErrNotPermitted)
	}
	return nil
}

// Advance moves an invitation to a new status if the transition is allowed.
// Cancelled and revoked invitations become inactive.
func (s *Service) Advance(ctx context.Context, id string, to Status) (*models.InterviewInvitation, error) {
	return s.transition(ctx, id, to, nil)
}

// Confirm fixes the interview time and moves the invitation to Confirmed.
func (s *Service) Confirm(ctx context.Context, id string, at time.Time) (*models.InterviewInvitation, error) {
	at = at.UTC()
	return s.transition(ctx, id, StatusConfirmed, map[string]any{"confirmed_time": at})
}

// Complete records the interview outcome and closes the invitation. The
// result is cut to maxResultLen characters.
func (s *Service) Complete(ctx context.Context, id, result string) (*models.InterviewInvitation, error) {
	result = strings.ToValidUTF8(result, "")
	if utf8.RuneCountInString(result) > maxResultLen {
		result = string([]rune(result)[:maxResultLen])
	}
	return s.transition(ctx, id, StatusCompleted, map[string]any{"result": result})
}

func (s *Service) transition(ctx context.Context, id string, to Status, extra map[string]any) (*models.InterviewInvitation, error) {
	var inv models.InterviewInvitation
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&inv).Error; err != nil {
			if storage.IsNotFound(err) {
				return fmt.Errorf("invitation %s: %w", id, ErrNotFound)
			}
			return err
		}
		from := Status(inv.Status)
		if !CanTransition(from, to) {
			return fmt.Errorf("%s -> %s: %w", from, to, ErrInvalidTransition)
		}

		updates := map[string]any{"status": int(to)}
		for k, v := range extra {
			updates[k] = v
		}
		if to == StatusRevoked || to == StatusCandidateCancelled || to == StatusEmployerCancelled {
			updates["is_active"] = false
		}
		if err := tx.Model(&inv).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&inv).Error
	})
	if err != nil {
		return nil, err
	}
	slog.Info("invitation status changed", slog.String("invitation_id", id), slog.String("status", to.String()))
	return &inv, nil
}

// ReminderKind selects which reminder counter to bump.
type ReminderKind int

const (
	RequestReminder ReminderKind = iota
	ConfirmationReminder
)

// RecordReminder increments a reminder counter and returns the new value.
func (s *Service) RecordReminder(ctx context.Context, id string, kind ReminderKind) (int, error) {
	column := "request_reminders_sent"
	if kind == ConfirmationReminder {
		column = "confirmation_reminders_sent"
	}
	res := s.DB.WithContext(ctx).Model(&models.InterviewInvitation{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("invitation %s: %w", id, ErrNotFound)
	}
	var count int
	err := s.DB.WithContext(ctx).Model(&models.InterviewInvitation{}).
		Where("id = ?", id).Select(column).Scan(&count).Error
	return count, err
}

// DashboardCounts are the recruiter dashboard counters.
type DashboardCounts struct {
	PendingConfirmation      int64 `json:"interviews_pending_confirmation"`
	PendingFollowUp          int64 `json:"interviews_pending_follow_up"`
	PendingEmployerRequests  int64 `json:"pending_employer_requests"`
	PendingCandidateRequests int64 `json:"pending_candidate_requests"`
}

// DashboardCounts counts unconfirmed invitations, confirmed invitations
// still waiting for a result, and requests accepted by only one side.
func (s *Service) DashboardCounts(ctx context.Context) (DashboardCounts, error) {
	var c DashboardCounts
	db := s.DB.WithContext(ctx)
	steps := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&c.PendingConfirmation, db.Model(&models.InterviewInvitation{}).
			Where("confirmed_time IS NULL")},
		{&c.PendingFollowUp, db.Model(&models.InterviewInvitation{}).
			Where("confirmed_time IS NOT NULL AND (result = '' OR result IS NULL)")},
		{&c.PendingEmployerRequests, db.Model(&models.InterviewRequest{}).
			Where("employer_accepted = ? AND candidate_accepted IS NULL", true)},
		{&c.PendingCandidateRequests, db.Model(&models.InterviewRequest{}).
			Where("candidate_accepted = ? AND employer_accepted IS NULL", true)},
	}
	for _, step := range steps {
		if err := step.query.Count(step.dst).Error; err != nil {
			return DashboardCounts{}, err
		}
	}
	return c, nil
}
