// Package candidates runs the two-step candidate application: an identity is
// registered first, then a capability key links the applicant back to upload
// a photo and resume without a password.
package candidates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"gorm.io/gorm"

	"github.com/DeanLuus22021994/recruit/internal/accounts"
	"github.com/DeanLuus22021994/recruit/internal/files"
	"github.com/DeanLuus22021994/recruit/internal/models"
	"github.com/DeanLuus22021994/recruit/internal/profiles"
)

const (
	ApplyPath        = "/candidates/apply/"
	ApplySuccessPath = "/candidates/apply/success/"
	JobsPath         = "/jobs/"
)

// ErrKeyRequired is the error state for pages that need a valid key.
var ErrKeyRequired = errors.New("a valid application key is required")

// AvailabilityPath is the availability page of a user.
func AvailabilityPath(userID string) string {
	return "/availability/" + url.PathEscape(userID) + "/"
}

func withKey(path, key string) string {
	return path + "?key=" + url.QueryEscape(key)
}

type Apply struct {
	DB       *gorm.DB
	Tokens   *accounts.TokenSigner
	Profiles *profiles.Service
	MaxAge   time.Duration
}

// Step1Result is a registered applicant and the link to the second step.
type Step1Result struct {
	User        *models.User
	Key         string
	RedirectURL string
}

// Step1 registers the applicant and issues the key for the second step.
func (a *Apply) Step1(ctx context.Context, in accounts.ApplicantInput) (*Step1Result, error) {
	user, err := accounts.RegisterApplicant(ctx, a.DB, in)
	if err != nil {
		return nil, err
	}
	key, err := a.Tokens.Generate(*user)
	if err != nil {
		return nil, fmt.Errorf("issue application key: %w", err)
	}
	slog.Info("applicant registered", slog.String("user_id", user.ID))
	return &Step1Result{User: user, Key: key, RedirectURL: withKey(ApplyPath, key)}, nil
}

// Authorize resolves a key to its applicant. Every failure is ErrKeyRequired.
func (a *Apply) Authorize(ctx context.Context, key string) (*models.User, error) {
	user, err := a.Tokens.Verify(ctx, a.DB, key, a.MaxAge)
	if err != nil {
		slog.Debug("application key refused", slog.Any("error", err))
		return nil, ErrKeyRequired
	}
	return user, nil
}

type Step2Input struct {
	profiles.CandidateInput
	EmployerType string // optional preference
	Image        files.Upload
	Resume       files.Upload
}

func (in Step2Input) Validate() error {
	v := &accounts.ValidationError{}
	var fields *accounts.ValidationError
	if errors.As(in.CandidateInput.Validate(), &fields) {
		for k, msg := range fields.Fields {
			v.Add(k, msg)
		}
	}
	if in.Image.Empty() {
		v.Add("image", "This field is required.")
	}
	if in.Resume.Empty() {
		v.Add("resume", "This field is required.")
	}
	return v.Err()
}

// Step2Result is the saved candidate, its new resume and the success link.
type Step2Result struct {
	Candidate   *models.Candidate
	Resume      *models.CandidateDocument
	RedirectURL string
}

// Step2 creates or updates the key owner's candidate record and adds exactly
// one resume document, all in one transaction. Nothing is written when the
// key or the form is invalid, or when any part fails to save.
func (a *Apply) Step2(ctx context.Context, key string, in Step2Input) (*Step2Result, error) {
	user, err := a.Authorize(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	res := &Step2Result{RedirectURL: withKey(ApplySuccessPath, key)}
	err = a.Profiles.InTx(ctx, func(p *profiles.Service) error {
		candidate, _, err := p.UpsertCandidate(ctx, user.ID, in.CandidateInput, in.Image)
		if err != nil {
			return err
		}
		resume, err := p.AddCandidateDocument(ctx, candidate.ID, models.DocumentTypeResume, in.Resume)
		if err != nil {
			return err
		}
		if in.EmployerType != "" {
			if _, err := p.SetCandidateRequirements(ctx, user.ID, in.EmployerType); err != nil {
				return err
			}
		}
		res.Candidate, res.Resume = candidate, resume
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// SuccessLinks point the applicant at the next pages of the flow.
type SuccessLinks struct {
	JobsURL         string `json:"jobs_url"`
	AvailabilityURL string `json:"availability_url"`
}

func (a *Apply) Success(ctx context.Context, key string) (*SuccessLinks, error) {
	user, err := a.Authorize(ctx, key)
	if err != nil {
		return nil, err
	}
	return &SuccessLinks{
		JobsURL:         withKey(JobsPath, key),
		AvailabilityURL: withKey(AvailabilityPath(user.ID), key),
	}, nil
}
