package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeanLuus22021994/recruit/internal/accounts"
	"github.com/DeanLuus22021994/recruit/internal/jobs"
	"github.com/DeanLuus22021994/recruit/internal/models"
	"github.com/DeanLuus22021994/recruit/internal/storagetest"
)

func jobInput(title string) jobs.JobInput {
	return jobs.JobInput{
		EmployerID:         "emp-1",
		RecruiterID:        "rec-1",
		Title:              title,
		Location:           models.LocationOnsite,
		SalaryLow:          2000,
		SalaryHigh:         2500,
		CompensationType:   models.CompensationMonthly,
		CompensationAmount: "2200",
	}
}

func TestCreateAndGet(t *testing.T) {
	svc := jobs.NewService(storagetest.Open(t))
	ctx := context.Background()

	job, err := svc.Create(ctx, jobInput("ESL Teacher"), &jobs.RequirementsInput{AgeLow: 21, AgeHigh: 45, Citizenship: []string{"US", "CA"}})
	require.NoError(t, err)

	got, err := svc.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "ESL Teacher", got.Title)
	require.NotNil(t, got.Requirements)
	assert.Equal(t, models.StringList{"US", "CA"}, got.Requirements.Citizenship)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, jobs.ErrNotFound)
}

func TestCreateValidation(t *testing.T) {
	svc := jobs.NewService(storagetest.Open(t))

	in := jobInput("")
	in.CompensationType = "Weekly"
	_, err := svc.Create(context.Background(), in, nil)

	var verr *accounts.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "compensation_type")

	_, err = svc.Create(context.Background(), jobInput("x"), &jobs.RequirementsInput{AgeLow: 50, AgeHigh: 30})
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "age_low")
}

func TestListings(t *testing.T) {
	svc := jobs.NewService(storagetest.Open(t))
	ctx := context.Background()

	a, err := svc.Create(ctx, jobInput("A"), nil)
	require.NoError(t, err)
	other := jobInput("B")
	other.EmployerID, other.RecruiterID = "emp-2", "rec-2"
	b, err := svc.Create(ctx, other, nil)
	require.NoError(t, err)
	require.NoError(t, svc.DB.Model(&models.Job{}).Where("id = ?", b.ID).Update("is_active", false).Error)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, a.ID, active[0].ID)

	byRecruiter, err := svc.ByRecruiter(ctx, "rec-2")
	require.NoError(t, err)
	require.Len(t, byRecruiter, 1)
	assert.Equal(t, b.ID, byRecruiter[0].ID)

	byEmployer, err := svc.ByEmployer(ctx, "emp-1")
	require.NoError(t, err)
	assert.Len(t, byEmployer, 1)
}

func TestEligible(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	candidate := models.Candidate{BirthYear: "1994", Gender: models.GenderFemale}
	profile := models.Profile{Citizenship: "PH"}

	tests := []struct {
		name string
		req  *models.JobRequirements
		want bool
	}{
		{"no requirements", nil, true},
		{"age in range", &models.JobRequirements{AgeLow: 25, AgeHigh: 35}, true},
		{"too young", &models.JobRequirements{AgeLow: 31}, false},
		{"too old", &models.JobRequirements{AgeHigh: 29}, false},
		{"gender mismatch", &models.JobRequirements{Gender: models.GenderMale}, false},
		{"gender match", &models.JobRequirements{Gender: models.GenderFemale}, true},
		{"citizenship allowed", &models.JobRequirements{Citizenship: models.StringList{"US", "PH"}}, true},
		{"citizenship not allowed", &models.JobRequirements{Citizenship: models.StringList{"US"}}, false},
		{"empty citizenship set", &models.JobRequirements{Citizenship: models.StringList{}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, jobs.Eligible(tt.req, candidate, profile, now))
		})
	}

	bad := models.Candidate{BirthYear: "n/a"}
	assert.False(t, jobs.Eligible(&models.JobRequirements{AgeLow: 18}, bad, profile, now))
}

func TestRequestInterviews(t *testing.T) {
	svc := jobs.NewService(storagetest.Open(t))
	ctx := context.Background()

	a, err := svc.Create(ctx, jobInput("A"), nil)
	require.NoError(t, err)
	b, err := svc.Create(ctx, jobInput("B"), nil)
	require.NoError(t, err)

	n, err := svc.RequestInterviews(ctx, "cand-1", []string{a.ID, a.ID, ""})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = svc.RequestInterviews(ctx, "cand-1", []string{a.ID, b.ID})
	require.NoError(t, err)

	var count int64
	svc.DB.Model(&models.InterviewRequest{}).Where("candidate_id = ?", "cand-1").Count(&count)
	assert.EqualValues(t, 2, count)

	_, err = svc.RequestInterviews(ctx, "cand-2", []string{a.ID, "nope"})
	assert.ErrorIs(t, err, jobs.ErrUnknownJob)
	svc.DB.Model(&models.InterviewRequest{}).Where("candidate_id = ?", "cand-2").Count(&count)
	assert.Zero(t, count)

	listings, err := svc.ListForCandidate(ctx, models.Candidate{ID: "cand-1", BirthYear: "1990"}, models.Profile{}, time.Now())
	require.NoError(t, err)
	require.Len(t, listings, 2)
	for _, l := range listings {
		assert.True(t, l.Requested)
		assert.True(t, l.Eligible)
	}
}
