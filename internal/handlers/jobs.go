package handlers

import (
	"net/http"
	"net/url"

	"github.com/DeanLuus22021994/recruit/internal/accounts"
	"github.com/DeanLuus22021994/recruit/internal/candidates"
	"github.com/DeanLuus22021994/recruit/internal/models"
	"github.com/DeanLuus22021994/recruit/internal/storage"
)

// ListJobs shows candidates the active jobs with their eligibility.
// Recruiters and employers see their own jobs and staff see all active ones.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	user, err := h.identify(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx := r.Context()

	switch role := accounts.ResolveRole(ctx, h.DB, *user).(type) {
	case accounts.CandidateRole:
		profile, _ := storage.GetProfileByUserID(ctx, h.DB, user.ID)
		listings, err := h.Jobs.ListForCandidate(ctx, role.Candidate, profile, h.now())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"jobs": listings})
		return
	case accounts.RecruiterRole:
		h.writeJobs(w, r, func() ([]models.Job, error) { return h.Jobs.ByRecruiter(ctx, role.Recruiter.ID) })
		return
	case accounts.EmployerRole:
		h.writeJobs(w, r, func() ([]models.Job, error) { return h.Jobs.ByEmployer(ctx, role.Employer.ID) })
		return
	}
	if user.IsStaff {
		h.writeJobs(w, r, func() ([]models.Job, error) { return h.Jobs.ListActive(ctx) })
		return
	}
	writeError(w, r, accounts.ErrNotPermitted)
}

func (h *Handler) writeJobs(w http.ResponseWriter, r *http.Request, list func() ([]models.Job, error)) {
	jobs, err := list()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

// RequestInterviews records the candidate's interest in the submitted jobs.
func (h *Handler) RequestInterviews(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.identify(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	role, ok := accounts.ResolveRole(r.Context(), h.DB, *user).(accounts.CandidateRole)
	if !ok {
		writeError(w, r, accounts.ErrNotPermitted)
		return
	}

	var ids []string
	ids = append(ids, r.PostForm["requested_jobs"]...)
	ids = append(ids, r.PostForm["requested_jobs[]"]...)
	if _, err := h.Jobs.RequestInterviews(r.Context(), role.Candidate.ID, ids); err != nil {
		writeError(w, r, err)
		return
	}

	dest := candidates.JobsPath
	if key := requestKey(r); key != "" {
		dest += "?key=" + url.QueryEscape(key)
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.Jobs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}
