package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/DeanLuus22021994/recruit/internal/accounts"
	"github.com/DeanLuus22021994/recruit/internal/interviews"
	"github.com/DeanLuus22021994/recruit/internal/models"
)

// ListInterviewRequests lists the requests visible to the caller's role.
func (h *Handler) ListInterviewRequests(w http.ResponseWriter, r *http.Request) {
	user, err := h.identify(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	role := accounts.ResolveRole(r.Context(), h.DB, *user)
	requests, err := h.Interviews.ListRequests(r.Context(), role, user.IsStaff)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if requests == nil {
		requests = []models.InterviewRequest{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": requests})
}

// parseDecision reads a tri-state answer: empty clears it.
func parseDecision(raw string) (*bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, &accounts.ValidationError{Fields: map[string]string{"accepted": "Enter true, false or leave empty."}}
	}
	return &b, nil
}

// RespondToRequest records the caller's side of an interview request.
func (h *Handler) RespondToRequest(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.identify(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "interview request not found")
		return
	}
	decision, err := parseDecision(r.PostFormValue("accepted"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	role := accounts.ResolveRole(r.Context(), h.DB, *user)
	req, inv, err := h.Interviews.Respond(r.Context(), role, uint(id), decision)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"request": req, "invitation": inv})
}

// UpdateInvitationStatus moves an invitation through its lifecycle. Only
// staff and the recruiter handling the invitation's job may do this.
func (h *Handler) UpdateInvitationStatus(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, r, err)
		return
	}
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}
	if !user.IsStaff {
		rr, recruiter := accounts.ResolveRole(r.Context(), h.DB, user).(accounts.RecruiterRole)
		if !recruiter {
			writeError(w, r, accounts.ErrNotPermitted)
			return
		}
		if err := h.Interviews.CheckRecruiter(r.Context(), rr.Recruiter.ID, r.PathValue("id")); err != nil {
			writeError(w, r, err)
			return
		}
	}

	n, err := strconv.Atoi(r.PostFormValue("status"))
	to := interviews.Status(n)
	if err != nil || !to.Valid() {
		writeError(w, r, &accounts.ValidationError{Fields: map[string]string{"status": "Select a valid choice."}})
		return
	}

	ctx, id := r.Context(), r.PathValue("id")
	var inv *models.InterviewInvitation
	switch to {
	case interviews.StatusConfirmed:
		at, perr := time.Parse(time.RFC3339, r.PostFormValue("confirmed_time"))
		if perr != nil {
			writeError(w, r, &accounts.ValidationError{Fields: map[string]string{"confirmed_time": "Enter a valid date/time."}})
			return
		}
		inv, err = h.Interviews.Confirm(ctx, id, at)
	case interviews.StatusCompleted:
		inv, err = h.Interviews.Complete(ctx, id, r.PostFormValue("result"))
	default:
		inv, err = h.Interviews.Advance(ctx, id, to)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// Dashboard returns the recruiter dashboard counters.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if _, ok := staffUser(w, r); !ok {
		return
	}
	counts, err := h.Interviews.DashboardCounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}
