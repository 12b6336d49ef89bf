package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/DeanLuus22021994/recruit/internal/accounts"
	"github.com/DeanLuus22021994/recruit/internal/interviews"
)

// availabilityOwner resolves the caller and checks they may manage the
// availability of the user in the path.
func (h *Handler) availabilityOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, err := h.identify(r)
	if err != nil {
		writeError(w, r, err)
		return "", false
	}
	userID := r.PathValue("userID")
	if user.ID != userID && !user.IsStaff {
		writeError(w, r, accounts.ErrNotPermitted)
		return "", false
	}
	return userID, true
}

// GetAvailability returns the weekly windows as a JSON-encoded string
// inside the response object, the shape the availability page expects.
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.availabilityOwner(w, r)
	if !ok {
		return
	}
	windows, err := h.Interviews.GetAvailability(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	encoded, err := json.Marshal(windows)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"availability": string(encoded)})
}

// UpdateAvailability replaces the weekly windows from the "availability"
// form field and, when given, the timezone from the "timezone" field. Both
// fields carry JSON.
func (h *Handler) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, r, err)
		return
	}
	userID, ok := h.availabilityOwner(w, r)
	if !ok {
		return
	}

	var windows []interviews.Window
	if raw := r.PostFormValue("availability"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &windows); err != nil {
			writeError(w, r, &accounts.ValidationError{Fields: map[string]string{"availability": "Invalid availability data."}})
			return
		}
	}
	var timezone *string
	if raw := r.PostFormValue("timezone"); raw != "" {
		var tz string
		if err := json.Unmarshal([]byte(raw), &tz); err != nil {
			writeError(w, r, &accounts.ValidationError{Fields: map[string]string{"timezone": "Invalid timezone."}})
			return
		}
		timezone = &tz
	}

	msg, err := h.Interviews.ReplaceAvailability(r.Context(), userID, windows, timezone)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func (h *Handler) ListExclusions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.availabilityOwner(w, r)
	if !ok {
		return
	}
	dates, err := h.Interviews.ListExclusions(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"exclusions": dates})
}

func (h *Handler) AddExclusion(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, r, err)
		return
	}
	userID, ok := h.availabilityOwner(w, r)
	if !ok {
		return
	}
	ex, err := h.Interviews.AddExclusion(r.Context(), userID, r.PostFormValue("date"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"date": ex.Date})
}

func (h *Handler) RemoveExclusion(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.availabilityOwner(w, r)
	if !ok {
		return
	}
	if err := h.Interviews.RemoveExclusion(r.Context(), userID, r.URL.Query().Get("date")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
