package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/DeanLuus22021994/recruit/internal/accounts"
	"github.com/DeanLuus22021994/recruit/internal/models"
	"github.com/DeanLuus22021994/recruit/internal/profiles"
)

// CreateEmployer registers the signed-in user as an employer.
func (h *Handler) CreateEmployer(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, r, err)
		return
	}
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}
	in := profiles.EmployerInput{
		PhoneNumber:    strings.TrimSpace(r.FormValue("phone_number")),
		NameEnglish:    strings.TrimSpace(r.FormValue("name_english")),
		NameLocal:      strings.TrimSpace(r.FormValue("name_local")),
		AddressEnglish: strings.TrimSpace(r.FormValue("address_english")),
		AddressLocal:   strings.TrimSpace(r.FormValue("address_local")),
	}
	license, err := formUpload(r, "business_license")
	if err != nil {
		writeError(w, r, err)
		return
	}
	employer, err := h.Profiles.CreateEmployer(r.Context(), user.ID, in, license)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, employer)
}

// CreateRecruiter registers the signed-in user as a recruiter.
func (h *Handler) CreateRecruiter(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, r, err)
		return
	}
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}
	in := profiles.RecruiterInput{
		PhoneNumber: strings.TrimSpace(r.FormValue("phone_number")),
		Location:    strings.TrimSpace(r.FormValue("location")),
	}
	if dob := r.FormValue("date_of_birth"); dob != "" {
		t, err := time.Parse(models.DateLayout, dob)
		if err != nil {
			writeError(w, r, &accounts.ValidationError{Fields: map[string]string{"date_of_birth": "Enter a valid date."}})
			return
		}
		in.DateOfBirth = t
	}
	photo, err := formUpload(r, "image")
	if err != nil {
		writeError(w, r, err)
		return
	}
	recruiter, err := h.Profiles.CreateRecruiter(r.Context(), user.ID, in, photo)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, recruiter)
}

func (h *Handler) ListRecruiters(w http.ResponseWriter, r *http.Request) {
	if _, ok := staffUser(w, r); !ok {
		return
	}
	recruiters, err := h.Profiles.ListRecruiters(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recruiters": recruiters})
}
