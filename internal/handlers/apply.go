package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/DeanLuus22021994/recruit/internal/accounts"
	"github.com/DeanLuus22021994/recruit/internal/candidates"
	"github.com/DeanLuus22021994/recruit/internal/models"
	"github.com/DeanLuus22021994/recruit/internal/profiles"
)

var (
	step1Fields = []string{"first_name", "last_name", "email", "citizenship", "skype_id", "timezone"}
	step2Fields = []string{"birth_year", "date_of_birth", "gender", "education", "education_major", "current_location", "employer_type", "image", "resume"}
)

// ApplyForm describes the form for the current step. Without a key it is
// the registration step; with a valid key it is the upload step.
func (h *Handler) ApplyForm(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeJSON(w, http.StatusOK, map[string]any{"step": 1, "fields": step1Fields})
		return
	}
	user, err := h.Apply.Authorize(r.Context(), key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"step":   2,
		"fields": step2Fields,
		"email":  user.Email,
	})
}

// ApplySubmit runs step one when no key is given and step two otherwise.
func (h *Handler) ApplySubmit(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, r, err)
		return
	}
	key := requestKey(r)
	if key == "" {
		h.applyStep1(w, r)
		return
	}
	h.applyStep2(w, r, key)
}

func (h *Handler) applyStep1(w http.ResponseWriter, r *http.Request) {
	in := accounts.ApplicantInput{
		FirstName:   r.FormValue("first_name"),
		LastName:    r.FormValue("last_name"),
		Email:       r.FormValue("email"),
		Citizenship: r.FormValue("citizenship"),
		SkypeID:     r.FormValue("skype_id"),
		Timezone:    r.FormValue("timezone"),
	}
	res, err := h.Apply.Step1(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	http.Redirect(w, r, res.RedirectURL, http.StatusSeeOther)
}

func (h *Handler) applyStep2(w http.ResponseWriter, r *http.Request, key string) {
	// An invalid key must not reach form validation or storage.
	if _, err := h.Apply.Authorize(r.Context(), key); err != nil {
		writeError(w, r, err)
		return
	}

	in := candidates.Step2Input{
		CandidateInput: profiles.CandidateInput{
			BirthYear:       strings.TrimSpace(r.FormValue("birth_year")),
			Gender:          r.FormValue("gender"),
			Education:       strings.TrimSpace(r.FormValue("education")),
			EducationMajor:  strings.TrimSpace(r.FormValue("education_major")),
			CurrentLocation: strings.TrimSpace(r.FormValue("current_location")),
		},
		EmployerType: strings.TrimSpace(r.FormValue("employer_type")),
	}
	if dob := r.FormValue("date_of_birth"); dob != "" {
		t, err := time.Parse(models.DateLayout, dob)
		if err != nil {
			writeError(w, r, &accounts.ValidationError{Fields: map[string]string{"date_of_birth": "Enter a valid date."}})
			return
		}
		in.DateOfBirth = &t
	}
	var err error
	if in.Image, err = formUpload(r, "image"); err != nil {
		writeError(w, r, err)
		return
	}
	if in.Resume, err = formUpload(r, "resume"); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.Apply.Step2(r.Context(), key, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	http.Redirect(w, r, res.RedirectURL, http.StatusSeeOther)
}

func (h *Handler) ApplySuccess(w http.ResponseWriter, r *http.Request) {
	links, err := h.Apply.Success(r.Context(), r.URL.Query().Get("key"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, links)
}
