// Package handlers exposes the recruiting services over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/DeanLuus22021994/recruit/internal/accounts"
	"github.com/DeanLuus22021994/recruit/internal/auth"
	"github.com/DeanLuus22021994/recruit/internal/candidates"
	"github.com/DeanLuus22021994/recruit/internal/files"
	"github.com/DeanLuus22021994/recruit/internal/interviews"
	"github.com/DeanLuus22021994/recruit/internal/jobs"
	"github.com/DeanLuus22021994/recruit/internal/mail"
	"github.com/DeanLuus22021994/recruit/internal/models"
	"github.com/DeanLuus22021994/recruit/internal/profiles"
)

const maxUploadBytes = 10 << 20

// Handler holds the services behind the HTTP routes.
type Handler struct {
	DB         *gorm.DB
	Apply      *candidates.Apply
	Profiles   *profiles.Service
	Jobs       *jobs.Service
	Interviews *interviews.Service
	Mail       *mail.Dispatcher
	Sessions   auth.SessionStore
	Google     *auth.Google   // nil disables Google sign-in
	Password   *auth.Password // nil disables password sign-in
	Now        func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// NewRouter registers every route on a ServeMux behind the session middleware.
func NewRouter(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	// Candidate application
	mux.HandleFunc("GET "+candidates.ApplyPath+"{$}", h.ApplyForm)
	mux.HandleFunc("POST "+candidates.ApplyPath+"{$}", h.ApplySubmit)
	mux.HandleFunc("GET "+candidates.ApplySuccessPath+"{$}", h.ApplySuccess)

	// Jobs
	mux.HandleFunc("GET /jobs/{$}", h.ListJobs)
	mux.HandleFunc("POST /jobs/{$}", h.RequestInterviews)
	mux.HandleFunc("GET /jobs/{id}/", h.GetJob)

	// Availability
	mux.HandleFunc("GET /availability/{userID}/", h.GetAvailability)
	mux.HandleFunc("POST /availability/{userID}/", h.UpdateAvailability)
	mux.HandleFunc("GET /exclusions/{userID}/", h.ListExclusions)
	mux.HandleFunc("POST /exclusions/{userID}/", h.AddExclusion)
	mux.HandleFunc("DELETE /exclusions/{userID}/", h.RemoveExclusion)

	// Interviews
	mux.HandleFunc("GET /interviews/{$}", h.ListInterviewRequests)
	mux.HandleFunc("POST /interviews/{id}/respond", h.RespondToRequest)
	mux.HandleFunc("POST /interviews/invitations/{id}/status", h.UpdateInvitationStatus)
	mux.HandleFunc("GET /dashboard/{$}", h.Dashboard)

	// Role records
	mux.HandleFunc("GET /recruiters/{$}", h.ListRecruiters)
	mux.Handle("POST /recruiters/{$}", auth.RequireUser(http.HandlerFunc(h.CreateRecruiter)))
	mux.Handle("POST /employers/{$}", auth.RequireUser(http.HandlerFunc(h.CreateEmployer)))

	// Email
	mux.HandleFunc("GET /email/stats", h.EmailStats)
	mux.HandleFunc("POST /sendgrid/events", h.SendGridEvents)

	// Sign-in
	if h.Google != nil {
		mux.HandleFunc("GET /login", h.Google.HandleLogin)
		mux.HandleFunc("GET /callback", h.Google.HandleCallback)
	}
	if h.Password != nil {
		mux.HandleFunc("POST /login/password", h.Password.HandleLogin)
	}
	mux.Handle("POST /password", auth.RequireUser(http.HandlerFunc(h.ChangePassword)))
	mux.HandleFunc("GET /logout", auth.Logout(h.Sessions))

	return auth.Middleware(h.Sessions, h.DB)(mux)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write response failed", slog.Any("error", err))
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps service errors onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *accounts.ValidationError
	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": invalid.Fields})
	case errors.Is(err, accounts.ErrAlreadyRegistered):
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": map[string]string{"email": err.Error()}})
	case errors.Is(err, candidates.ErrKeyRequired):
		writeMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, accounts.ErrBadCredentials):
		writeMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, accounts.ErrNotPermitted):
		writeMessage(w, http.StatusForbidden, "You do not have permission to perform this action.")
	case errors.Is(err, jobs.ErrUnknownJob), errors.Is(err, files.ErrUnsupportedImage):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, interviews.ErrInvalidTransition):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, profiles.ErrRoleTaken), errors.Is(err, profiles.ErrExists):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, jobs.ErrNotFound), errors.Is(err, interviews.ErrNotFound), errors.Is(err, profiles.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	default:
		slog.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

// identify returns the caller from an application key, falling back to the
// signed-in session user. A key that is present but invalid is an error.
func (h *Handler) identify(r *http.Request) (*models.User, error) {
	if key := requestKey(r); key != "" {
		return h.Apply.Authorize(r.Context(), key)
	}
	if user, ok := auth.UserFromContext(r.Context()); ok {
		return &user, nil
	}
	return nil, candidates.ErrKeyRequired
}

func requestKey(r *http.Request) string {
	if key := r.URL.Query().Get("key"); key != "" {
		return key
	}
	if r.Method == http.MethodPost {
		return r.PostFormValue("key")
	}
	return ""
}

// sessionUser requires a signed-in user.
func sessionUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
	}
	return user, ok
}

// staffUser requires a signed-in staff user.
func staffUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	user, ok := sessionUser(w, r)
	if !ok {
		return user, false
	}
	if !user.IsStaff {
		writeError(w, r, accounts.ErrNotPermitted)
		return user, false
	}
	return user, true
}

// formUpload reads an optional multipart file field.
func formUpload(r *http.Request, field string) (files.Upload, error) {
	f, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return files.Upload{}, nil
	}
	if err != nil {
		return files.Upload{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return files.Upload{}, err
	}
	return files.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func parseForm(r *http.Request) error {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return &accounts.ValidationError{Fields: map[string]string{"form": "file too large or invalid (max 10MB)"}}
	}
	return nil
}
