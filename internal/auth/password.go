package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"github.com/DeanLuus22021994/recruit/internal/accounts"
)

// Password signs users in with their email and password. It serves staff
// created from configuration and anyone who has set a password.
type Password struct {
	DB         *gorm.DB
	Sessions   SessionStore
	AfterLogin string
	Secure     bool
}

// HandleLogin reads the email and password form fields and opens a session.
func (p *Password) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	user, err := accounts.Authenticate(r.Context(), p.DB, r.PostFormValue("email"), r.PostFormValue("password"))
	if errors.Is(err, accounts.ErrBadCredentials) {
		slog.Info("password sign-in refused", slog.String("email", r.PostFormValue("email")))
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}
	if err != nil {
		slog.Error("password sign-in failed", slog.Any("error", err))
		http.Error(w, "Failed to sign in", http.StatusInternalServerError)
		return
	}

	if err := StartSession(r.Context(), w, p.Sessions, user.ID, p.Secure); err != nil {
		slog.Error("create session failed", slog.Any("error", err))
		http.Error(w, "Failed to sign in", http.StatusInternalServerError)
		return
	}
	slog.Info("user signed in", slog.String("user_id", user.ID), slog.String("method", "password"))

	dest := p.AfterLogin
	if dest == "" {
		dest = defaultAfterLogin
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}
