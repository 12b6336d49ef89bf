package handlers

import (
	"net/http"

	"github.com/DeanLuus22021994/recruit/internal/accounts"
)

// ChangePassword sets the signed-in user's password. A user who already has
// one must confirm it in current_password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, r, err)
		return
	}
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}
	if user.PasswordHash != "" && !accounts.CheckPassword(user.PasswordHash, r.PostFormValue("current_password")) {
		writeError(w, r, &accounts.ValidationError{Fields: map[string]string{"current_password": "Your current password was entered incorrectly."}})
		return
	}
	if err := accounts.SetPassword(r.Context(), h.DB, user.ID, r.PostFormValue("password")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}
