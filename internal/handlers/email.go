package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/DeanLuus22021994/recruit/internal/accounts"
	"github.com/DeanLuus22021994/recruit/internal/mail"
)

const defaultStatsDays = 30

// EmailStats reports delivery statistics for the trailing ?days= window.
func (h *Handler) EmailStats(w http.ResponseWriter, r *http.Request) {
	if _, ok := staffUser(w, r); !ok {
		return
	}
	days := defaultStatsDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, r, &accounts.ValidationError{Fields: map[string]string{"days": "Enter a positive whole number."}})
			return
		}
		days = n
	}
	stats, err := h.Mail.Statistics(r.Context(), days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// SendGridEvents applies a batch from the SendGrid event webhook.
func (h *Handler) SendGridEvents(w http.ResponseWriter, r *http.Request) {
	var events []mail.Event
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBytes)).Decode(&events); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid event payload")
		return
	}
	n, err := h.Mail.ApplyEvents(r.Context(), events)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"updated": n})
}
