package mail

import (
	"context"
	"strings"
	"time"

	"github.com/DeanLuus22021994/recruit/internal/models"
)

// Stats summarises the email log over a trailing window.
type Stats struct {
	PeriodDays   int     `json:"period_days"`
	TotalSent    int64   `json:"total_sent"`
	Delivered    int64   `json:"delivered"`
	Failed       int64   `json:"failed"`
	Bounced      int64   `json:"bounced"`
	Spam         int64   `json:"spam"`
	DeliveryRate float64 `json:"delivery_rate"`
}

// Statistics counts log rows sent within the last days days. DeliveryRate is
// a percentage and is zero when nothing was sent.
func (d *Dispatcher) Statistics(ctx context.Context, days int) (Stats, error) {
	since := d.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour)

	var row struct {
		TotalSent int64
		Delivered int64
		Failed    int64
		Bounced   int64
		Spam      int64
	}
	err := d.DB.WithContext(ctx).Model(&models.EmailLog{}).
		Select(`COUNT(*) AS total_sent,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS delivered,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS failed,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS bounced,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS spam`,
			models.EmailDelivered, models.EmailFailed, models.EmailBounced, models.EmailSpam).
		Where("sent_at >= ?", since).
		Scan(&row).Error
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		PeriodDays: days,
		TotalSent:  row.TotalSent,
		Delivered:  row.Delivered,
		Failed:     row.Failed,
		Bounced:    row.Bounced,
		Spam:       row.Spam,
	}
	if stats.TotalSent > 0 {
		stats.DeliveryRate = float64(stats.Delivered) / float64(stats.TotalSent) * 100
	}
	return stats, nil
}

// Event is one entry of the SendGrid event webhook payload.
type Event struct {
	Email       string `json:"email"`
	Event       string `json:"event"`
	SGMessageID string `json:"sg_message_id"`
	Timestamp   int64  `json:"timestamp"`
	Reason      string `json:"reason"`
}

var eventStatus = map[string]string{
	"delivered":  models.EmailDelivered,
	"bounce":     models.EmailBounced,
	"dropped":    models.EmailFailed,
	"spamreport": models.EmailSpam,
}

// ApplyEvents updates log rows from delivery events and returns how many
// rows changed. Events of other types are ignored.
func (d *Dispatcher) ApplyEvents(ctx context.Context, events []Event) (int64, error) {
	var changed int64
	for _, ev := range events {
		status, ok := eventStatus[ev.Event]
		if !ok || ev.SGMessageID == "" {
			continue
		}
		// sg_message_id is the X-Message-Id followed by a filter suffix.
		id, _, _ := strings.Cut(ev.SGMessageID, ".")

		updates := map[string]any{"status": status}
		switch status {
		case models.EmailDelivered:
			at := time.Unix(ev.Timestamp, 0).UTC()
			if ev.Timestamp == 0 {
				at = d.Now().UTC()
			}
			updates["delivered_at"] = at
		case models.EmailBounced, models.EmailFailed:
			if ev.Reason != "" {
				updates["error_message"] = ev.Reason
			}
		}
		res := d.DB.WithContext(ctx).Model(&models.EmailLog{}).
			Where("send_grid_message_id = ?", id).
			Updates(updates)
		if res.Error != nil {
			return changed, res.Error
		}
		changed += res.RowsAffected
	}
	return changed, nil
}
