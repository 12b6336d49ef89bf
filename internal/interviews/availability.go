package interviews

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DeanLuus22021994/recruit/internal/accounts"
	"github.com/DeanLuus22021994/recruit/internal/models"
	"github.com/DeanLuus22021994/recruit/internal/storage"
)

const (
	MessageAvailabilityUpdated = "Availability updated"
	MessageTimezoneUpdated     = "Timezone and Availability updated"
)

var clockTime = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Window is a recurring weekly slot. Day follows time.Weekday (0 is Sunday).
// On the wire the day is a string, as the availability page sends it; plain
// numbers are accepted too.
type Window struct {
	Day   int
	Start string
	End   string
}

type windowJSON struct {
	Day   json.RawMessage `json:"day"`
	Start string          `json:"start"`
	End   string          `json:"end"`
}

func (w Window) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Day   string `json:"day"`
		Start string `json:"start"`
		End   string `json:"end"`
	}{strconv.Itoa(w.Day), w.Start, w.End})
}

func (w *Window) UnmarshalJSON(data []byte) error {
	var raw windowJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var day int
	if err := json.Unmarshal(raw.Day, &day); err != nil {
		var s string
		if err := json.Unmarshal(raw.Day, &s); err != nil {
			return fmt.Errorf("day: %w", err)
		}
		if day, err = strconv.Atoi(s); err != nil {
			return fmt.Errorf("day %q is not a number", s)
		}
	}
	*w = Window{Day: day, Start: raw.Start, End: raw.End}
	return nil
}

// ValidateWindows checks every window: day in 0..6, HH:MM times, start
// before end.
func ValidateWindows(windows []Window) error {
	v := &accounts.ValidationError{}
	for i, w := range windows {
		field := fmt.Sprintf("availability[%d]", i)
		switch {
		case w.Day < 0 || w.Day > 6:
			v.Add(field, "Day must be between 0 and 6.")
		case !clockTime.MatchString(w.Start) || !clockTime.MatchString(w.End):
			v.Add(field, "Times must use HH:MM.")
		case w.Start >= w.End:
			v.Add(field, "Start must be before end.")
		}
	}
	return v.Err()
}

func (s *Service) GetAvailability(ctx context.Context, userID string) ([]Window, error) {
	var rows []models.Available
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).
		Order("day_of_week, time_start").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]Window, 0, len(rows))
	for _, r := range rows {
		out = append(out, Window{Day: r.DayOfWeek, Start: r.TimeStart, End: r.TimeEnd})
	}
	return out, nil
}

// ReplaceAvailability swaps the user's whole weekly schedule for windows in
// one transaction. A non-nil timezone that differs from the profile's is
// saved too. The returned message tells the page what changed.
func (s *Service) ReplaceAvailability(ctx context.Context, userID string, windows []Window, timezone *string) (string, error) {
	if err := ValidateWindows(windows); err != nil {
		return "", err
	}

	message := MessageAvailabilityUpdated
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile, ok := storage.GetProfileByUserID(ctx, tx, userID)
		if !ok {
			return fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.Available{}).Error; err != nil {
			return err
		}
		if len(windows) > 0 {
			rows := make([]models.Available, 0, len(windows))
			for _, w := range windows {
				rows = append(rows, models.Available{UserID: userID, DayOfWeek: w.Day, TimeStart: w.Start, TimeEnd: w.End})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}

		if timezone != nil && *timezone != profile.Timezone {
			if err := tx.Model(&profile).Update("timezone", *timezone).Error; err != nil {
				return err
			}
			message = MessageTimezoneUpdated
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return message, nil
}

func parseDate(date string) (string, time.Time, error) {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return "", time.Time{}, &accounts.ValidationError{Fields: map[string]string{"date": "Enter a valid date."}}
	}
	return t.Format(models.DateLayout), t, nil
}

// AddExclusion marks a date as unavailable. Adding the same date twice is
// a no-op.
func (s *Service) AddExclusion(ctx context.Context, userID, date string) (*models.Exclusion, error) {
	day, _, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	ex := models.Exclusion{UserID: userID, Date: day}
	err = s.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&ex).Error
	if err != nil {
		return nil, err
	}
	var saved models.Exclusion
	err = s.DB.WithContext(ctx).Where("user_id = ? AND date = ?", userID, day).First(&saved).Error
	return &saved, err
}

func (s *Service) RemoveExclusion(ctx context.Context, userID, date string) error {
	day, _, err := parseDate(date)
	if err != nil {
		return err
	}
	res := s.DB.WithContext(ctx).Where("user_id = ? AND date = ?", userID, day).Delete(&models.Exclusion{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("exclusion %s: %w", day, ErrNotFound)
	}
	return nil
}

// ListExclusions returns the user's excluded dates in ascending order.
func (s *Service) ListExclusions(ctx context.Context, userID string) ([]string, error) {
	var dates []string
	err := s.DB.WithContext(ctx).Model(&models.Exclusion{}).
		Where("user_id = ?", userID).Order("date").Pluck("date", &dates).Error
	return dates, err
}

// WindowsOn returns the weekly windows that apply on a calendar date, or
// none when the date is excluded.
func (s *Service) WindowsOn(ctx context.Context, userID, date string) ([]Window, error) {
	day, t, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	var excluded int64
	if err := s.DB.WithContext(ctx).Model(&models.Exclusion{}).
		Where("user_id = ? AND date = ?", userID, day).Count(&excluded).Error; err != nil {
		return nil, err
	}
	if excluded > 0 {
		return []Window{}, nil
	}

	all, err := s.GetAvailability(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := []Window{}
	for _, w := range all {
		if w.Day == int(t.Weekday()) {
			out = append(out, w)
		}
	}
	return out, nil
}
