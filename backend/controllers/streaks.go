package controllers

import (
	"errors"
	"time"

	"project/backend/models"

	"gorm.io/gorm"
)

// bumpStreak applies update to today's StudyStreak row for the user, creating
// the row on first activity of the day. Rows are keyed by (user, UTC date) so
// the same day's later activity keeps accumulating in one record.
func bumpStreak(db *gorm.DB, userID uint, update func(*models.StudyStreak)) error {
	today := dateOnly(time.Now())

	var streak models.StudyStreak
	err := db.Where("user_id = ? AND date = ?", userID, today).First(&streak).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		streak = models.StudyStreak{UserID: userID, Date: today}
	}

	update(&streak)
	return db.Save(&streak).Error
}

// dateOnly truncates a timestamp to its UTC calendar date.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
