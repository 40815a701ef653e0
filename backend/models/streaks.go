package models

import (
	"time"

	"gorm.io/gorm"
)

// StudyStreak holds one row of activity counters per (user, calendar date).
// Rows are only ever bumped by the same day's further activity.
type StudyStreak struct {
	gorm.Model
	UserID           uint      `gorm:"uniqueIndex:idx_user_date"`
	Date             time.Time `gorm:"uniqueIndex:idx_user_date;type:date"`
	LessonsCompleted int       `gorm:"default:0"`
	QuizzesTaken     int       `gorm:"default:0"`
	NotesCreated     int       `gorm:"default:0"`
	TotalTimeSpent   int       `gorm:"default:0"` // minutes
}

// ActivityScore weights the day's counters for heatmap intensity:
// lessons x3, quizzes x2, notes x1.
func (s *StudyStreak) ActivityScore() int {
	return s.LessonsCompleted*3 + s.QuizzesTaken*2 + s.NotesCreated
}
