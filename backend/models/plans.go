package models

import (
	"time"

	"gorm.io/gorm"
)

type LearningPlan struct {
	gorm.Model
	UserID         uint
	Topic          string
	KnowledgeLevel string  // beginner, intermediate, experienced
	WeeklyHours    int     `gorm:"default:5"`
	Progress       float64 `gorm:"default:0"` // cached %, recomputed on every completion change
	Lessons        []Lesson `gorm:"foreignKey:PlanID"`
}

type Lesson struct {
	gorm.Model
	PlanID       uint
	Title        string
	TheoryMD     string
	Task         string
	LessonType   string // theory, practice, quiz, project
	TimeEstimate int    // minutes
	DayNumber    int
	ExtraLinks   string // JSON array of URLs
}

// UserProgress records completion state per (user, lesson) pair.
// CompletedAt is set when the flag flips to true and cleared on revert.
type UserProgress struct {
	gorm.Model
	UserID      uint `gorm:"uniqueIndex:idx_user_lesson"`
	LessonID    uint `gorm:"uniqueIndex:idx_user_lesson"`
	IsCompleted bool `gorm:"default:false"`
	CompletedAt *time.Time
	TimeSpent   int `gorm:"default:0"` // cumulative minutes, never decreases
}
