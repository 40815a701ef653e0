package models

import (
	"time"

	"gorm.io/gorm"
)

type Quiz struct {
	gorm.Model
	LessonID  uint `gorm:"uniqueIndex"` // one quiz per lesson, created lazily
	Title     string
	Questions []QuizQuestion
}

type QuizQuestion struct {
	gorm.Model
	QuizID        uint
	QuestionText  string
	OptionA       string
	OptionB       string
	OptionC       string
	OptionD       string
	CorrectAnswer string // A, B, C or D
	Explanation   string
}

// QuizAttempt is immutable once created; a retake inserts a new row.
type QuizAttempt struct {
	gorm.Model
	UserID      uint
	QuizID      uint
	Score       float64
	Answers     string // JSON map of question_id -> chosen label
	CompletedAt time.Time
}
