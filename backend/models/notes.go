package models

import "gorm.io/gorm"

type LessonNote struct {
	gorm.Model
	UserID   uint
	LessonID uint
	Content  string `gorm:"not null"`
}
