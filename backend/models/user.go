package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Username     string `json:"username" gorm:"unique;not null"`
	Email        string `json:"email" gorm:"unique;not null"`
	PasswordHash string `json:"password" gorm:"not null"`
	Bio          string `json:"bio"`
	AvatarURL    string `json:"avatar_url"`
}
