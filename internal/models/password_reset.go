package models

import (
	"time"

	"gorm.io/gorm"
)

type PasswordReset struct {
	gorm.Model

	UserID  uint      `gorm:"not null;uniqueIndex"`
	Token   string    `gorm:"not null;index"`
	Expires time.Time `gorm:"not null"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
