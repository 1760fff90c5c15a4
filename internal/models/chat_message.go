package models

import "gorm.io/gorm"

type ChatMessage struct {
	gorm.Model

	Content       string `gorm:"not null"`
	IsUserMessage bool   `gorm:"not null"`
	UserID        uint   `gorm:"not null;index"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
