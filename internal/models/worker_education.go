package models

import (
	"time"

	"gorm.io/gorm"
)

type WorkerEducation struct {
	gorm.Model

	Title          string `gorm:"not null"`
	Description    string
	CompletionDate time.Time `gorm:"not null"`
	ExpiryDate     *time.Time
	WorkerID       uint `gorm:"not null;index"`

	// Relationships
	Worker Worker `gorm:"foreignKey:WorkerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
