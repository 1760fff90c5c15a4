package models

import (
	"time"

	"gorm.io/gorm"
)

// WorkerCheckin is an open/close pair: CheckoutTime stays nil until the
// worker leaves the site.
type WorkerCheckin struct {
	gorm.Model

	CheckinTime  time.Time `gorm:"not null;index"`
	CheckoutTime *time.Time
	Location     string
	WorkerID     uint `gorm:"not null;index"`

	// Relationships
	Worker Worker `gorm:"foreignKey:WorkerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
