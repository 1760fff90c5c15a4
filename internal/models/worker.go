package models

import "gorm.io/gorm"

type Worker struct {
	gorm.Model

	Name          string `gorm:"not null"`
	ContactNumber string
	Position      string
	ProjectID     uint `gorm:"not null;index"`

	// Relationships
	Project    Project           `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Educations []WorkerEducation `gorm:"foreignKey:WorkerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Checkins   []WorkerCheckin   `gorm:"foreignKey:WorkerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
