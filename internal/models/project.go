package models

import (
	"time"

	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "ACTIVE"
	ProjectStatusCompleted ProjectStatus = "COMPLETED"
	ProjectStatusSuspended ProjectStatus = "SUSPENDED"
)

type Project struct {
	gorm.Model

	Name        string `gorm:"not null"`
	Description string
	StartDate   time.Time `gorm:"not null"`
	EndDate     *time.Time
	Status      ProjectStatus `gorm:"not null;default:ACTIVE"`

	// Relationships
	Members         []ProjectMember  `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	RiskAssessments []RiskAssessment `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	SafetyDocuments []SafetyDocument `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Workers         []Worker         `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	CommunityPosts  []CommunityPost  `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
