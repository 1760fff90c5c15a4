package models

import "gorm.io/gorm"

type AssessmentStatus string

const (
	AssessmentStatusDraft     AssessmentStatus = "DRAFT"
	AssessmentStatusCompleted AssessmentStatus = "COMPLETED"
	AssessmentStatusApproved  AssessmentStatus = "APPROVED"
	AssessmentStatusRejected  AssessmentStatus = "REJECTED"
)

// AssessmentStatuses lists every workflow state, in display order. Used by
// the statistics zero-fill pass.
var AssessmentStatuses = []AssessmentStatus{
	AssessmentStatusDraft,
	AssessmentStatusCompleted,
	AssessmentStatusApproved,
	AssessmentStatusRejected,
}

type RiskAssessment struct {
	gorm.Model

	Title       string `gorm:"not null"`
	Description string
	Status      AssessmentStatus `gorm:"not null;default:DRAFT"`
	UserID      uint             `gorm:"not null;index"`
	ProjectID   uint             `gorm:"not null;index"`

	// Relationships
	User        User         `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Project     Project      `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	RiskFactors []RiskFactor `gorm:"foreignKey:AssessmentID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
