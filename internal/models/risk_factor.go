package models

import "gorm.io/gorm"

type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelMedium   RiskLevel = "MEDIUM"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelCritical RiskLevel = "CRITICAL"
)

var RiskLevels = []RiskLevel{
	RiskLevelLow,
	RiskLevelMedium,
	RiskLevelHigh,
	RiskLevelCritical,
}

// RiskFactor carries a caller-assigned RiskLevel. Likelihood and severity
// inform the level but the system never derives it.
type RiskFactor struct {
	gorm.Model

	Title           string `gorm:"not null"`
	Description     string
	Likelihood      int       `gorm:"not null"` // 1-5
	Severity        int       `gorm:"not null"` // 1-5
	RiskLevel       RiskLevel `gorm:"not null"`
	ControlMeasures string
	AssessmentID    uint `gorm:"not null;index"`

	// Relationships
	Assessment RiskAssessment `gorm:"foreignKey:AssessmentID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
