package models

import (
	"time"

	"gorm.io/gorm"
)

type DocumentType string

const (
	DocumentTypeSafetyPlan    DocumentType = "SAFETY_PLAN"
	DocumentTypeRiskReport    DocumentType = "RISK_REPORT"
	DocumentTypeEducationCert DocumentType = "EDUCATION_CERT"
	DocumentTypeInspection    DocumentType = "INSPECTION"
	DocumentTypeOther         DocumentType = "OTHER"
)

type SafetyDocument struct {
	gorm.Model

	Title        string `gorm:"not null"`
	Description  string
	FilePath     string       `gorm:"not null"`
	DocumentType DocumentType `gorm:"not null"`
	ValidFrom    time.Time    `gorm:"not null"`
	ValidUntil   *time.Time
	UserID       uint  `gorm:"not null;index"` // document owner
	ProjectID    *uint `gorm:"index"`

	// Relationships
	User     User             `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Project  *Project         `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Accesses []DocumentAccess `gorm:"foreignKey:DocumentID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
