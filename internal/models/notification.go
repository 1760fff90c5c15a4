package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationTypeProjectInvitation NotificationType = "PROJECT_INVITATION"
	NotificationTypeRiskAssessment    NotificationType = "RISK_ASSESSMENT"
	NotificationTypeDocumentShared    NotificationType = "DOCUMENT_SHARED"
	NotificationTypeWorkerEducation   NotificationType = "WORKER_EDUCATION"
	NotificationTypeSystem            NotificationType = "SYSTEM"
	NotificationTypeComment           NotificationType = "COMMENT"
	NotificationTypeMention           NotificationType = "MENTION"
)

type Notification struct {
	gorm.Model

	UserID   uint             `gorm:"not null;index"`
	Title    string           `gorm:"not null"`
	Content  string           `gorm:"not null"`
	Type     NotificationType `gorm:"not null"`
	Link     string
	EntityID string
	IsRead   bool           `gorm:"default:false"`
	Data     datatypes.JSON `gorm:"type:jsonb"` // structured payload, e.g. expiring education ids

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
