package models

import "gorm.io/gorm"

type AccessLevel string

const (
	AccessLevelRead  AccessLevel = "READ"
	AccessLevelWrite AccessLevel = "WRITE"
	AccessLevelAdmin AccessLevel = "ADMIN"
)

type DocumentAccess struct {
	gorm.Model

	UserID      uint        `gorm:"not null;uniqueIndex:idx_user_document"`
	DocumentID  uint        `gorm:"not null;uniqueIndex:idx_user_document"`
	AccessLevel AccessLevel `gorm:"not null"`

	// Relationships
	User     User           `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Document SafetyDocument `gorm:"foreignKey:DocumentID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
