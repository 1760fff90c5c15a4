package models

import "gorm.io/gorm"

type CommunityPost struct {
	gorm.Model

	Title     string `gorm:"not null"`
	Content   string `gorm:"not null"`
	UserID    uint   `gorm:"not null;index"`
	ProjectID *uint  `gorm:"index"`

	// Relationships
	User     User      `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Project  *Project  `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Comments []Comment `gorm:"foreignKey:PostID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
