package models

import "gorm.io/gorm"

type Comment struct {
	gorm.Model

	Content string `gorm:"not null"`
	UserID  uint   `gorm:"not null;index"`
	PostID  uint   `gorm:"not null;index"`

	// Relationships
	User User          `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Post CommunityPost `gorm:"foreignKey:PostID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
