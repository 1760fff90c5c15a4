package models

import "gorm.io/gorm"

// ProjectRole is the project-scoped permission level, distinct from the
// global UserRole.
type ProjectRole string

const (
	ProjectRoleOwner  ProjectRole = "OWNER"
	ProjectRoleAdmin  ProjectRole = "ADMIN"
	ProjectRoleMember ProjectRole = "MEMBER"
	ProjectRoleViewer ProjectRole = "VIEWER"
)

type ProjectMember struct {
	gorm.Model

	UserID    uint        `gorm:"not null;uniqueIndex:idx_user_project"`
	ProjectID uint        `gorm:"not null;uniqueIndex:idx_user_project"`
	Role      ProjectRole `gorm:"not null"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
