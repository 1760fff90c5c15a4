// Package permissions is the single role-gate used by every project-scoped
// module (projects, risk assessments, workers, statistics). Callers resolve
// the requester's ProjectMember row here instead of re-implementing the
// lookup per service.
package permissions

import (
	"errors"

	"github.com/safework-dev/safework/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrProjectNotFound maps to 404.
	ErrProjectNotFound = errors.New("프로젝트를 찾을 수 없습니다")
	// ErrNotProjectMember maps to 403: the user has no ProjectMember row.
	ErrNotProjectMember = errors.New("이 프로젝트에 접근할 권한이 없습니다")
	// ErrRoleDenied maps to 403: the user is a member but the role is not allowed.
	ErrRoleDenied = errors.New("이 작업을 수행할 권한이 없습니다")
)

// ResolveRole returns the user's role in the project. The project's
// existence is checked first, so a missing project is NotFound rather than
// Forbidden; a missing membership row is always ErrNotProjectMember.
func ResolveRole(tx *gorm.DB, projectID uint, userID uint) (models.ProjectRole, error) {
	member, err := findMember(tx, projectID, userID)

	if err != nil {
		return "", err
	}

	return member.Role, nil
}

// RequireRole resolves the user's membership and additionally fails with
// ErrRoleDenied unless the role is in the allowed set.
func RequireRole(tx *gorm.DB, projectID uint, userID uint, allowed ...models.ProjectRole) (*models.ProjectMember, error) {
	member, err := findMember(tx, projectID, userID)

	if err != nil {
		return nil, err
	}

	for _, role := range allowed {
		if member.Role == role {
			return member, nil
		}
	}

	return nil, ErrRoleDenied
}

// RequireMembership accepts any role, VIEWER included.
func RequireMembership(tx *gorm.DB, projectID uint, userID uint) (*models.ProjectMember, error) {
	return findMember(tx, projectID, userID)
}

func findMember(tx *gorm.DB, projectID uint, userID uint) (*models.ProjectMember, error) {
	var project models.Project

	if err := tx.Select("id").First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	var member models.ProjectMember

	err := tx.Where("project_id = ? AND user_id = ?", projectID, userID).First(&member).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotProjectMember
		}
		return nil, err
	}

	return &member, nil
}
