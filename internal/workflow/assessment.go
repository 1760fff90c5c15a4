// Package workflow holds the risk-assessment status rules. Any explicit
// status supplied by a sufficiently privileged caller overwrites the current
// one; there is no validated transition table. The only automatic transition
// is REJECTED to DRAFT on a structural edit.
package workflow

import (
	"errors"

	"github.com/safework-dev/safework/internal/models"
)

var (
	ErrCreateDenied   = errors.New("위험성 평가를 생성할 권한이 없습니다")
	ErrEditDenied     = errors.New("위험성 평가를 수정할 권한이 없습니다")
	ErrDeleteDenied   = errors.New("위험성 평가를 삭제할 권한이 없습니다")
	ErrFactorDenied   = errors.New("위험 요소를 수정할 권한이 없습니다")
	ErrApprovedLocked = errors.New("승인된 위험성 평가는 관리자나 소유자만 수정할 수 있습니다")
)

func isManager(role models.ProjectRole) bool {
	return role == models.ProjectRoleOwner || role == models.ProjectRoleAdmin
}

// CanCreate allows every role except VIEWER.
func CanCreate(role models.ProjectRole) error {
	if isManager(role) || role == models.ProjectRoleMember {
		return nil
	}
	return ErrCreateDenied
}

// CanEditAssessment gates title/description/status edits: creator or
// OWNER/ADMIN, and once APPROVED the creator alone is no longer enough.
func CanEditAssessment(status models.AssessmentStatus, role models.ProjectRole, isCreator bool) error {
	if !isCreator && !isManager(role) {
		return ErrEditDenied
	}

	if status == models.AssessmentStatusApproved && !isManager(role) {
		return ErrApprovedLocked
	}

	return nil
}

// CanEditFactors gates adding or updating risk factors: MEMBER is also
// allowed, but the APPROVED lock still applies.
func CanEditFactors(status models.AssessmentStatus, role models.ProjectRole, isCreator bool) error {
	if !isCreator && !isManager(role) && role != models.ProjectRoleMember {
		return ErrFactorDenied
	}

	if status == models.AssessmentStatusApproved && !isManager(role) {
		return ErrApprovedLocked
	}

	return nil
}

// CanDeleteAssessment requires the creator or OWNER/ADMIN.
func CanDeleteAssessment(role models.ProjectRole, isCreator bool) error {
	if isCreator || isManager(role) {
		return nil
	}
	return ErrDeleteDenied
}

// CanDeleteFactor is the delete gate plus the APPROVED lock.
func CanDeleteFactor(status models.AssessmentStatus, role models.ProjectRole, isCreator bool) error {
	if !isCreator && !isManager(role) {
		return ErrDeleteDenied
	}

	if status == models.AssessmentStatusApproved && !isManager(role) {
		return ErrApprovedLocked
	}

	return nil
}

// StatusOnUpdate resolves the status an assessment edit should persist.
// An explicit requested status always wins; editing a REJECTED assessment
// without one reverts it to DRAFT.
func StatusOnUpdate(current models.AssessmentStatus, requested models.AssessmentStatus) models.AssessmentStatus {
	if requested != "" {
		return requested
	}

	if current == models.AssessmentStatusRejected {
		return models.AssessmentStatusDraft
	}

	return current
}

// StatusAfterFactorChange reverts REJECTED to DRAFT whenever a risk factor
// is added, edited or removed.
func StatusAfterFactorChange(current models.AssessmentStatus) models.AssessmentStatus {
	if current == models.AssessmentStatusRejected {
		return models.AssessmentStatusDraft
	}
	return current
}
