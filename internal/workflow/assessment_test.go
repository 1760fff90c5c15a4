package workflow

import (
	"testing"

	"github.com/safework-dev/safework/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCanCreate(t *testing.T) {
	assert.NoError(t, CanCreate(models.ProjectRoleOwner))
	assert.NoError(t, CanCreate(models.ProjectRoleAdmin))
	assert.NoError(t, CanCreate(models.ProjectRoleMember))
	assert.ErrorIs(t, CanCreate(models.ProjectRoleViewer), ErrCreateDenied)
}

func TestCanEditAssessment(t *testing.T) {
	tests := []struct {
		name      string
		status    models.AssessmentStatus
		role      models.ProjectRole
		isCreator bool
		want      error
	}{
		{"creator edits own draft", models.AssessmentStatusDraft, models.ProjectRoleMember, true, nil},
		{"owner edits any draft", models.AssessmentStatusDraft, models.ProjectRoleOwner, false, nil},
		{"admin edits any draft", models.AssessmentStatusDraft, models.ProjectRoleAdmin, false, nil},
		{"member edits foreign draft", models.AssessmentStatusDraft, models.ProjectRoleMember, false, ErrEditDenied},
		{"viewer edits anything", models.AssessmentStatusDraft, models.ProjectRoleViewer, false, ErrEditDenied},
		{"creator edits own approved", models.AssessmentStatusApproved, models.ProjectRoleMember, true, ErrApprovedLocked},
		{"admin edits approved", models.AssessmentStatusApproved, models.ProjectRoleAdmin, false, nil},
		{"owner edits approved", models.AssessmentStatusApproved, models.ProjectRoleOwner, false, nil},
		{"creator edits own rejected", models.AssessmentStatusRejected, models.ProjectRoleMember, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanEditAssessment(tt.status, tt.role, tt.isCreator)

			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestCanEditFactors(t *testing.T) {
	// MEMBER may touch factors even on assessments they did not create.
	assert.NoError(t, CanEditFactors(models.AssessmentStatusDraft, models.ProjectRoleMember, false))
	assert.ErrorIs(t, CanEditFactors(models.AssessmentStatusDraft, models.ProjectRoleViewer, false), ErrFactorDenied)

	// The APPROVED lock still applies to members.
	assert.ErrorIs(t, CanEditFactors(models.AssessmentStatusApproved, models.ProjectRoleMember, true), ErrApprovedLocked)
	assert.NoError(t, CanEditFactors(models.AssessmentStatusApproved, models.ProjectRoleOwner, false))
}

func TestCanDeleteAssessment(t *testing.T) {
	assert.NoError(t, CanDeleteAssessment(models.ProjectRoleViewer, true))
	assert.NoError(t, CanDeleteAssessment(models.ProjectRoleAdmin, false))
	assert.ErrorIs(t, CanDeleteAssessment(models.ProjectRoleMember, false), ErrDeleteDenied)
}

func TestCanDeleteFactor(t *testing.T) {
	assert.NoError(t, CanDeleteFactor(models.AssessmentStatusDraft, models.ProjectRoleMember, true))
	assert.ErrorIs(t, CanDeleteFactor(models.AssessmentStatusDraft, models.ProjectRoleMember, false), ErrDeleteDenied)
	assert.ErrorIs(t, CanDeleteFactor(models.AssessmentStatusApproved, models.ProjectRoleMember, true), ErrApprovedLocked)
	assert.NoError(t, CanDeleteFactor(models.AssessmentStatusApproved, models.ProjectRoleAdmin, false))
}

func TestStatusOnUpdate(t *testing.T) {
	// Explicit status always wins.
	assert.Equal(t, models.AssessmentStatusApproved,
		StatusOnUpdate(models.AssessmentStatusCompleted, models.AssessmentStatusApproved))
	assert.Equal(t, models.AssessmentStatusDraft,
		StatusOnUpdate(models.AssessmentStatusApproved, models.AssessmentStatusDraft))

	// Editing a rejected assessment without a status reverts to draft.
	assert.Equal(t, models.AssessmentStatusDraft,
		StatusOnUpdate(models.AssessmentStatusRejected, ""))

	// Other statuses are left alone.
	assert.Equal(t, models.AssessmentStatusCompleted,
		StatusOnUpdate(models.AssessmentStatusCompleted, ""))
}

func TestStatusAfterFactorChange(t *testing.T) {
	assert.Equal(t, models.AssessmentStatusDraft,
		StatusAfterFactorChange(models.AssessmentStatusRejected))
	assert.Equal(t, models.AssessmentStatusCompleted,
		StatusAfterFactorChange(models.AssessmentStatusCompleted))
	assert.Equal(t, models.AssessmentStatusApproved,
		StatusAfterFactorChange(models.AssessmentStatusApproved))
}
