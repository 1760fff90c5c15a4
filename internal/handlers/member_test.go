package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/safework-dev/safework/db"
	"github.com/safework-dev/safework/internal/models"
	"github.com/stretchr/testify/require"
)

func memberID(t *testing.T, projectID uint, userID uint) uint {
	t.Helper()

	var member models.ProjectMember

	require.NoError(t, db.DB.Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error)
	return member.ID
}

func TestAddMember(t *testing.T) {
	r := setupRouter(t)

	owner, ownerToken := createUser(t, "소유자", "owner@example.com")
	invitee, _ := createUser(t, "신규", "invitee@example.com")

	project := createProject(t, "현장 A", map[uint]models.ProjectRole{
		owner.ID: models.ProjectRoleOwner,
	})

	path := fmt.Sprintf("/api/v1/projects/%d/members", project.ID)

	w := doJSON(r, http.MethodPost, path, ownerToken, map[string]interface{}{
		"email": invitee.Email,
		"role":  "MEMBER",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	// Inviting the same user twice conflicts.
	w = doJSON(r, http.MethodPost, path, ownerToken, map[string]interface{}{
		"email": invitee.Email,
		"role":  "MEMBER",
	})
	requireError(t, w, http.StatusConflict, "이 사용자는 이미 프로젝트 멤버입니다")

	w = doJSON(r, http.MethodPost, path, ownerToken, map[string]interface{}{
		"email": "nobody@example.com",
		"role":  "MEMBER",
	})
	requireError(t, w, http.StatusNotFound, "해당 이메일의 사용자를 찾을 수 없습니다")
}

func TestOwnerRoleIsImmutable(t *testing.T) {
	r := setupRouter(t)

	owner, ownerToken := createUser(t, "소유자", "owner@example.com")
	project := createProject(t, "현장 A", map[uint]models.ProjectRole{
		owner.ID: models.ProjectRoleOwner,
	})

	path := fmt.Sprintf("/api/v1/projects/%d/members/%d", project.ID, memberID(t, project.ID, owner.ID))

	w := doJSON(r, http.MethodPatch, path, ownerToken, map[string]interface{}{"role": "ADMIN"})
	requireError(t, w, http.StatusBadRequest, "프로젝트 소유자의 역할은 변경할 수 없습니다")
}

func TestRemoveMemberRules(t *testing.T) {
	r := setupRouter(t)

	owner, _ := createUser(t, "소유자", "owner@example.com")
	admin1, admin1Token := createUser(t, "관리자1", "admin1@example.com")
	admin2, _ := createUser(t, "관리자2", "admin2@example.com")
	member, memberToken := createUser(t, "멤버", "member@example.com")

	project := createProject(t, "현장 A", map[uint]models.ProjectRole{
		owner.ID:  models.ProjectRoleOwner,
		admin1.ID: models.ProjectRoleAdmin,
		admin2.ID: models.ProjectRoleAdmin,
		member.ID: models.ProjectRoleMember,
	})

	// The owner can never be removed, even by an admin.
	w := doJSON(r, http.MethodDelete,
		fmt.Sprintf("/api/v1/projects/%d/members/%d", project.ID, memberID(t, project.ID, owner.ID)),
		admin1Token, nil)
	requireError(t, w, http.StatusBadRequest, "프로젝트 소유자는 제거할 수 없습니다")

	// An admin cannot remove another admin.
	w = doJSON(r, http.MethodDelete,
		fmt.Sprintf("/api/v1/projects/%d/members/%d", project.ID, memberID(t, project.ID, admin2.ID)),
		admin1Token, nil)
	requireError(t, w, http.StatusForbidden, "관리자는 다른 관리자를 제거할 수 없습니다")

	// An admin can remove a regular member.
	w = doJSON(r, http.MethodDelete,
		fmt.Sprintf("/api/v1/projects/%d/members/%d", project.ID, memberID(t, project.ID, member.ID)),
		admin1Token, nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	// Self removal works without management roles.
	rejoined := createProject(t, "현장 B", map[uint]models.ProjectRole{
		owner.ID:  models.ProjectRoleOwner,
		member.ID: models.ProjectRoleMember,
	})

	w = doJSON(r, http.MethodDelete,
		fmt.Sprintf("/api/v1/projects/%d/members/%d", rejoined.ID, memberID(t, rejoined.ID, member.ID)),
		memberToken, nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
}

func TestMemberAccessScoping(t *testing.T) {
	r := setupRouter(t)

	owner, _ := createUser(t, "소유자", "owner@example.com")
	_, outsiderToken := createUser(t, "외부인", "outsider@example.com")

	project := createProject(t, "현장 A", map[uint]models.ProjectRole{
		owner.ID: models.ProjectRoleOwner,
	})

	// Non-members are rejected with a 403.
	w := doJSON(r, http.MethodGet, fmt.Sprintf("/api/v1/projects/%d/members", project.ID), outsiderToken, nil)
	requireError(t, w, http.StatusForbidden, "이 프로젝트에 접근할 권한이 없습니다")

	// A missing project is a 404, not a 403.
	w = doJSON(r, http.MethodGet, "/api/v1/projects/9999/members", outsiderToken, nil)
	requireError(t, w, http.StatusNotFound, "프로젝트를 찾을 수 없습니다")
}
