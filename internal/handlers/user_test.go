package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/safework-dev/safework/db"
	"github.com/safework-dev/safework/internal/auth"
	"github.com/safework-dev/safework/internal/models"
	"github.com/stretchr/testify/require"
)

func createAdmin(t *testing.T, email string) (models.User, string) {
	t.Helper()

	user, _ := createUser(t, "시스템 관리자", email)
	require.NoError(t, db.DB.Model(&user).Update("role", models.UserRoleAdmin).Error)
	user.Role = models.UserRoleAdmin

	token, err := auth.GenerateJWT(user.ID, user.Email, user.Role)
	require.NoError(t, err)

	return user, token
}

func TestListUsersIsAdminOnly(t *testing.T) {
	r := setupRouter(t)

	_, userToken := createUser(t, "일반", "user@example.com")
	_, adminToken := createAdmin(t, "admin@example.com")

	w := doJSON(r, http.MethodGet, "/api/v1/users", userToken, nil)
	requireError(t, w, http.StatusForbidden, "관리자 권한이 필요합니다")

	w = doJSON(r, http.MethodGet, "/api/v1/users", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateUserRole(t *testing.T) {
	r := setupRouter(t)

	target, _ := createUser(t, "승격 대상", "target@example.com")
	_, adminToken := createAdmin(t, "admin@example.com")

	w := doJSON(r, http.MethodPatch,
		fmt.Sprintf("/api/v1/users/%d/role", target.ID), adminToken,
		map[string]interface{}{"role": "ADMIN"})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var updated models.User
	require.NoError(t, db.DB.First(&updated, target.ID).Error)
	require.Equal(t, models.UserRoleAdmin, updated.Role)
}

func TestUpdateProfilePasswordChange(t *testing.T) {
	r := setupRouter(t)
	_, token := createUser(t, "사용자", "user@example.com")

	// Wrong current password is rejected.
	w := doJSON(r, http.MethodPatch, "/api/v1/users/me", token, map[string]interface{}{
		"current_password": "wrong-password",
		"new_password":     "newpassword99",
	})
	requireError(t, w, http.StatusBadRequest, "현재 비밀번호가 일치하지 않습니다")

	w = doJSON(r, http.MethodPatch, "/api/v1/users/me", token, map[string]interface{}{
		"current_password": testPassword,
		"new_password":     "newpassword99",
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	w = doJSON(r, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    "user@example.com",
		"password": "newpassword99",
	})
	require.Equal(t, http.StatusOK, w.Code)
}
