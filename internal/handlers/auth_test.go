package handlers_test

import (
	"net/http"
	"testing"

	"github.com/safework-dev/safework/db"
	"github.com/safework-dev/safework/internal/models"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(r, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"name":     "김철수",
		"email":    "chulsoo@example.com",
		"password": "password1234",
	})

	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	body := decodeBody(t, w)
	require.NotEmpty(t, body["token"])

	user := body["user"].(map[string]interface{})
	require.Equal(t, "chulsoo@example.com", user["email"])
	require.Equal(t, "USER", user["role"])

	// Duplicate email is rejected.
	w = doJSON(r, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"name":     "김철수",
		"email":    "chulsoo@example.com",
		"password": "password1234",
	})
	requireError(t, w, http.StatusConflict, "이미 등록된 이메일입니다")

	w = doJSON(r, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    "chulsoo@example.com",
		"password": "password1234",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, decodeBody(t, w)["token"])

	w = doJSON(r, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    "chulsoo@example.com",
		"password": "wrong-password",
	})
	requireError(t, w, http.StatusUnauthorized, "이메일 또는 비밀번호가 일치하지 않습니다")
}

func TestMeRequiresToken(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(r, http.MethodGet, "/api/v1/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	_, token := createUser(t, "테스터", "tester@example.com")

	w = doJSON(r, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	user := decodeBody(t, w)["user"].(map[string]interface{})
	require.Equal(t, "tester@example.com", user["email"])
}

func TestPasswordResetFlow(t *testing.T) {
	r := setupRouter(t)
	user, _ := createUser(t, "테스터", "reset@example.com")

	w := doJSON(r, http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]interface{}{
		"email": "reset@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)

	token := decodeBody(t, w)["token"].(string)
	require.NotEmpty(t, token)

	w = doJSON(r, http.MethodPost, "/api/v1/auth/reset-password", "", map[string]interface{}{
		"token":    token,
		"password": "newpassword99",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// The token is single use.
	w = doJSON(r, http.MethodPost, "/api/v1/auth/reset-password", "", map[string]interface{}{
		"token":    token,
		"password": "anotherpass99",
	})
	requireError(t, w, http.StatusBadRequest, "유효하지 않거나 만료된 토큰입니다")

	w = doJSON(r, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    "reset@example.com",
		"password": "newpassword99",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resets int64
	db.DB.Model(&models.PasswordReset{}).Where("user_id = ?", user.ID).Count(&resets)
	require.Zero(t, resets)
}
