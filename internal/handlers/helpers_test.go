package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/safework-dev/safework/db"
	"github.com/safework-dev/safework/internal/auth"
	"github.com/safework-dev/safework/internal/logger"
	"github.com/safework-dev/safework/internal/models"
	"github.com/safework-dev/safework/internal/router"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testPassword = "password1234"

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	require.NoError(t, logger.Initialize())

	t.Setenv("JWT_SECRET", "test-secret")
	require.NoError(t, auth.InitJWTSecret())

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))

	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	db.DB = gormDB
	require.NoError(t, db.MigrateDatabase())

	return router.NewRouter()
}

func createUser(t *testing.T, name string, email string) (models.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.UserRoleUser,
	}

	require.NoError(t, db.DB.Create(&user).Error)

	token, err := auth.GenerateJWT(user.ID, user.Email, user.Role)
	require.NoError(t, err)

	return user, token
}

func createProject(t *testing.T, name string, roles map[uint]models.ProjectRole) models.Project {
	t.Helper()

	project := models.Project{
		Name:      name,
		StartDate: time.Now().AddDate(0, -1, 0),
		Status:    models.ProjectStatusActive,
	}

	require.NoError(t, db.DB.Create(&project).Error)

	for userID, role := range roles {
		require.NoError(t, db.DB.Create(&models.ProjectMember{
			UserID:    userID,
			ProjectID: project.ID,
			Role:      role,
		}).Error)
	}

	return project
}

func doJSON(r *gin.Engine, method string, path string, token string, body interface{}) *httptest.ResponseRecorder {
	var payload *bytes.Reader

	if body != nil {
		raw, _ := json.Marshal(body)
		payload = bytes.NewReader(raw)
	} else {
		payload = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func requireError(t *testing.T, w *httptest.ResponseRecorder, status int, message string) {
	t.Helper()

	require.Equal(t, status, w.Code, "body: %s", w.Body.String())
	require.Equal(t, message, decodeBody(t, w)["error"])
}
