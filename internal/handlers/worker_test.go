package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/safework-dev/safework/db"
	"github.com/safework-dev/safework/internal/models"
	"github.com/stretchr/testify/require"
)

func seedWorker(t *testing.T, projectID uint, name string) models.Worker {
	t.Helper()

	worker := models.Worker{Name: name, Position: "철근공", ProjectID: projectID}
	require.NoError(t, db.DB.Create(&worker).Error)
	return worker
}

func TestWorkerCRUDRequiresManager(t *testing.T) {
	r := setupRouter(t)

	owner, ownerToken := createUser(t, "소유자", "owner@example.com")
	member, memberToken := createUser(t, "멤버", "member@example.com")

	project := createProject(t, "현장 A", map[uint]models.ProjectRole{
		owner.ID:  models.ProjectRoleOwner,
		member.ID: models.ProjectRoleMember,
	})

	base := fmt.Sprintf("/api/v1/projects/%d/workers", project.ID)

	// Regular members cannot register workers.
	w := doJSON(r, http.MethodPost, base, memberToken, map[string]interface{}{"name": "박근로"})
	requireError(t, w, http.StatusForbidden, "이 작업을 수행할 권한이 없습니다")

	w = doJSON(r, http.MethodPost, base, ownerToken, map[string]interface{}{
		"name":     "박근로",
		"position": "비계공",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	// But members can read the roster.
	w = doJSON(r, http.MethodGet, base, memberToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, base+"/9999", memberToken, nil)
	requireError(t, w, http.StatusNotFound, "근로자를 찾을 수 없습니다.")
}

func TestWorkerEducationValidation(t *testing.T) {
	r := setupRouter(t)

	owner, ownerToken := createUser(t, "소유자", "owner@example.com")
	project := createProject(t, "현장 A", map[uint]models.ProjectRole{
		owner.ID: models.ProjectRoleOwner,
	})
	worker := seedWorker(t, project.ID, "박근로")

	path := fmt.Sprintf("/api/v1/projects/%d/workers/%d/educations", project.ID, worker.ID)

	completion := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	w := doJSON(r, http.MethodPost, path, ownerToken, map[string]interface{}{
		"title":           "추락 방지 교육",
		"completion_date": completion,
		"expiry_date":     completion.AddDate(0, -1, 0),
	})
	requireError(t, w, http.StatusBadRequest, "만료일은 이수일보다 이후여야 합니다.")

	w = doJSON(r, http.MethodPost, path, ownerToken, map[string]interface{}{
		"title":           "추락 방지 교육",
		"completion_date": completion,
		"expiry_date":     completion.AddDate(1, 0, 0),
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
}

func TestWorkerCheckinValidation(t *testing.T) {
	r := setupRouter(t)

	owner, ownerToken := createUser(t, "소유자", "owner@example.com")
	project := createProject(t, "현장 A", map[uint]models.ProjectRole{
		owner.ID: models.ProjectRoleOwner,
	})
	worker := seedWorker(t, project.ID, "박근로")

	base := fmt.Sprintf("/api/v1/projects/%d/workers/%d/checkins", project.ID, worker.ID)

	checkin := time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC)

	// A checkout before the checkin is rejected.
	w := doJSON(r, http.MethodPost, base, ownerToken, map[string]interface{}{
		"checkin_time":  checkin,
		"checkout_time": checkin.Add(-time.Hour),
	})
	requireError(t, w, http.StatusBadRequest, "퇴출 시간은 출입 시간보다 이후여야 합니다.")

	w = doJSON(r, http.MethodPost, base, ownerToken, map[string]interface{}{
		"checkin_time": checkin,
		"location":     "동측 게이트",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	checkinID := uint(decodeBody(t, w)["ID"].(float64))

	checkoutPath := fmt.Sprintf("%s/%d/checkout", base, checkinID)

	// Checkout must come after checkin.
	w = doJSON(r, http.MethodPatch, checkoutPath, ownerToken, map[string]interface{}{
		"checkout_time": checkin.Add(-time.Minute),
	})
	requireError(t, w, http.StatusBadRequest, "퇴출 시간은 출입 시간보다 이후여야 합니다.")

	w = doJSON(r, http.MethodPatch, checkoutPath, ownerToken, map[string]interface{}{
		"checkout_time": checkin.Add(9 * time.Hour),
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	// A second checkout on the same record is rejected.
	w = doJSON(r, http.MethodPatch, checkoutPath, ownerToken, map[string]interface{}{
		"checkout_time": checkin.Add(10 * time.Hour),
	})
	requireError(t, w, http.StatusBadRequest, "이미 퇴출 처리된 기록입니다.")
}

func TestExportWorkersExcel(t *testing.T) {
	r := setupRouter(t)

	owner, ownerToken := createUser(t, "소유자", "owner@example.com")
	project := createProject(t, "현장 A", map[uint]models.ProjectRole{
		owner.ID: models.ProjectRoleOwner,
	})
	seedWorker(t, project.ID, "박근로")
	seedWorker(t, project.ID, "이안전")

	path := fmt.Sprintf("/api/v1/projects/%d/workers/export", project.ID)

	w := doJSON(r, http.MethodGet, path, ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	require.NotZero(t, w.Body.Len())
}
