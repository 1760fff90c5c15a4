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

func seedDocument(t *testing.T, ownerID uint) models.SafetyDocument {
	t.Helper()

	document := models.SafetyDocument{
		Title:        "안전 관리 계획서",
		FilePath:     "/files/plan.pdf",
		DocumentType: models.DocumentTypeSafetyPlan,
		ValidFrom:    time.Now().AddDate(0, -1, 0),
		UserID:       ownerID,
	}

	require.NoError(t, db.DB.Create(&document).Error)
	return document
}

func TestDocumentAccessControl(t *testing.T) {
	r := setupRouter(t)

	owner, ownerToken := createUser(t, "소유자", "owner@example.com")
	reader, readerToken := createUser(t, "열람자", "reader@example.com")
	_, strangerToken := createUser(t, "외부인", "stranger@example.com")

	document := seedDocument(t, owner.ID)
	path := fmt.Sprintf("/api/v1/documents/%d", document.ID)

	// Without a grant the document is invisible to others.
	w := doJSON(r, http.MethodGet, path, strangerToken, nil)
	requireError(t, w, http.StatusForbidden, "이 문서에 접근할 권한이 없습니다.")

	// The owner grants READ access.
	w = doJSON(r, http.MethodPost, path+"/access", ownerToken, map[string]interface{}{
		"user_id":      reader.ID,
		"access_level": "READ",
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	w = doJSON(r, http.MethodGet, path, readerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "READ", decodeBody(t, w)["my_access_level"])

	// READ is not enough to edit.
	w = doJSON(r, http.MethodPatch, path, readerToken, map[string]interface{}{"title": "변경"})
	requireError(t, w, http.StatusForbidden, "이 문서를 수정할 권한이 없습니다.")

	// Nor to manage grants.
	w = doJSON(r, http.MethodPost, path+"/access", readerToken, map[string]interface{}{
		"user_id":      reader.ID,
		"access_level": "ADMIN",
	})
	requireError(t, w, http.StatusForbidden, "이 문서의 권한을 관리할 권한이 없습니다.")

	// Nor to delete.
	w = doJSON(r, http.MethodDelete, path, readerToken, nil)
	requireError(t, w, http.StatusForbidden, "이 문서를 삭제할 권한이 없습니다.")
}

func TestDeleteDocumentWithAdminGrant(t *testing.T) {
	r := setupRouter(t)

	owner, ownerToken := createUser(t, "소유자", "owner@example.com")
	manager, managerToken := createUser(t, "관리 위임자", "manager@example.com")

	document := seedDocument(t, owner.ID)
	path := fmt.Sprintf("/api/v1/documents/%d", document.ID)

	w := doJSON(r, http.MethodPost, path+"/access", ownerToken, map[string]interface{}{
		"user_id":      manager.ID,
		"access_level": "ADMIN",
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	w = doJSON(r, http.MethodDelete, path, managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var grants int64
	db.DB.Model(&models.DocumentAccess{}).Where("document_id = ?", document.ID).Count(&grants)
	require.Zero(t, grants)
}

func TestRevokeDocumentAccess(t *testing.T) {
	r := setupRouter(t)

	owner, ownerToken := createUser(t, "소유자", "owner@example.com")
	reader, readerToken := createUser(t, "열람자", "reader@example.com")

	document := seedDocument(t, owner.ID)
	require.NoError(t, db.DB.Create(&models.DocumentAccess{
		UserID:      reader.ID,
		DocumentID:  document.ID,
		AccessLevel: models.AccessLevelRead,
	}).Error)

	base := fmt.Sprintf("/api/v1/documents/%d/access", document.ID)

	// Revoking the owner is always a 400, grant row or not, even when the
	// caller could not manage grants at all.
	w := doJSON(r, http.MethodDelete, fmt.Sprintf("%s/%d", base, owner.ID), ownerToken, nil)
	requireError(t, w, http.StatusBadRequest, "문서 소유자의 권한은 제거할 수 없습니다.")

	w = doJSON(r, http.MethodDelete, fmt.Sprintf("%s/%d", base, owner.ID), readerToken, nil)
	requireError(t, w, http.StatusBadRequest, "문서 소유자의 권한은 제거할 수 없습니다.")

	w = doJSON(r, http.MethodDelete, fmt.Sprintf("%s/%d", base, reader.ID), ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var grants int64
	db.DB.Model(&models.DocumentAccess{}).Where("document_id = ?", document.ID).Count(&grants)
	require.Zero(t, grants)
}

func TestListDocumentsFilters(t *testing.T) {
	r := setupRouter(t)

	owner, ownerToken := createUser(t, "소유자", "owner@example.com")

	expired := time.Now().AddDate(0, -1, 0)

	require.NoError(t, db.DB.Create(&models.SafetyDocument{
		Title:        "만료된 점검표",
		FilePath:     "/files/old.pdf",
		DocumentType: models.DocumentTypeInspection,
		ValidFrom:    time.Now().AddDate(-1, 0, 0),
		ValidUntil:   &expired,
		UserID:       owner.ID,
	}).Error)
	seedDocument(t, owner.ID)

	w := doJSON(r, http.MethodGet, "/api/v1/documents?only_valid=true", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	documents := body["documents"].([]interface{})
	require.Len(t, documents, 1)
	require.Equal(t, "안전 관리 계획서", documents[0].(map[string]interface{})["title"])

	w = doJSON(r, http.MethodGet, "/api/v1/documents?document_type=INSPECTION", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decodeBody(t, w)["documents"].([]interface{}), 1)
}
