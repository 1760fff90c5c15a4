package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/safework-dev/safework/db"
	"github.com/safework-dev/safework/internal/models"
	"github.com/stretchr/testify/require"
)

func seedNotification(t *testing.T, userID uint, title string, isRead bool) models.Notification {
	t.Helper()

	notification := models.Notification{
		UserID:  userID,
		Title:   title,
		Content: "내용",
		Type:    models.NotificationTypeSystem,
		IsRead:  isRead,
	}

	require.NoError(t, db.DB.Create(&notification).Error)
	return notification
}

func TestListNotifications(t *testing.T) {
	r := setupRouter(t)

	user, token := createUser(t, "수신자", "user@example.com")
	other, _ := createUser(t, "남", "other@example.com")

	seedNotification(t, user.ID, "알림 1", false)
	seedNotification(t, user.ID, "알림 2", true)
	seedNotification(t, other.ID, "남의 알림", false)

	w := doJSON(r, http.MethodGet, "/api/v1/notifications", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	require.Len(t, body["notifications"].([]interface{}), 2)
	require.EqualValues(t, 1, body["unread_count"])

	w = doJSON(r, http.MethodGet, "/api/v1/notifications?is_read=false", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decodeBody(t, w)["notifications"].([]interface{}), 1)
}

func TestNotificationOwnership(t *testing.T) {
	r := setupRouter(t)

	user, _ := createUser(t, "수신자", "user@example.com")
	_, intruderToken := createUser(t, "침입자", "intruder@example.com")

	notification := seedNotification(t, user.ID, "비밀 알림", false)

	// Foreign notifications are hidden behind a 404.
	w := doJSON(r, http.MethodPatch,
		fmt.Sprintf("/api/v1/notifications/%d/read", notification.ID), intruderToken, nil)
	requireError(t, w, http.StatusNotFound, "잘못된 접근입니다")

	w = doJSON(r, http.MethodDelete,
		fmt.Sprintf("/api/v1/notifications/%d", notification.ID), intruderToken, nil)
	requireError(t, w, http.StatusNotFound, "잘못된 접근입니다")
}

func TestMarkAllNotificationsRead(t *testing.T) {
	r := setupRouter(t)

	user, token := createUser(t, "수신자", "user@example.com")

	seedNotification(t, user.ID, "알림 1", false)
	seedNotification(t, user.ID, "알림 2", false)

	w := doJSON(r, http.MethodPatch, "/api/v1/notifications/read-all", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 2, decodeBody(t, w)["updated"])

	var unread int64
	db.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).Count(&unread)
	require.Zero(t, unread)
}
