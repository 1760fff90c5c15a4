package services

import (
	"github.com/safework-dev/safework/db"
	"github.com/safework-dev/safework/internal/logger"
	"github.com/safework-dev/safework/internal/models"
	"github.com/safework-dev/safework/internal/ws"
	"gorm.io/datatypes"
)

// Notify stores an in-app notification and pushes it to the user's open
// sockets. Delivery failures are logged, never surfaced to the caller.
func Notify(userID uint, notificationType models.NotificationType, title string, content string, link string, data datatypes.JSON) {
	notification := models.Notification{
		UserID:  userID,
		Title:   title,
		Content: content,
		Type:    notificationType,
		Link:    link,
		Data:    data,
	}

	if err := db.DB.Create(&notification).Error; err != nil {
		logger.Log.Errorf("Failed to store notification for user %d: %v", userID, err)
		return
	}

	ws.Publish(ws.UserRoom(userID), map[string]interface{}{
		"type":         "notification",
		"notification": notification,
	})
}
