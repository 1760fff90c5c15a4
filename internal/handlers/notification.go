package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safework-dev/safework/db"
	"github.com/safework-dev/safework/internal/logger"
	"github.com/safework-dev/safework/internal/models"
	"github.com/safework-dev/safework/internal/types"
	"github.com/safework-dev/safework/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreateNotificationRequest struct {
	UserID   uint                    `json:"user_id" binding:"required"`
	Title    string                  `json:"title" binding:"required"`
	Content  string                  `json:"content" binding:"required"`
	Type     models.NotificationType `json:"type" binding:"required,oneof=PROJECT_INVITATION RISK_ASSESSMENT DOCUMENT_SHARED WORKER_EDUCATION SYSTEM COMMENT MENTION"`
	Link     string                  `json:"link"`
	EntityID string                  `json:"entity_id"`
	Data     datatypes.JSON          `json:"data"`
}

func ListNotifications(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	page, limit := utils.ParsePagination(ctx, 20)

	query := db.DB.Model(&models.Notification{}).Where("user_id = ?", currentUser.ID)

	if notificationType := ctx.Query("type"); notificationType != "" {
		query = query.Where("type = ?", notificationType)
	}

	if isRead := ctx.Query("is_read"); isRead != "" {
		query = query.Where("is_read = ?", isRead == "true")
	}

	var total int64

	if err := query.Count(&total).Error; err != nil {
		logger.Log.Errorf("Failed to count notifications: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	var unread int64

	if err := db.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", currentUser.ID, false).
		Count(&unread).Error; err != nil {
		logger.Log.Errorf("Failed to count unread notifications: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	var notifications []models.Notification

	err = query.Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&notifications).Error

	if err != nil {
		logger.Log.Errorf("Failed to list notifications: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unread_count":  unread,
		"meta":          types.NewPageMeta(total, page, limit),
	})
}

// CreateNotification is admin-only; regular notifications are produced by
// the modules themselves.
func CreateNotification(ctx *gin.Context) {
	var req CreateNotificationRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "사용자를 찾을 수 없습니다"})
			return
		}
		logger.Log.Errorf("Failed to fetch user %d: %v", req.UserID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	notification := models.Notification{
		UserID:   req.UserID,
		Title:    req.Title,
		Content:  req.Content,
		Type:     req.Type,
		Link:     req.Link,
		EntityID: req.EntityID,
		Data:     req.Data,
	}

	if err := db.DB.Create(&notification).Error; err != nil {
		logger.Log.Errorf("Failed to create notification: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusCreated, notification)
}

// loadOwnNotification hides other users' notifications behind a 404.
func loadOwnNotification(ctx *gin.Context, userID uint) (*models.Notification, bool) {
	notificationID, err := utils.ParseIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return nil, false
	}

	var notification models.Notification

	if err := db.DB.First(&notification, notificationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "알림을 찾을 수 없습니다"})
			return nil, false
		}
		logger.Log.Errorf("Failed to fetch notification %d: %v", notificationID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return nil, false
	}

	if notification.UserID != userID {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "잘못된 접근입니다"})
		return nil, false
	}

	return &notification, true
}

func MarkNotificationRead(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	notification, ok := loadOwnNotification(ctx, currentUser.ID)

	if !ok {
		return
	}

	if err := db.DB.Model(notification).Update("is_read", true).Error; err != nil {
		logger.Log.Errorf("Failed to mark notification %d read: %v", notification.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	notification.IsRead = true
	ctx.JSON(http.StatusOK, notification)
}

func MarkAllNotificationsRead(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	result := db.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", currentUser.ID, false).
		Update("is_read", true)

	if result.Error != nil {
		logger.Log.Errorf("Failed to mark notifications read: %v", result.Error)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "모든 알림을 읽음 처리했습니다.",
		"updated": result.RowsAffected,
	})
}

func DeleteNotification(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	notification, ok := loadOwnNotification(ctx, currentUser.ID)

	if !ok {
		return
	}

	if err := db.DB.Delete(notification).Error; err != nil {
		logger.Log.Errorf("Failed to delete notification %d: %v", notification.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "알림이 성공적으로 삭제되었습니다."})
}

func DeleteAllNotifications(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	result := db.DB.Where("user_id = ?", currentUser.ID).Delete(&models.Notification{})

	if result.Error != nil {
		logger.Log.Errorf("Failed to delete notifications: %v", result.Error)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "모든 알림이 삭제되었습니다.",
		"deleted": result.RowsAffected,
	})
}
