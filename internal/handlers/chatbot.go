package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safework-dev/safework/db"
	"github.com/safework-dev/safework/internal/logger"
	"github.com/safework-dev/safework/internal/models"
	"github.com/safework-dev/safework/internal/services"
	"github.com/safework-dev/safework/internal/types"
	"github.com/safework-dev/safework/internal/utils"
)

type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// SendChatMessage forwards the question to the safety assistant and returns
// the stored reply.
func SendChatMessage(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	var req ChatRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	reply, err := services.AskChatbot(ctx.Request.Context(), currentUser.ID, req.Message)

	if err != nil {
		if errors.Is(err, services.ErrChatbotDisabled) {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		logger.Log.Errorf("Chatbot request failed for user %d: %v", currentUser.ID, err)
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "챗봇 응답을 받지 못했습니다"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"id":              reply.ID,
		"content":         reply.Content,
		"is_user_message": reply.IsUserMessage,
		"created_at":      reply.CreatedAt,
	})
}

// ListChatHistory returns the requester's conversation, oldest first.
func ListChatHistory(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	page, limit := utils.ParsePagination(ctx, 50)

	var total int64

	if err := db.DB.Model(&models.ChatMessage{}).
		Where("user_id = ?", currentUser.ID).Count(&total).Error; err != nil {
		logger.Log.Errorf("Failed to count chat messages: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	var messages []models.ChatMessage

	err = db.DB.Where("user_id = ?", currentUser.ID).
		Order("created_at asc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&messages).Error

	if err != nil {
		logger.Log.Errorf("Failed to list chat messages: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"meta":     types.NewPageMeta(total, page, limit),
	})
}

type ChatFeedbackRequest struct {
	Helpful bool   `json:"helpful"`
	Comment string `json:"comment"`
}

// RecordChatFeedback accepts a thumbs-up/down on one of the requester's
// assistant replies. Feedback is logged, not persisted.
func RecordChatFeedback(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	messageID, err := utils.ParseIDParam(ctx, "message_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	var req ChatFeedbackRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	var message models.ChatMessage

	err = db.DB.Where("id = ? AND user_id = ?", messageID, currentUser.ID).
		First(&message).Error

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "메시지를 찾을 수 없습니다"})
		return
	}

	logger.Log.Infow("Chat feedback received",
		"message_id", message.ID,
		"user_id", currentUser.ID,
		"helpful", req.Helpful,
		"comment", req.Comment,
	)

	ctx.JSON(http.StatusOK, gin.H{"message": "피드백이 제출되었습니다."})
}

// ClearChatHistory deletes the requester's conversation.
func ClearChatHistory(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	result := db.DB.Where("user_id = ?", currentUser.ID).Delete(&models.ChatMessage{})

	if result.Error != nil {
		logger.Log.Errorf("Failed to clear chat history: %v", result.Error)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "대화 기록이 삭제되었습니다.",
		"deleted": result.RowsAffected,
	})
}
