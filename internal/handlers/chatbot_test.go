package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/safework-dev/safework/db"
	"github.com/safework-dev/safework/internal/models"
	"github.com/stretchr/testify/require"
)

func TestChatbotDisabledWithoutAPIKey(t *testing.T) {
	r := setupRouter(t)
	_, token := createUser(t, "질문자", "asker@example.com")

	w := doJSON(r, http.MethodPost, "/api/v1/chatbot/messages", token, map[string]interface{}{
		"message": "비계 설치 시 주의사항은?",
	})
	requireError(t, w, http.StatusServiceUnavailable, "챗봇 기능이 비활성화되어 있습니다")
}

func TestChatHistoryIsPerUser(t *testing.T) {
	r := setupRouter(t)

	user, token := createUser(t, "질문자", "asker@example.com")
	other, _ := createUser(t, "남", "other@example.com")

	messages := []models.ChatMessage{
		{Content: "질문입니다", IsUserMessage: true, UserID: user.ID},
		{Content: "답변입니다", IsUserMessage: false, UserID: user.ID},
		{Content: "남의 질문", IsUserMessage: true, UserID: other.ID},
	}

	for i := range messages {
		require.NoError(t, db.DB.Create(&messages[i]).Error)
	}

	w := doJSON(r, http.MethodGet, "/api/v1/chatbot/messages", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	require.Len(t, body["messages"].([]interface{}), 2)

	w = doJSON(r, http.MethodDelete, "/api/v1/chatbot/messages", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 2, decodeBody(t, w)["deleted"])

	var remaining int64
	db.DB.Model(&models.ChatMessage{}).Count(&remaining)
	require.EqualValues(t, 1, remaining)
}

func TestChatFeedbackRequiresOwnership(t *testing.T) {
	r := setupRouter(t)

	user, token := createUser(t, "질문자", "asker@example.com")
	other, _ := createUser(t, "남", "other@example.com")

	mine := models.ChatMessage{Content: "답변", IsUserMessage: false, UserID: user.ID}
	theirs := models.ChatMessage{Content: "남의 답변", IsUserMessage: false, UserID: other.ID}
	require.NoError(t, db.DB.Create(&mine).Error)
	require.NoError(t, db.DB.Create(&theirs).Error)

	w := doJSON(r, http.MethodPost,
		fmt.Sprintf("/api/v1/chatbot/messages/%d/feedback", mine.ID), token,
		map[string]interface{}{"helpful": true})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	w = doJSON(r, http.MethodPost,
		fmt.Sprintf("/api/v1/chatbot/messages/%d/feedback", theirs.ID), token,
		map[string]interface{}{"helpful": false, "comment": "부정확함"})
	requireError(t, w, http.StatusNotFound, "메시지를 찾을 수 없습니다")
}
