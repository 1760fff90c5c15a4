package services

import (
	"context"
	"errors"
	"os"

	openai "github.com/sashabaranov/go-openai"
	"github.com/safework-dev/safework/db"
	"github.com/safework-dev/safework/internal/logger"
	"github.com/safework-dev/safework/internal/models"
)

const chatbotSystemPrompt = "당신은 건설 현장 산업 안전 전문가입니다. " +
	"위험성 평가, 안전 교육, 산업안전보건법, 현장 안전 관리에 대한 질문에 " +
	"정확하고 실용적인 답변을 한국어로 제공하세요. 답변은 간결하게 작성하고, " +
	"안전과 직결된 사항은 반드시 관련 법규나 기준을 언급하세요."

// historyLimit bounds how many stored messages travel with each request.
const historyLimit = 20

var (
	chatClient *openai.Client

	ErrChatbotDisabled = errors.New("챗봇 기능이 비활성화되어 있습니다")
)

// InitChatbot wires the OpenAI client. Without an API key the chatbot
// endpoints respond with ErrChatbotDisabled instead of failing at startup.
func InitChatbot() {
	apiKey := os.Getenv("OPENAI_API_KEY")

	if apiKey == "" {
		logger.Log.Warn("OPENAI_API_KEY not set, chatbot disabled")
		return
	}

	chatClient = openai.NewClient(apiKey)
}

// AskChatbot stores the user's message, sends it with recent history to the
// model and stores the reply. Both sides of the exchange are persisted even
// if unrelated requests interleave.
func AskChatbot(ctx context.Context, userID uint, message string) (*models.ChatMessage, error) {
	if chatClient == nil {
		return nil, ErrChatbotDisabled
	}

	userMessage := models.ChatMessage{
		Content:       message,
		IsUserMessage: true,
		UserID:        userID,
	}

	if err := db.DB.Create(&userMessage).Error; err != nil {
		return nil, err
	}

	var history []models.ChatMessage

	err := db.DB.Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(historyLimit).
		Find(&history).Error

	if err != nil {
		return nil, err
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: chatbotSystemPrompt,
	})

	// History arrives newest-first; replay it oldest-first.
	for i := len(history) - 1; i >= 0; i-- {
		role := openai.ChatMessageRoleAssistant

		if history[i].IsUserMessage {
			role = openai.ChatMessageRoleUser
		}

		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: history[i].Content,
		})
	}

	response, err := chatClient.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    openai.GPT4o,
		Messages: messages,
	})

	if err != nil {
		return nil, err
	}

	if len(response.Choices) == 0 {
		return nil, errors.New("empty completion response")
	}

	reply := models.ChatMessage{
		Content:       response.Choices[0].Message.Content,
		IsUserMessage: false,
		UserID:        userID,
	}

	if err := db.DB.Create(&reply).Error; err != nil {
		return nil, err
	}

	return &reply, nil
}
