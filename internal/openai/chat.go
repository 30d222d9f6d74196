package openai

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/kindred-health/kindred/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultChatModel is the OpenAI model used for fallback chat generation
const DefaultChatModel = openai.GPT4o

var (
	// ErrEmptyMessage is returned when the user message is empty
	ErrEmptyMessage = errors.New("message cannot be empty")
	// ErrNoAPIKey is returned when the OpenAI API key is not set
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
)

// ChatAPI defines the interface for chat completion calls
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ChatClient wraps the OpenAI API for fallback chat generation
type ChatClient struct {
	api   ChatAPI
	model string
}

// NewChatClient creates a new ChatClient using defaults.
func NewChatClient(apiKey string) *ChatClient {
	return &ChatClient{
		api:   openai.NewClient(apiKey),
		model: DefaultChatModel,
	}
}

// NewChatClientWithAPI creates a ChatClient with a custom API implementation (for testing)
func NewChatClientWithAPI(api ChatAPI, model string) *ChatClient {
	if model == "" {
		model = DefaultChatModel
	}
	return &ChatClient{api: api, model: model}
}

// NewChatClientFromEnv creates a new ChatClient using the OPENAI_API_KEY environment variable
func NewChatClientFromEnv() (*ChatClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewChatClient(apiKey), nil
}

// GenerateText generates a chat response for the given system prompt,
// conversation history, and user message.
func (c *ChatClient) GenerateText(ctx context.Context, systemPrompt string, history []domain.ChatTurn, message string) (string, error) {
	if message == "" {
		return "", ErrEmptyMessage
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == domain.ChatRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}
