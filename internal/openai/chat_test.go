package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/kindred-health/kindred/internal/domain"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockChatAPI is a mock for the OpenAI chat completion API
type MockChatAPI struct {
	mock.Mock
}

func (m *MockChatAPI) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(openai.ChatCompletionResponse), args.Error(1)
}

func completionWith(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
		},
	}
}

func TestChatClient_GenerateText_Success(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := NewChatClientWithAPI(mockAPI, "")

	ctx := context.Background()
	history := []domain.ChatTurn{
		{Role: domain.ChatRoleUser, Content: "Hello"},
		{Role: domain.ChatRoleAssistant, Content: "Hi there"},
	}

	mockAPI.On("CreateChatCompletion", ctx, mock.MatchedBy(func(req openai.ChatCompletionRequest) bool {
		// system + 2 history turns + user message
		return len(req.Messages) == 4 &&
			req.Messages[0].Role == openai.ChatMessageRoleSystem &&
			req.Messages[0].Content == "be helpful" &&
			req.Messages[2].Role == openai.ChatMessageRoleAssistant &&
			req.Messages[3].Content == "What is anosognosia?"
	})).Return(completionWith("Anosognosia is a lack of insight."), nil)

	text, err := client.GenerateText(ctx, "be helpful", history, "What is anosognosia?")

	require.NoError(t, err)
	assert.Equal(t, "Anosognosia is a lack of insight.", text)
	mockAPI.AssertExpectations(t)
}

func TestChatClient_GenerateText_EmptyMessage(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := NewChatClientWithAPI(mockAPI, "")

	_, err := client.GenerateText(context.Background(), "sys", nil, "")

	assert.Equal(t, ErrEmptyMessage, err)
	mockAPI.AssertNotCalled(t, "CreateChatCompletion")
}

func TestChatClient_GenerateText_APIError(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := NewChatClientWithAPI(mockAPI, "")

	ctx := context.Background()
	mockAPI.On("CreateChatCompletion", ctx, mock.Anything).
		Return(openai.ChatCompletionResponse{}, errors.New("rate limited"))

	_, err := client.GenerateText(ctx, "", nil, "hello")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create chat completion")
	mockAPI.AssertExpectations(t)
}

func TestChatClient_GenerateText_NoChoices(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := NewChatClientWithAPI(mockAPI, "")

	ctx := context.Background()
	mockAPI.On("CreateChatCompletion", ctx, mock.Anything).
		Return(openai.ChatCompletionResponse{}, nil)

	_, err := client.GenerateText(ctx, "", nil, "hello")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no completion choices")
}
