package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/kindred-health/kindred/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"google.golang.org/genai"
)

// MockGeminiAPI is a mock for the Gemini API
type MockGeminiAPI struct {
	mock.Mock
}

func (m *MockGeminiAPI) EmbedContent(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockGeminiAPI) GenerateContent(ctx context.Context, systemPrompt string, history []domain.ChatTurn, message string) (string, error) {
	args := m.Called(ctx, systemPrompt, history, message)
	return args.String(0), args.Error(1)
}

func TestClient_GenerateEmbedding_Success(t *testing.T) {
	mockAPI := new(MockGeminiAPI)
	client := NewClientWithAPI(mockAPI, 0)

	ctx := context.Background()
	text := "Clozapine as Gold Standard Treatment"
	expectedEmbedding := make([]float32, 768)
	for i := range expectedEmbedding {
		expectedEmbedding[i] = float32(i) * 0.001
	}

	mockAPI.On("EmbedContent", ctx, text).Return(expectedEmbedding, nil)

	embedding, err := client.GenerateEmbedding(ctx, text)

	assert.NoError(t, err)
	assert.Len(t, embedding, 768)
	assert.Equal(t, expectedEmbedding, embedding)
	mockAPI.AssertExpectations(t)
}

func TestClient_GenerateEmbedding_EmptyText(t *testing.T) {
	mockAPI := new(MockGeminiAPI)
	client := NewClientWithAPI(mockAPI, 0)

	ctx := context.Background()
	embedding, err := client.GenerateEmbedding(ctx, "")

	assert.Error(t, err)
	assert.Nil(t, embedding)
	assert.Equal(t, ErrEmptyText, err)
	mockAPI.AssertNotCalled(t, "EmbedContent")
}

func TestClient_GenerateEmbedding_APIError(t *testing.T) {
	mockAPI := new(MockGeminiAPI)
	client := NewClientWithAPI(mockAPI, 0)

	ctx := context.Background()
	text := "Test text"
	apiErr := errors.New("quota exceeded")

	mockAPI.On("EmbedContent", ctx, text).Return(nil, apiErr)

	embedding, err := client.GenerateEmbedding(ctx, text)

	assert.Error(t, err)
	assert.Nil(t, embedding)
	assert.Contains(t, err.Error(), "failed to create embedding")
	mockAPI.AssertExpectations(t)
}

func TestClient_GenerateEmbedding_WrongDimensions(t *testing.T) {
	mockAPI := new(MockGeminiAPI)
	client := NewClientWithAPI(mockAPI, 0)

	ctx := context.Background()
	text := "Test text"
	wrongEmbedding := make([]float32, 512)

	mockAPI.On("EmbedContent", ctx, text).Return(wrongEmbedding, nil)

	embedding, err := client.GenerateEmbedding(ctx, text)

	assert.Error(t, err)
	assert.Nil(t, embedding)
	assert.Equal(t, ErrWrongDimensions, err)
	mockAPI.AssertExpectations(t)
}

func TestClient_GenerateText_Success(t *testing.T) {
	mockAPI := new(MockGeminiAPI)
	client := NewClientWithAPI(mockAPI, 0)

	ctx := context.Background()
	history := []domain.ChatTurn{
		{Role: domain.ChatRoleUser, Content: "Hello"},
		{Role: domain.ChatRoleAssistant, Content: "Hi, how can I help?"},
	}

	mockAPI.On("GenerateContent", ctx, "system prompt", history, "What is clozapine?").
		Return("Clozapine is a medication.", nil)

	text, err := client.GenerateText(ctx, "system prompt", history, "What is clozapine?")

	assert.NoError(t, err)
	assert.Equal(t, "Clozapine is a medication.", text)
	mockAPI.AssertExpectations(t)
}

func TestClient_GenerateText_EmptyMessage(t *testing.T) {
	mockAPI := new(MockGeminiAPI)
	client := NewClientWithAPI(mockAPI, 0)

	_, err := client.GenerateText(context.Background(), "system", nil, "")

	assert.Error(t, err)
	assert.Equal(t, ErrEmptyText, err)
	mockAPI.AssertNotCalled(t, "GenerateContent")
}

func TestClient_GenerateText_APIError(t *testing.T) {
	mockAPI := new(MockGeminiAPI)
	client := NewClientWithAPI(mockAPI, 0)

	ctx := context.Background()
	apiErr := errors.New("model overloaded")

	mockAPI.On("GenerateContent", ctx, "", []domain.ChatTurn(nil), "hi").Return("", apiErr)

	_, err := client.GenerateText(ctx, "", nil, "hi")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to generate content")
	mockAPI.AssertExpectations(t)
}

func TestToGenaiRole_MapsAssistantToModel(t *testing.T) {
	assert.Equal(t, genai.Role(genai.RoleUser), toGenaiRole(domain.ChatRoleUser))
	assert.Equal(t, genai.Role(genai.RoleModel), toGenaiRole(domain.ChatRoleAssistant))
	assert.Equal(t, genai.Role(genai.RoleUser), toGenaiRole(domain.ChatRole("unknown")))
}
