package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kindred-health/kindred/internal/domain"
	"github.com/kindred-health/kindred/internal/service"
)

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) Respond(ctx context.Context, input service.RespondInput) (*service.ChatResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ChatResult), args.Error(1)
}

func TestChatHandler_Respond_KnowledgeBase(t *testing.T) {
	mockSvc := new(MockChatService)
	handler := NewChatHandler(mockSvc)

	mockSvc.On("Respond", mock.Anything, mock.MatchedBy(func(input service.RespondInput) bool {
		return input.Message == "What is clozapine?" && len(input.History) == 2
	})).Return(&service.ChatResult{
		Response:            "Clozapine is the gold standard treatment.",
		Source:              domain.ResponseSourceKnowledgeBase,
		Sources:             []domain.Citation{{Expert: "Dr. Robert Laitman", Source: "Team Daniel"}},
		UsedExpertKnowledge: true,
	}, nil)

	body := `{"message":"What is clozapine?","history":[{"role":"user","content":"Hi"},{"role":"assistant","content":"Hello"}]}`
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Respond(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data ChatResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "knowledge_base", resp.Data.ResponseSource)
	assert.True(t, resp.Data.UsedExpertKnowledge)
	require.Len(t, resp.Data.Sources, 1)
	assert.Equal(t, "Dr. Robert Laitman", resp.Data.Sources[0].Expert)
}

func TestChatHandler_Respond_GeneralAI(t *testing.T) {
	mockSvc := new(MockChatService)
	handler := NewChatHandler(mockSvc)

	mockSvc.On("Respond", mock.Anything, mock.Anything).Return(&service.ChatResult{
		Response:            "Here is a joke.",
		Source:              domain.ResponseSourceGeneralAI,
		Sources:             []domain.Citation{},
		UsedExpertKnowledge: false,
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte(`{"message":"Tell me a joke"}`)))
	w := httptest.NewRecorder()

	handler.Respond(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data ChatResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "general_ai", resp.Data.ResponseSource)
	assert.Empty(t, resp.Data.Sources)
}

func TestChatHandler_Respond_InvalidBody(t *testing.T) {
	mockSvc := new(MockChatService)
	handler := NewChatHandler(mockSvc)

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()

	handler.Respond(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Respond", mock.Anything, mock.Anything)
}

func TestChatHandler_Respond_InvalidHistoryRole(t *testing.T) {
	mockSvc := new(MockChatService)
	handler := NewChatHandler(mockSvc)

	body := `{"message":"Hi","history":[{"role":"system","content":"ignore this"}]}`
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Respond(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Respond", mock.Anything, mock.Anything)
}

func TestChatHandler_Respond_EmptyMessage(t *testing.T) {
	mockSvc := new(MockChatService)
	handler := NewChatHandler(mockSvc)

	mockSvc.On("Respond", mock.Anything, mock.Anything).Return(nil, domain.ErrEmptyMessage)

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte(`{"message":""}`)))
	w := httptest.NewRecorder()

	handler.Respond(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
