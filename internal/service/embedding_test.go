package service

import (
	"context"
	"errors"
	"testing"

	"github.com/kindred-health/kindred/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockEmbeddingClient mocks the embedding provider
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockEmbeddingEntryRepo mocks the knowledge repository for the embedding service
type MockEmbeddingEntryRepo struct {
	mock.Mock
}

func (m *MockEmbeddingEntryRepo) GetByID(ctx context.Context, id string) (*domain.KnowledgeEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeEntry), args.Error(1)
}

func (m *MockEmbeddingEntryRepo) ListMissingEmbeddings(ctx context.Context, limit int) ([]*domain.KnowledgeEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.KnowledgeEntry), args.Error(1)
}

func (m *MockEmbeddingEntryRepo) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	args := m.Called(ctx, id, embedding)
	return args.Error(0)
}

func testEntry(id string) *domain.KnowledgeEntry {
	return &domain.KnowledgeEntry{
		ID:       id,
		Expert:   "Dr. Xavier Amador",
		Source:   "LEAP Institute",
		Category: "communication",
		Title:    "The LEAP Method for Treatment Refusal",
		Content:  "LEAP is an evidence-based communication approach.",
		Keywords: []string{"LEAP", "communication", "trust"},
	}
}

func TestEmbeddingService_GenerateAndStoreEmbedding_Success(t *testing.T) {
	mockClient := new(MockEmbeddingClient)
	mockRepo := new(MockEmbeddingEntryRepo)
	svc := NewEmbeddingService(mockClient, mockRepo)

	ctx := context.Background()
	entry := testEntry("entry-123")

	embedding := make([]float32, 768)
	for i := range embedding {
		embedding[i] = float32(i) * 0.001
	}

	// Embedding text order is fixed: title, category, expert, keywords, content.
	expectedText := "The LEAP Method for Treatment Refusal\ncommunication\nDr. Xavier Amador\nKeywords: LEAP, communication, trust\nLEAP is an evidence-based communication approach."

	mockRepo.On("GetByID", ctx, "entry-123").Return(entry, nil)
	mockClient.On("GenerateEmbedding", ctx, expectedText).Return(embedding, nil)
	mockRepo.On("UpdateEmbedding", ctx, "entry-123", embedding).Return(nil)

	err := svc.GenerateAndStoreEmbedding(ctx, "entry-123")

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockClient.AssertExpectations(t)
}

func TestEmbeddingService_GenerateAndStoreEmbedding_EntryNotFound(t *testing.T) {
	mockClient := new(MockEmbeddingClient)
	mockRepo := new(MockEmbeddingEntryRepo)
	svc := NewEmbeddingService(mockClient, mockRepo)

	ctx := context.Background()
	mockRepo.On("GetByID", ctx, "missing").Return(nil, domain.ErrEntryNotFound)

	err := svc.GenerateAndStoreEmbedding(ctx, "missing")

	assert.Error(t, err)
	assert.Equal(t, domain.ErrEntryNotFound, err)
	mockClient.AssertNotCalled(t, "GenerateEmbedding")
}

func TestEmbeddingService_GenerateAndStoreEmbedding_ProviderError(t *testing.T) {
	mockClient := new(MockEmbeddingClient)
	mockRepo := new(MockEmbeddingEntryRepo)
	svc := NewEmbeddingService(mockClient, mockRepo)

	ctx := context.Background()
	entry := testEntry("entry-123")

	mockRepo.On("GetByID", ctx, "entry-123").Return(entry, nil)
	mockClient.On("GenerateEmbedding", ctx, mock.Anything).Return(nil, errors.New("quota exceeded"))

	err := svc.GenerateAndStoreEmbedding(ctx, "entry-123")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to generate embedding")
	mockRepo.AssertNotCalled(t, "UpdateEmbedding")
}

func TestEmbeddingService_EnsureAllEmbeddings_EmbedsMissingBatch(t *testing.T) {
	mockClient := new(MockEmbeddingClient)
	mockRepo := new(MockEmbeddingEntryRepo)
	svc := NewEmbeddingService(mockClient, mockRepo)

	ctx := context.Background()
	missing := testEntry("needs-embedding")

	vector := []float32{0.5, 0.5}
	mockRepo.On("ListMissingEmbeddings", ctx, backfillBatchSize).Return([]*domain.KnowledgeEntry{missing}, nil).Once()
	mockClient.On("GenerateEmbedding", ctx, mock.Anything).Return(vector, nil).Once()
	mockRepo.On("UpdateEmbedding", ctx, "needs-embedding", vector).Return(nil)
	mockRepo.On("ListMissingEmbeddings", ctx, backfillBatchSize).Return([]*domain.KnowledgeEntry{}, nil).Once()

	err := svc.EnsureAllEmbeddings(ctx)

	assert.NoError(t, err)
	mockClient.AssertNumberOfCalls(t, "GenerateEmbedding", 1)
	mockRepo.AssertExpectations(t)
}

func TestEmbeddingService_EnsureAllEmbeddings_Idempotent(t *testing.T) {
	mockClient := new(MockEmbeddingClient)
	mockRepo := new(MockEmbeddingEntryRepo)
	svc := NewEmbeddingService(mockClient, mockRepo)

	ctx := context.Background()
	entry := testEntry("entry-1")
	vector := []float32{0.5, 0.5}

	// First pass: one missing entry, one provider call, then an empty fetch.
	mockRepo.On("ListMissingEmbeddings", ctx, backfillBatchSize).Return([]*domain.KnowledgeEntry{entry}, nil).Once()
	mockClient.On("GenerateEmbedding", ctx, mock.Anything).Return(vector, nil).Once()
	mockRepo.On("UpdateEmbedding", ctx, "entry-1", vector).Return(nil).Once()
	mockRepo.On("ListMissingEmbeddings", ctx, backfillBatchSize).Return([]*domain.KnowledgeEntry{}, nil)

	assert.NoError(t, svc.EnsureAllEmbeddings(ctx))

	// Second pass: nothing is missing; zero provider calls.
	assert.NoError(t, svc.EnsureAllEmbeddings(ctx))

	mockClient.AssertNumberOfCalls(t, "GenerateEmbedding", 1)
}

func TestEmbeddingService_EnsureAllEmbeddings_ContinuesOnFailure(t *testing.T) {
	mockClient := new(MockEmbeddingClient)
	mockRepo := new(MockEmbeddingEntryRepo)
	svc := NewEmbeddingService(mockClient, mockRepo)

	ctx := context.Background()
	first := testEntry("first")
	second := testEntry("second")
	second.Title = "Understanding Anosognosia"
	vector := []float32{0.5, 0.5}

	// The failing entry stays missing, so the follow-up fetch returns it
	// again; a pass with no progress ends the sweep.
	mockRepo.On("ListMissingEmbeddings", ctx, backfillBatchSize).Return([]*domain.KnowledgeEntry{first, second}, nil).Once()
	mockRepo.On("ListMissingEmbeddings", ctx, backfillBatchSize).Return([]*domain.KnowledgeEntry{first}, nil).Once()
	mockClient.On("GenerateEmbedding", ctx, mock.MatchedBy(func(text string) bool {
		return text[:len("The LEAP")] == "The LEAP"
	})).Return(nil, errors.New("provider outage")).Twice()
	mockClient.On("GenerateEmbedding", ctx, mock.Anything).Return(vector, nil).Once()
	mockRepo.On("UpdateEmbedding", ctx, "second", vector).Return(nil)

	err := svc.EnsureAllEmbeddings(ctx)

	// The sweep completes even though one entry kept failing.
	assert.NoError(t, err)
	mockRepo.AssertCalled(t, "UpdateEmbedding", ctx, "second", vector)
	mockRepo.AssertNotCalled(t, "UpdateEmbedding", ctx, "first", mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestEmbeddingService_EnsureAllEmbeddings_ListError(t *testing.T) {
	mockClient := new(MockEmbeddingClient)
	mockRepo := new(MockEmbeddingEntryRepo)
	svc := NewEmbeddingService(mockClient, mockRepo)

	ctx := context.Background()
	mockRepo.On("ListMissingEmbeddings", ctx, backfillBatchSize).Return(nil, errors.New("connection refused"))

	err := svc.EnsureAllEmbeddings(ctx)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list entries missing embeddings")
}
