package service

import (
	"context"
	"log"
	"time"

	"github.com/kindred-health/kindred/internal/domain"
	"github.com/google/uuid"
)

// KnowledgeRepositoryInterface defines the repository interface for knowledge persistence
type KnowledgeRepositoryInterface interface {
	Create(ctx context.Context, k *domain.KnowledgeEntry) error
	GetByID(ctx context.Context, id string) (*domain.KnowledgeEntry, error)
	List(ctx context.Context) ([]*domain.KnowledgeEntry, error)
	Update(ctx context.Context, k *domain.KnowledgeEntry) error
	Delete(ctx context.Context, id string) error
}

// EmbeddingDispatcher schedules embedding computation for an entry after a
// write completes. Implementations must not block the caller.
type EmbeddingDispatcher interface {
	Dispatch(entryID string)
}

// AsyncEmbeddingDispatcher runs embedding generation in a background
// goroutine. The write path does not wait for it, so a just-edited entry is
// searchable only via its previous embedding (or not at all) until the
// background task lands.
type AsyncEmbeddingDispatcher struct {
	embeddings *EmbeddingService
}

// NewAsyncEmbeddingDispatcher creates an AsyncEmbeddingDispatcher
func NewAsyncEmbeddingDispatcher(embeddings *EmbeddingService) *AsyncEmbeddingDispatcher {
	return &AsyncEmbeddingDispatcher{embeddings: embeddings}
}

// Dispatch schedules embedding generation for the entry, fire-and-forget.
func (d *AsyncEmbeddingDispatcher) Dispatch(entryID string) {
	go func() {
		if err := d.embeddings.GenerateAndStoreEmbedding(context.Background(), entryID); err != nil {
			log.Printf("failed to generate embedding for entry %s: %v", entryID, err)
		}
	}()
}

// NoopEmbeddingDispatcher is used when no embedding provider is configured.
type NoopEmbeddingDispatcher struct{}

// Dispatch does nothing.
func (NoopEmbeddingDispatcher) Dispatch(string) {}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// KnowledgeService handles business logic for knowledge entries
type KnowledgeService struct {
	repo       KnowledgeRepositoryInterface
	dispatcher EmbeddingDispatcher
	uuidGen    UUIDGenerator
}

// NewKnowledgeService creates a new KnowledgeService instance
func NewKnowledgeService(repo KnowledgeRepositoryInterface, dispatcher EmbeddingDispatcher) *KnowledgeService {
	return NewKnowledgeServiceWithUUIDGen(repo, dispatcher, &DefaultUUIDGenerator{})
}

// NewKnowledgeServiceWithUUIDGen creates a new KnowledgeService with custom UUID generator (for testing)
func NewKnowledgeServiceWithUUIDGen(repo KnowledgeRepositoryInterface, dispatcher EmbeddingDispatcher, uuidGen UUIDGenerator) *KnowledgeService {
	return &KnowledgeService{
		repo:       repo,
		dispatcher: dispatcher,
		uuidGen:    uuidGen,
	}
}

// CreateInput holds the fields for creating a knowledge entry
type CreateInput struct {
	Expert    string
	Source    string
	SourceURL string
	Category  string
	Title     string
	Content   string
	Keywords  []string
}

// Create persists a new knowledge entry and dispatches embedding generation.
func (s *KnowledgeService) Create(ctx context.Context, input CreateInput) (*domain.KnowledgeEntry, error) {
	now := time.Now().UTC()
	entry := domain.NewKnowledgeEntry(
		s.uuidGen.NewString(),
		input.Expert,
		input.Source,
		input.SourceURL,
		input.Category,
		input.Title,
		input.Content,
		input.Keywords,
		now,
		now,
	)

	if err := domain.ValidateKnowledgeEntry(entry); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid knowledge entry", err)
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(entry.ID)

	return entry, nil
}

// UpdateInput holds the fields for updating a knowledge entry. Nil pointers
// leave the corresponding field unchanged.
type UpdateInput struct {
	Expert    *string
	Source    *string
	SourceURL *string
	Category  *string
	Title     *string
	Content   *string
	Keywords  []string
}

// Update applies partial changes to an entry. The stored embedding is
// cleared by the repository write (it derives from the text fields) and a
// fresh one is dispatched asynchronously.
func (s *KnowledgeService) Update(ctx context.Context, id string, input UpdateInput) (*domain.KnowledgeEntry, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Expert != nil {
		entry.Expert = *input.Expert
	}
	if input.Source != nil {
		entry.Source = *input.Source
	}
	if input.SourceURL != nil {
		entry.SourceURL = *input.SourceURL
	}
	if input.Category != nil {
		entry.Category = *input.Category
	}
	if input.Title != nil {
		entry.Title = *input.Title
	}
	if input.Content != nil {
		entry.Content = *input.Content
	}
	if input.Keywords != nil {
		entry.Keywords = input.Keywords
	}

	if err := domain.ValidateKnowledgeEntry(entry); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid knowledge entry", err)
	}

	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}
	entry.Embedding = nil

	s.dispatcher.Dispatch(entry.ID)

	return entry, nil
}

// GetByID returns a single knowledge entry
func (s *KnowledgeService) GetByID(ctx context.Context, id string) (*domain.KnowledgeEntry, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all knowledge entries
func (s *KnowledgeService) List(ctx context.Context) ([]*domain.KnowledgeEntry, error) {
	return s.repo.List(ctx)
}

// Delete removes a knowledge entry
func (s *KnowledgeService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
