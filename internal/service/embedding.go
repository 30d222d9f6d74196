package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/kindred-health/kindred/internal/domain"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingEntryRepository defines the repository interface for embedding operations
type EmbeddingEntryRepository interface {
	GetByID(ctx context.Context, id string) (*domain.KnowledgeEntry, error)
	ListMissingEmbeddings(ctx context.Context, limit int) ([]*domain.KnowledgeEntry, error)
	UpdateEmbedding(ctx context.Context, id string, embedding []float32) error
}

// backfillBatchSize bounds how many missing entries each backfill pass loads.
const backfillBatchSize = 50

// EmbeddingService keeps knowledge entry embeddings in sync with their text
// fields. It is the sole writer of the embedding column.
type EmbeddingService struct {
	client EmbeddingClient
	repo   EmbeddingEntryRepository
}

// NewEmbeddingService creates a new EmbeddingService instance
func NewEmbeddingService(client EmbeddingClient, repo EmbeddingEntryRepository) *EmbeddingService {
	return &EmbeddingService{
		client: client,
		repo:   repo,
	}
}

// GenerateAndStoreEmbedding computes and persists the embedding for a single
// knowledge entry. It is called by the startup batch pass and dispatched
// asynchronously after entry writes.
func (s *EmbeddingService) GenerateAndStoreEmbedding(ctx context.Context, entryID string) error {
	entry, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return err
	}

	return s.embedEntry(ctx, entry)
}

// EnsureAllEmbeddings computes embeddings for every entry that has none,
// fetching missing entries in batches. Entries are processed independently;
// a failure on one entry is logged and does not abort the batch. Calling it
// again once all entries are embedded makes no provider calls.
func (s *EmbeddingService) EnsureAllEmbeddings(ctx context.Context) error {
	processed := 0
	for {
		entries, err := s.repo.ListMissingEmbeddings(ctx, backfillBatchSize)
		if err != nil {
			return fmt.Errorf("failed to list entries missing embeddings: %w", err)
		}
		if len(entries) == 0 {
			break
		}

		succeeded := 0
		for _, entry := range entries {
			if err := s.embedEntry(ctx, entry); err != nil {
				log.Printf("failed to generate embedding for %q: %v", entry.Title, err)
				continue
			}
			log.Printf("generated embedding for: %s", entry.Title)
			succeeded++
		}
		processed += succeeded

		// A pass with no progress would refetch the same failing entries.
		if succeeded == 0 {
			break
		}
	}

	if processed > 0 {
		log.Printf("embedding generation complete (%d entries processed)", processed)
	}

	return nil
}

func (s *EmbeddingService) embedEntry(ctx context.Context, entry *domain.KnowledgeEntry) error {
	text := buildEmbeddingText(entry)

	embedding, err := s.client.GenerateEmbedding(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to generate embedding: %w", err)
	}

	if err := s.repo.UpdateEmbedding(ctx, entry.ID, embedding); err != nil {
		return fmt.Errorf("failed to update embedding: %w", err)
	}

	return nil
}

// buildEmbeddingText concatenates the searchable fields of an entry in a
// fixed order. Changing this order invalidates every stored embedding.
func buildEmbeddingText(k *domain.KnowledgeEntry) string {
	var b strings.Builder

	b.WriteString(k.Title)
	b.WriteString("\n")
	b.WriteString(k.Category)
	b.WriteString("\n")
	b.WriteString(k.Expert)
	b.WriteString("\n")
	b.WriteString("Keywords: ")
	b.WriteString(strings.Join(k.Keywords, ", "))
	b.WriteString("\n")
	b.WriteString(k.Content)

	return b.String()
}
