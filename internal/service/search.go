package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/kindred-health/kindred/internal/domain"
)

// defaultSearchLimit caps keyword search results when the caller does not
// specify a limit.
const defaultSearchLimit = 5

// SearchService exposes keyword search over the knowledge base. It ranks
// by lexical overlap only and makes no external calls, so it works even
// when the embedding provider is unavailable.
type SearchService struct {
	repo   KnowledgeRepositoryInterface
	scorer *KeywordScorer
}

// NewSearchService creates a SearchService
func NewSearchService(repo KnowledgeRepositoryInterface, scorer *KeywordScorer) *SearchService {
	return &SearchService{repo: repo, scorer: scorer}
}

// Search returns up to limit entries ranked by keyword relevance.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]*domain.KnowledgeEntry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "search query is required")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge entries: %w", err)
	}

	return s.scorer.ScoreEntries(query, entries, limit), nil
}
