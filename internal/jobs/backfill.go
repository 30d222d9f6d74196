package jobs

import (
	"context"
	"fmt"
)

// EmbeddingBackfiller computes embeddings for entries that are missing them.
type EmbeddingBackfiller interface {
	EnsureAllEmbeddings(ctx context.Context) error
}

// EmbeddingBackfillSweeper drives the embedding backfill from the worker
// loop. It picks up entries whose fire-and-forget embed after a write was
// lost (process restart, provider outage) so the index converges without
// manual intervention.
type EmbeddingBackfillSweeper struct {
	backfiller EmbeddingBackfiller
}

// NewEmbeddingBackfillSweeper creates an EmbeddingBackfillSweeper
func NewEmbeddingBackfillSweeper(backfiller EmbeddingBackfiller) *EmbeddingBackfillSweeper {
	return &EmbeddingBackfillSweeper{backfiller: backfiller}
}

// Sweep implements the Sweeper interface
func (s *EmbeddingBackfillSweeper) Sweep(ctx context.Context) error {
	if err := s.backfiller.EnsureAllEmbeddings(ctx); err != nil {
		return fmt.Errorf("embedding backfill: %w", err)
	}
	return nil
}
