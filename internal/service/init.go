package service

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// Seeder populates the knowledge store with the starter corpus.
type Seeder interface {
	Seed(ctx context.Context) error
}

// Backfiller generates embeddings for entries that are missing them.
type Backfiller interface {
	EnsureAllEmbeddings(ctx context.Context) error
}

// Initializer runs the startup sequence for the knowledge base: seed the
// starter corpus, then backfill embeddings. Each step is recorded as done
// only after it succeeds, so a failed startup can be retried without
// repeating completed work.
type Initializer struct {
	seeder     Seeder
	backfiller Backfiller

	mu       sync.Mutex
	seeded   bool
	embedded bool
}

// NewInitializer creates an Initializer
func NewInitializer(seeder Seeder, backfiller Backfiller) *Initializer {
	return &Initializer{seeder: seeder, backfiller: backfiller}
}

// Ensure runs any startup steps that have not yet completed. Safe for
// concurrent use; callers block until the sequence finishes.
func (i *Initializer) Ensure(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.seeded {
		if err := i.seeder.Seed(ctx); err != nil {
			return fmt.Errorf("failed to seed knowledge base: %w", err)
		}
		i.seeded = true
	}

	if !i.embedded {
		if err := i.backfiller.EnsureAllEmbeddings(ctx); err != nil {
			// Semantic retrieval degrades until embeddings exist, so
			// startup continues.
			log.Printf("embedding backfill incomplete, will retry: %v", err)
			return nil
		}
		i.embedded = true
	}

	return nil
}
