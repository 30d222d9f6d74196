//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindred-health/kindred/internal/domain"
	"github.com/kindred-health/kindred/internal/testutil"
)

func newDBEntry(title string) *domain.KnowledgeEntry {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.KnowledgeEntry{
		ID:        uuid.NewString(),
		Expert:    "Dr. Robert Laitman",
		Source:    "Meaningful Recovery",
		SourceURL: "https://example.org/meaningful-recovery",
		Category:  "medication",
		Title:     title,
		Content:   "Clozapine remains the most effective antipsychotic for treatment-resistant schizophrenia.",
		Keywords:  []string{"clozapine", "medication"},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestKnowledgeRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewKnowledgeRepository(pool)

	entry := newDBEntry("Clozapine basics")
	require.NoError(t, repo.Create(ctx, entry))

	got, err := repo.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, entry.Expert, got.Expert)
	assert.Equal(t, entry.SourceURL, got.SourceURL)
	assert.Equal(t, entry.Keywords, got.Keywords)
	assert.False(t, got.HasEmbedding())
}

func TestKnowledgeRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewKnowledgeRepository(pool)

	_, err := repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestKnowledgeRepository_EmbeddingLifecycle(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewKnowledgeRepository(pool)

	entry := newDBEntry("Embedding lifecycle")
	require.NoError(t, repo.Create(ctx, entry))

	missing, err := repo.ListMissingEmbeddings(ctx, 10)
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, entry.ID, missing[0].ID)

	vector := make([]float32, 768)
	vector[0] = 1
	require.NoError(t, repo.UpdateEmbedding(ctx, entry.ID, vector))

	missing, err = repo.ListMissingEmbeddings(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, missing)

	got, err := repo.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	require.True(t, got.HasEmbedding())
	assert.InDelta(t, 1.0, got.Embedding[0], 1e-6)
	assert.Len(t, got.Embedding, 768)
}

func TestKnowledgeRepository_Update_ClearsEmbedding(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewKnowledgeRepository(pool)

	entry := newDBEntry("Before edit")
	require.NoError(t, repo.Create(ctx, entry))

	vector := make([]float32, 768)
	vector[0] = 1
	require.NoError(t, repo.UpdateEmbedding(ctx, entry.ID, vector))

	entry.Title = "After edit"
	entry.Content = "Revised guidance on clozapine titration."
	require.NoError(t, repo.Update(ctx, entry))

	got, err := repo.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "After edit", got.Title)
	assert.False(t, got.HasEmbedding())
}

func TestKnowledgeRepository_Update_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewKnowledgeRepository(pool)

	entry := newDBEntry("Ghost")
	err := repo.Update(ctx, entry)
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestKnowledgeRepository_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewKnowledgeRepository(pool)

	first := newDBEntry("First entry")
	second := newDBEntry("Second entry")
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first.ID, entries[0].ID)
	assert.Equal(t, second.ID, entries[1].ID)

	require.NoError(t, repo.Delete(ctx, first.ID))

	entries, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, second.ID, entries[0].ID)

	assert.ErrorIs(t, repo.Delete(ctx, first.ID), domain.ErrEntryNotFound)
}
