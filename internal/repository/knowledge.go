package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/kindred-health/kindred/internal/domain"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type KnowledgeRepository struct {
	db dbtx
}

func NewKnowledgeRepository(pool *pgxpool.Pool) *KnowledgeRepository {
	return &KnowledgeRepository{db: pool}
}

func NewKnowledgeRepositoryWithTx(tx pgx.Tx) *KnowledgeRepository {
	return &KnowledgeRepository{db: tx}
}

func (r *KnowledgeRepository) Create(ctx context.Context, k *domain.KnowledgeEntry) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO knowledge_entries (id, expert, source, source_url, category, title, content, keywords, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		k.ID, k.Expert, k.Source, nullableString(k.SourceURL), k.Category, k.Title, k.Content, k.Keywords, k.CreatedAt, k.UpdatedAt,
	)
	return err
}

func (r *KnowledgeRepository) GetByID(ctx context.Context, id string) (*domain.KnowledgeEntry, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, expert, source, source_url, category, title, content, keywords, embedding, created_at, updated_at
		 FROM knowledge_entries WHERE id = $1`,
		id,
	)
	entry, err := scanKnowledgeEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (r *KnowledgeRepository) List(ctx context.Context) ([]*domain.KnowledgeEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, expert, source, source_url, category, title, content, keywords, embedding, created_at, updated_at
		 FROM knowledge_entries ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.KnowledgeEntry
	for rows.Next() {
		entry, err := scanKnowledgeEntry(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entry)
	}
	return results, rows.Err()
}

// Update persists the entry's editable fields and clears the stored
// embedding, which is stale once content changes.
func (r *KnowledgeRepository) Update(ctx context.Context, k *domain.KnowledgeEntry) error {
	k.UpdatedAt = time.Now().UTC()
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE knowledge_entries
		 SET expert = $1, source = $2, source_url = $3, category = $4, title = $5, content = $6, keywords = $7, embedding = NULL, updated_at = $8
		 WHERE id = $9`,
		k.Expert, k.Source, nullableString(k.SourceURL), k.Category, k.Title, k.Content, k.Keywords, k.UpdatedAt, k.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}

func (r *KnowledgeRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM knowledge_entries WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}

func (r *KnowledgeRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE knowledge_entries SET embedding = $1, updated_at = $2 WHERE id = $3`,
		pgvector.NewVector(embedding), time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}

// ListMissingEmbeddings returns entries whose embedding has not been
// computed yet, oldest first.
func (r *KnowledgeRepository) ListMissingEmbeddings(ctx context.Context, limit int) ([]*domain.KnowledgeEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, expert, source, source_url, category, title, content, keywords, embedding, created_at, updated_at
		 FROM knowledge_entries WHERE embedding IS NULL ORDER BY created_at, id LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.KnowledgeEntry
	for rows.Next() {
		entry, err := scanKnowledgeEntry(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entry)
	}
	return results, rows.Err()
}

func scanKnowledgeEntry(row pgx.Row) (*domain.KnowledgeEntry, error) {
	var k domain.KnowledgeEntry
	var sourceURL *string
	var embedding *pgvector.Vector
	if err := row.Scan(&k.ID, &k.Expert, &k.Source, &sourceURL, &k.Category, &k.Title, &k.Content, &k.Keywords, &embedding, &k.CreatedAt, &k.UpdatedAt); err != nil {
		return nil, err
	}
	if sourceURL != nil {
		k.SourceURL = *sourceURL
	}
	if embedding != nil {
		k.Embedding = embedding.Slice()
	}
	return &k, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
