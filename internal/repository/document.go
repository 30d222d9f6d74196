package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kindred-health/kindred/internal/domain"
)

type DocumentRepository struct {
	db dbtx
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

func NewDocumentRepositoryWithTx(tx pgx.Tx) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO documents (id, filename, content_type, size_bytes, category, is_emergency, status, storage_key, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		d.ID, d.Filename, d.ContentType, d.SizeBytes, d.Category, d.IsEmergency, d.Status, nullableString(d.StorageKey), d.CreatedAt,
	)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	var d domain.Document
	var storageKey *string
	err := r.db.QueryRow(ctx,
		`SELECT id, filename, content_type, size_bytes, category, is_emergency, status, storage_key, created_at
		 FROM documents WHERE id = $1`,
		id,
	).Scan(&d.ID, &d.Filename, &d.ContentType, &d.SizeBytes, &d.Category, &d.IsEmergency, &d.Status, &storageKey, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	if storageKey != nil {
		d.StorageKey = *storageKey
	}
	return &d, nil
}

func (r *DocumentRepository) List(ctx context.Context) ([]*domain.Document, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, filename, content_type, size_bytes, category, is_emergency, status, storage_key, created_at
		 FROM documents ORDER BY created_at DESC, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.Document
	for rows.Next() {
		var d domain.Document
		var storageKey *string
		if err := rows.Scan(&d.ID, &d.Filename, &d.ContentType, &d.SizeBytes, &d.Category, &d.IsEmergency, &d.Status, &storageKey, &d.CreatedAt); err != nil {
			return nil, err
		}
		if storageKey != nil {
			d.StorageKey = *storageKey
		}
		results = append(results, &d)
	}
	return results, rows.Err()
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, storageKey string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE documents SET status = $1, storage_key = $2 WHERE id = $3`,
		status, nullableString(storageKey), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM documents WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}
