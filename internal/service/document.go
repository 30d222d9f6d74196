package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kindred-health/kindred/internal/domain"
)

// DocumentRepositoryInterface defines the repository interface for vault
// document metadata.
type DocumentRepositoryInterface interface {
	Create(ctx context.Context, d *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, storageKey string) error
	Delete(ctx context.Context, id string) error
}

// ObjectStore defines the object storage interface for document bodies.
type ObjectStore interface {
	PresignUpload(ctx context.Context, key string, contentType string) (string, error)
	PresignDownload(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CreateDocumentInput is the input for registering a vault document.
type CreateDocumentInput struct {
	Filename    string
	ContentType string
	SizeBytes   int64
	Category    string
	IsEmergency bool
}

// DocumentUploadTicket pairs a registered document with its presigned
// upload URL.
type DocumentUploadTicket struct {
	Document  *domain.Document
	UploadURL string
}

// DocumentService manages the family document vault: metadata in the
// relational store, bodies in object storage.
type DocumentService struct {
	repo    DocumentRepositoryInterface
	store   ObjectStore
	uuidGen UUIDGenerator
}

// NewDocumentService creates a DocumentService. store may be nil when no
// object storage is configured; vault operations then fail with
// ErrVaultNotConfigured.
func NewDocumentService(repo DocumentRepositoryInterface, store ObjectStore) *DocumentService {
	return &DocumentService{repo: repo, store: store, uuidGen: &DefaultUUIDGenerator{}}
}

// NewDocumentServiceWithUUIDGen creates a DocumentService with a custom UUID generator (for testing)
func NewDocumentServiceWithUUIDGen(repo DocumentRepositoryInterface, store ObjectStore, uuidGen UUIDGenerator) *DocumentService {
	return &DocumentService{repo: repo, store: store, uuidGen: uuidGen}
}

// Register records a pending document and returns a presigned URL the
// client uploads the body to.
func (s *DocumentService) Register(ctx context.Context, input CreateDocumentInput) (*DocumentUploadTicket, error) {
	if s.store == nil {
		return nil, domain.ErrVaultNotConfigured
	}
	if input.Filename == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "document filename is required")
	}

	id := s.uuidGen.NewString()
	doc := &domain.Document{
		ID:          id,
		Filename:    input.Filename,
		ContentType: input.ContentType,
		SizeBytes:   input.SizeBytes,
		Category:    input.Category,
		IsEmergency: input.IsEmergency,
		Status:      domain.DocumentStatusPending,
		StorageKey:  fmt.Sprintf("vault/%s/%s", id, input.Filename),
		CreatedAt:   time.Now().UTC(),
	}

	if err := domain.ValidateDocument(doc); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid document", err)
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	uploadURL, err := s.store.PresignUpload(ctx, doc.StorageKey, doc.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &DocumentUploadTicket{Document: doc, UploadURL: uploadURL}, nil
}

// ConfirmUpload verifies the body exists in object storage and marks the
// document uploaded.
func (s *DocumentService) ConfirmUpload(ctx context.Context, id string) (*domain.Document, error) {
	if s.store == nil {
		return nil, domain.ErrVaultNotConfigured
	}

	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.store.Exists(ctx, doc.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to check object: %w", err)
	}
	if !exists {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "document body has not been uploaded")
	}

	if err := s.repo.UpdateStatus(ctx, id, domain.DocumentStatusUploaded, doc.StorageKey); err != nil {
		return nil, err
	}
	doc.Status = domain.DocumentStatusUploaded
	return doc, nil
}

// DownloadURL returns a presigned URL for an uploaded document's body.
func (s *DocumentService) DownloadURL(ctx context.Context, id string) (string, error) {
	if s.store == nil {
		return "", domain.ErrVaultNotConfigured
	}

	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if doc.Status != domain.DocumentStatusUploaded {
		return "", domain.NewDomainError(domain.ErrCodeValidation, "document body has not been uploaded")
	}

	return s.store.PresignDownload(ctx, doc.StorageKey)
}

// List returns all vault documents, newest first.
func (s *DocumentService) List(ctx context.Context) ([]*domain.Document, error) {
	return s.repo.List(ctx)
}

// Delete removes a document's metadata and, when possible, its body.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if s.store != nil && doc.StorageKey != "" {
		if err := s.store.Delete(ctx, doc.StorageKey); err != nil {
			return fmt.Errorf("failed to delete document body: %w", err)
		}
	}

	return s.repo.Delete(ctx, id)
}
