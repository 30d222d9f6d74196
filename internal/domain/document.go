package domain

import (
	"fmt"
	"time"
)

// DocumentStatus represents the upload lifecycle of a vault document
type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusUploaded DocumentStatus = "uploaded"
)

// Document represents a file stored in the family document vault.
// The object body lives in S3-compatible storage; this is the metadata row.
type Document struct {
	ID          string
	Filename    string
	ContentType string
	SizeBytes   int64
	Category    string
	IsEmergency bool
	Status      DocumentStatus
	StorageKey  string
	CreatedAt   time.Time
}

// ValidateDocument validates a Document instance
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}

	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	if d.Filename == "" {
		return fmt.Errorf("document Filename is required")
	}

	if d.StorageKey == "" {
		return fmt.Errorf("document StorageKey is required")
	}

	if !isValidDocumentStatus(d.Status) {
		return fmt.Errorf("document Status is invalid: %s", d.Status)
	}

	return nil
}

func isValidDocumentStatus(s DocumentStatus) bool {
	switch s {
	case DocumentStatusPending, DocumentStatusUploaded:
		return true
	}
	return false
}
