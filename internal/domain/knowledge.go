package domain

import (
	"fmt"
	"time"
)

// KnowledgeEntry represents a curated expert knowledge base entry.
// Category is a free-text tag used for soft scoring boosts, not an enum.
type KnowledgeEntry struct {
	ID        string
	Expert    string
	Source    string
	SourceURL string
	Category  string
	Title     string
	Content   string
	Keywords  []string
	// Embedding is derived data, computed lazily from the entry's text
	// fields. Entries without one are excluded from semantic search.
	Embedding []float32
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasEmbedding reports whether the entry can participate in semantic search.
func (k *KnowledgeEntry) HasEmbedding() bool {
	return len(k.Embedding) > 0
}

// NewKnowledgeEntry creates a new KnowledgeEntry instance
func NewKnowledgeEntry(
	id, expert, source, sourceURL, category, title, content string,
	keywords []string,
	createdAt, updatedAt time.Time,
) *KnowledgeEntry {
	return &KnowledgeEntry{
		ID:        id,
		Expert:    expert,
		Source:    source,
		SourceURL: sourceURL,
		Category:  category,
		Title:     title,
		Content:   content,
		Keywords:  keywords,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// ValidateKnowledgeEntry validates a KnowledgeEntry instance
func ValidateKnowledgeEntry(k *KnowledgeEntry) error {
	if k == nil {
		return fmt.Errorf("knowledge entry cannot be nil")
	}

	if k.ID == "" {
		return fmt.Errorf("knowledge entry ID is required")
	}

	if k.Expert == "" {
		return fmt.Errorf("knowledge entry Expert is required")
	}

	if k.Source == "" {
		return fmt.Errorf("knowledge entry Source is required")
	}

	if k.Category == "" {
		return fmt.Errorf("knowledge entry Category is required")
	}

	if k.Title == "" {
		return fmt.Errorf("knowledge entry Title is required")
	}

	if k.Content == "" {
		return fmt.Errorf("knowledge entry Content is required")
	}

	return nil
}
