package service

import (
	"context"
	"log"

	"github.com/kindred-health/kindred/internal/domain"
)

// GenerationClient produces a chat completion from a system prompt, prior
// conversation turns and the user's message.
type GenerationClient interface {
	GenerateText(ctx context.Context, systemPrompt string, history []domain.ChatTurn, message string) (string, error)
}

// FailoverGenerator tries a primary provider and falls back to a secondary
// when the primary fails. Either provider may be nil.
type FailoverGenerator struct {
	primary  GenerationClient
	fallback GenerationClient
}

// NewFailoverGenerator creates a FailoverGenerator
func NewFailoverGenerator(primary, fallback GenerationClient) *FailoverGenerator {
	return &FailoverGenerator{primary: primary, fallback: fallback}
}

// GenerateText returns the primary provider's completion, falling back to
// the secondary on failure. Returns ErrNoGenerator when no provider is
// configured.
func (g *FailoverGenerator) GenerateText(ctx context.Context, systemPrompt string, history []domain.ChatTurn, message string) (string, error) {
	if g.primary == nil && g.fallback == nil {
		return "", domain.ErrNoGenerator
	}

	if g.primary != nil {
		text, err := g.primary.GenerateText(ctx, systemPrompt, history, message)
		if err == nil {
			return text, nil
		}
		if g.fallback == nil {
			return "", err
		}
		log.Printf("primary generation provider failed, using fallback: %v", err)
	}

	return g.fallback.GenerateText(ctx, systemPrompt, history, message)
}
