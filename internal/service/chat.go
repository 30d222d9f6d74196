package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/kindred-health/kindred/internal/domain"
)

// maxFileContentChars bounds how much attached document text is forwarded
// to the model.
const maxFileContentChars = 15000

// truncationNotice tells the model the attached document was cut off, so it
// does not treat the end of the excerpt as the end of the document.
const truncationNotice = "\n\n[Document truncated due to length...]"

// RespondInput is the input for a chat turn.
type RespondInput struct {
	Message     string
	History     []domain.ChatTurn
	FileContent string
	FileName    string
}

// ChatResult is the outcome of a chat turn.
type ChatResult struct {
	Response            string
	Source              domain.ResponseSource
	Sources             []domain.Citation
	UsedExpertKnowledge bool
}

// ChatService answers user messages, grounding responses in the expert
// knowledge base when retrieval confidence is high enough.
type ChatService struct {
	repo        KnowledgeRepositoryInterface
	router      *RetrievalRouter
	generator   GenerationClient
	initializer *Initializer
}

// NewChatService creates a ChatService
func NewChatService(repo KnowledgeRepositoryInterface, router *RetrievalRouter, generator GenerationClient, initializer *Initializer) *ChatService {
	return &ChatService{
		repo:        repo,
		router:      router,
		generator:   generator,
		initializer: initializer,
	}
}

// Respond answers a user message. The knowledge base is consulted first;
// when no entry matches with enough confidence the model answers from its
// general knowledge instead.
func (s *ChatService) Respond(ctx context.Context, input RespondInput) (*ChatResult, error) {
	message := strings.TrimSpace(input.Message)
	fileContent := truncateFileContent(input.FileContent)

	if message == "" && fileContent == "" {
		return nil, domain.ErrEmptyMessage
	}

	if s.initializer != nil {
		if err := s.initializer.Ensure(ctx); err != nil {
			log.Printf("knowledge base initialization failed: %v", err)
		}
	}

	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge entries: %w", err)
	}

	decision := s.router.Route(ctx, message, entries)

	systemPrompt := GeneralAISystemPrompt
	if decision.UsedExpertKnowledge {
		systemPrompt = KnowledgeBaseSystemPrompt + "\n\n" + FormatKnowledgeForPrompt(decision.Entries)
	}

	response, err := s.generator.GenerateText(ctx, systemPrompt, input.History, buildModelMessage(message, fileContent, input.FileName))
	if err != nil {
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}

	return &ChatResult{
		Response:            response,
		Source:              decision.ResponseSource,
		Sources:             decision.Sources(),
		UsedExpertKnowledge: decision.UsedExpertKnowledge,
	}, nil
}

// truncateFileContent caps attached document text at maxFileContentChars,
// cutting on a rune boundary and appending a notice so the model knows the
// document continues past the excerpt.
func truncateFileContent(content string) string {
	if len(content) <= maxFileContentChars {
		return content
	}
	cut := maxFileContentChars
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + truncationNotice
}

func buildModelMessage(message, fileContent, fileName string) string {
	if fileContent == "" {
		return message
	}

	var b strings.Builder
	if message != "" {
		b.WriteString(message)
		b.WriteString("\n\n")
	}
	b.WriteString("--- Attached Document")
	if fileName != "" {
		b.WriteString(" (")
		b.WriteString(fileName)
		b.WriteString(")")
	}
	b.WriteString(" ---\n")
	b.WriteString(fileContent)
	return b.String()
}
