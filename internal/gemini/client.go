package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/kindred-health/kindred/internal/domain"
	"google.golang.org/genai"
)

const (
	// DefaultEmbeddingModel is the Gemini model used for generating embeddings
	DefaultEmbeddingModel = "text-embedding-004"
	// DefaultEmbeddingDimensions is the expected dimension of embeddings from text-embedding-004
	DefaultEmbeddingDimensions = 768
	// DefaultChatModel is the Gemini model used for chat generation
	DefaultChatModel = "gemini-2.0-flash"
)

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when an embedding has unexpected dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions, expected 768")
	// ErrNoAPIKey is returned when the Google API key is not set
	ErrNoAPIKey = errors.New("GOOGLE_API_KEY environment variable not set")
)

// API defines the Gemini calls the client depends on
type API interface {
	EmbedContent(ctx context.Context, text string) ([]float32, error)
	GenerateContent(ctx context.Context, systemPrompt string, history []domain.ChatTurn, message string) (string, error)
}

// Client wraps the Gemini API for embeddings and chat generation
type Client struct {
	api        API
	dimensions int
}

// GenaiAdapter adapts google.golang.org/genai to the API interface
type GenaiAdapter struct {
	client         *genai.Client
	embeddingModel string
	chatModel      string
}

// NewGenaiAdapter creates a GenaiAdapter backed by the Gemini API
func NewGenaiAdapter(ctx context.Context, apiKey, embeddingModel, chatModel string) (*GenaiAdapter, error) {
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}
	if chatModel == "" {
		chatModel = DefaultChatModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GenaiAdapter{
		client:         client,
		embeddingModel: embeddingModel,
		chatModel:      chatModel,
	}, nil
}

// EmbedContent calls the Gemini embedding API
func (a *GenaiAdapter) EmbedContent(ctx context.Context, text string) ([]float32, error) {
	resp, err := a.client.Models.EmbedContent(ctx, a.embeddingModel, genai.Text(text), nil)
	if err != nil {
		return nil, err
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	return resp.Embeddings[0].Values, nil
}

// toGenaiRole maps a conversation role onto the Gemini role vocabulary.
// Gemini calls the assistant side "model".
func toGenaiRole(role domain.ChatRole) genai.Role {
	if role == domain.ChatRoleAssistant {
		return genai.RoleModel
	}
	return genai.RoleUser
}

// GenerateContent calls the Gemini chat API with a system instruction and
// the prior conversation turns.
func (a *GenaiAdapter) GenerateContent(ctx context.Context, systemPrompt string, history []domain.ChatTurn, message string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		contents = append(contents, genai.NewContentFromText(turn.Content, toGenaiRole(turn.Role)))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	var config *genai.GenerateContentConfig
	if systemPrompt != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		}
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.chatModel, contents, config)
	if err != nil {
		return "", err
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("no content returned")
	}

	return text, nil
}

// Config holds Gemini client configuration
type Config struct {
	APIKey              string
	EmbeddingModel      string
	ChatModel           string
	EmbeddingDimensions int
}

// NewClient creates a new Gemini client using defaults.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	return NewClientWithConfig(ctx, Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new Gemini client with explicit configuration.
func NewClientWithConfig(ctx context.Context, cfg Config) (*Client, error) {
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}

	adapter, err := NewGenaiAdapter(ctx, cfg.APIKey, cfg.EmbeddingModel, cfg.ChatModel)
	if err != nil {
		return nil, err
	}

	return &Client{
		api:        adapter,
		dimensions: dimensions,
	}, nil
}

// NewClientFromEnv creates a new Gemini client using the GOOGLE_API_KEY environment variable
func NewClientFromEnv(ctx context.Context) (*Client, error) {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(ctx, apiKey)
}

// NewClientWithAPI creates a Client with a custom API implementation (for testing)
func NewClientWithAPI(api API, dimensions int) *Client {
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	return &Client{api: api, dimensions: dimensions}
}

// GenerateEmbedding generates an embedding for the given text
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	embedding, err := c.api.EmbedContent(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	if len(embedding) != c.dimensions {
		return nil, ErrWrongDimensions
	}

	return embedding, nil
}

// GenerateText generates a chat response grounded in the given system prompt
func (c *Client) GenerateText(ctx context.Context, systemPrompt string, history []domain.ChatTurn, message string) (string, error) {
	if message == "" {
		return "", ErrEmptyText
	}

	text, err := c.api.GenerateContent(ctx, systemPrompt, history, message)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return text, nil
}
