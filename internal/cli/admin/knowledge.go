package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/kindred-health/kindred/internal/config"
	"github.com/kindred-health/kindred/internal/database"
	"github.com/kindred-health/kindred/internal/gemini"
	"github.com/kindred-health/kindred/internal/repository"
	"github.com/kindred-health/kindred/internal/service"
)

func KnowledgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knowledge",
		Short: "Manage the knowledge base",
		Long:  "Seed, list, and embed curated knowledge entries",
	}

	cmd.AddCommand(KnowledgeSeedCmd())
	cmd.AddCommand(KnowledgeListCmd())
	cmd.AddCommand(KnowledgeEmbedCmd())

	return cmd
}

func KnowledgeSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the starter knowledge corpus",
		Long:  "Populate an empty knowledge base with the curated starter entries",
		RunE:  runKnowledgeSeed,
	}
}

func runKnowledgeSeed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	knowledgeRepo := repository.NewKnowledgeRepository(pool)
	seeder := service.NewKnowledgeSeeder(knowledgeRepo)

	if err := seeder.Seed(ctx); err != nil {
		return fmt.Errorf("failed to seed knowledge base: %w", err)
	}

	entries, err := knowledgeRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list knowledge entries: %w", err)
	}

	fmt.Printf("Knowledge base ready (%d entries)\n", len(entries))
	return nil
}

func KnowledgeListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List knowledge entries",
		Long:  "List all knowledge entries in the knowledge base",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runKnowledgeList(outputFormat)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runKnowledgeList(outputFormat string) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	knowledgeRepo := repository.NewKnowledgeRepository(pool)

	entries, err := knowledgeRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list knowledge entries: %w", err)
	}

	if outputFormat == "json" {
		data := make([]map[string]interface{}, len(entries))
		for i, entry := range entries {
			data[i] = map[string]interface{}{
				"id":            entry.ID,
				"expert":        entry.Expert,
				"category":      entry.Category,
				"title":         entry.Title,
				"has_embedding": entry.HasEmbedding(),
				"created_at":    entry.CreatedAt,
			}
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		if len(entries) == 0 {
			fmt.Println("No knowledge entries found")
			return nil
		}
		fmt.Println("Knowledge entries:")
		for _, entry := range entries {
			embedded := " "
			if entry.HasEmbedding() {
				embedded = "*"
			}
			fmt.Printf("  [%s] %s: %s (%s / %s)\n", embedded, entry.ID, entry.Title, entry.Expert, entry.Category)
		}
		fmt.Println("\nEntries marked * have a stored embedding")
	}

	return nil
}

func KnowledgeEmbedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "embed",
		Short: "Backfill missing embeddings",
		Long:  "Generate embeddings for knowledge entries that have none",
		RunE:  runKnowledgeEmbed,
	}
}

func runKnowledgeEmbed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.HasGemini() {
		return fmt.Errorf("KINDRED_GOOGLE_API_KEY is required to generate embeddings")
	}

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	geminiClient, err := gemini.NewClient(ctx, cfg.GoogleAPIKey)
	if err != nil {
		return fmt.Errorf("failed to create gemini client: %w", err)
	}

	knowledgeRepo := repository.NewKnowledgeRepository(pool)
	embeddingSvc := service.NewEmbeddingService(geminiClient, knowledgeRepo)

	if err := embeddingSvc.EnsureAllEmbeddings(ctx); err != nil {
		return fmt.Errorf("failed to backfill embeddings: %w", err)
	}

	fmt.Println("Embedding backfill complete")
	return nil
}

func getDBPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return pool, nil
}
