package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/kindred-health/kindred/internal/api/handlers"
	"github.com/kindred-health/kindred/internal/config"
	"github.com/kindred-health/kindred/internal/database"
	"github.com/kindred-health/kindred/internal/gemini"
	"github.com/kindred-health/kindred/internal/jobs"
	"github.com/kindred-health/kindred/internal/openai"
	"github.com/kindred-health/kindred/internal/repository"
	"github.com/kindred-health/kindred/internal/server"
	"github.com/kindred-health/kindred/internal/service"
	"github.com/kindred-health/kindred/internal/storage"
	"github.com/kindred-health/kindred/internal/telemetry"
)

const backfillInterval = 5 * time.Minute

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the kindred API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.SentryDSN != "" {
		sampleRate := 0.1
		if cfg.Environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	knowledgeRepo := repository.NewKnowledgeRepository(pool)
	documentRepo := repository.NewDocumentRepository(pool)

	var vault service.ObjectStore
	if cfg.HasS3() {
		store, err := storage.NewVaultStore(ctx, storage.VaultStoreConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create vault store: %w", err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure vault bucket: %w", err)
		}
		log.Printf("vault bucket '%s' ready", cfg.S3Bucket)
		vault = store
	}

	var embedder service.EmbeddingClient
	var generatorPrimary service.GenerationClient
	if cfg.HasGemini() {
		geminiClient, err := gemini.NewClient(ctx, cfg.GoogleAPIKey)
		if err != nil {
			return fmt.Errorf("failed to create gemini client: %w", err)
		}
		embedder = geminiClient
		generatorPrimary = geminiClient
	} else {
		embedder = &unconfiguredEmbedder{}
		log.Println("no Gemini API key set, semantic retrieval disabled")
	}

	var generatorFallback service.GenerationClient
	if cfg.HasOpenAI() {
		generatorFallback = openai.NewChatClient(cfg.OpenAIAPIKey)
	}
	generator := service.NewFailoverGenerator(generatorPrimary, generatorFallback)

	var dispatcher service.EmbeddingDispatcher = service.NoopEmbeddingDispatcher{}
	var backfiller service.Backfiller = &unconfiguredBackfiller{}
	var backfillWorker *jobs.Worker
	if cfg.HasGemini() {
		embeddingSvc := service.NewEmbeddingService(embedder, knowledgeRepo)
		dispatcher = service.NewAsyncEmbeddingDispatcher(embeddingSvc)
		backfiller = embeddingSvc

		backfillWorker = jobs.NewWorker(jobs.NewEmbeddingBackfillSweeper(embeddingSvc), backfillInterval)
		go backfillWorker.Start(ctx)
		log.Println("embedding backfill worker started")
	}

	seeder := service.NewKnowledgeSeeder(knowledgeRepo)
	initializer := service.NewInitializer(seeder, backfiller)
	if err := initializer.Ensure(ctx); err != nil {
		log.Printf("knowledge base initialization failed (will retry on first chat): %v", err)
	}

	knowledgeSvc := service.NewKnowledgeService(knowledgeRepo, dispatcher)
	chatSvc := service.NewChatService(knowledgeRepo, service.NewRetrievalRouter(embedder), generator, initializer)
	searchSvc := service.NewSearchService(knowledgeRepo, service.NewKeywordScorer())
	documentSvc := service.NewDocumentService(documentRepo, vault)

	router := server.NewRouter(server.RouterConfig{
		AdminToken:       cfg.AdminToken,
		ChatHandler:      handlers.NewChatHandler(chatSvc),
		SearchHandler:    handlers.NewSearchHandler(searchSvc),
		KnowledgeHandler: handlers.NewKnowledgeHandler(knowledgeSvc),
		DocumentHandler:  handlers.NewDocumentHandler(documentSvc),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if backfillWorker != nil {
		backfillWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// unconfiguredEmbedder stands in when no embedding provider is set up. Its
// errors make the retrieval router fall back to general AI responses.
type unconfiguredEmbedder struct{}

func (*unconfiguredEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("embedding provider not configured: KINDRED_GOOGLE_API_KEY required")
}

type unconfiguredBackfiller struct{}

func (*unconfiguredBackfiller) EnsureAllEmbeddings(ctx context.Context) error {
	return nil
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", upErr)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	return reportMigrationOutcome(log.Printf, upErr, err, version, dirty)
}

// reportMigrationOutcome logs where the schema landed after an Up run.
// upErr is migrate.ErrNoChange when the schema was already current, nil when
// migrations ran; versionErr is migrate.ErrNilVersion on an empty schema.
func reportMigrationOutcome(logf func(string, ...any), upErr, versionErr error, version uint, dirty bool) error {
	switch {
	case versionErr == migrate.ErrNilVersion:
		logf("migrations: database is up to date (no migrations applied)")
	case dirty:
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	case upErr == migrate.ErrNoChange:
		logf("migrations: database is up to date (version %d)", version)
	default:
		logf("migrations: applied successfully (version %d)", version)
	}
	return nil
}
