package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresImage = "pgvector/pgvector:0.8.1-pg18"
	objectImage   = "rustfs/rustfs:latest"

	testDBUser     = "kindred"
	testDBPassword = "kindred"
	testDBName     = "kindred"

	testObjectAccessKey = "rustfsadmin"
	testObjectSecretKey = "rustfsadmin"
)

// PostgresContainer is a throwaway pgvector-enabled Postgres for tests
type PostgresContainer struct {
	Container testcontainers.Container
	Host      string
	Port      string
}

// NewPostgresContainer starts a Postgres container with the pgvector extension available
func NewPostgresContainer(ctx context.Context, t *testing.T) *PostgresContainer {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     testDBUser,
			"POSTGRES_PASSWORD": testDBPassword,
			"POSTGRES_DB":       testDBName,
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("resolve postgres host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("resolve postgres port: %v", err)
	}

	return &PostgresContainer{Container: container, Host: host, Port: port.Port()}
}

// ConnectionString returns a DSN for the running container
func (pc *PostgresContainer) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		testDBUser, testDBPassword, pc.Host, pc.Port, testDBName)
}

// Terminate stops and removes the container
func (pc *PostgresContainer) Terminate(ctx context.Context) error {
	return testcontainers.TerminateContainer(pc.Container)
}

// ObjectStoreContainer is an S3-compatible object store for vault tests
type ObjectStoreContainer struct {
	Container testcontainers.Container
	Host      string
	Port      string
	AccessKey string
	SecretKey string
}

// NewObjectStoreContainer starts a RustFS container for exercising the document vault
func NewObjectStoreContainer(ctx context.Context, t *testing.T) *ObjectStoreContainer {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        objectImage,
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"RUSTFS_ACCESS_KEY": testObjectAccessKey,
			"RUSTFS_SECRET_KEY": testObjectSecretKey,
		},
		WaitingFor: wait.ForListeningPort("9000/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start object store container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("resolve object store host: %v", err)
	}
	port, err := container.MappedPort(ctx, "9000")
	if err != nil {
		t.Fatalf("resolve object store port: %v", err)
	}

	return &ObjectStoreContainer{
		Container: container,
		Host:      host,
		Port:      port.Port(),
		AccessKey: testObjectAccessKey,
		SecretKey: testObjectSecretKey,
	}
}

// Endpoint returns the object store endpoint URL
func (oc *ObjectStoreContainer) Endpoint() string {
	return fmt.Sprintf("http://%s:%s", oc.Host, oc.Port)
}

// Terminate stops and removes the container
func (oc *ObjectStoreContainer) Terminate(ctx context.Context) error {
	return testcontainers.TerminateContainer(oc.Container)
}

// NewTestPool connects to the test container with retries and applies migrations
func NewTestPool(ctx context.Context, t *testing.T, pc *PostgresContainer, migrationsDir string) *pgxpool.Pool {
	t.Helper()

	var pool *pgxpool.Pool
	var err error
	for attempt := 0; attempt < 5; attempt++ {
		pool, err = pgxpool.New(ctx, pc.ConnectionString())
		if err == nil {
			if pingErr := pool.Ping(ctx); pingErr == nil {
				break
			}
			pool.Close()
		}
		time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("connect to test database: %v", err)
	}

	if err := ApplyMigrations(ctx, pool, migrationsDir); err != nil {
		pool.Close()
		t.Fatalf("apply migrations: %v", err)
	}

	return pool
}

// ApplyMigrations executes every *.up.sql file in the directory in lexical order
func ApplyMigrations(ctx context.Context, pool *pgxpool.Pool, migrationsDir string) error {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		sql, err := os.ReadFile(filepath.Join(migrationsDir, name))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}

	return nil
}

// TruncateAll empties every table between tests
func TruncateAll(ctx context.Context, pool *pgxpool.Pool) error {
	tables := []string{
		"documents",
		"knowledge_entries",
	}

	for _, table := range tables {
		if _, err := pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}

	return nil
}
