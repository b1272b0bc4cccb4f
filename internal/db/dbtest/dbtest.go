// Package dbtest provides a migrated PostgreSQL database for repository tests.
//
// Packages using it call Main from TestMain so a container started for the
// test binary is terminated when the tests finish:
//
//	func TestMain(m *testing.M) { dbtest.Main(m) }
package dbtest

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ideaforge/ideaforge/internal/db"
)

var (
	containerOnce sync.Once
	container     testcontainers.Container
	containerURL  string
	containerErr  error
)

// Main runs the tests and then terminates the postgres container, if one was
// started, before exiting with the tests' status.
func Main(m *testing.M) {
	code := m.Run()
	if err := terminate(); err != nil {
		log.Printf("dbtest: terminating postgres container: %v", err)
	}
	os.Exit(code)
}

func terminate() error {
	return testcontainers.TerminateContainer(container)
}

// URL returns the connection string of the test database. TEST_DATABASE_URL is
// used when set; otherwise a postgres container is started once per test
// binary. The test is skipped when neither is available.
func URL(t *testing.T) string {
	t.Helper()

	if dbURL := os.Getenv("TEST_DATABASE_URL"); dbURL != "" {
		return dbURL
	}

	testcontainers.SkipIfProviderIsNotHealthy(t)
	containerOnce.Do(func() {
		containerURL, containerErr = startContainer(context.Background())
	})
	if containerErr != nil {
		t.Skipf("skipping: cannot start postgres container: %v", containerErr)
	}
	return containerURL
}

// Pool returns a connection pool to a freshly truncated, migrated database.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx := context.Background()
	dbURL := URL(t)

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Skipf("skipping: cannot connect to test database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("skipping: cannot ping test database: %v", err)
	}

	require.NoError(t, db.Migrate(ctx, pool))

	_, err = pool.Exec(ctx, "TRUNCATE TABLE business_ideas, sessions, users CASCADE")
	require.NoError(t, err)

	t.Cleanup(pool.Close)
	return pool
}

func startContainer(ctx context.Context) (string, error) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:17-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "ideaforge",
			"POSTGRES_PASSWORD": "ideaforge",
			"POSTGRES_DB":       "ideaforge_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	// Kept even on error so Main can remove a half-started container.
	container = c
	if err != nil {
		return "", fmt.Errorf("starting container: %w", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("resolving container host: %w", err)
	}

	port, err := c.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("resolving container port: %w", err)
	}

	return fmt.Sprintf("postgres://ideaforge:ideaforge@%s:%s/ideaforge_test?sslmode=disable", host, port.Port()), nil
}
