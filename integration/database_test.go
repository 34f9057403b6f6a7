//go:build database

package integration

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestGitInsightWithMySQL tests the gitinsight CLI with a MySQL backend.
func TestGitInsightWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "gitinsight",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/gitinsight?parseTime=true", host, port.Port())
	exerciseBackend(t, "mysql", connStr)
}

// TestGitInsightWithPostgres tests the gitinsight CLI with a PostgreSQL backend.
func TestGitInsightWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	exerciseBackend(t, "postgresql", connStr)
}

// exerciseBackend drives the cache and history commands against one database.
func exerciseBackend(t *testing.T, backend, connStr string) {
	t.Helper()
	stub := newOpenDiggerStub(t)
	env := []string{
		"HOME=" + t.TempDir(),
		"GITINSIGHT_SOURCE_URL=" + stub.URL,
		"GITINSIGHT_CACHE_BACKEND=" + backend,
		"GITINSIGHT_CACHE_DB_CONNECT=" + connStr,
		"GITINSIGHT_HISTORY_BACKEND=" + backend,
		"GITINSIGHT_HISTORY_DB_CONNECT=" + connStr,
	}

	// Start from empty tables
	_, err := runCommand(t, env, "cache", "clear")
	require.NoError(t, err)
	_, err = runCommand(t, env, "history", "clear")
	require.NoError(t, err)
	_, err = runCommand(t, env, "history", "migrate")
	require.NoError(t, err)

	// Fetch twice, the second run is served from the cache
	for range 2 {
		_, err = runCommand(t, env, "issues", stubRepo, "--output", "json")
		require.NoError(t, err)
	}
	_, err = runCommand(t, env, "contributors", stubRepo)
	require.NoError(t, err)

	out, err := runCommand(t, env, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, backend)

	out, err = runCommand(t, env, "history", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "3")

	exportBase := filepath.Join(t.TempDir(), "history")
	_, err = runCommand(t, env, "history", "export", "--output-file", exportBase)
	require.NoError(t, err)
	assert.FileExists(t, exportBase+".runs.parquet")
	assert.FileExists(t, exportBase+".records.parquet")
}
