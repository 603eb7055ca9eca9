//go:build database

package integration

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestSizeupWithMySQL tests the sizeup CLI with a MySQL history backend.
func TestSizeupWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306:3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "sizeup",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(30 * time.Second),
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

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/sizeup?parseTime=true", host, port.Port())

	// Set environment variables
	_ = os.Setenv("SIZEUP_HISTORY_BACKEND", "mysql")
	_ = os.Setenv("SIZEUP_HISTORY_DB_CONNECT", connStr)
	defer func() { _ = os.Unsetenv("SIZEUP_HISTORY_BACKEND") }()
	defer func() { _ = os.Unsetenv("SIZEUP_HISTORY_DB_CONNECT") }()

	runHistoryLifecycle(t)
}

// TestSizeupWithPostgres tests the sizeup CLI with a PostgreSQL history backend.
func TestSizeupWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432:5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()
	time.Sleep(5 * time.Second)

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())

	// Set environment variables
	_ = os.Setenv("SIZEUP_HISTORY_BACKEND", "postgresql")
	_ = os.Setenv("SIZEUP_HISTORY_DB_CONNECT", connStr)
	defer func() { _ = os.Unsetenv("SIZEUP_HISTORY_BACKEND") }()
	defer func() { _ = os.Unsetenv("SIZEUP_HISTORY_DB_CONNECT") }()

	runHistoryLifecycle(t)
}

// runHistoryLifecycle drives migrate, select, status and clear against the
// backend configured via environment variables.
func runHistoryLifecycle(t *testing.T) {
	workspace := makeFixtureWorkspace(t)

	// Run sizeup history migrate (schema to latest on a fresh database)
	err := runSizeupCommand(t, "history", "migrate")
	require.NoError(t, err)

	// Run sizeup select (records one run)
	err = runSizeupCommand(t, "select", workspace, "--no-model")
	require.NoError(t, err)

	// Run sizeup history status
	err = runSizeupCommand(t, "history", "status")
	require.NoError(t, err)

	// Run sizeup history clear
	err = runSizeupCommand(t, "history", "clear")
	require.NoError(t, err)
}

func runSizeupCommand(t *testing.T, args ...string) error {
	sizeupPath := getSizeupBinary()
	cmd := exec.Command(sizeupPath, args...)
	cmd.Dir = "../" // Run from project root
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
		return err
	}
	return nil
}
