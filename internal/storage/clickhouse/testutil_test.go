package clickhouse

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// envTestDSN points the tests at an existing server instead of a container.
const envTestDSN = "CLICKHOUSE_TEST_DSN"

// setupTestDB returns a connection to a migrated ClickHouse database and a
// cleanup func. Each call gets its own database so tests do not share rows.
func setupTestDB(t *testing.T) (*Conn, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	base, stop := clickhouseServer(ctx, t)

	db := fmt.Sprintf("gate_test_%d", time.Now().UnixNano())
	admin, err := NewConnWithDatabase(ctx, base, "")
	require.NoError(t, err)
	require.NoError(t, admin.Exec(ctx, "CREATE DATABASE "+db))

	conn, err := NewConnWithDatabase(ctx, base, db)
	require.NoError(t, err)
	applySchema(ctx, t, conn)

	return conn, func() {
		_ = conn.Close()
		_ = admin.Exec(context.Background(), "DROP DATABASE IF EXISTS "+db)
		_ = admin.Close()
		stop()
	}
}

// clickhouseServer yields a base DSN, either from the environment or from a
// freshly started container.
func clickhouseServer(ctx context.Context, t *testing.T) (string, func()) {
	t.Helper()

	if dsn := os.Getenv(envTestDSN); dsn != "" {
		return dsn, func() {}
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "clickhouse/clickhouse-server:24.8-alpine",
			ExposedPorts: []string{"9000/tcp"},
			Env:          map[string]string{"CLICKHOUSE_SKIP_USER_SETUP": "1"},
			WaitingFor:   wait.ForListeningPort("9000/tcp").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "start clickhouse container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "9000")
	require.NoError(t, err)

	return fmt.Sprintf("clickhouse://%s:%s", host, port.Port()), func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate clickhouse container: %v", err)
		}
	}
}

// applySchema runs the ClickHouse migrations one statement at a time. The
// migrations package cannot be imported here because it depends on Conn.
func applySchema(ctx context.Context, t *testing.T, conn *Conn) {
	t.Helper()

	fsys := os.DirFS("../migrations/clickhouse")
	files, err := fs.Glob(fsys, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	sort.Strings(files)

	for _, file := range files {
		content, err := fs.ReadFile(fsys, file)
		require.NoError(t, err)

		var body []string
		for _, line := range strings.Split(string(content), "\n") {
			if !strings.HasPrefix(strings.TrimSpace(line), "--") {
				body = append(body, line)
			}
		}
		for _, stmt := range strings.Split(strings.Join(body, "\n"), ";") {
			if strings.TrimSpace(stmt) != "" {
				require.NoError(t, conn.Exec(ctx, stmt), "apply %s", file)
			}
		}
	}
}
