package storage

import (
	"context"
	"database/sql"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/poyrazK/resolvercore/internal/dns/resolve"
)

func setupTestDB(t *testing.T) (*sql.DB, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("resolvercore_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432").WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", connStr)
	require.NoError(t, err)

	schema, err := os.ReadFile(filepath.Join(".", "schema.sql"))
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	return db, func() {
		db.Close()
		pgContainer.Terminate(ctx)
	}
}

func TestStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStore(db)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	srv := resolve.NewServerInfo(net.ParseIP("8.8.8.8"), 53, resolve.ProtocolUDP).
		WithTSIG("key.example.com.", "hmac-sha256", []byte("secret"))
	require.NoError(t, store.SaveServer(ctx, srv))

	servers, err := store.ListServers(ctx)
	require.NoError(t, err)
	require.Len(t, servers, 1)
	require.Equal(t, "8.8.8.8", servers[0].Addr.String())
	require.Equal(t, "key.example.com.", servers[0].KeyName)

	require.NoError(t, store.DeleteServer(ctx, net.ParseIP("8.8.8.8"), 53))
	servers, err = store.ListServers(ctx)
	require.NoError(t, err)
	require.Empty(t, servers)

	entry := AuditEntry{
		ID: uuid.NewString(), QName: "example.com.", QType: 1, QClass: 1,
		Rcode: 0, Server: "8.8.8.8", DurationMs: 20, CreatedAt: time.Now(),
	}
	require.NoError(t, store.RecordResolution(ctx, entry))

	audit, err := store.ListRecentAudit(ctx, 10)
	require.NoError(t, err)
	require.Len(t, audit, 1)
	require.Equal(t, "example.com.", audit[0].QName)
}
