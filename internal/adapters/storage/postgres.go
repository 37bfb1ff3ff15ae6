// Package storage persists the resolver's server configuration and a
// rolling audit log of resolutions, grounded on the teacher's
// repository.PostgresRepository: a thin *sql.DB wrapper over the pgx
// stdlib driver, raw SQL, context-scoped queries.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/poyrazK/resolvercore/internal/dns/resolve"
)

// Store is the resolver's Postgres-backed persistence layer: the
// configured server set (so a restarted resolver process picks up
// operator edits without a redeploy) and an audit trail of completed
// resolutions.
type Store struct {
	db *sql.DB
}

// Open opens a pgx connection pool over dsn through the database/sql
// "pgx" driver (registered by the stdlib import above), so Store can be
// exercised by DATA-DOG/go-sqlmock in unit tests without a live server.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("resolvercore/storage: open: %w", err)
	}
	return NewStore(db), nil
}

// NewStore wraps an already-open *sql.DB.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Ping verifies connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Stats exposes the underlying connection pool's statistics, for
// periodic metrics reporting (see infrastructure/metrics.DBConnectionsActive).
func (s *Store) Stats() sql.DBStats {
	return s.db.Stats()
}

// ListServers loads the configured name server set.
func (s *Store) ListServers(ctx context.Context) ([]*resolve.ServerInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT addr, port, transport, tsig_key_name, tsig_algorithm, tsig_key, healthy
		FROM resolver_servers`)
	if err != nil {
		return nil, fmt.Errorf("resolvercore/storage: list servers: %w", err)
	}
	defer func() {
		if errClose := rows.Close(); errClose != nil {
			log.Printf("resolvercore/storage: close rows: %v", errClose)
		}
	}()

	var servers []*resolve.ServerInfo
	for rows.Next() {
		var (
			addrStr                       string
			port                          int
			transport                     int
			keyName, algorithm sql.NullString
			key                           []byte
			healthy                       bool
		)
		if err := rows.Scan(&addrStr, &port, &transport, &keyName, &algorithm, &key, &healthy); err != nil {
			return nil, fmt.Errorf("resolvercore/storage: scan server row: %w", err)
		}
		srv := resolve.NewServerInfo(net.ParseIP(addrStr), uint16(port), resolve.Protocol(transport))
		if keyName.Valid && algorithm.Valid && len(key) > 0 {
			srv.WithTSIG(keyName.String, algorithm.String, key)
		}
		srv.SetHealthy(healthy)
		servers = append(servers, srv)
	}
	return servers, rows.Err()
}

// SaveServer upserts a server entry keyed on (addr, port).
func (s *Store) SaveServer(ctx context.Context, srv *resolve.ServerInfo) error {
	var keyName, algorithm sql.NullString
	if srv.KeyName != "" {
		keyName = sql.NullString{String: srv.KeyName, Valid: true}
		algorithm = sql.NullString{String: srv.Algorithm, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO resolver_servers (addr, port, transport, tsig_key_name, tsig_algorithm, tsig_key, healthy, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (addr, port) DO UPDATE SET
			transport = EXCLUDED.transport,
			tsig_key_name = EXCLUDED.tsig_key_name,
			tsig_algorithm = EXCLUDED.tsig_algorithm,
			tsig_key = EXCLUDED.tsig_key,
			healthy = EXCLUDED.healthy,
			updated_at = now()`,
		srv.Addr.String(), srv.Port, int(srv.Transport), keyName, algorithm, srv.Key, srv.Healthy())
	if err != nil {
		return fmt.Errorf("resolvercore/storage: save server: %w", err)
	}
	return nil
}

// DeleteServer removes a server entry.
func (s *Store) DeleteServer(ctx context.Context, addr net.IP, port uint16) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM resolver_servers WHERE addr = $1 AND port = $2`, addr.String(), port)
	if err != nil {
		return fmt.Errorf("resolvercore/storage: delete server: %w", err)
	}
	return nil
}

// AuditEntry is one completed resolution, recorded for operational
// visibility (which upstream server answered, how long it took, whether
// the cache served it).
type AuditEntry struct {
	ID         string
	QName      string
	QType      uint16
	QClass     uint16
	Rcode      uint16
	Server     string
	DurationMs int64
	CacheHit   bool
	CreatedAt  time.Time
}

// RecordResolution appends one AuditEntry.
func (s *Store) RecordResolution(ctx context.Context, e AuditEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO resolution_audit (id, qname, qtype, qclass, rcode, server, duration_ms, cache_hit, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.QName, e.QType, e.QClass, e.Rcode, e.Server, e.DurationMs, e.CacheHit, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("resolvercore/storage: record resolution: %w", err)
	}
	return nil
}

// ListRecentAudit returns at most limit audit entries, most recent first.
func (s *Store) ListRecentAudit(ctx context.Context, limit int) ([]AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, qname, qtype, qclass, rcode, server, duration_ms, cache_hit, created_at
		FROM resolution_audit ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("resolvercore/storage: list audit: %w", err)
	}
	defer func() {
		if errClose := rows.Close(); errClose != nil {
			log.Printf("resolvercore/storage: close rows: %v", errClose)
		}
	}()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.QName, &e.QType, &e.QClass, &e.Rcode, &e.Server, &e.DurationMs, &e.CacheHit, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("resolvercore/storage: scan audit row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
