package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jsamuelsen/quote-manager/internal/domain"
)

// PostgresConfig holds connection settings for the postgres backend.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
}

// BuildConnString builds a PostgreSQL connection URL from config.
func BuildConnString(cfg PostgresConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:   "/" + cfg.Database,
	}

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	u.RawQuery = url.Values{"sslmode": []string{sslMode}}.Encode()

	return u.String()
}

// PostgresStore keeps slots as rows of a single postgres table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects, verifies the connection and creates the slot table.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(BuildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{pool: pool}

	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS quote_slots (
		name       TEXT PRIMARY KEY,
		data       BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)

	return err
}

// Get implements ports.SlotStore.
func (s *PostgresStore) Get(ctx context.Context, slot string) ([]byte, error) {
	var data []byte

	err := s.pool.QueryRow(ctx, `SELECT data FROM quote_slots WHERE name = $1`, slot).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewNotFoundError("slot", slot)
	}

	if err != nil {
		return nil, domain.NewStorageError(slot, "read", err)
	}

	return data, nil
}

// Put implements ports.SlotStore.
func (s *PostgresStore) Put(ctx context.Context, slot string, data []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO quote_slots (name, data, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		slot, data,
	)
	if err != nil {
		return domain.NewStorageError(slot, "write", err)
	}

	return nil
}

// Delete implements ports.SlotStore.
func (s *PostgresStore) Delete(ctx context.Context, slot string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM quote_slots WHERE name = $1`, slot); err != nil {
		return domain.NewStorageError(slot, "delete", err)
	}

	return nil
}

// Name implements ports.HealthChecker.
func (s *PostgresStore) Name() string {
	return "storage-postgres"
}

// Check implements ports.HealthChecker.
func (s *PostgresStore) Check(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
