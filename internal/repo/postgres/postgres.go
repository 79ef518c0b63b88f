package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/mudatech/healthmon/internal/repo"
)

var (
	_ repo.ServiceStore = (*Store)(nil)
	_ repo.ResultStore  = (*Store)(nil)
	_ repo.StatsStore   = (*Store)(nil)
)

// Store is the pgxpool-backed adapter for every port. The pool carries the
// bounded connection ceiling shared by the periodic writer and concurrent
// readers.
type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS services (
  id                BIGSERIAL PRIMARY KEY,
  name              TEXT NOT NULL UNIQUE,
  url               TEXT NOT NULL,
  expected_response TEXT NOT NULL DEFAULT '',
  is_active         BOOLEAN NOT NULL DEFAULT TRUE,
  timeout_ms        BIGINT NOT NULL DEFAULT 10000,
  check_interval_ms BIGINT NOT NULL DEFAULT 300000,
  created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS health_checks (
  id            BIGSERIAL PRIMARY KEY,
  service_name  TEXT NOT NULL REFERENCES services(name),
  service_url   TEXT NOT NULL,
  status        TEXT NOT NULL,
  response_time BIGINT NULL,
  response_body TEXT NULL,
  error_message TEXT NULL,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_health_checks_service_time ON health_checks (service_name, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_health_checks_created_at   ON health_checks (created_at DESC);
`

// EnsureSchema applies the table/index layout on a fresh database.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
