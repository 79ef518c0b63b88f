package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/mudatech/healthmon/internal/domain"
)

func (s *Store) ListActive(ctx context.Context) ([]domain.Service, error) {
	rows, err := s.pool.Query(ctx, `
SELECT name, url, expected_response, is_active, timeout_ms, check_interval_ms, created_at, updated_at
  FROM services
 WHERE is_active
 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var out []domain.Service
	for rows.Next() {
		var (
			svc        domain.Service
			timeoutMS  int64
			intervalMS int64
		)
		if err := rows.Scan(&svc.Name, &svc.URL, &svc.ExpectedResponse, &svc.IsActive,
			&timeoutMS, &intervalMS, &svc.CreatedAt, &svc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		svc.Timeout = time.Duration(timeoutMS) * time.Millisecond
		svc.CheckInterval = time.Duration(intervalMS) * time.Millisecond
		out = append(out, svc)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM services`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count services: %w", err)
	}
	return n, nil
}

func (s *Store) Seed(ctx context.Context, services []domain.Service) error {
	for _, svc := range services {
		if _, err := s.pool.Exec(ctx, `
INSERT INTO services (name, url, expected_response, is_active, timeout_ms, check_interval_ms)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (name) DO NOTHING`,
			svc.Name, svc.URL, svc.ExpectedResponse, svc.IsActive,
			svc.Timeout.Milliseconds(), svc.CheckInterval.Milliseconds(),
		); err != nil {
			return fmt.Errorf("seed service %s: %w", svc.Name, err)
		}
	}
	return nil
}

func (s *Store) Add(ctx context.Context, svc *domain.Service) error {
	if svc.Timeout <= 0 {
		svc.Timeout = 10 * time.Second
	}
	if svc.CheckInterval <= 0 {
		svc.CheckInterval = 5 * time.Minute
	}
	row := s.pool.QueryRow(ctx, `
INSERT INTO services (name, url, expected_response, is_active, timeout_ms, check_interval_ms)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at, updated_at`,
		svc.Name, svc.URL, svc.ExpectedResponse, svc.IsActive,
		svc.Timeout.Milliseconds(), svc.CheckInterval.Milliseconds(),
	)
	if err := row.Scan(&svc.CreatedAt, &svc.UpdatedAt); err != nil {
		return fmt.Errorf("insert service: %w", err)
	}
	return nil
}
