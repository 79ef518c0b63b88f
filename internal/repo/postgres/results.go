package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/mudatech/healthmon/internal/domain"
	"github.com/mudatech/healthmon/internal/repo"
)

func (s *Store) Append(ctx context.Context, r *domain.HealthCheckResult) error {
	row := s.pool.QueryRow(ctx, `
INSERT INTO health_checks (service_name, service_url, status, response_time, response_body, error_message)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at`,
		r.ServiceName, r.ServiceURL, string(r.Status), r.ResponseTime, r.ResponseBody, r.ErrorMessage,
	)
	if err := row.Scan(&r.ID, &r.CreatedAt); err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *Store) RecentStatus(ctx context.Context) ([]domain.RecentHealthStatus, error) {
	rows, err := s.pool.Query(ctx, `
SELECT s.name, s.url, hc.status, hc.response_time, hc.created_at, hc.response_body, hc.error_message
  FROM services s
  LEFT JOIN LATERAL (
        SELECT status, response_time, response_body, error_message, created_at
          FROM health_checks
         WHERE service_name = s.name
         ORDER BY created_at DESC
         LIMIT 1
  ) hc ON TRUE
 WHERE s.is_active
 ORDER BY s.name`)
	if err != nil {
		return nil, fmt.Errorf("recent status: %w", err)
	}
	defer rows.Close()

	var out []domain.RecentHealthStatus
	for rows.Next() {
		var (
			r      domain.RecentHealthStatus
			status *string
		)
		if err := rows.Scan(&r.ServiceName, &r.ServiceURL, &status,
			&r.ResponseTime, &r.LastCheck, &r.ResponseBody, &r.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan recent status: %w", err)
		}
		if status != nil {
			st := domain.Status(*status)
			r.CurrentStatus = &st
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// History query variants keyed by the explicit filter combination.
const (
	historyAll = `
SELECT id, service_name, service_url, status, response_time, response_body, error_message, created_at
  FROM health_checks
 WHERE created_at >= $1
 ORDER BY created_at DESC
 LIMIT $2`
	historyByService = `
SELECT id, service_name, service_url, status, response_time, response_body, error_message, created_at
  FROM health_checks
 WHERE created_at >= $1 AND service_name = $2
 ORDER BY created_at DESC
 LIMIT $3`
	historyErrors = `
SELECT id, service_name, service_url, status, response_time, response_body, error_message, created_at
  FROM health_checks
 WHERE created_at >= $1 AND status <> 'ok'
 ORDER BY created_at DESC
 LIMIT $2`
	historyErrorsByService = `
SELECT id, service_name, service_url, status, response_time, response_body, error_message, created_at
  FROM health_checks
 WHERE created_at >= $1 AND status <> 'ok' AND service_name = $2
 ORDER BY created_at DESC
 LIMIT $3`
)

func (s *Store) History(ctx context.Context, f repo.HistoryFilter) ([]domain.HealthCheckResult, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	since := f.Since
	if since.IsZero() {
		since = time.Now().UTC().Add(-24 * time.Hour)
	}

	var (
		sql  string
		args []any
	)
	switch {
	case f.Service != "" && f.ErrorsOnly:
		sql, args = historyErrorsByService, []any{since, f.Service, limit}
	case f.Service != "":
		sql, args = historyByService, []any{since, f.Service, limit}
	case f.ErrorsOnly:
		sql, args = historyErrors, []any{since, limit}
	default:
		sql, args = historyAll, []any{since, limit}
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()

	var out []domain.HealthCheckResult
	for rows.Next() {
		var (
			r      domain.HealthCheckResult
			status string
		)
		if err := rows.Scan(&r.ID, &r.ServiceName, &r.ServiceURL, &status,
			&r.ResponseTime, &r.ResponseBody, &r.ErrorMessage, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		r.Status = domain.Status(status)
		out = append(out, r)
	}
	return out, rows.Err()
}
