package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mudatech/healthmon/internal/domain"
	"github.com/mudatech/healthmon/internal/repo"
)

func (s *Store) UptimeCounts(ctx context.Context, since time.Time) ([]repo.ServiceCounts, error) {
	rows, err := s.pool.Query(ctx, `
SELECT service_name,
       COUNT(*),
       COUNT(*) FILTER (WHERE status = 'ok'),
       AVG(response_time)::float8,
       MIN(created_at),
       MAX(created_at)
  FROM health_checks
 WHERE created_at >= $1
 GROUP BY service_name
 ORDER BY service_name`, since)
	if err != nil {
		return nil, fmt.Errorf("uptime counts: %w", err)
	}
	defer rows.Close()

	var out []repo.ServiceCounts
	for rows.Next() {
		var c repo.ServiceCounts
		if err := rows.Scan(&c.ServiceName, &c.Total, &c.Successful,
			&c.AvgResponseTime, &c.FirstCheck, &c.LastCheck); err != nil {
			return nil, fmt.Errorf("scan uptime counts: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) WindowCounts(ctx context.Context, from, to time.Time) (repo.Counts, error) {
	var c repo.Counts
	err := s.pool.QueryRow(ctx, `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE status = 'ok'),
       COUNT(*) FILTER (WHERE status <> 'ok'),
       AVG(response_time)::float8
  FROM health_checks
 WHERE created_at >= $1 AND created_at < $2`, from, to).
		Scan(&c.Total, &c.Successful, &c.Failed, &c.AvgResponseTime)
	if err != nil {
		return repo.Counts{}, fmt.Errorf("window counts: %w", err)
	}
	return c, nil
}

func (s *Store) HourlyCounts(ctx context.Context, since time.Time) ([]repo.HourCounts, error) {
	rows, err := s.pool.Query(ctx, `
SELECT date_trunc('hour', created_at) AS bucket,
       COUNT(*),
       COUNT(*) FILTER (WHERE status = 'ok'),
       COUNT(*) FILTER (WHERE status <> 'ok'),
       AVG(response_time)::float8
  FROM health_checks
 WHERE created_at >= $1
 GROUP BY bucket
 ORDER BY bucket DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("hourly counts: %w", err)
	}
	defer rows.Close()

	var out []repo.HourCounts
	for rows.Next() {
		var h repo.HourCounts
		if err := rows.Scan(&h.Hour, &h.Total, &h.Successful, &h.Failed, &h.AvgResponseTime); err != nil {
			return nil, fmt.Errorf("scan hourly counts: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Store) DayCounts(ctx context.Context, day time.Time) (repo.Counts, error) {
	from := day.UTC().Truncate(24 * time.Hour)
	return s.WindowCounts(ctx, from, from.Add(24*time.Hour))
}

func (s *Store) StatusCounts(ctx context.Context, since time.Time) ([]repo.StatusCount, error) {
	rows, err := s.pool.Query(ctx, `
SELECT status, COUNT(*)
  FROM health_checks
 WHERE created_at >= $1
 GROUP BY status
 ORDER BY COUNT(*) DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}
	return scanStatusCounts(rows)
}

func (s *Store) DayStatusCounts(ctx context.Context, day time.Time) ([]repo.StatusCount, error) {
	from := day.UTC().Truncate(24 * time.Hour)
	rows, err := s.pool.Query(ctx, `
SELECT status, COUNT(*)
  FROM health_checks
 WHERE created_at >= $1 AND created_at < $2
 GROUP BY status
 ORDER BY COUNT(*) DESC`, from, from.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("day status counts: %w", err)
	}
	return scanStatusCounts(rows)
}

func scanStatusCounts(rows pgx.Rows) ([]repo.StatusCount, error) {
	defer rows.Close()
	var out []repo.StatusCount
	for rows.Next() {
		var (
			sc     repo.StatusCount
			status string
		)
		if err := rows.Scan(&status, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan status counts: %w", err)
		}
		sc.Status = domain.Status(status)
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (s *Store) ErrorsByService(ctx context.Context, since time.Time) ([]repo.ServiceErrors, error) {
	rows, err := s.pool.Query(ctx, `
SELECT service_name, COUNT(*)
  FROM health_checks
 WHERE status <> 'ok' AND created_at >= $1
 GROUP BY service_name
 ORDER BY COUNT(*) DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("errors by service: %w", err)
	}
	defer rows.Close()

	var out []repo.ServiceErrors
	for rows.Next() {
		var e repo.ServiceErrors
		if err := rows.Scan(&e.ServiceName, &e.ErrorCount); err != nil {
			return nil, fmt.Errorf("scan errors by service: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
