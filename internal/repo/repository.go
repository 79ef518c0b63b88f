package repo

import (
	"context"
	"time"

	"github.com/mudatech/healthmon/internal/domain"
)

// Ports (interfaces) — swap in any DB adapter later.

// ServiceStore is the service registry.
type ServiceStore interface {
	// ListActive returns active services ordered by name ascending.
	ListActive(ctx context.Context) ([]domain.Service, error)
	// Count returns the total registry size, active or not.
	Count(ctx context.Context) (int64, error)
	// Seed inserts services using name as the natural key. Existing rows
	// are left untouched (insert-on-conflict-do-nothing), so re-seeding is
	// idempotent.
	Seed(ctx context.Context, services []domain.Service) error
	// Add inserts a single service (administrative path).
	Add(ctx context.Context, svc *domain.Service) error
}

// ResultStore owns the append-only probe log.
type ResultStore interface {
	// Append persists one probe record; CreatedAt is set at insert.
	Append(ctx context.Context, r *domain.HealthCheckResult) error
	// RecentStatus returns one row per active service, left-joined against
	// its most recent result.
	RecentStatus(ctx context.Context) ([]domain.RecentHealthStatus, error)
	// History returns raw probe records, newest first, scoped by filter.
	History(ctx context.Context, f HistoryFilter) ([]domain.HealthCheckResult, error)
}

// HistoryFilter scopes History reads. The (Service, ErrorsOnly) combination
// selects one of four fixed query variants — no dynamic SQL assembly.
type HistoryFilter struct {
	Service    string // empty = all services
	ErrorsOnly bool   // restrict to status != ok
	Since      time.Time
	Limit      int
}

// StatsStore exposes the windowed count reads the aggregation engine
// derives its views from.
type StatsStore interface {
	// UptimeCounts groups results by service for created_at >= since.
	// Services with no checks in the window are absent.
	UptimeCounts(ctx context.Context, since time.Time) ([]ServiceCounts, error)
	// WindowCounts totals results with created_at in [from, to).
	WindowCounts(ctx context.Context, from, to time.Time) (Counts, error)
	// HourlyCounts groups results by clock hour for created_at >= since,
	// newest hour first.
	HourlyCounts(ctx context.Context, since time.Time) ([]HourCounts, error)
	// DayCounts totals results for one calendar day (UTC).
	DayCounts(ctx context.Context, day time.Time) (Counts, error)
	// StatusCounts groups results by status for created_at >= since,
	// largest group first.
	StatusCounts(ctx context.Context, since time.Time) ([]StatusCount, error)
	// DayStatusCounts groups results by status for one calendar day (UTC).
	DayStatusCounts(ctx context.Context, day time.Time) ([]StatusCount, error)
	// ErrorsByService counts non-ok results per service for
	// created_at >= since, ordered by count descending.
	ErrorsByService(ctx context.Context, since time.Time) ([]ServiceErrors, error)
}

// Counts is a plain total/successful/failed tally over some window.
type Counts struct {
	Total           int64
	Successful      int64
	Failed          int64
	AvgResponseTime *float64
}

// ServiceCounts carries the per-service window tally behind ServiceUptime.
type ServiceCounts struct {
	ServiceName     string
	Total           int64
	Successful      int64
	AvgResponseTime *float64
	FirstCheck      time.Time
	LastCheck       time.Time
}

// HourCounts is one clock-hour bucket of Counts.
type HourCounts struct {
	Hour time.Time // truncated to the hour, UTC
	Counts
}

type StatusCount struct {
	Status domain.Status
	Count  int64
}

type ServiceErrors struct {
	ServiceName string
	ErrorCount  int64
}
