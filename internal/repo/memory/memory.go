package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mudatech/healthmon/internal/domain"
	"github.com/mudatech/healthmon/internal/repo"
)

var (
	_ repo.ServiceStore = (*Store)(nil)
	_ repo.ResultStore  = (*Store)(nil)
	_ repo.StatsStore   = (*Store)(nil)
)

// Store keeps the registry and probe log in process memory. It backs tests
// and DATABASE_URL-less development runs; aggregate reads mirror the SQL
// adapter's semantics.
type Store struct {
	mu       sync.RWMutex
	services map[string]*domain.Service
	results  []*domain.HealthCheckResult
	nextID   int64
}

func New() *Store {
	return &Store{
		services: make(map[string]*domain.Service),
		results:  make([]*domain.HealthCheckResult, 0, 128),
	}
}

// ---- ServiceStore ----

func (m *Store) ListActive(ctx context.Context) ([]domain.Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Service, 0, len(m.services))
	for _, svc := range m.services {
		if svc.IsActive {
			out = append(out, *svc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Store) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.services)), nil
}

func (m *Store) Seed(ctx context.Context, services []domain.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	for _, svc := range services {
		if _, exists := m.services[svc.Name]; exists {
			continue // natural-key conflict: leave the existing row alone
		}
		cp := svc
		cp.CreatedAt, cp.UpdatedAt = now, now
		m.services[cp.Name] = &cp
	}
	return nil
}

func (m *Store) Add(ctx context.Context, svc *domain.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.services[svc.Name]; exists {
		return fmt.Errorf("service %q already exists", svc.Name)
	}
	now := time.Now().UTC()
	svc.CreatedAt, svc.UpdatedAt = now, now
	if svc.Timeout <= 0 {
		svc.Timeout = 10 * time.Second
	}
	cp := *svc
	m.services[cp.Name] = &cp
	return nil
}

// ---- ResultStore ----

func (m *Store) Append(ctx context.Context, r *domain.HealthCheckResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r.ID = m.nextID
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	cp := *r
	m.results = append(m.results, &cp)
	return nil
}

func (m *Store) RecentStatus(ctx context.Context) ([]domain.RecentHealthStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	latest := make(map[string]*domain.HealthCheckResult)
	for _, r := range m.results {
		cur := latest[r.ServiceName]
		if cur == nil || r.CreatedAt.After(cur.CreatedAt) {
			latest[r.ServiceName] = r
		}
	}

	names := make([]string, 0, len(m.services))
	for name, svc := range m.services {
		if svc.IsActive {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]domain.RecentHealthStatus, 0, len(names))
	for _, name := range names {
		svc := m.services[name]
		row := domain.RecentHealthStatus{ServiceName: name, ServiceURL: svc.URL}
		if r := latest[name]; r != nil {
			st := r.Status
			ts := r.CreatedAt
			row.CurrentStatus = &st
			row.ResponseTime = r.ResponseTime
			row.LastCheck = &ts
			row.ResponseBody = r.ResponseBody
			row.ErrorMessage = r.ErrorMessage
		}
		out = append(out, row)
	}
	return out, nil
}

func (m *Store) History(ctx context.Context, f repo.HistoryFilter) ([]domain.HealthCheckResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	since := f.Since
	if since.IsZero() {
		since = time.Now().UTC().Add(-24 * time.Hour)
	}

	matched := make([]domain.HealthCheckResult, 0, limit)
	for _, r := range m.results {
		if r.CreatedAt.Before(since) {
			continue
		}
		if f.Service != "" && r.ServiceName != f.Service {
			continue
		}
		if f.ErrorsOnly && r.Status == domain.StatusOK {
			continue
		}
		matched = append(matched, *r)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}
