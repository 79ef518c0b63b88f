package memory

import (
	"context"
	"sort"
	"time"

	"github.com/mudatech/healthmon/internal/domain"
	"github.com/mudatech/healthmon/internal/repo"
)

// StatsStore: the same windowed tallies the SQL adapter computes, folded in
// Go over the in-memory log.

func (m *Store) UptimeCounts(ctx context.Context, since time.Time) ([]repo.ServiceCounts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byService := make(map[string]*repo.ServiceCounts)
	sums := make(map[string]struct {
		sum float64
		n   int64
	})
	for _, r := range m.results {
		if r.CreatedAt.Before(since) {
			continue
		}
		c := byService[r.ServiceName]
		if c == nil {
			c = &repo.ServiceCounts{ServiceName: r.ServiceName, FirstCheck: r.CreatedAt, LastCheck: r.CreatedAt}
			byService[r.ServiceName] = c
		}
		c.Total++
		if r.Status == domain.StatusOK {
			c.Successful++
		}
		if r.CreatedAt.Before(c.FirstCheck) {
			c.FirstCheck = r.CreatedAt
		}
		if r.CreatedAt.After(c.LastCheck) {
			c.LastCheck = r.CreatedAt
		}
		if r.ResponseTime != nil {
			s := sums[r.ServiceName]
			s.sum += float64(*r.ResponseTime)
			s.n++
			sums[r.ServiceName] = s
		}
	}

	out := make([]repo.ServiceCounts, 0, len(byService))
	for name, c := range byService {
		if s := sums[name]; s.n > 0 {
			avg := s.sum / float64(s.n)
			c.AvgResponseTime = &avg
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ServiceName < out[j].ServiceName })
	return out, nil
}

func (m *Store) WindowCounts(ctx context.Context, from, to time.Time) (repo.Counts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.countLocked(func(r *domain.HealthCheckResult) bool {
		return !r.CreatedAt.Before(from) && r.CreatedAt.Before(to)
	}), nil
}

func (m *Store) HourlyCounts(ctx context.Context, since time.Time) ([]repo.HourCounts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	buckets := make(map[time.Time]*repo.HourCounts)
	sums := make(map[time.Time]struct {
		sum float64
		n   int64
	})
	for _, r := range m.results {
		if r.CreatedAt.Before(since) {
			continue
		}
		hour := r.CreatedAt.UTC().Truncate(time.Hour)
		b := buckets[hour]
		if b == nil {
			b = &repo.HourCounts{Hour: hour}
			buckets[hour] = b
		}
		b.Total++
		if r.Status == domain.StatusOK {
			b.Successful++
		} else {
			b.Failed++
		}
		if r.ResponseTime != nil {
			s := sums[hour]
			s.sum += float64(*r.ResponseTime)
			s.n++
			sums[hour] = s
		}
	}

	out := make([]repo.HourCounts, 0, len(buckets))
	for hour, b := range buckets {
		if s := sums[hour]; s.n > 0 {
			avg := s.sum / float64(s.n)
			b.AvgResponseTime = &avg
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour.After(out[j].Hour) })
	return out, nil
}

func (m *Store) DayCounts(ctx context.Context, day time.Time) (repo.Counts, error) {
	from := day.UTC().Truncate(24 * time.Hour)
	return m.WindowCounts(ctx, from, from.Add(24*time.Hour))
}

func (m *Store) StatusCounts(ctx context.Context, since time.Time) ([]repo.StatusCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statusCountsLocked(func(r *domain.HealthCheckResult) bool {
		return !r.CreatedAt.Before(since)
	}), nil
}

func (m *Store) DayStatusCounts(ctx context.Context, day time.Time) ([]repo.StatusCount, error) {
	from := day.UTC().Truncate(24 * time.Hour)
	to := from.Add(24 * time.Hour)
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statusCountsLocked(func(r *domain.HealthCheckResult) bool {
		return !r.CreatedAt.Before(from) && r.CreatedAt.Before(to)
	}), nil
}

func (m *Store) ErrorsByService(ctx context.Context, since time.Time) ([]repo.ServiceErrors, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64)
	for _, r := range m.results {
		if r.CreatedAt.Before(since) || r.Status == domain.StatusOK {
			continue
		}
		counts[r.ServiceName]++
	}
	out := make([]repo.ServiceErrors, 0, len(counts))
	for name, n := range counts {
		out = append(out, repo.ServiceErrors{ServiceName: name, ErrorCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ErrorCount != out[j].ErrorCount {
			return out[i].ErrorCount > out[j].ErrorCount
		}
		return out[i].ServiceName < out[j].ServiceName
	})
	return out, nil
}

func (m *Store) countLocked(match func(*domain.HealthCheckResult) bool) repo.Counts {
	var (
		c   repo.Counts
		sum float64
		n   int64
	)
	for _, r := range m.results {
		if !match(r) {
			continue
		}
		c.Total++
		if r.Status == domain.StatusOK {
			c.Successful++
		} else {
			c.Failed++
		}
		if r.ResponseTime != nil {
			sum += float64(*r.ResponseTime)
			n++
		}
	}
	if n > 0 {
		avg := sum / float64(n)
		c.AvgResponseTime = &avg
	}
	return c
}

func (m *Store) statusCountsLocked(match func(*domain.HealthCheckResult) bool) []repo.StatusCount {
	counts := make(map[domain.Status]int64)
	for _, r := range m.results {
		if match(r) {
			counts[r.Status]++
		}
	}
	out := make([]repo.StatusCount, 0, len(counts))
	for status, n := range counts {
		out = append(out, repo.StatusCount{Status: status, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Status < out[j].Status
	})
	return out
}
