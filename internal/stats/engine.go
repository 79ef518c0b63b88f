package stats

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/mudatech/healthmon/internal/domain"
	"github.com/mudatech/healthmon/internal/repo"
)

// Store is the read surface the engine derives every view from.
type Store interface {
	repo.ServiceStore
	repo.ResultStore
	repo.StatsStore
}

// Engine computes rolling health/uptime/performance views from the probe
// history. It holds no state of its own; every call derives from whatever
// history exists at query time.
type Engine struct {
	store Store
	now   func() time.Time
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: func() time.Time { return time.Now().UTC() }}
}

const defaultWindowHours = 24

func normalizeHours(hours int) int {
	if hours <= 0 {
		return defaultWindowHours
	}
	return hours
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }

// Uptime reports windowed per-service uptime. Services with zero checks in
// the window are omitted; absence is the signal.
func (e *Engine) Uptime(ctx context.Context, hours int) ([]domain.ServiceUptime, error) {
	hours = normalizeHours(hours)
	since := e.now().Add(-time.Duration(hours) * time.Hour)

	counts, err := e.store.UptimeCounts(ctx, since)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ServiceUptime, 0, len(counts))
	for _, c := range counts {
		first, last := c.FirstCheck, c.LastCheck
		out = append(out, domain.ServiceUptime{
			ServiceName:      c.ServiceName,
			TotalChecks:      c.Total,
			SuccessfulChecks: c.Successful,
			UptimePercentage: round2(float64(c.Successful) / float64(c.Total) * 100),
			AvgResponseTime:  c.AvgResponseTime,
			FirstCheck:       &first,
			LastCheck:        &last,
		})
	}
	return out, nil
}

// SystemHealth bands global uptime over the trailing 24h. An empty window
// reports 100/healthy: no data is treated as healthy, not failing.
func (e *Engine) SystemHealth(ctx context.Context) (SystemHealth, error) {
	now := e.now()
	c, err := e.store.WindowCounts(ctx, now.Add(-defaultWindowHours*time.Hour), now)
	if err != nil {
		return SystemHealth{}, err
	}

	uptime := 100.0
	if c.Total > 0 {
		uptime = float64(c.Successful) / float64(c.Total) * 100
	}
	status := "healthy"
	switch {
	case uptime < 95:
		status = "critical"
	case uptime < 99:
		status = "warning"
	}

	services, err := e.store.ListActive(ctx)
	if err != nil {
		return SystemHealth{}, err
	}
	recent, err := e.store.RecentStatus(ctx)
	if err != nil {
		return SystemHealth{}, err
	}
	healthy := 0
	for _, r := range recent {
		if r.CurrentStatus != nil && r.CurrentStatus.Healthy() {
			healthy++
		}
	}

	return SystemHealth{
		Status:          status,
		Uptime:          round2(uptime),
		TotalServices:   len(services),
		HealthyServices: healthy,
		LastCheck:       now,
	}, nil
}

// Heartbeat reports one point per trailing clock hour, oldest first. An
// empty bucket is healthy by convention.
func (e *Engine) Heartbeat(ctx context.Context, hours int) ([]HeartbeatPoint, error) {
	hours = normalizeHours(hours)
	now := e.now()

	out := make([]HeartbeatPoint, 0, hours)
	for i := hours - 1; i >= 0; i-- {
		end := now.Add(-time.Duration(i) * time.Hour)
		c, err := e.store.WindowCounts(ctx, end.Add(-time.Hour), end)
		if err != nil {
			return nil, err
		}
		status := 1
		if c.Total > 0 && float64(c.Successful)/float64(c.Total) <= 0.5 {
			status = 0
		}
		out = append(out, HeartbeatPoint{
			Hour:     end.Format("15:04"),
			Status:   status,
			Requests: 100 + c.Total*25, // synthetic volume from check count
		})
	}
	return out, nil
}

// ErrorSummary aggregates non-ok checks over the window and classifies the
// trend against the preceding window of equal length.
func (e *Engine) ErrorSummary(ctx context.Context, hours int) (ErrorSummary, error) {
	hours = normalizeHours(hours)
	now := e.now()
	since := now.Add(-time.Duration(hours) * time.Hour)

	c, err := e.store.WindowCounts(ctx, since, now)
	if err != nil {
		return ErrorSummary{}, err
	}
	rate := 0.0
	if c.Total > 0 {
		rate = float64(c.Failed) / float64(c.Total) * 100
	}

	byService, err := e.store.ErrorsByService(ctx, since)
	if err != nil {
		return ErrorSummary{}, err
	}
	services := make([]ServiceErrorRate, 0, len(byService))
	for _, s := range byService {
		sr := ServiceErrorRate{ServiceName: s.ServiceName, ErrorCount: s.ErrorCount}
		if c.Total > 0 {
			sr.ErrorRate = round2(float64(s.ErrorCount) / float64(c.Total) * 100)
		}
		services = append(services, sr)
	}

	prev, err := e.store.WindowCounts(ctx, since.Add(-time.Duration(hours)*time.Hour), since)
	if err != nil {
		return ErrorSummary{}, err
	}
	trend := "stable"
	switch {
	case c.Failed < prev.Failed:
		trend = "decreasing"
	case c.Failed > prev.Failed:
		trend = "increasing"
	}

	mostCommon := "500 Internal Server Error"
	statusCounts, err := e.store.StatusCounts(ctx, since)
	if err != nil {
		return ErrorSummary{}, err
	}
	for _, sc := range statusCounts {
		if sc.Status == domain.StatusOK {
			continue
		}
		code, desc := errorCode(sc.Status)
		mostCommon = code + " " + desc
		break // counts are ordered descending; first non-ok wins
	}

	return ErrorSummary{
		TotalErrors:     c.Failed,
		ErrorRate:       round2(rate),
		MostCommonError: mostCommon,
		ErrorTrend:      trend,
		ErrorsByService: services,
	}, nil
}

// StatusDistribution groups a calendar day's checks by status, mapped to
// representative HTTP codes.
func (e *Engine) StatusDistribution(ctx context.Context, day time.Time) ([]StatusCodeCount, error) {
	counts, err := e.store.DayStatusCounts(ctx, day)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, c := range counts {
		total += c.Count
	}
	out := make([]StatusCodeCount, 0, len(counts))
	for _, c := range counts {
		code, desc := statusCode(c.Status)
		pct := 0.0
		if total > 0 {
			pct = round2(float64(c.Count) / float64(total) * 100)
		}
		out = append(out, StatusCodeCount{Code: code, Description: desc, Count: c.Count, Percentage: pct})
	}
	return out, nil
}

// RequestStats summarizes one calendar day against the previous one.
func (e *Engine) RequestStats(ctx context.Context, day time.Time) (RequestStats, error) {
	today, err := e.store.DayCounts(ctx, day)
	if err != nil {
		return RequestStats{}, err
	}
	yesterday, err := e.store.DayCounts(ctx, day.AddDate(0, 0, -1))
	if err != nil {
		return RequestStats{}, err
	}

	rate := 0.0
	if today.Total > 0 {
		rate = float64(today.Failed) / float64(today.Total) * 100
	}
	avg := avgOrZero(today.AvgResponseTime)
	prevAvg := avgOrZero(yesterday.AvgResponseTime)

	var respChange, reqChange int64
	if prevAvg > 0 {
		respChange = int64(math.Round(avg - prevAvg))
	}
	if yesterday.Total > 0 {
		reqChange = int64(math.Round(float64(today.Total-yesterday.Total) / float64(yesterday.Total) * 100))
	}

	return RequestStats{
		RequestsToday:      today.Total,
		ErrorsToday:        today.Failed,
		ErrorRate:          round2(rate),
		AvgResponseTime:    int64(math.Round(avg)),
		ResponseTimeChange: respChange,
		RequestsChange:     reqChange,
	}, nil
}

// Performance derives the simulated load snapshot from the trailing hour.
func (e *Engine) Performance(ctx context.Context) (Performance, error) {
	now := e.now()
	c, err := e.store.WindowCounts(ctx, now.Add(-time.Hour), now)
	if err != nil {
		return Performance{}, err
	}
	return performanceFromCounts(c), nil
}

// PerformanceTrends derives one simulated point per clock hour, newest
// first, capped at the window length.
func (e *Engine) PerformanceTrends(ctx context.Context, hours int) ([]TrendPoint, error) {
	hours = normalizeHours(hours)
	buckets, err := e.store.HourlyCounts(ctx, e.now().Add(-time.Duration(hours)*time.Hour))
	if err != nil {
		return nil, err
	}
	if len(buckets) > hours {
		buckets = buckets[:hours]
	}
	out := make([]TrendPoint, 0, len(buckets))
	for _, b := range buckets {
		cpu := 30.0
		if b.Total > 0 {
			cpu = clamp(float64(b.Total)/10+30, 20, 100)
		}
		out = append(out, TrendPoint{
			Timestamp:         b.Hour.Format("2006-01-02 15:00:00"),
			CPUUsage:          int(math.Round(cpu)),
			MemoryUsage:       int(math.Round(cpu)),
			ActiveConnections: maxInt64(100, b.Total*2),
			QueueDepth:        maxInt64(0, b.Failed*3),
		})
	}
	return out, nil
}

// Events renders the trailing-24h probe log as online/offline narrative.
func (e *Engine) Events(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	history, err := e.store.History(ctx, repo.HistoryFilter{
		Since: e.now().Add(-defaultWindowHours * time.Hour),
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]Event, 0, len(history))
	for _, r := range history {
		name, state := "Service Online", "up"
		if !r.Status.Healthy() {
			name, state = "Service Offline", "down"
		}
		out = append(out, Event{
			Timestamp: r.CreatedAt,
			Event:     fmt.Sprintf("%s: %s", r.ServiceName, name),
			Status:    state,
			Service:   r.ServiceName,
		})
	}
	return out, nil
}

// ErrorDetails lists trailing-24h non-ok checks, newest first.
func (e *Engine) ErrorDetails(ctx context.Context, limit int, service string) ([]ErrorDetail, error) {
	if limit <= 0 {
		limit = 100
	}
	history, err := e.store.History(ctx, repo.HistoryFilter{
		Service:    service,
		ErrorsOnly: true,
		Since:      e.now().Add(-defaultWindowHours * time.Hour),
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]ErrorDetail, 0, len(history))
	for _, r := range history {
		code, _ := errorCode(r.Status)
		msg := "Unknown error"
		if r.ErrorMessage != nil {
			msg = *r.ErrorMessage
		}
		out = append(out, ErrorDetail{
			Timestamp:    r.CreatedAt,
			Service:      r.ServiceName,
			ErrorCode:    code,
			ErrorMessage: msg,
			RequestURL:   r.ServiceURL,
			ResponseTime: r.ResponseTime,
		})
	}
	return out, nil
}

// Live joins the recent per-service status with a simulated performance
// snapshot.
func (e *Engine) Live(ctx context.Context) (LiveStatus, error) {
	now := e.now()
	recent, err := e.store.RecentStatus(ctx)
	if err != nil {
		return LiveStatus{}, err
	}
	c, err := e.store.WindowCounts(ctx, now.Add(-time.Hour), now)
	if err != nil {
		return LiveStatus{}, err
	}

	services := make([]LiveService, 0, len(recent))
	for _, r := range recent {
		status := "unknown"
		if r.CurrentStatus != nil {
			status = string(*r.CurrentStatus)
		}
		services = append(services, LiveService{
			Name:         r.ServiceName,
			Status:       status,
			ResponseTime: r.ResponseTime,
			LastCheck:    r.LastCheck,
		})
	}

	return LiveStatus{
		Timestamp:    now,
		SystemStatus: "healthy",
		Services:     services,
		Performance: LivePerformance{
			CPU:         int(clamp(50+float64(c.Total)/10, 50, 80)),
			Memory:      int(clamp(45+float64(c.Total)/20, 45, 65)),
			Connections: 1000 + c.Total*2,
		},
	}, nil
}

// MicroservicesStatus joins the registry, recent status, and 24h uptime.
// Services with no in-window checks report 0 uptime here (distinct from the
// omit-when-absent policy in Uptime).
func (e *Engine) MicroservicesStatus(ctx context.Context) ([]MicroserviceStatus, error) {
	recent, err := e.store.RecentStatus(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := e.store.UptimeCounts(ctx, e.now().Add(-defaultWindowHours*time.Hour))
	if err != nil {
		return nil, err
	}
	uptimeByName := make(map[string]float64, len(counts))
	for _, c := range counts {
		uptimeByName[c.ServiceName] = round2(float64(c.Successful) / float64(c.Total) * 100)
	}

	out := make([]MicroserviceStatus, 0, len(recent))
	for _, r := range recent {
		status := "unknown"
		if r.CurrentStatus != nil {
			status = string(*r.CurrentStatus)
		}
		out = append(out, MicroserviceStatus{
			Name:         r.ServiceName,
			Status:       status,
			Uptime:       uptimeByName[r.ServiceName],
			LastCheck:    r.LastCheck,
			ResponseTime: r.ResponseTime,
			URL:          r.ServiceURL,
		})
	}
	return out, nil
}

// ---- helpers ----

// errorCode maps a non-ok status to its representative HTTP code.
func errorCode(s domain.Status) (code, desc string) {
	if s == domain.StatusTimeout {
		return "408", "Request Timeout"
	}
	return "500", "Internal Server Error"
}

// statusCode maps any status for the distribution view.
func statusCode(s domain.Status) (code, desc string) {
	switch s {
	case domain.StatusOK:
		return "200", "Success"
	case domain.StatusError:
		return "500", "Internal Server Error"
	case domain.StatusTimeout:
		return "408", "Request Timeout"
	default:
		return "500", "Unknown Error"
	}
}

func performanceFromCounts(c repo.Counts) Performance {
	cpu := 30.0
	if c.Total > 0 {
		cpu = clamp(float64(c.Total)/100*10+30, 20, 100)
	}
	hitRate := 90.0
	if c.Successful > 0 {
		hitRate = clamp(float64(c.Successful)/float64(c.Total)*100, 80, 100)
	}
	return Performance{
		CPUUsage: int(math.Round(cpu)),
		MemoryUsage: MemoryUsage{
			Used:       fmt.Sprintf("%dGB", int(math.Round(float64(c.Total)/100*2+2))),
			Total:      "8GB",
			Percentage: int(math.Round(cpu)),
		},
		ActiveConnections:   maxInt64(100, c.Total*2),
		QueueDepth:          maxInt64(0, c.Failed*3),
		DatabaseConnections: int(clamp(float64(c.Total)/10, 10, 50)),
		CacheHitRate:        int(math.Round(hitRate)),
	}
}

func avgOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
