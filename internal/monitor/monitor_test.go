package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mudatech/healthmon/internal/domain"
	"github.com/mudatech/healthmon/internal/metrics"
	"github.com/mudatech/healthmon/internal/probe"
	"github.com/mudatech/healthmon/internal/repo"
	"github.com/mudatech/healthmon/internal/repo/memory"
)

// scripted checker: per-service canned outcomes

type mapChecker struct {
	outs map[string]probe.Outcome
}

func (c *mapChecker) Check(_ context.Context, svc domain.Service) probe.Outcome {
	if out, ok := c.outs[svc.Name]; ok {
		return out
	}
	return probe.Outcome{Status: domain.StatusError, ErrorMessage: "unscripted"}
}

func newTestMonitor(t *testing.T, store *memory.Store, chk probe.Checker, interval time.Duration) *Monitor {
	t.Helper()
	return New(zap.NewNop(), store, store, chk, metrics.New(), interval, 1)
}

func TestBootstrap_SeedsEmptyRegistryOnce(t *testing.T) {
	store := memory.New()
	m := newTestMonitor(t, store, &mapChecker{}, time.Hour)

	if err := m.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	n, _ := store.Count(context.Background())
	if n != 4 {
		t.Fatalf("want 4 default services, got %d", n)
	}

	// Second bootstrap must not duplicate.
	if err := m.Bootstrap(context.Background()); err != nil {
		t.Fatalf("re-bootstrap: %v", err)
	}
	if n2, _ := store.Count(context.Background()); n2 != n {
		t.Fatalf("registry size changed on re-bootstrap: %d -> %d", n, n2)
	}
}

func TestCycle_PersistsOKAndTimeoutScenario(t *testing.T) {
	store := memory.New()
	_ = store.Seed(context.Background(), []domain.Service{
		{Name: "a", URL: "https://a/health", ExpectedResponse: "ok", IsActive: true, Timeout: time.Second},
		{Name: "b", URL: "https://b/health", ExpectedResponse: "ok", IsActive: true, Timeout: time.Second},
	})
	chk := &mapChecker{outs: map[string]probe.Outcome{
		"a": {Status: domain.StatusOK, ResponseTimeMS: 12, ResponseBody: "ok", HasBody: true},
		"b": {Status: domain.StatusTimeout, ResponseTimeMS: 1000, ErrorMessage: "Request timeout"},
	}}
	m := newTestMonitor(t, store, chk, time.Hour)

	m.Start(context.Background())
	defer m.Stop()

	rows, err := store.RecentStatus(context.Background())
	if err != nil {
		t.Fatalf("recent status: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want 2 rows, got %d", len(rows))
	}
	if *rows[0].CurrentStatus != domain.StatusOK {
		t.Fatalf("a should be ok: %+v", rows[0])
	}
	if *rows[1].CurrentStatus != domain.StatusTimeout {
		t.Fatalf("b should be timeout: %+v", rows[1])
	}
	if rows[1].ErrorMessage == nil || *rows[1].ErrorMessage != "Request timeout" {
		t.Fatalf("timeout message missing: %+v", rows[1])
	}

	counts, _ := store.UptimeCounts(context.Background(), time.Now().UTC().Add(-24*time.Hour))
	if len(counts) != 2 {
		t.Fatalf("want uptime rows for both services, got %+v", counts)
	}
	if counts[0].ServiceName != "a" || counts[0].Successful != 1 || counts[0].Total != 1 {
		t.Fatalf("a uptime counts wrong: %+v", counts[0])
	}
	if counts[1].ServiceName != "b" || counts[1].Successful != 0 || counts[1].Total != 1 {
		t.Fatalf("b uptime counts wrong: %+v", counts[1])
	}
}

func TestStart_IsIdempotent(t *testing.T) {
	store := memory.New()
	_ = store.Seed(context.Background(), []domain.Service{
		{Name: "a", URL: "https://a", ExpectedResponse: "ok", IsActive: true},
	})
	chk := &mapChecker{outs: map[string]probe.Outcome{
		"a": {Status: domain.StatusOK, ResponseTimeMS: 1},
	}}
	m := newTestMonitor(t, store, chk, time.Hour)

	m.Start(context.Background())
	m.Start(context.Background()) // second call: no-op, one immediate cycle only
	defer m.Stop()

	if !m.IsRunning() {
		t.Fatal("monitor should be running")
	}

	history, _ := store.History(context.Background(), repoHistoryAll())
	if len(history) != 1 {
		t.Fatalf("double start ran extra cycles: %d results", len(history))
	}
}

func TestStopPreventsFurtherCycles(t *testing.T) {
	store := memory.New()
	_ = store.Seed(context.Background(), []domain.Service{
		{Name: "a", URL: "https://a", ExpectedResponse: "ok", IsActive: true},
	})
	chk := &mapChecker{outs: map[string]probe.Outcome{
		"a": {Status: domain.StatusOK, ResponseTimeMS: 1},
	}}
	m := newTestMonitor(t, store, chk, 10*time.Millisecond)

	m.Start(context.Background())
	time.Sleep(35 * time.Millisecond)
	m.Stop()
	if m.IsRunning() {
		t.Fatal("monitor should be stopped")
	}
	m.Stop() // idempotent

	after, _ := store.History(context.Background(), repoHistoryAll())
	time.Sleep(30 * time.Millisecond)
	again, _ := store.History(context.Background(), repoHistoryAll())
	if len(again) != len(after) {
		t.Fatalf("cycles kept running after stop: %d -> %d", len(after), len(again))
	}
}

func TestCycle_StoreFailureDoesNotAbortRemainingServices(t *testing.T) {
	store := memory.New()
	_ = store.Seed(context.Background(), []domain.Service{
		{Name: "a", URL: "https://a", ExpectedResponse: "ok", IsActive: true},
		{Name: "b", URL: "https://b", ExpectedResponse: "ok", IsActive: true},
	})
	chk := &mapChecker{outs: map[string]probe.Outcome{
		"a": {Status: domain.StatusOK, ResponseTimeMS: 1},
		"b": {Status: domain.StatusOK, ResponseTimeMS: 1},
	}}
	failing := &failFirstAppend{inner: store}
	m := New(zap.NewNop(), store, failing, chk, metrics.New(), time.Hour, 1)

	m.Start(context.Background())
	defer m.Stop()

	history, _ := store.History(context.Background(), repoHistoryAll())
	if len(history) != 1 || history[0].ServiceName != "b" {
		t.Fatalf("b's result should survive a's store failure: %+v", history)
	}
}

// ---- test helpers ----

func repoHistoryAll() repo.HistoryFilter {
	return repo.HistoryFilter{Limit: 100}
}

// failFirstAppend rejects the first Append and delegates the rest.
type failFirstAppend struct {
	inner repo.ResultStore
	n     int
}

func (f *failFirstAppend) Append(ctx context.Context, r *domain.HealthCheckResult) error {
	f.n++
	if f.n == 1 {
		return errStoreDown
	}
	return f.inner.Append(ctx, r)
}

func (f *failFirstAppend) RecentStatus(ctx context.Context) ([]domain.RecentHealthStatus, error) {
	return f.inner.RecentStatus(ctx)
}

func (f *failFirstAppend) History(ctx context.Context, hf repo.HistoryFilter) ([]domain.HealthCheckResult, error) {
	return f.inner.History(ctx, hf)
}

var errStoreDown = errors.New("store unavailable")
