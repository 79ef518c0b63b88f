package memory

import (
	"context"
	"testing"
	"time"

	"github.com/mudatech/healthmon/internal/domain"
	"github.com/mudatech/healthmon/internal/repo"
)

func seedTwo(t *testing.T, m *Store) {
	t.Helper()
	err := m.Seed(context.Background(), []domain.Service{
		{Name: "gateway", URL: "https://gw/health", ExpectedResponse: `{"ok":true}`, IsActive: true, Timeout: 10 * time.Second},
		{Name: "wallet", URL: "https://w/health", ExpectedResponse: `{"ok":true}`, IsActive: true, Timeout: 10 * time.Second},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func appendResult(t *testing.T, m *Store, name string, status domain.Status, at time.Time, ms int64) {
	t.Helper()
	r := &domain.HealthCheckResult{
		ServiceName:  name,
		ServiceURL:   "https://" + name,
		Status:       status,
		ResponseTime: &ms,
		CreatedAt:    at,
	}
	if err := m.Append(context.Background(), r); err != nil {
		t.Fatalf("append: %v", err)
	}
}

func TestSeed_IsIdempotent(t *testing.T) {
	m := New()
	seedTwo(t, m)

	// Re-seed with a conflicting url; the existing row must win.
	err := m.Seed(context.Background(), []domain.Service{
		{Name: "gateway", URL: "https://other/health", ExpectedResponse: "x", IsActive: true},
	})
	if err != nil {
		t.Fatalf("re-seed: %v", err)
	}

	n, _ := m.Count(context.Background())
	if n != 2 {
		t.Fatalf("row count changed on re-seed: %d", n)
	}
	svcs, _ := m.ListActive(context.Background())
	if svcs[0].Name != "gateway" || svcs[0].URL != "https://gw/health" {
		t.Fatalf("existing row mutated: %+v", svcs[0])
	}
}

func TestListActive_OrderedByName(t *testing.T) {
	m := New()
	seedTwo(t, m)
	_ = m.Seed(context.Background(), []domain.Service{
		{Name: "admin", URL: "https://a", IsActive: true},
		{Name: "inactive", URL: "https://i", IsActive: false},
	})

	svcs, err := m.ListActive(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(svcs) != 3 {
		t.Fatalf("want 3 active services, got %d", len(svcs))
	}
	for i, want := range []string{"admin", "gateway", "wallet"} {
		if svcs[i].Name != want {
			t.Fatalf("order wrong at %d: %s", i, svcs[i].Name)
		}
	}
}

func TestRecentStatus_OneRowPerService(t *testing.T) {
	m := New()
	seedTwo(t, m)
	now := time.Now().UTC()

	appendResult(t, m, "gateway", domain.StatusError, now.Add(-2*time.Minute), 40)
	appendResult(t, m, "gateway", domain.StatusOK, now.Add(-time.Minute), 25)

	rows, err := m.RecentStatus(context.Background())
	if err != nil {
		t.Fatalf("recent status: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want one row per active service, got %d", len(rows))
	}
	gw := rows[0]
	if gw.ServiceName != "gateway" || gw.CurrentStatus == nil || *gw.CurrentStatus != domain.StatusOK {
		t.Fatalf("gateway should report its newest result: %+v", gw)
	}
	if rows[1].CurrentStatus != nil {
		t.Fatalf("wallet has no checks; status must be nil, got %+v", rows[1])
	}
}

func TestHistory_FilterVariants(t *testing.T) {
	m := New()
	seedTwo(t, m)
	now := time.Now().UTC()

	appendResult(t, m, "gateway", domain.StatusOK, now.Add(-3*time.Minute), 10)
	appendResult(t, m, "gateway", domain.StatusError, now.Add(-2*time.Minute), 11)
	appendResult(t, m, "wallet", domain.StatusTimeout, now.Add(-time.Minute), 12)

	all, _ := m.History(context.Background(), repo.HistoryFilter{Limit: 10})
	if len(all) != 3 || !all[0].CreatedAt.After(all[2].CreatedAt) {
		t.Fatalf("want 3 results newest-first, got %+v", all)
	}

	gw, _ := m.History(context.Background(), repo.HistoryFilter{Service: "gateway", Limit: 10})
	if len(gw) != 2 {
		t.Fatalf("service filter: want 2, got %d", len(gw))
	}

	errs, _ := m.History(context.Background(), repo.HistoryFilter{ErrorsOnly: true, Limit: 10})
	if len(errs) != 2 {
		t.Fatalf("errors filter: want 2, got %d", len(errs))
	}

	both, _ := m.History(context.Background(), repo.HistoryFilter{Service: "wallet", ErrorsOnly: true, Limit: 10})
	if len(both) != 1 || both[0].Status != domain.StatusTimeout {
		t.Fatalf("combined filter: got %+v", both)
	}

	limited, _ := m.History(context.Background(), repo.HistoryFilter{Limit: 1})
	if len(limited) != 1 {
		t.Fatalf("limit ignored: got %d", len(limited))
	}
}

func TestWindowAndStatusCounts(t *testing.T) {
	m := New()
	seedTwo(t, m)
	now := time.Now().UTC()

	appendResult(t, m, "gateway", domain.StatusOK, now.Add(-30*time.Minute), 10)
	appendResult(t, m, "gateway", domain.StatusOK, now.Add(-20*time.Minute), 20)
	appendResult(t, m, "wallet", domain.StatusTimeout, now.Add(-10*time.Minute), 30)

	c, err := m.WindowCounts(context.Background(), now.Add(-time.Hour), now)
	if err != nil {
		t.Fatalf("window counts: %v", err)
	}
	if c.Total != 3 || c.Successful != 2 || c.Failed != 1 {
		t.Fatalf("counts wrong: %+v", c)
	}
	if c.AvgResponseTime == nil || *c.AvgResponseTime != 20 {
		t.Fatalf("avg wrong: %+v", c.AvgResponseTime)
	}

	sc, _ := m.StatusCounts(context.Background(), now.Add(-time.Hour))
	if len(sc) != 2 || sc[0].Status != domain.StatusOK || sc[0].Count != 2 {
		t.Fatalf("status counts wrong: %+v", sc)
	}

	ebs, _ := m.ErrorsByService(context.Background(), now.Add(-time.Hour))
	if len(ebs) != 1 || ebs[0].ServiceName != "wallet" || ebs[0].ErrorCount != 1 {
		t.Fatalf("errors by service wrong: %+v", ebs)
	}
}

func TestUptimeCounts_OmitsServicesOutsideWindow(t *testing.T) {
	m := New()
	seedTwo(t, m)
	now := time.Now().UTC()

	appendResult(t, m, "gateway", domain.StatusOK, now.Add(-10*time.Minute), 15)
	appendResult(t, m, "wallet", domain.StatusOK, now.Add(-48*time.Hour), 15)

	counts, err := m.UptimeCounts(context.Background(), now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("uptime counts: %v", err)
	}
	if len(counts) != 1 || counts[0].ServiceName != "gateway" {
		t.Fatalf("wallet has no in-window checks and must be absent: %+v", counts)
	}
}
