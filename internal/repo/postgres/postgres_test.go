package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mudatech/healthmon/internal/domain"
	"github.com/mudatech/healthmon/internal/repo"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping Postgres integration test")
	}

	ctx := context.Background()
	store, err := New(ctx, dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("New store: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return store
}

func TestPostgresStore_Seed_Append_Recent_Uptime(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	// Unique name per run so reruns don't collide with UNIQUE(name).
	name := fmt.Sprintf("itest-%d", time.Now().UTC().UnixNano())

	svc := domain.Service{
		Name:             name,
		URL:              "https://example.com/health",
		ExpectedResponse: `{"status":"ok"}`,
		IsActive:         true,
		Timeout:          10 * time.Second,
		CheckInterval:    5 * time.Minute,
	}
	if err := store.Seed(ctx, []domain.Service{svc}); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	// Seeding again must not duplicate.
	if err := store.Seed(ctx, []domain.Service{svc}); err != nil {
		t.Fatalf("Seed (again): %v", err)
	}

	list, err := store.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	found := 0
	for _, x := range list {
		if x.Name == name {
			found++
		}
	}
	if found != 1 {
		t.Fatalf("expected exactly 1 seeded service, found %d", found)
	}

	ms := int64(42)
	body := `{"status":"ok"}`
	res := &domain.HealthCheckResult{
		ServiceName:  name,
		ServiceURL:   svc.URL,
		Status:       domain.StatusOK,
		ResponseTime: &ms,
		ResponseBody: &body,
	}
	if err := store.Append(ctx, res); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if res.ID == 0 || res.CreatedAt.IsZero() {
		t.Fatalf("expected id and created_at to be filled, got %+v", res)
	}

	errMsg := "Request timeout"
	tms := int64(10000)
	if err := store.Append(ctx, &domain.HealthCheckResult{
		ServiceName:  name,
		ServiceURL:   svc.URL,
		Status:       domain.StatusTimeout,
		ResponseTime: &tms,
		ErrorMessage: &errMsg,
	}); err != nil {
		t.Fatalf("Append timeout: %v", err)
	}

	recent, err := store.RecentStatus(ctx)
	if err != nil {
		t.Fatalf("RecentStatus: %v", err)
	}
	var row *domain.RecentHealthStatus
	for i := range recent {
		if recent[i].ServiceName == name {
			row = &recent[i]
			break
		}
	}
	if row == nil {
		t.Fatalf("service %s missing from recent status", name)
	}
	if row.CurrentStatus == nil || *row.CurrentStatus != domain.StatusTimeout {
		t.Fatalf("expected latest status timeout, got %+v", row)
	}

	hist, err := store.History(ctx, repo.HistoryFilter{
		Service: name,
		Since:   time.Now().UTC().Add(-time.Hour),
		Limit:   10,
	})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("expected 2 history rows, got %d", len(hist))
	}
	// Newest first.
	if hist[0].Status != domain.StatusTimeout || hist[1].Status != domain.StatusOK {
		t.Fatalf("history order wrong: %+v", hist)
	}

	counts, err := store.UptimeCounts(ctx, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("UptimeCounts: %v", err)
	}
	for _, c := range counts {
		if c.ServiceName != name {
			continue
		}
		if c.Total != 2 || c.Successful != 1 {
			t.Fatalf("unexpected counts: %+v", c)
		}
		return
	}
	t.Fatalf("service %s missing from uptime counts", name)
}
