package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mudatech/healthmon/internal/domain"
	"github.com/mudatech/healthmon/internal/metrics"
	"github.com/mudatech/healthmon/internal/probe"
	"github.com/mudatech/healthmon/internal/repo"
)

// Monitor owns the probe loop: one repeating timer, one cycle per firing.
// State transitions (Stopped <-> Running) are guarded by mu; the loop runs
// in a single goroutine so cycles never overlap.
type Monitor struct {
	log      *zap.Logger
	services repo.ServiceStore
	results  repo.ResultStore
	checker  probe.Checker
	metrics  *metrics.Metrics

	interval    time.Duration
	concurrency int

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(
	log *zap.Logger,
	services repo.ServiceStore,
	results repo.ResultStore,
	checker probe.Checker,
	m *metrics.Metrics,
	interval time.Duration,
	concurrency int,
) *Monitor {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Monitor{
		log:         log,
		services:    services,
		results:     results,
		checker:     checker,
		metrics:     m,
		interval:    interval,
		concurrency: concurrency,
	}
}

// Bootstrap seeds the registry with the default service set when it is
// empty. Safe to call on every start; seeding is an idempotent upsert.
func (m *Monitor) Bootstrap(ctx context.Context) error {
	n, err := m.services.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if err := m.services.Seed(ctx, DefaultServices()); err != nil {
		return err
	}
	m.log.Info("default_services_seeded", zap.Int("count", len(DefaultServices())))
	return nil
}

// Start performs one immediate synchronous cycle, then arms the repeating
// timer. Calling Start while running is a logged no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		m.log.Warn("monitoring_already_running")
		return
	}
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	m.running = true
	m.cancel = cancel
	m.done = done
	m.mu.Unlock()

	m.runCycle(ctx)

	go m.loop(loopCtx, done)
	m.log.Info("monitoring_started", zap.Duration("interval", m.interval))
}

// Stop cancels the timer loop and waits for it to exit. An in-flight cycle
// finishes best-effort; no further cycle starts. Idempotent.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	cancel()
	<-done
	m.log.Info("monitoring_stopped")
}

func (m *Monitor) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Monitor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	t := time.NewTicker(m.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.runCycle(ctx)
		}
	}
}

// runCycle probes every active service and persists results in registry
// order. A failed probe or insert never aborts the remaining services.
func (m *Monitor) runCycle(ctx context.Context) {
	start := time.Now()

	services, err := m.services.ListActive(ctx)
	if err != nil {
		m.log.Error("cycle_list_services_failed", zap.Error(err))
		return
	}
	if len(services) == 0 {
		return
	}

	// Probes may fan out, but outcomes land in registry-indexed slots so
	// persistence below keeps registry order.
	outcomes := make([]probe.Outcome, len(services))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for i, svc := range services {
		i, svc := i, svc
		g.Go(func() error {
			probeStart := time.Now()
			outcomes[i] = m.checker.Check(gctx, svc)
			if m.metrics != nil {
				m.metrics.ObserveProbe(svc.Name, outcomes[i].Status, time.Since(probeStart))
			}
			return nil
		})
	}
	_ = g.Wait() // probes never return errors; all failures are classified outcomes

	for i, svc := range services {
		out := outcomes[i]
		rec := resultFromOutcome(svc, out)
		if err := m.results.Append(ctx, rec); err != nil {
			m.log.Error("cycle_store_result_failed",
				zap.String("service", svc.Name),
				zap.Error(err),
			)
			continue
		}
		switch out.Status {
		case domain.StatusOK:
			m.log.Info("service_healthy",
				zap.String("service", svc.Name),
				zap.Int64("response_ms", out.ResponseTimeMS))
		case domain.StatusTimeout:
			m.log.Warn("service_timeout",
				zap.String("service", svc.Name),
				zap.Int64("response_ms", out.ResponseTimeMS))
		default:
			m.log.Warn("service_unhealthy",
				zap.String("service", svc.Name),
				zap.Int64("response_ms", out.ResponseTimeMS),
				zap.String("error", out.ErrorMessage))
		}
	}

	if m.metrics != nil {
		m.metrics.ObserveCycle(time.Since(start))
	}
}

func resultFromOutcome(svc domain.Service, out probe.Outcome) *domain.HealthCheckResult {
	rec := &domain.HealthCheckResult{
		ServiceName: svc.Name,
		ServiceURL:  svc.URL,
		Status:      out.Status,
	}
	ms := out.ResponseTimeMS
	rec.ResponseTime = &ms
	if out.HasBody {
		body := out.ResponseBody
		rec.ResponseBody = &body
	}
	if out.ErrorMessage != "" {
		msg := out.ErrorMessage
		rec.ErrorMessage = &msg
	}
	return rec
}
