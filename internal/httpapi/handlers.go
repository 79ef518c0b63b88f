package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mudatech/healthmon/internal/domain"
	"github.com/mudatech/healthmon/internal/repo"
)

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func queryDate(r *http.Request) time.Time {
	if v := r.URL.Query().Get("date"); v != "" {
		if d, err := time.Parse("2006-01-02", v); err == nil {
			return d.UTC()
		}
	}
	return time.Now().UTC().Truncate(24 * time.Hour)
}

// ---- health routes ----

func (s *Server) handleHealthStatus(w http.ResponseWriter, r *http.Request) {
	rows, err := s.Results.RecentStatus(r.Context())
	if err != nil {
		s.fail(w, r, err, "Failed to retrieve health status")
		return
	}
	s.respond(w, rows, "Health status retrieved successfully")
}

func (s *Server) handleUptime(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", 24)
	uptime, err := s.Engine.Uptime(r.Context(), hours)
	if err != nil {
		s.fail(w, r, err, "Failed to retrieve uptime statistics")
		return
	}
	s.respond(w, uptime, fmt.Sprintf("Uptime statistics for last %d hours", hours))
}

func (s *Server) handleMonitoringStatus(w http.ResponseWriter, r *http.Request) {
	running := s.Monitor.IsRunning()
	state := "stopped"
	if running {
		state = "running"
	}
	s.respond(w, map[string]any{
		"is_monitoring": running,
		"timestamp":     time.Now().UTC(),
	}, "Health monitoring is "+state)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", 24)
	f := repo.HistoryFilter{
		Service: r.URL.Query().Get("service"),
		Since:   time.Now().UTC().Add(-time.Duration(hours) * time.Hour),
		Limit:   queryInt(r, "limit", 100),
	}
	rows, err := s.Results.History(r.Context(), f)
	if err != nil {
		s.fail(w, r, err, "Failed to retrieve health check history")
		return
	}
	s.respond(w, rows, "Health check history retrieved successfully")
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.Monitor.Start(r.Context())
	s.respond(w, nil, "Health monitoring started successfully")
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.Monitor.Stop()
	s.respond(w, nil, "Health monitoring stopped successfully")
}

// handleManualCheck currently answers with the recent status snapshot.
func (s *Server) handleManualCheck(w http.ResponseWriter, r *http.Request) {
	rows, err := s.Results.RecentStatus(r.Context())
	if err != nil {
		s.fail(w, r, err, "Failed to trigger health check")
		return
	}
	s.respond(w, rows, "Manual health check completed")
}

// ---- administrative registry insert ----

type addServicePayload struct {
	Name             string `json:"name"`
	URL              string `json:"url"`
	ExpectedResponse string `json:"expected_response"`
	TimeoutMS        int64  `json:"timeout_ms"`
}

func (s *Server) handleAddService(w http.ResponseWriter, r *http.Request) {
	var p addServicePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.Name == "" || p.URL == "" {
		s.badRequest(w, "name and url are required")
		return
	}
	if u, err := url.ParseRequestURI(p.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		s.badRequest(w, "url must be http or https")
		return
	}

	svc := &domain.Service{
		Name:             p.Name,
		URL:              p.URL,
		ExpectedResponse: p.ExpectedResponse,
		IsActive:         true,
		Timeout:          time.Duration(p.TimeoutMS) * time.Millisecond,
	}
	if err := s.Services.Add(r.Context(), svc); err != nil {
		s.fail(w, r, err, "Failed to add service")
		return
	}
	s.Logger.Info("service_added", zap.String("name", svc.Name), zap.String("url", svc.URL))
	s.respond(w, svc, "Service added successfully")
}

// ---- system routes ----

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", 24)
	points, err := s.Engine.Heartbeat(r.Context(), hours)
	if err != nil {
		s.fail(w, r, err, "Failed to retrieve system heartbeat data")
		return
	}
	s.respond(w, points, fmt.Sprintf("System heartbeat data for last %d hours", hours))
}

func (s *Server) handleSystemHealth(w http.ResponseWriter, r *http.Request) {
	health, err := s.Engine.SystemHealth(r.Context())
	if err != nil {
		s.fail(w, r, err, "Failed to retrieve system health")
		return
	}
	s.respond(w, health, "System health status retrieved successfully")
}

func (s *Server) handleMicroservices(w http.ResponseWriter, r *http.Request) {
	rows, err := s.Engine.MicroservicesStatus(r.Context())
	if err != nil {
		s.fail(w, r, err, "Failed to retrieve microservices status")
		return
	}
	s.respond(w, rows, "Microservices status retrieved successfully")
}

func (s *Server) handleMicroservicesUptime(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", 24)
	uptime, err := s.Engine.Uptime(r.Context(), hours)
	if err != nil {
		s.fail(w, r, err, "Failed to retrieve microservices uptime")
		return
	}
	s.respond(w, uptime, fmt.Sprintf("Microservices uptime statistics for last %d hours", hours))
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.Engine.Events(r.Context(), queryInt(r, "limit", 50))
	if err != nil {
		s.fail(w, r, err, "Failed to retrieve system events")
		return
	}
	s.respond(w, events, "System events retrieved successfully")
}

func (s *Server) handleRequestStats(w http.ResponseWriter, r *http.Request) {
	day := queryDate(r)
	out, err := s.Engine.RequestStats(r.Context(), day)
	if err != nil {
		s.fail(w, r, err, "Failed to retrieve request statistics")
		return
	}
	s.respond(w, out, fmt.Sprintf("Request statistics for %s", day.Format("2006-01-02")))
}

func (s *Server) handleStatusCodes(w http.ResponseWriter, r *http.Request) {
	day := queryDate(r)
	dist, err := s.Engine.StatusDistribution(r.Context(), day)
	if err != nil {
		s.fail(w, r, err, "Failed to retrieve status code distribution")
		return
	}
	s.respond(w, dist, fmt.Sprintf("HTTP status code distribution for %s", day.Format("2006-01-02")))
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	perf, err := s.Engine.Performance(r.Context())
	if err != nil {
		s.fail(w, r, err, "Failed to retrieve performance metrics")
		return
	}
	s.respond(w, perf, "Performance metrics retrieved successfully")
}

func (s *Server) handlePerformanceTrends(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", 24)
	trends, err := s.Engine.PerformanceTrends(r.Context(), hours)
	if err != nil {
		s.fail(w, r, err, "Failed to retrieve performance trends")
		return
	}
	s.respond(w, trends, fmt.Sprintf("Performance trends for last %d hours", hours))
}

func (s *Server) handleErrorSummary(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", 24)
	summary, err := s.Engine.ErrorSummary(r.Context(), hours)
	if err != nil {
		s.fail(w, r, err, "Failed to retrieve error summary")
		return
	}
	s.respond(w, summary, fmt.Sprintf("Error summary for last %d hours", hours))
}

func (s *Server) handleErrorDetails(w http.ResponseWriter, r *http.Request) {
	details, err := s.Engine.ErrorDetails(r.Context(),
		queryInt(r, "limit", 100),
		r.URL.Query().Get("service"),
	)
	if err != nil {
		s.fail(w, r, err, "Failed to retrieve error details")
		return
	}
	s.respond(w, details, "Error details retrieved successfully")
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	live, err := s.Engine.Live(r.Context())
	if err != nil {
		s.fail(w, r, err, "Failed to retrieve live system status")
		return
	}
	s.respond(w, live, "Live system status retrieved successfully")
}
