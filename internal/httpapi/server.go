package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	apimw "github.com/mudatech/healthmon/internal/httpapi/middleware"
	"github.com/mudatech/healthmon/internal/monitor"
	"github.com/mudatech/healthmon/internal/repo"
	"github.com/mudatech/healthmon/internal/stats"
)

// Server wires the read/control endpoints to the monitor, the stores, and
// the aggregation engine.
type Server struct {
	Logger   *zap.Logger
	Services repo.ServiceStore
	Results  repo.ResultStore
	Engine   *stats.Engine
	Monitor  *monitor.Monitor
	Metrics  http.Handler // optional /metrics handler
}

func NewServer(
	log *zap.Logger,
	services repo.ServiceStore,
	results repo.ResultStore,
	engine *stats.Engine,
	mon *monitor.Monitor,
	metricsHandler http.Handler,
) *Server {
	return &Server{
		Logger:   log,
		Services: services,
		Results:  results,
		Engine:   engine,
		Monitor:  mon,
		Metrics:  metricsHandler,
	}
}

// Router builds the full route tree. allowedOrigins is comma-separated;
// empty allows all origins.
func (s *Server) Router(allowedOrigins string, rateLimitRPM, rateLimitBurst int) http.Handler {
	r := chi.NewRouter()
	r.Use(corsHandler(allowedOrigins))
	r.Use(apimw.RateLimit(rateLimitRPM, rateLimitBurst))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/health", func(r chi.Router) {
			r.Get("/status", s.handleHealthStatus)
			r.Get("/uptime", s.handleUptime)
			r.Get("/monitoring", s.handleMonitoringStatus)
			r.Get("/history", s.handleHistory)
			r.Post("/start", s.handleStart)
			r.Post("/stop", s.handleStop)
			r.Post("/check", s.handleManualCheck)
		})
		r.Post("/services", s.handleAddService)
		r.Route("/system", func(r chi.Router) {
			r.Get("/heartbeat", s.handleHeartbeat)
			r.Get("/health", s.handleSystemHealth)
			r.Get("/microservices", s.handleMicroservices)
			r.Get("/microservices/uptime", s.handleMicroservicesUptime)
			r.Get("/events", s.handleEvents)
			r.Get("/requests/stats", s.handleRequestStats)
			r.Get("/requests/status-codes", s.handleStatusCodes)
			r.Get("/performance", s.handlePerformance)
			r.Get("/performance/trends", s.handlePerformanceTrends)
			r.Get("/errors/summary", s.handleErrorSummary)
			r.Get("/errors/details", s.handleErrorDetails)
			r.Get("/live", s.handleLive)
		})
	})

	return r
}

func corsHandler(allowedOrigins string) func(http.Handler) http.Handler {
	if allowedOrigins == "" {
		return cors.AllowAll().Handler
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: strings.Split(allowedOrigins, ","),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	})
}

// envelope is the uniform response shape for every endpoint.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) respond(w http.ResponseWriter, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data, Message: message})
}

// fail logs the cause and returns a safe message; driver details never
// reach the caller.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, safeMsg string) {
	s.Logger.Error("request_failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: safeMsg})
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: msg})
}
