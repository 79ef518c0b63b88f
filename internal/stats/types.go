package stats

import "time"

// SystemHealth is the global trailing-24h health banding.
type SystemHealth struct {
	Status          string    `json:"status"` // healthy | warning | critical
	Uptime          float64   `json:"uptime"`
	TotalServices   int       `json:"total_services"`
	HealthyServices int       `json:"healthy_services"`
	LastCheck       time.Time `json:"last_check"`
}

// HeartbeatPoint is one hourly bucket on the heartbeat strip. Status is 1
// when the bucket is healthy (including empty buckets) and 0 otherwise.
type HeartbeatPoint struct {
	Hour     string `json:"hour"` // "15:04"
	Status   int    `json:"status"`
	Requests int64  `json:"requests"` // synthetic, derived from check volume
}

type ServiceErrorRate struct {
	ServiceName string  `json:"service_name"`
	ErrorCount  int64   `json:"error_count"`
	ErrorRate   float64 `json:"error_rate"`
}

type ErrorSummary struct {
	TotalErrors     int64              `json:"total_errors"`
	ErrorRate       float64            `json:"error_rate"`
	MostCommonError string             `json:"most_common_error"`
	ErrorTrend      string             `json:"error_trend"` // decreasing | increasing | stable
	ErrorsByService []ServiceErrorRate `json:"errors_by_service"`
}

type StatusCodeCount struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Count       int64   `json:"count"`
	Percentage  float64 `json:"percentage"`
}

type RequestStats struct {
	RequestsToday      int64   `json:"requests_today"`
	ErrorsToday        int64   `json:"errors_today"`
	ErrorRate          float64 `json:"error_rate"`
	AvgResponseTime    int64   `json:"avg_response_time"`
	ResponseTimeChange int64   `json:"response_time_change"`
	RequestsChange     int64   `json:"requests_change"`
}

// MemoryUsage is part of the synthetic performance snapshot.
type MemoryUsage struct {
	Used       string `json:"used"`
	Total      string `json:"total"`
	Percentage int    `json:"percentage"`
}

// Performance holds simulated load indicators derived from check volume.
// They are approximations, not measured telemetry; a real metrics source can
// replace this module without changing the engine's contract.
type Performance struct {
	CPUUsage            int         `json:"cpu_usage"`
	MemoryUsage         MemoryUsage `json:"memory_usage"`
	ActiveConnections   int64       `json:"active_connections"`
	QueueDepth          int64       `json:"queue_depth"`
	DatabaseConnections int         `json:"database_connections"`
	CacheHitRate        int         `json:"cache_hit_rate"`
}

type TrendPoint struct {
	Timestamp         string `json:"timestamp"` // "2006-01-02 15:00:00"
	CPUUsage          int    `json:"cpu_usage"`
	MemoryUsage       int    `json:"memory_usage"`
	ActiveConnections int64  `json:"active_connections"`
	QueueDepth        int64  `json:"queue_depth"`
}

// Event is a narrative row derived from the raw probe log.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Event     string    `json:"event"`
	Status    string    `json:"status"` // up | down
	Duration  *int64    `json:"duration"`
	Service   string    `json:"service"`
}

type ErrorDetail struct {
	Timestamp    time.Time `json:"timestamp"`
	Service      string    `json:"service"`
	ErrorCode    string    `json:"error_code"`
	ErrorMessage string    `json:"error_message"`
	RequestURL   string    `json:"request_url"`
	ResponseTime *int64    `json:"response_time"`
}

type LiveService struct {
	Name         string     `json:"name"`
	Status       string     `json:"status"`
	ResponseTime *int64     `json:"response_time"`
	LastCheck    *time.Time `json:"last_check"`
}

type LivePerformance struct {
	CPU         int   `json:"cpu"`
	Memory      int   `json:"memory"`
	Connections int64 `json:"connections"`
}

type LiveStatus struct {
	Timestamp    time.Time       `json:"timestamp"`
	SystemStatus string          `json:"system_status"`
	Services     []LiveService   `json:"services"`
	Performance  LivePerformance `json:"performance"`
}

// MicroserviceStatus joins the registry with recent status and 24h uptime.
type MicroserviceStatus struct {
	Name         string     `json:"name"`
	Status       string     `json:"status"` // ok | error | timeout | unknown
	Uptime       float64    `json:"uptime"`
	LastCheck    *time.Time `json:"last_check"`
	ResponseTime *int64     `json:"response_time"`
	URL          string     `json:"url"`
}
