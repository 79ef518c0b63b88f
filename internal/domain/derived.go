package domain

import "time"

// RecentHealthStatus is the most recent probe record per active service,
// re-derived on every read. Services with no checks yet carry a nil status.
type RecentHealthStatus struct {
	ServiceName   string     `json:"service_name"`
	ServiceURL    string     `json:"service_url"`
	CurrentStatus *Status    `json:"current_status"`
	ResponseTime  *int64     `json:"response_time"`
	LastCheck     *time.Time `json:"last_check"`
	ResponseBody  *string    `json:"response_body"`
	ErrorMessage  *string    `json:"error_message"`
}

// ServiceUptime is the windowed per-service uptime summary. Services with
// zero checks in the window are omitted from uptime listings.
type ServiceUptime struct {
	ServiceName      string     `json:"service_name"`
	TotalChecks      int64      `json:"total_checks"`
	SuccessfulChecks int64      `json:"successful_checks"`
	UptimePercentage float64    `json:"uptime_percentage"`
	AvgResponseTime  *float64   `json:"avg_response_time"`
	FirstCheck       *time.Time `json:"first_check"`
	LastCheck        *time.Time `json:"last_check"`
}
