package domain

import "time"

// Status classifies the outcome of a single health probe.
type Status string

const (
	StatusOK      Status = "ok"
	StatusError   Status = "error"
	StatusTimeout Status = "timeout"
)

// Healthy reports whether the status counts toward uptime.
func (s Status) Healthy() bool { return s == StatusOK }

// Service is a registry entry for one monitored endpoint. Name is the
// natural key; ExpectedResponse is matched byte-for-byte against the
// response body.
type Service struct {
	Name             string        `json:"name"`
	URL              string        `json:"url"`
	ExpectedResponse string        `json:"expected_response"`
	IsActive         bool          `json:"is_active"`
	Timeout          time.Duration `json:"timeout"`
	CheckInterval    time.Duration `json:"check_interval"` // informational; cadence is global
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// HealthCheckResult is one appended probe record. Rows are never updated
// or deleted; the accumulated history backs every aggregate view.
type HealthCheckResult struct {
	ID           int64     `json:"id"`
	ServiceName  string    `json:"service_name"`
	ServiceURL   string    `json:"service_url"`
	Status       Status    `json:"status"`
	ResponseTime *int64    `json:"response_time"` // milliseconds; nil when unmeasured
	ResponseBody *string   `json:"response_body"`
	ErrorMessage *string   `json:"error_message"`
	CreatedAt    time.Time `json:"created_at"`
}
