package dto

import "time"

// RuntimeMetrics is a lightweight snapshot of client activity.
type RuntimeMetrics struct {
	APIRequests          uint64    `json:"api_requests"`
	APIErrors            uint64    `json:"api_errors"`
	AverageAPILatencyMs  float64   `json:"average_api_latency_ms"`
	SignalsEmitted       uint64    `json:"signals_emitted"`
	StaleResponses       uint64    `json:"stale_responses"`
	RefreshJobsSucceeded uint64    `json:"refresh_jobs_succeeded"`
	RefreshJobsFailed    uint64    `json:"refresh_jobs_failed"`
	Goroutines           int       `json:"goroutines"`
	GeneratedAt          time.Time `json:"generated_at"`
}

// ReadinessReport describes whether the watcher can serve fresh views.
type ReadinessReport struct {
	Ready         bool      `json:"ready"`
	Authenticated bool      `json:"authenticated"`
	Views         []string  `json:"views"`
	LastPoll      time.Time `json:"last_poll,omitempty"`
	Reason        string    `json:"reason,omitempty"`
}
