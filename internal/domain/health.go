package domain

// ServiceHealth is the health of one dependency.
type ServiceHealth struct {
	Name          string  `json:"name"`
	Status        string  `json:"status"`
	LatencyMs     int64   `json:"latency_ms"`
	UptimePercent float64 `json:"uptime_percent"`
	LastChecked   string  `json:"last_checked"`
}

// HealthStatus is the overall health response.
type HealthStatus struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
}

// OpsMetrics is the operational snapshot served by GET /v1/metrics/ops.
type OpsMetrics struct {
	TotalRequests   int64   `json:"total_requests"`
	ErrorRate       float64 `json:"error_rate"`
	CacheHitRate    float64 `json:"cache_hit_rate"`
	ItemsApproved   int64   `json:"items_approved"`
	ItemsRejected   int64   `json:"items_rejected"`
	HistoryFailures int64   `json:"history_failures"`
	Period          string  `json:"period"`
}
