package domain

// ============================================================
// Health & Diagnostics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual upstream.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// Diagnostics is returned by GET /v1/diagnostics. Counters are cumulative
// since process start.
type Diagnostics struct {
	UpstreamCalls    int64            `json:"upstreamCalls"`
	UpstreamErrors   map[string]int64 `json:"upstreamErrors"`
	ForcedLogouts    int64            `json:"forcedLogouts"`
	WorkflowActions  map[string]int64 `json:"workflowActions"`
	StubActions      map[string]int64 `json:"stubActions"`
	CacheHitRate     float64          `json:"cacheHitRate"`
	AvgUpstreamMs    float64          `json:"avgUpstreamMs"`
	CircuitState     string           `json:"circuitState"`
	SessionPresent   bool             `json:"sessionPresent"`
	SessionBackend   string           `json:"sessionBackend"`
	TracingEnabled   bool             `json:"tracingEnabled"`
	PermissionHeader bool             `json:"permissionHeader"`
}

// SuccessResponse wraps a successful mutation response.
type SuccessResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
