package types

// Health status constants represent the operational state of a subsystem.
const (
	// StatusHealthy indicates the subsystem is fully operational.
	StatusHealthy = "healthy"

	// StatusDegraded indicates the subsystem is operational but experiencing issues.
	StatusDegraded = "degraded"

	// StatusUnhealthy indicates the subsystem is not operational.
	StatusUnhealthy = "unhealthy"
)

// HealthStatus represents the health of one subsystem: the event bus, the
// live state table, the entity registry, or the dashboard source.
type HealthStatus struct {
	// Status is the current health state (healthy, degraded, or unhealthy).
	Status string `json:"status"`

	// Message provides a human-readable description of the health status.
	Message string `json:"message,omitempty"`

	// Details contains additional context: error text, entity counts,
	// or per-check breakdowns for combined statuses.
	Details map[string]any `json:"details,omitempty"`
}

// IsHealthy returns true if the status is StatusHealthy.
func (h HealthStatus) IsHealthy() bool {
	return h.Status == StatusHealthy
}

// IsDegraded returns true if the status is StatusDegraded.
func (h HealthStatus) IsDegraded() bool {
	return h.Status == StatusDegraded
}

// IsUnhealthy returns true if the status is StatusUnhealthy.
func (h HealthStatus) IsUnhealthy() bool {
	return h.Status == StatusUnhealthy
}

// String renders the status with its message, suitable for log lines.
func (h HealthStatus) String() string {
	if h.Message == "" {
		return h.Status
	}
	return h.Status + ": " + h.Message
}

// NewHealthyStatus creates a new healthy status with an optional message.
func NewHealthyStatus(message string) HealthStatus {
	return HealthStatus{
		Status:  StatusHealthy,
		Message: message,
	}
}

// NewDegradedStatus creates a new degraded status with a message and optional details.
func NewDegradedStatus(message string, details map[string]any) HealthStatus {
	return HealthStatus{
		Status:  StatusDegraded,
		Message: message,
		Details: details,
	}
}

// NewUnhealthyStatus creates a new unhealthy status with a message and optional details.
func NewUnhealthyStatus(message string, details map[string]any) HealthStatus {
	return HealthStatus{
		Status:  StatusUnhealthy,
		Message: message,
		Details: details,
	}
}
