package domain

import "time"

// HealthStatus grades the outcome of a single dependency probe.
type HealthStatus string

const (
	// HealthStatusOK indicates the dependency answered within its budget.
	HealthStatusOK HealthStatus = "ok"
	// HealthStatusDegraded indicates the dependency answered with an error.
	HealthStatusDegraded HealthStatus = "degraded"
	// HealthStatusError indicates the probe timed out or was cancelled.
	HealthStatusError HealthStatus = "error"
)

// SystemHealthCheck is the result of probing one dependency.
type SystemHealthCheck struct {
	Status    HealthStatus
	Detail    string
	Error     string
	Latency   time.Duration
	CheckedAt time.Time
}

// SystemHealthReport aggregates dependency probes for the readiness endpoint.
type SystemHealthReport struct {
	Status      HealthStatus
	Checks      map[string]SystemHealthCheck
	Version     string
	Environment string
	Uptime      time.Duration
	GeneratedAt time.Time
}

// Healthy reports whether every check passed.
func (r SystemHealthReport) Healthy() bool {
	return r.Status == HealthStatusOK
}
