package types

import (
	"time"
)

// Severity represents alert severity, ordered from least to most severe
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityOrder maps severities to their rank for comparison
var severityOrder = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Valid reports whether s is a known severity
func (s Severity) Valid() bool {
	_, ok := severityOrder[s]
	return ok
}

// AtLeast reports whether s is at least as severe as other
func (s Severity) AtLeast(other Severity) bool {
	return severityOrder[s] >= severityOrder[other]
}

// Severities lists all known severities from least to most severe
func Severities() []Severity {
	return []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

// AlertState represents the lifecycle state of an alert
type AlertState string

const (
	AlertStateOpen         AlertState = "open"
	AlertStateAcknowledged AlertState = "acknowledged"
)

// Alert represents a detected operational condition
type Alert struct {
	ID             string     `json:"id"`
	Fingerprint    string     `json:"fingerprint"`
	Severity       Severity   `json:"severity"`
	Service        string     `json:"service"`
	Condition      string     `json:"condition"`
	Message        string     `json:"message"`
	State          AlertState `json:"state"`
	DetectedAt     time.Time  `json:"detected_at"`
	AcknowledgedBy string     `json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
}

// AlertCandidate is a raw detection produced by an alert detector.
// Deduplication against open alerts is the gateway's responsibility.
type AlertCandidate struct {
	Severity  Severity `json:"severity"`
	Service   string   `json:"service"`
	Condition string   `json:"condition"`
	Message   string   `json:"message"`
}

// Fingerprint returns the dedup key for this candidate (service + condition)
func (c AlertCandidate) Fingerprint() string {
	return c.Service + "/" + c.Condition
}

// SystemMetrics captures host-level resource usage for one collection cycle
type SystemMetrics struct {
	MemoryUsedBytes  uint64  `json:"memory_used_bytes"`
	MemoryTotalBytes uint64  `json:"memory_total_bytes"`
	MemoryPercent    float64 `json:"memory_percent"`
	CPUPercent       float64 `json:"cpu_percent"`
	DiskUsedBytes    uint64  `json:"disk_used_bytes"`
	DiskTotalBytes   uint64  `json:"disk_total_bytes"`
	DiskPercent      float64 `json:"disk_percent"`
	NetworkInBytes   uint64  `json:"network_in_bytes"`
	NetworkOutBytes  uint64  `json:"network_out_bytes"`
	Goroutines       int     `json:"goroutines"`
}

// ServiceMetric holds per-service measurements from one collection cycle
type ServiceMetric struct {
	Service      string        `json:"service"`
	Environment  string        `json:"environment,omitempty"`
	Status       string        `json:"status"`
	ResponseTime time.Duration `json:"response_time_ns"`
	ErrorRate    float64       `json:"error_rate"`
	RequestRate  float64       `json:"request_rate"`
}

// MetricSnapshot is an immutable bundle of measurements from one collection
// cycle. It is persisted and broadcast to the dashboard topic.
type MetricSnapshot struct {
	Timestamp time.Time       `json:"timestamp"`
	System    SystemMetrics   `json:"system"`
	Services  []ServiceMetric `json:"services,omitempty"`
}

// CommandKind identifies the type of automation command
type CommandKind string

const (
	CommandKindDeployment CommandKind = "deployment"
	CommandKindScale      CommandKind = "scale"
)

// CommandStatus represents the one-way status progression of a command
type CommandStatus string

const (
	CommandStatusPending   CommandStatus = "pending"
	CommandStatusTriggered CommandStatus = "triggered"
	CommandStatusFailed    CommandStatus = "failed"
)

// DeploymentCommand is a client-issued deployment or scaling request.
// Status transitions are one-way: pending -> triggered or pending -> failed.
type DeploymentCommand struct {
	ID          string            `json:"id"`
	Kind        CommandKind       `json:"kind"`
	RequestedBy string            `json:"requested_by"`
	Project     string            `json:"project,omitempty"`
	Environment string            `json:"environment,omitempty"`
	Service     string            `json:"service,omitempty"`
	Parameters  map[string]string `json:"parameters,omitempty"`
	Status      CommandStatus     `json:"status"`
	RequestedAt time.Time         `json:"requested_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// AutomationResult is the outcome returned by an automation collaborator
type AutomationResult struct {
	Reference string `json:"reference,omitempty"`
	Message   string `json:"message,omitempty"`
}

// DependencyStatus reports reachability of a single dependency
type DependencyStatus struct {
	Name      string        `json:"name"`
	Connected bool          `json:"connected"`
	Required  bool          `json:"required"`
	Message   string        `json:"message,omitempty"`
	Latency   time.Duration `json:"latency_ns"`
}

// ServiceStatus reports the status of a monitored service
type ServiceStatus struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "up", "degraded", "down"
	Message string `json:"message,omitempty"`
}

// HealthRecord is the composite health document. It is recomputed wholesale
// on every probe cycle, never mutated incrementally.
type HealthRecord struct {
	Status       string             `json:"status"` // "healthy", "degraded", "unhealthy"
	Timestamp    time.Time          `json:"timestamp"`
	Uptime       string             `json:"uptime"`
	Dependencies []DependencyStatus `json:"dependencies"`
	System       SystemMetrics      `json:"system"`
	Services     []ServiceStatus    `json:"services,omitempty"`
}

// Healthy reports whether the top-level status allows a 2xx health response
func (h *HealthRecord) Healthy() bool {
	return h.Status != "unhealthy"
}

// SecurityIssue is a single finding from a security scan
type SecurityIssue struct {
	Severity    Severity `json:"severity"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Resource    string   `json:"resource,omitempty"`
}

// SecurityScanReport is the result of one security scan cycle.
// It is always persisted but broadcast only when Issues is non-empty.
type SecurityScanReport struct {
	Timestamp time.Time       `json:"timestamp"`
	Issues    []SecurityIssue `json:"issues"`
}

// LogSummary is the result of one log summarization cycle
type LogSummary struct {
	Timestamp  time.Time      `json:"timestamp"`
	Window     string         `json:"window"`
	TotalLines int64          `json:"total_lines"`
	ErrorCount int64          `json:"error_count"`
	WarnCount  int64          `json:"warn_count"`
	TopErrors  []string       `json:"top_errors,omitempty"`
	ByService  map[string]int `json:"by_service,omitempty"`
}

// PerformanceAnalysis summarizes service performance over a window
type PerformanceAnalysis struct {
	Timestamp time.Time           `json:"timestamp"`
	Window    string              `json:"window"`
	Findings  []PerformanceIssue  `json:"findings,omitempty"`
	Services  []ServicePerformance `json:"services,omitempty"`
}

// PerformanceIssue flags a service whose performance crossed a threshold
type PerformanceIssue struct {
	Service string `json:"service"`
	Metric  string `json:"metric"`
	Detail  string `json:"detail"`
}

// ServicePerformance holds aggregated timings for one service
type ServicePerformance struct {
	Service         string        `json:"service"`
	AvgResponseTime time.Duration `json:"avg_response_time_ns"`
	P95ResponseTime time.Duration `json:"p95_response_time_ns"`
	ErrorRate       float64       `json:"error_rate"`
}

// RecordKind tags persisted snapshot records
type RecordKind string

const (
	RecordKindMetrics  RecordKind = "metrics"
	RecordKindHealth   RecordKind = "health"
	RecordKindSecurity RecordKind = "security"
	RecordKindLogs     RecordKind = "logs"
)

// Record is a timestamped persisted snapshot of any kind
type Record struct {
	ID        string      `json:"id"`
	Kind      RecordKind  `json:"kind"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}
