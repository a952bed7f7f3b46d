package models

// ScanStatus is the lifecycle state of a scan.
type ScanStatus string

const (
	ScanStatusPending    ScanStatus = "PENDING"
	ScanStatusInProgress ScanStatus = "IN_PROGRESS"
	ScanStatusCompleted  ScanStatus = "COMPLETED"
	ScanStatusFailed     ScanStatus = "FAILED"
	ScanStatusCancelled  ScanStatus = "CANCELLED"
)

// Severity grades a single vulnerability.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Priority grades a recommendation.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// ScanRecord is one completed assessment for an organization/domain pair.
type ScanRecord struct {
	ID               ID               `json:"id"`
	OrganizationName string           `json:"organizationName"`
	TargetDomain     string           `json:"targetDomain"`
	TargetIP         string           `json:"targetIp,omitempty"`
	ScanDate         Timestamp        `json:"scanDate"`
	Status           ScanStatus       `json:"status,omitempty"`
	RiskScore        int              `json:"riskScore"`
	RiskLevel        RiskLevel        `json:"riskLevel"`
	Vulnerabilities  []Vulnerability  `json:"vulnerabilities,omitempty"`
	Recommendations  []Recommendation `json:"recommendations,omitempty"`
	ScanSummary      string           `json:"scanSummary,omitempty"`
}

// Vulnerability is a single finding attached to a scan.
type Vulnerability struct {
	ID             ID       `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Severity       Severity `json:"severity"`
	Category       string   `json:"category"`
	CVEID          string   `json:"cveId,omitempty"`
	AffectedSystem string   `json:"affectedSystem,omitempty"`
	Remediation    string   `json:"remediation,omitempty"`
	CVSSScore      float64  `json:"cvssScore"`
	Exploitable    bool     `json:"exploitable"`
}

// Recommendation is a remediation suggestion produced for a scan.
type Recommendation struct {
	ID             ID       `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Priority       Priority `json:"priority"`
	Category       string   `json:"category"`
	Implementation string   `json:"implementation,omitempty"`
	EstimatedCost  string   `json:"estimatedCost,omitempty"`
	EstimatedTime  string   `json:"estimatedTime,omitempty"`
	ExpectedImpact string   `json:"expectedImpact,omitempty"`
	Implemented    bool     `json:"implemented"`
}
