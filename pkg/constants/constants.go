// Package constants defines system-wide constants for the CyberRisk client layer.
// This package provides type-safe constant definitions used across all modules.
package constants

import "time"

// ================================================================================
// Transport Constants
// ================================================================================

const (
	// DefaultBaseURL is the API root used when no override is configured.
	DefaultBaseURL = "http://localhost:8080/api"

	// DefaultRequestTimeout aborts any single request that takes longer.
	DefaultRequestTimeout = 10 * time.Second

	// ContentTypeJSON is sent on every outgoing request.
	ContentTypeJSON = "application/json"

	// BearerScheme prefixes the token in the Authorization header.
	BearerScheme = "Bearer"
)

// HTTP header names used by the transport chain.
const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderAccept        = "Accept"
	HeaderRequestID     = "X-Request-ID"
)

// ================================================================================
// Persisted Session Keys
// ================================================================================

const (
	// StorageKeyToken holds the opaque bearer token.
	StorageKeyToken = "token"

	// StorageKeyUser holds the JSON-serialized user profile.
	StorageKeyUser = "user"
)

// SessionKeys lists every key that makes up a persisted session. They are
// always written and cleared together.
var SessionKeys = []string{StorageKeyToken, StorageKeyUser}

// ================================================================================
// API Endpoint Paths
// ================================================================================

const (
	PathAuthLogin    = "/auth/login"
	PathAuthRegister = "/auth/register"
	PathAuthHealth   = "/auth/health"

	PathScanPerform = "/scan/perform"
	PathScanByID    = "/scan/%s"
	PathScanHistory = "/scan/history"

	PathRiskAnalysis = "/analyze/risk-analysis"
	PathScoreSummary = "/analyze/score-summary"

	PathReportsByUser       = "/report/%s"
	PathMyReports           = "/report/my-reports"
	PathComprehensiveReport = "/report/comprehensive"

	PathAdminStats       = "/admin/stats"
	PathAdminUsers       = "/admin/users"
	PathAdminUsersByRole = "/admin/users/role/%s"
	PathAdminHealth      = "/admin/health"
)

// ================================================================================
// Scan Constants
// ================================================================================

// ScanTypeComprehensive is the only scan mode the client requests.
const ScanTypeComprehensive = "comprehensive"

// MinPasswordLength is enforced locally before registration is attempted.
const MinPasswordLength = 6

// ================================================================================
// Storage Drivers
// ================================================================================

// StoreDriver selects the KeyValueStore backend.
type StoreDriver string

const (
	StoreDriverMemory StoreDriver = "memory"
	StoreDriverSQLite StoreDriver = "sqlite"
	StoreDriverRedis  StoreDriver = "redis"
)

// ================================================================================
// Logging Constants
// ================================================================================

// LogLevel represents the severity level of log messages
type LogLevel string

const (
	// LogLevelDebug is the most verbose logging level
	LogLevelDebug LogLevel = "debug"

	// LogLevelInfo is the standard informational logging level
	LogLevelInfo LogLevel = "info"

	// LogLevelWarn indicates potential issues
	LogLevelWarn LogLevel = "warn"

	// LogLevelError indicates errors that need attention
	LogLevelError LogLevel = "error"
)

// ================================================================================
// Context Keys
// ================================================================================

// ContextKey represents keys used in context.Context
type ContextKey string

const (
	// ContextKeyRequestID is the key for request ID in context
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeyTraceID is the key for distributed trace ID in context
	ContextKeyTraceID ContextKey = "trace_id"

	// ContextKeyUsername carries the authenticated username inside the mock API.
	ContextKeyUsername ContextKey = "username"
)
