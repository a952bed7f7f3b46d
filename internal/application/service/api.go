// Package service provides the client-side application services that sit
// between a UI collaborator and the remote risk service.
package service

import (
	"context"
)

// APIClient is the transport the services talk through.
// *httpclient.Client satisfies it.
type APIClient interface {
	Get(ctx context.Context, path string, out interface{}) error
	Post(ctx context.Context, path string, body, out interface{}) error
}

// Fallback messages used when the service does not supply its own.
const (
	MsgLoginFailed         = "Login failed"
	MsgRegistrationFailed  = "Registration failed"
	MsgHealthCheckFailed   = "Health check failed"
	MsgScanFailed          = "Scan failed"
	MsgScanResultFailed    = "Failed to retrieve scan result"
	MsgScanHistoryFailed   = "Failed to retrieve scan history"
	MsgNoScansFound        = "No scans found"
	MsgRiskAnalysisFailed  = "Failed to retrieve risk analysis"
	MsgScoreSummaryFailed  = "Failed to retrieve score summary"
	MsgReportsFailed       = "Failed to retrieve reports"
	MsgComprehensiveFailed = "Failed to generate comprehensive report"
	MsgSystemStatsFailed   = "Failed to retrieve system statistics"
	MsgUsersFailed         = "Failed to retrieve users"
	MsgSystemHealthFailed  = "Failed to retrieve system health"
)
