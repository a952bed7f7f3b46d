package dto

import (
	"strings"

	"github.com/turtacn/cyberrisk/pkg/constants"
	"github.com/turtacn/cyberrisk/pkg/errors"
)

// ScanRequest is the body of POST /scan/perform.
type ScanRequest struct {
	OrganizationName string `json:"organizationName"`
	TargetDomain     string `json:"targetDomain"`
	TargetIP         string `json:"targetIp,omitempty"`
	ScanType         string `json:"scanType"`
}

// NewScanRequest builds a request in the default comprehensive mode.
func NewScanRequest(organizationName, targetDomain, targetIP string) *ScanRequest {
	return &ScanRequest{
		OrganizationName: organizationName,
		TargetDomain:     targetDomain,
		TargetIP:         targetIP,
		ScanType:         constants.ScanTypeComprehensive,
	}
}

// RequireTarget reports the mandatory scan fields a form collaborator must
// collect before calling PerformScan.
func (r *ScanRequest) RequireTarget() error {
	switch {
	case strings.TrimSpace(r.OrganizationName) == "":
		return errors.ErrValidation("Organization name is required").WithMetadata("field", "organizationName")
	case strings.TrimSpace(r.TargetDomain) == "":
		return errors.ErrValidation("Target domain is required").WithMetadata("field", "targetDomain")
	}
	return nil
}
