package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRiskLevel(t *testing.T) {
	tests := []struct {
		in   string
		want RiskLevel
		ok   bool
	}{
		{"CRITICAL", RiskLevelCritical, true},
		{"Critical", RiskLevelCritical, true},
		{"Critical Risk", RiskLevelCritical, true},
		{"medium", RiskLevelMedium, true},
		{" LOW ", RiskLevelLow, true},
		{"No scans performed", RiskLevel("No scans performed"), false},
	}
	for _, tt := range tests {
		got, ok := ParseRiskLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestRiskLevel_Metadata(t *testing.T) {
	assert.Equal(t, "Critical Risk", RiskLevelCritical.DisplayName())
	assert.Equal(t, "#DC2626", RiskLevelCritical.HexColor())
	assert.Equal(t, "yellow", RiskLevelMedium.Color())
	lo, hi := RiskLevelHigh.ScoreRange()
	assert.Equal(t, 60, lo)
	assert.Equal(t, 79, hi)
	assert.False(t, RiskLevel("Unknown").Valid())
	assert.Equal(t, "Unknown", RiskLevel("Unknown").DisplayName())
}

func TestScanRecord_DecodesServerShape(t *testing.T) {
	body := `{
		"id": 42,
		"organizationName": "Acme",
		"targetDomain": "acme.example",
		"scanDate": "2024-03-01T10:15:30.123456",
		"status": "COMPLETED",
		"riskScore": 72,
		"riskLevel": "HIGH",
		"vulnerabilities": [{"id": "v1", "title": "Missing MFA", "severity": "CRITICAL", "cvssScore": 9.2, "exploitable": true}]
	}`

	var rec ScanRecord
	require.NoError(t, json.Unmarshal([]byte(body), &rec))
	assert.Equal(t, ID("42"), rec.ID)
	assert.Equal(t, RiskLevelHigh, rec.RiskLevel)
	assert.Equal(t, ScanStatusCompleted, rec.Status)
	assert.Equal(t, 2024, rec.ScanDate.Year())
	assert.Equal(t, time.March, rec.ScanDate.Month())
	require.Len(t, rec.Vulnerabilities, 1)
	assert.Equal(t, SeverityCritical, rec.Vulnerabilities[0].Severity)
}

func TestTimestamp_Layouts(t *testing.T) {
	for _, in := range []string{
		"2024-02-01",
		"2024-02-01T08:00:00",
		"2024-02-01T08:00:00Z",
		"2024-02-01T08:00:00+02:00",
		"2024-02-01 08:00:00",
	} {
		_, err := ParseTimestamp(in)
		assert.NoError(t, err, in)
	}
	_, err := ParseTimestamp("01/02/2024")
	assert.Error(t, err)

	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	assert.True(t, ts.IsZero())

	out, err := json.Marshal(MustTimestamp("2024-02-01"))
	require.NoError(t, err)
	assert.Equal(t, `"2024-02-01T00:00:00Z"`, string(out))
}

func TestUserProfile_IsAdmin(t *testing.T) {
	var nilProfile *UserProfile
	assert.False(t, nilProfile.IsAdmin())
	assert.True(t, (&UserProfile{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&UserProfile{Role: RoleUser}).IsAdmin())
}
