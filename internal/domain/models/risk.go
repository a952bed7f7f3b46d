package models

import (
	"encoding/json"
	"strings"
)

// RiskLevel is the categorical label derived from a risk score.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "Low"
	RiskLevelMedium   RiskLevel = "Medium"
	RiskLevelHigh     RiskLevel = "High"
	RiskLevelCritical RiskLevel = "Critical"
)

// RiskLevels lists the canonical levels from least to most severe.
var RiskLevels = []RiskLevel{RiskLevelLow, RiskLevelMedium, RiskLevelHigh, RiskLevelCritical}

// riskLevelMeta describes how a level is presented.
type riskLevelMeta struct {
	displayName string
	color       string
	hex         string
	minScore    int
	maxScore    int
}

var riskLevelTable = map[RiskLevel]riskLevelMeta{
	RiskLevelLow:      {"Low Risk", "green", "#10B981", 0, 39},
	RiskLevelMedium:   {"Medium Risk", "yellow", "#F59E0B", 40, 59},
	RiskLevelHigh:     {"High Risk", "red", "#EF4444", 60, 79},
	RiskLevelCritical: {"Critical Risk", "red", "#DC2626", 80, 100},
}

// ParseRiskLevel maps the spellings the service uses ("CRITICAL", "Critical",
// "Critical Risk", "critical") onto a canonical level. Unknown values are
// returned unchanged with ok=false.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.TrimSuffix(norm, " risk")
	for _, level := range RiskLevels {
		if strings.ToLower(string(level)) == norm {
			return level, true
		}
	}
	return RiskLevel(s), false
}

// UnmarshalJSON normalizes the wire spelling.
func (l *RiskLevel) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l, _ = ParseRiskLevel(raw)
	return nil
}

// UnmarshalText normalizes map keys such as the display names used in a
// risk level distribution.
func (l *RiskLevel) UnmarshalText(text []byte) error {
	*l, _ = ParseRiskLevel(string(text))
	return nil
}

// Valid reports whether l is one of the canonical levels.
func (l RiskLevel) Valid() bool {
	_, ok := riskLevelTable[l]
	return ok
}

// DisplayName returns e.g. "Critical Risk".
func (l RiskLevel) DisplayName() string {
	if meta, ok := riskLevelTable[l]; ok {
		return meta.displayName
	}
	return string(l)
}

// Color returns the coarse colour name used by gauges.
func (l RiskLevel) Color() string {
	return riskLevelTable[l].color
}

// HexColor returns the palette colour.
func (l RiskLevel) HexColor() string {
	return riskLevelTable[l].hex
}

// ScoreRange returns the inclusive score band covered by l.
func (l RiskLevel) ScoreRange() (lo, hi int) {
	meta := riskLevelTable[l]
	return meta.minScore, meta.maxScore
}

// Classification is the display-ready result of classifying a score.
type Classification struct {
	Level       RiskLevel `json:"riskLevel"`
	DisplayName string    `json:"displayName"`
	Color       string    `json:"color"`
	HexColor    string    `json:"hexColor"`
}

// RiskStatistics summarizes a set of scan records.
type RiskStatistics struct {
	AverageScore          int               `json:"averageScore"`
	HighestScore          int               `json:"highestScore"`
	LowestScore           int               `json:"lowestScore"`
	TotalScans            int               `json:"totalScans"`
	RiskLevelDistribution map[RiskLevel]int `json:"riskLevelDistribution"`
}

// RiskTrendPoint is one time-ordered sample derived from a scan record.
type RiskTrendPoint struct {
	Date         string    `json:"date"`
	Score        int       `json:"score"`
	RiskLevel    RiskLevel `json:"riskLevel"`
	Organization string    `json:"organization"`
}

// Trend labels reported by risk analysis.
const (
	TrendImproving     = "Improving"
	TrendDeteriorating = "Deteriorating"
	TrendStable        = "Stable"
	TrendNoData        = "No data available"
)
