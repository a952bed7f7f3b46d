package models

// RiskAnalysis is the server-computed analysis from /analyze/risk-analysis.
type RiskAnalysis struct {
	Trend        string `json:"trend"`
	AverageScore int    `json:"averageScore"`
	Improvement  int    `json:"improvement,omitempty"`
	TotalScans   int    `json:"totalScans"`
	UserID       ID     `json:"userId,omitempty"`
	Username     string `json:"username,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// ScoreSummary is the latest-score digest from /analyze/score-summary.
// RiskLevel is free text because the service reports "No scans performed"
// when the history is empty.
type ScoreSummary struct {
	LatestScore  int        `json:"latestScore"`
	RiskLevel    string     `json:"riskLevel"`
	ScanDate     *Timestamp `json:"scanDate"`
	Organization string     `json:"organization,omitempty"`
	TotalScans   int        `json:"totalScans"`
	UserID       ID         `json:"userId,omitempty"`
}

// ReportList is returned by the per-user and my-reports endpoints.
type ReportList struct {
	UserID       ID           `json:"userId"`
	Username     string       `json:"username,omitempty"`
	Organization string       `json:"organization,omitempty"`
	Reports      []ScanRecord `json:"reports"`
	TotalReports int          `json:"totalReports"`
}

// ComprehensiveReport aggregates every scan the user owns.
type ComprehensiveReport struct {
	UserID                ID                `json:"userId"`
	Username              string            `json:"username,omitempty"`
	Organization          string            `json:"organization,omitempty"`
	GeneratedAt           Timestamp         `json:"generatedAt"`
	AverageScore          int               `json:"averageScore"`
	HighestScore          int               `json:"highestScore,omitempty"`
	LowestScore           int               `json:"lowestScore,omitempty"`
	TotalScans            int               `json:"totalScans"`
	LatestScan            *ScanRecord       `json:"latestScan,omitempty"`
	RiskLevelDistribution map[RiskLevel]int `json:"riskLevelDistribution,omitempty"`
	Message               string            `json:"message,omitempty"`
}
