package service

import (
	"math"
	"slices"

	"github.com/turtacn/cyberrisk/internal/domain/models"
)

// Score thresholds, lowest score of each band.
const (
	CriticalThreshold = 80
	HighThreshold     = 60
	MediumThreshold   = 40
)

// trendDelta is how far the newest score must move from the previous one
// before the trend is no longer reported as stable.
const trendDelta = 5

// TrendDateLayout renders trend dates as month/day/year without padding.
const TrendDateLayout = "1/2/2006"

// CalculateRiskStats summarizes records. The distribution counts the level each
// record carries; it is not recomputed from the score.
func CalculateRiskStats(records []models.ScanRecord) models.RiskStatistics {
	stats := models.RiskStatistics{RiskLevelDistribution: map[models.RiskLevel]int{}}
	if len(records) == 0 {
		return stats
	}

	sum := 0
	stats.HighestScore = records[0].RiskScore
	stats.LowestScore = records[0].RiskScore
	for _, r := range records {
		sum += r.RiskScore
		stats.HighestScore = max(stats.HighestScore, r.RiskScore)
		stats.LowestScore = min(stats.LowestScore, r.RiskScore)
		stats.RiskLevelDistribution[r.RiskLevel]++
	}
	stats.TotalScans = len(records)
	stats.AverageScore = roundHalfUp(float64(sum) / float64(len(records)))
	return stats
}

// GetRiskTrendData returns one point per record ordered by scan date. The
// input slice is not modified.
func GetRiskTrendData(records []models.ScanRecord) []models.RiskTrendPoint {
	if len(records) == 0 {
		return []models.RiskTrendPoint{}
	}

	sorted := sortedByScanDate(records)
	points := make([]models.RiskTrendPoint, 0, len(sorted))
	for _, r := range sorted {
		points = append(points, models.RiskTrendPoint{
			Date:         r.ScanDate.Format(TrendDateLayout),
			Score:        r.RiskScore,
			RiskLevel:    r.RiskLevel,
			Organization: r.OrganizationName,
		})
	}
	return points
}

// ClassifyScore is the canonical score-to-level mapping.
func ClassifyScore(score int) models.Classification {
	level := LevelForScore(score)
	return models.Classification{
		Level:       level,
		DisplayName: level.DisplayName(),
		Color:       level.Color(),
		HexColor:    level.HexColor(),
	}
}

// LevelForScore returns only the level part of ClassifyScore.
func LevelForScore(score int) models.RiskLevel {
	switch {
	case score >= CriticalThreshold:
		return models.RiskLevelCritical
	case score >= HighThreshold:
		return models.RiskLevelHigh
	case score >= MediumThreshold:
		return models.RiskLevelMedium
	default:
		return models.RiskLevelLow
	}
}

// DegreesForScore maps a 0-100 score onto a 0-360 degree gauge arc.
func DegreesForScore(score int) float64 {
	return float64(score) * 360 / 100
}

// LatestScan returns the record with the greatest scan date. Ties resolve to
// the earliest record in input order.
func LatestScan(records []models.ScanRecord) (models.ScanRecord, bool) {
	if len(records) == 0 {
		return models.ScanRecord{}, false
	}
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b models.ScanRecord) int {
		return b.ScanDate.Compare(a.ScanDate.Time)
	})
	return sorted[0], true
}

// AnalyzeTrend compares the two most recent scans.
func AnalyzeTrend(records []models.ScanRecord) string {
	if len(records) == 0 {
		return models.TrendNoData
	}
	if len(records) < 2 {
		return models.TrendStable
	}
	sorted := sortedByScanDate(records)
	latest := sorted[len(sorted)-1].RiskScore
	previous := sorted[len(sorted)-2].RiskScore
	switch {
	case latest < previous-trendDelta:
		return models.TrendImproving
	case latest > previous+trendDelta:
		return models.TrendDeteriorating
	default:
		return models.TrendStable
	}
}

// Reclassify returns records whose level disagrees with the canonical
// classifier, keyed by record id.
func Reclassify(records []models.ScanRecord) map[models.ID]models.RiskLevel {
	drift := map[models.ID]models.RiskLevel{}
	for _, r := range records {
		if want := LevelForScore(r.RiskScore); want != r.RiskLevel {
			drift[r.ID] = want
		}
	}
	return drift
}

func sortedByScanDate(records []models.ScanRecord) []models.ScanRecord {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b models.ScanRecord) int {
		return a.ScanDate.Compare(b.ScanDate.Time)
	})
	return sorted
}

// roundHalfUp rounds .5 towards positive infinity.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
