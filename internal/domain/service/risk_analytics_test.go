package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/cyberrisk/internal/domain/models"
)

func record(id string, score int, level models.RiskLevel, date string) models.ScanRecord {
	return models.ScanRecord{
		ID:               models.ID(id),
		OrganizationName: "Org " + id,
		RiskScore:        score,
		RiskLevel:        level,
		ScanDate:         models.MustTimestamp(date),
	}
}

func TestCalculateRiskStats_Empty(t *testing.T) {
	stats := CalculateRiskStats(nil)
	assert.Equal(t, 0, stats.AverageScore)
	assert.Equal(t, 0, stats.HighestScore)
	assert.Equal(t, 0, stats.LowestScore)
	assert.Equal(t, 0, stats.TotalScans)
	assert.NotNil(t, stats.RiskLevelDistribution)
	assert.Empty(t, stats.RiskLevelDistribution)
}

func TestCalculateRiskStats(t *testing.T) {
	records := []models.ScanRecord{
		record("1", 80, models.RiskLevelCritical, "2024-01-01"),
		record("2", 40, models.RiskLevelMedium, "2024-01-02"),
	}

	stats := CalculateRiskStats(records)
	assert.Equal(t, 60, stats.AverageScore)
	assert.Equal(t, 80, stats.HighestScore)
	assert.Equal(t, 40, stats.LowestScore)
	assert.Equal(t, 2, stats.TotalScans)
	assert.Equal(t, map[models.RiskLevel]int{models.RiskLevelCritical: 1, models.RiskLevelMedium: 1}, stats.RiskLevelDistribution)
}

func TestCalculateRiskStats_RoundsAndTrustsRecordLevel(t *testing.T) {
	records := []models.ScanRecord{
		record("1", 10, models.RiskLevelLow, "2024-01-01"),
		record("2", 11, models.RiskLevelHigh, "2024-01-02"),
	}
	stats := CalculateRiskStats(records)
	assert.Equal(t, 11, stats.AverageScore, "10.5 rounds half up")
	assert.Equal(t, 1, stats.RiskLevelDistribution[models.RiskLevelHigh])
}

func TestGetRiskTrendData(t *testing.T) {
	assert.Equal(t, []models.RiskTrendPoint{}, GetRiskTrendData(nil))

	records := []models.ScanRecord{
		record("b", 50, models.RiskLevelMedium, "2024-03-01"),
		record("a", 20, models.RiskLevelLow, "2024-01-15"),
		record("c", 90, models.RiskLevelCritical, "2024-02-01"),
	}
	points := GetRiskTrendData(records)
	require.Len(t, points, len(records))
	assert.Equal(t, "1/15/2024", points[0].Date)
	assert.Equal(t, "2/1/2024", points[1].Date)
	assert.Equal(t, "3/1/2024", points[2].Date)
	assert.Equal(t, 90, points[1].Score)
	assert.Equal(t, models.RiskLevelCritical, points[1].RiskLevel)
	assert.Equal(t, "Org c", points[1].Organization)

	assert.Equal(t, models.ID("b"), records[0].ID, "input order preserved")
}

func TestClassifyScore(t *testing.T) {
	tests := []struct {
		score int
		level models.RiskLevel
		color string
	}{
		{100, models.RiskLevelCritical, "red"},
		{80, models.RiskLevelCritical, "red"},
		{79, models.RiskLevelHigh, "red"},
		{70, models.RiskLevelHigh, "red"},
		{60, models.RiskLevelHigh, "red"},
		{59, models.RiskLevelMedium, "yellow"},
		{40, models.RiskLevelMedium, "yellow"},
		{39, models.RiskLevelLow, "green"},
		{0, models.RiskLevelLow, "green"},
	}
	for _, tt := range tests {
		c := ClassifyScore(tt.score)
		assert.Equal(t, tt.level, c.Level, "score %d", tt.score)
		assert.Equal(t, tt.color, c.Color, "score %d", tt.score)
	}
}

func TestClassifyScore_AgreesWithLevelBands(t *testing.T) {
	for score := 0; score <= 100; score++ {
		level := LevelForScore(score)
		lo, hi := level.ScoreRange()
		assert.True(t, score >= lo && score <= hi, "score %d outside %s band", score, level)
	}
}

func TestDegreesForScore(t *testing.T) {
	assert.Equal(t, 180.0, DegreesForScore(50))
	assert.Equal(t, 360.0, DegreesForScore(100))
	assert.Equal(t, 0.0, DegreesForScore(0))
}

func TestLatestScan(t *testing.T) {
	_, ok := LatestScan(nil)
	assert.False(t, ok)

	records := []models.ScanRecord{
		record("jan", 10, models.RiskLevelLow, "2024-01-01"),
		record("mar", 20, models.RiskLevelLow, "2024-03-01"),
		record("feb", 30, models.RiskLevelLow, "2024-02-01"),
	}
	latest, ok := LatestScan(records)
	require.True(t, ok)
	assert.Equal(t, models.ID("mar"), latest.ID)

	tied := []models.ScanRecord{
		record("first", 10, models.RiskLevelLow, "2024-03-01"),
		record("second", 20, models.RiskLevelLow, "2024-03-01"),
	}
	latest, _ = LatestScan(tied)
	assert.Equal(t, models.ID("first"), latest.ID)
}

func TestAnalyzeTrend(t *testing.T) {
	assert.Equal(t, models.TrendNoData, AnalyzeTrend(nil))
	assert.Equal(t, models.TrendStable, AnalyzeTrend([]models.ScanRecord{record("1", 50, "", "2024-01-01")}))

	improving := []models.ScanRecord{
		record("new", 40, "", "2024-02-01"),
		record("old", 60, "", "2024-01-01"),
	}
	assert.Equal(t, models.TrendImproving, AnalyzeTrend(improving))

	worse := []models.ScanRecord{
		record("old", 40, "", "2024-01-01"),
		record("new", 46, "", "2024-02-01"),
	}
	assert.Equal(t, models.TrendDeteriorating, AnalyzeTrend(worse))

	flat := []models.ScanRecord{
		record("old", 40, "", "2024-01-01"),
		record("new", 45, "", "2024-02-01"),
	}
	assert.Equal(t, models.TrendStable, AnalyzeTrend(flat))
}

func TestReclassify(t *testing.T) {
	records := []models.ScanRecord{
		record("ok", 85, models.RiskLevelCritical, "2024-01-01"),
		record("drift", 59, models.RiskLevelHigh, "2024-01-02"),
	}
	assert.Equal(t, map[models.ID]models.RiskLevel{"drift": models.RiskLevelMedium}, Reclassify(records))
}
