package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/cyberrisk/internal/application/dto"
	"github.com/turtacn/cyberrisk/internal/domain/models"
	domainService "github.com/turtacn/cyberrisk/internal/domain/service"
)

// Dashboard is everything a summary view shows. Each section carries its own
// Result; a failed load leaves the others intact.
type Dashboard struct {
	History      dto.Result[[]models.ScanRecord]  `json:"history"`
	ScoreSummary dto.Result[*models.ScoreSummary] `json:"scoreSummary"`
	RiskAnalysis dto.Result[*models.RiskAnalysis] `json:"riskAnalysis"`
	Statistics   models.RiskStatistics            `json:"statistics"`
	Trend        []models.RiskTrendPoint          `json:"trend"`
	Latest       *models.ScanRecord               `json:"latest,omitempty"`
	Drift        map[models.ID]models.RiskLevel   `json:"drift,omitempty"`

	// Err is the first section failure reported by the group, nil when every
	// section loaded.
	Err error `json:"-"`
}

// SectionError names the dashboard section that could not be loaded.
type SectionError struct {
	Section string
	Message string
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("%s unavailable: %s", e.Section, e.Message)
}

func sectionErr[T any](section string, res dto.Result[T]) error {
	if res.Success {
		return nil
	}
	return &SectionError{Section: section, Message: res.Error}
}

// DashboardLoader fetches the dashboard's independent sections concurrently.
type DashboardLoader struct {
	scans    ScanGateway
	analysis AnalysisGateway
}

// NewDashboardLoader creates a DashboardLoader.
func NewDashboardLoader(scans ScanGateway, analysis AnalysisGateway) *DashboardLoader {
	return &DashboardLoader{scans: scans, analysis: analysis}
}

// Load issues the three reads in parallel. The group has no shared
// cancellation, so one failing read never aborts its siblings. Derived
// sections are computed from whatever history arrived.
func (l *DashboardLoader) Load(ctx context.Context) *Dashboard {
	d := &Dashboard{}

	var g errgroup.Group
	g.Go(func() error {
		d.History = l.scans.GetScanHistory(ctx)
		return sectionErr("history", d.History)
	})
	g.Go(func() error {
		d.ScoreSummary = l.analysis.GetScoreSummary(ctx)
		return sectionErr("score summary", d.ScoreSummary)
	})
	g.Go(func() error {
		d.RiskAnalysis = l.analysis.GetRiskAnalysis(ctx)
		return sectionErr("risk analysis", d.RiskAnalysis)
	})
	d.Err = g.Wait()

	records := d.History.Data
	d.Statistics = domainService.CalculateRiskStats(records)
	d.Trend = domainService.GetRiskTrendData(records)
	if latest, ok := domainService.LatestScan(records); ok {
		d.Latest = &latest
	}
	d.Drift = domainService.Reclassify(records)
	return d
}
