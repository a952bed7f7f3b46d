package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/cyberrisk/internal/domain/models"
	"github.com/turtacn/cyberrisk/sdk/go/cyberrisk"
)

func newAnalysisCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "analysis",
		Short: "Show the service's risk analysis and score summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			analysis, err := check(a.client.Analysis.GetRiskAnalysis(ctx))
			if err != nil {
				return err
			}
			summary, err := check(a.client.Analysis.GetScoreSummary(ctx))
			if err != nil {
				return err
			}
			view := struct {
				RiskAnalysis *cyberrisk.RiskAnalysis `json:"riskAnalysis"`
				ScoreSummary *cyberrisk.ScoreSummary `json:"scoreSummary"`
			}{analysis, summary}
			return a.render(cmd, view, func() []*table {
				t := fields()
				t.add("Trend", analysis.Trend)
				t.add("Average score", strconv.Itoa(analysis.AverageScore))
				t.add("Total scans", strconv.Itoa(analysis.TotalScans))
				t.add("Latest score", strconv.Itoa(summary.LatestScore))
				t.add("Latest level", summary.RiskLevel)
				if summary.ScanDate != nil {
					t.add("Latest scan", summary.ScanDate.Format(dateLayout))
				}
				return []*table{t}
			})
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize your scan scores",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := a.history(cmd)
			if err != nil {
				return err
			}
			stats := cyberrisk.CalculateRiskStats(records)
			return a.render(cmd, stats, func() []*table { return []*table{statsTable(stats)} })
		},
	}
}

func newTrendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "trend",
		Short: "Show your scores over time",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := a.history(cmd)
			if err != nil {
				return err
			}
			points := cyberrisk.GetRiskTrendData(records)
			return a.render(cmd, points, func() []*table {
				t := &table{header: []string{"DATE", "ORGANIZATION", "SCORE", "LEVEL"}}
				for _, p := range points {
					t.add(p.Date, p.Organization, strconv.Itoa(p.Score), p.RiskLevel.DisplayName())
				}
				footer := fields()
				footer.add("Trend", cyberrisk.AnalyzeTrend(records))
				return []*table{t, footer}
			})
		},
	}
}

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Load history, score summary and analysis together",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dash := a.client.Dashboard.Load(cmd.Context())
			return a.render(cmd, dash, func() []*table {
				tables := []*table{statsTable(dash.Statistics)}

				overview := fields()
				if dash.Latest != nil {
					overview.add("Latest scan", fmt.Sprintf("%s (%s)", dash.Latest.OrganizationName, dash.Latest.ScanDate.Format(dateLayout)))
					overview.add("Latest score", fmt.Sprintf("%d/100, %s", dash.Latest.RiskScore, levelOf(dash.Latest.RiskScore)))
					overview.add("Gauge", fmt.Sprintf("%.0f°", cyberrisk.DegreesForScore(dash.Latest.RiskScore)))
				}
				if dash.RiskAnalysis.Success {
					overview.add("Trend", dash.RiskAnalysis.Data.Trend)
				}
				for _, section := range [][2]string{
					{"History", dash.History.Error},
					{"Score summary", dash.ScoreSummary.Error},
					{"Risk analysis", dash.RiskAnalysis.Error},
				} {
					if section[1] != "" {
						overview.add(section[0]+" unavailable", section[1])
					}
				}
				ids := make([]string, 0, len(dash.Drift))
				for id := range dash.Drift {
					ids = append(ids, string(id))
				}
				sort.Strings(ids)
				for _, id := range ids {
					overview.add("Reclassified scan "+id, dash.Drift[models.ID(id)].DisplayName())
				}
				return append(tables, overview)
			})
		},
	}
}
