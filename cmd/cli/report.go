package cli

import (
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/cyberrisk/sdk/go/cyberrisk"
)

func newReportCmd(a *app) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Read scan reports",
	}

	mine := &cobra.Command{
		Use:   "mine",
		Short: "List your reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := check(a.client.Reports.GetMyReports(cmd.Context()))
			if err != nil {
				return err
			}
			return a.render(cmd, list, func() []*table { return []*table{scanTable(list.Reports)} })
		},
	}

	user := &cobra.Command{
		Use:   "user <user-id>",
		Short: "List another account's reports (admins only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := check(a.client.Reports.GetUserReports(cmd.Context(), args[0]))
			if err != nil {
				return err
			}
			return a.render(cmd, list, func() []*table { return []*table{scanTable(list.Reports)} })
		},
	}

	full := &cobra.Command{
		Use:   "full",
		Short: "Generate the comprehensive report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := check(a.client.Reports.GetComprehensiveReport(cmd.Context()))
			if err != nil {
				return err
			}
			return a.render(cmd, report, func() []*table { return comprehensiveTables(report) })
		},
	}

	reportCmd.AddCommand(mine, user, full)
	return reportCmd
}

func comprehensiveTables(r *cyberrisk.ComprehensiveReport) []*table {
	t := fields()
	t.add("User", r.Username)
	t.add("Organization", r.Organization)
	t.add("Generated", r.GeneratedAt.Format(dateLayout))
	if r.Message != "" {
		t.add("Note", r.Message)
		return []*table{t}
	}
	t.add("Total scans", strconv.Itoa(r.TotalScans))
	t.add("Average score", strconv.Itoa(r.AverageScore))
	t.add("Highest score", strconv.Itoa(r.HighestScore))
	t.add("Lowest score", strconv.Itoa(r.LowestScore))
	dist := &table{header: []string{"LEVEL", "SCANS"}}
	levels := make([]string, 0, len(r.RiskLevelDistribution))
	for level := range r.RiskLevelDistribution {
		levels = append(levels, string(level))
	}
	sort.Strings(levels)
	for _, level := range levels {
		dist.add(level, strconv.Itoa(r.RiskLevelDistribution[cyberrisk.RiskLevel(level)]))
	}
	tables := []*table{t, dist}
	if r.LatestScan != nil {
		tables = append(tables, scanTable([]cyberrisk.ScanRecord{*r.LatestScan}))
	}
	return tables
}
