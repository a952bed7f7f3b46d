package cli

import (
	"github.com/spf13/cobra"

	"github.com/turtacn/cyberrisk/sdk/go/cyberrisk"
)

func newScanCmd(a *app) *cobra.Command {
	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Run and inspect security scans",
	}

	run := &cobra.Command{
		Use:   "run",
		Short: "Scan an organization's domain",
		RunE: func(cmd *cobra.Command, _ []string) error {
			org, _ := cmd.Flags().GetString("org")
			domain, _ := cmd.Flags().GetString("domain")
			ip, _ := cmd.Flags().GetString("ip")
			scan, err := check(a.client.Scans.PerformScan(cmd.Context(), org, domain, ip))
			if err != nil {
				return err
			}
			return a.render(cmd, scan, func() []*table { return scanDetail(scan) })
		},
	}
	run.Flags().String("org", "", "organization name")
	run.Flags().String("domain", "", "target domain")
	run.Flags().String("ip", "", "target IP address")
	_ = run.MarkFlagRequired("org")
	_ = run.MarkFlagRequired("domain")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scan, err := check(a.client.Scans.GetScanResult(cmd.Context(), args[0]))
			if err != nil {
				return err
			}
			return a.render(cmd, scan, func() []*table { return scanDetail(scan) })
		},
	}

	history := &cobra.Command{
		Use:   "history",
		Short: "List your scans",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := check(a.client.Scans.GetScanHistory(cmd.Context()))
			if err != nil {
				return err
			}
			return a.render(cmd, records, func() []*table { return []*table{scanTable(records)} })
		},
	}

	latest := &cobra.Command{
		Use:   "latest",
		Short: "Show your most recent scan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			scan, err := check(a.client.Scans.GetLatestScan(cmd.Context()))
			if err != nil {
				return err
			}
			return a.render(cmd, scan, func() []*table { return scanDetail(scan) })
		},
	}

	scanCmd.AddCommand(run, get, history, latest)
	return scanCmd
}

// history loads the caller's scans for the locally computed views.
func (a *app) history(cmd *cobra.Command) ([]cyberrisk.ScanRecord, error) {
	return check(a.client.Scans.GetScanHistory(cmd.Context()))
}
