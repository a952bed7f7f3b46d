package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/turtacn/cyberrisk/internal/domain/models"
	"github.com/turtacn/cyberrisk/sdk/go/cyberrisk"
)

const dateLayout = "2006-01-02 15:04"

// table is a header plus rows rendered with aligned columns.
type table struct {
	header []string
	rows   [][]string
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) write(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if len(t.header) > 0 {
		fmt.Fprintln(tw, strings.Join(t.header, "\t"))
	}
	for _, row := range t.rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func fields() *table {
	return &table{header: []string{"FIELD", "VALUE"}}
}

// render prints v as JSON, or the tables built by build.
func (a *app) render(cmd *cobra.Command, v any, build func() []*table) error {
	out := cmd.OutOrStdout()
	if a.output == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	for i, t := range build() {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if err := t.write(out); err != nil {
			return err
		}
	}
	return nil
}

// failure carries the message a failed Result reports.
type failure struct {
	msg   string
	cause error
}

func (f *failure) Error() string { return f.msg }
func (f *failure) Unwrap() error { return f.cause }

// check turns a failed Result into an error carrying its message.
func check[T any](res cyberrisk.Result[T]) (T, error) {
	if !res.Success {
		return res.Data, &failure{msg: res.Error, cause: res.Err}
	}
	return res.Data, nil
}

func levelOf(score int) string {
	return cyberrisk.ClassifyScore(score).DisplayName
}

func scanTable(records []cyberrisk.ScanRecord) *table {
	t := &table{header: []string{"ID", "ORGANIZATION", "DOMAIN", "DATE", "SCORE", "LEVEL", "FINDINGS"}}
	for _, r := range records {
		t.add(string(r.ID), r.OrganizationName, r.TargetDomain, r.ScanDate.Format(dateLayout),
			strconv.Itoa(r.RiskScore), levelOf(r.RiskScore), strconv.Itoa(len(r.Vulnerabilities)))
	}
	return t
}

func scanDetail(r *cyberrisk.ScanRecord) []*table {
	summary := fields()
	summary.add("ID", string(r.ID))
	summary.add("Organization", r.OrganizationName)
	summary.add("Domain", r.TargetDomain)
	if r.TargetIP != "" {
		summary.add("IP", r.TargetIP)
	}
	summary.add("Date", r.ScanDate.Format(dateLayout))
	summary.add("Status", string(r.Status))
	summary.add("Score", fmt.Sprintf("%d/100", r.RiskScore))
	summary.add("Level", levelOf(r.RiskScore))

	vulns := &table{header: []string{"SEVERITY", "CVSS", "TITLE", "CATEGORY", "CVE"}}
	for _, v := range r.Vulnerabilities {
		vulns.add(string(v.Severity), strconv.FormatFloat(v.CVSSScore, 'f', 1, 64), v.Title, v.Category, v.CVEID)
	}
	recs := &table{header: []string{"PRIORITY", "RECOMMENDATION", "COST", "TIME"}}
	for _, rec := range r.Recommendations {
		recs.add(string(rec.Priority), rec.Title, rec.EstimatedCost, rec.EstimatedTime)
	}
	return []*table{summary, vulns, recs}
}

func statsTable(s cyberrisk.RiskStatistics) *table {
	t := fields()
	t.add("Total scans", strconv.Itoa(s.TotalScans))
	t.add("Average score", strconv.Itoa(s.AverageScore))
	t.add("Highest score", strconv.Itoa(s.HighestScore))
	t.add("Lowest score", strconv.Itoa(s.LowestScore))
	for i := len(models.RiskLevels) - 1; i >= 0; i-- {
		level := models.RiskLevels[i]
		if n, ok := s.RiskLevelDistribution[level]; ok {
			t.add(level.DisplayName(), strconv.Itoa(n))
		}
	}
	return t
}
