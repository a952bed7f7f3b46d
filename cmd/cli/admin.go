package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/cyberrisk/internal/domain/models"
)

func newAdminCmd(a *app) *cobra.Command {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Administer the CyberRisk service (admins only)",
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show system-wide statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := check(a.client.Admin.GetSystemStats(cmd.Context()))
			if err != nil {
				return err
			}
			return a.render(cmd, s, func() []*table {
				t := fields()
				t.add("Users", strconv.Itoa(s.TotalUsers))
				t.add("Admins", strconv.Itoa(s.AdminUsers))
				t.add("Regular users", strconv.Itoa(s.RegularUsers))
				t.add("Scans", strconv.Itoa(s.TotalScans))
				t.add("Critical", strconv.Itoa(s.CriticalRiskScans))
				t.add("High", strconv.Itoa(s.HighRiskScans))
				t.add("Medium", strconv.Itoa(s.MediumRiskScans))
				t.add("Low", strconv.Itoa(s.LowRiskScans))
				t.add("Average score", strconv.Itoa(s.AverageRiskScore))
				return []*table{t}
			})
		},
	}

	users := &cobra.Command{
		Use:   "users",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			role, _ := cmd.Flags().GetString("role")
			res := a.client.Admin.GetAllUsers(cmd.Context())
			if role != "" {
				res = a.client.Admin.GetUsersByRole(cmd.Context(), models.Role(strings.ToUpper(role)))
			}
			list, err := check(res)
			if err != nil {
				return err
			}
			return a.render(cmd, list, func() []*table {
				t := &table{header: []string{"ID", "USERNAME", "NAME", "EMAIL", "ORGANIZATION", "ROLE", "LAST LOGIN"}}
				for _, u := range list.Users {
					last := "never"
					if u.LastLogin != nil {
						last = u.LastLogin.Format(dateLayout)
					}
					t.add(string(u.ID), u.Username, u.FirstName+" "+u.LastName, u.Email, u.Organization, string(u.Role), last)
				}
				return []*table{t}
			})
		},
	}
	users.Flags().String("role", "", "only accounts with this role (admin or user)")

	health := &cobra.Command{
		Use:   "health",
		Short: "Show backend health",
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := check(a.client.Admin.GetSystemHealth(cmd.Context()))
			if err != nil {
				return err
			}
			return a.render(cmd, h, func() []*table { return []*table{healthTable(h)} })
		},
	}

	adminCmd.AddCommand(stats, users, health)
	return adminCmd
}
