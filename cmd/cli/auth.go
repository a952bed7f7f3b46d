package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/cyberrisk/sdk/go/cyberrisk"
)

// PasswordEnv supplies the password when --password is omitted.
const PasswordEnv = "RISKCTL_PASSWORD"

func passwordFlag(cmd *cobra.Command) (string, error) {
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = os.Getenv(PasswordEnv)
	}
	if password == "" {
		return "", fmt.Errorf("a password is required (--password or %s)", PasswordEnv)
	}
	return password, nil
}

func newLoginCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, err := passwordFlag(cmd)
			if err != nil {
				return err
			}
			resp, err := check(a.client.Session.Login(cmd.Context(), username, password))
			if err != nil {
				return err
			}
			return a.render(cmd, resp.UserProfile, func() []*table {
				t := fields()
				t.add("Signed in as", resp.Username)
				t.add("Role", string(resp.Role))
				t.add("Organization", resp.Organization)
				return []*table{t}
			})
		},
	}
	cmd.Flags().StringP("username", "u", "", "account name")
	cmd.Flags().StringP("password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var req cyberrisk.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := passwordFlag(cmd)
			if err != nil {
				return err
			}
			req.Password = password
			if req.ConfirmPassword == "" {
				req.ConfirmPassword = password
			}
			resp, err := check(a.client.Session.Register(cmd.Context(), &req))
			if err != nil {
				return err
			}
			return a.render(cmd, resp.UserProfile, func() []*table {
				t := fields()
				t.add("Registered", resp.Username)
				t.add("Email", resp.Email)
				t.add("Role", string(resp.Role))
				return []*table{t}
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&req.Username, "username", "u", "", "account name")
	f.StringVar(&req.Email, "email", "", "email address")
	f.StringP("password", "p", "", "account password")
	f.StringVar(&req.ConfirmPassword, "confirm-password", "", "password confirmation (default: --password)")
	f.StringVar(&req.FirstName, "first-name", "", "first name")
	f.StringVar(&req.LastName, "last-name", "", "last name")
	f.StringVar(&req.Organization, "organization", "", "organization")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.client.Session.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if !a.client.Session.IsAuthenticated(ctx) {
				return fmt.Errorf("not signed in")
			}
			profile := a.client.Session.GetCurrentUser(ctx)
			if profile == nil {
				return fmt.Errorf("not signed in")
			}
			exp, hasExp := a.client.Session.TokenExpiry(ctx)
			return a.render(cmd, profile, func() []*table {
				t := fields()
				t.add("Username", profile.Username)
				t.add("Name", profile.FirstName+" "+profile.LastName)
				t.add("Email", profile.Email)
				t.add("Organization", profile.Organization)
				t.add("Role", string(profile.Role))
				if hasExp {
					t.add("Session expires", exp.Local().Format(time.RFC1123))
				}
				return []*table{t}
			})
		},
	}
}

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the authentication service is up",
		RunE: func(cmd *cobra.Command, _ []string) error {
			health, err := check(a.client.Session.HealthCheck(cmd.Context()))
			if err != nil {
				return err
			}
			return a.render(cmd, health, func() []*table {
				return []*table{healthTable(health)}
			})
		},
	}
}

func healthTable(h *cyberrisk.ServiceHealth) *table {
	t := fields()
	t.add("Service", h.Service)
	t.add("Status", h.Status)
	if h.Database != "" {
		t.add("Database", h.Database)
	}
	if h.Version != "" {
		t.add("Version", h.Version)
	}
	if h.TotalUsers > 0 || h.TotalScans > 0 {
		t.add("Users", fmt.Sprint(h.TotalUsers))
		t.add("Scans", fmt.Sprint(h.TotalScans))
	}
	return t
}
