package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/cyberrisk/internal/config"
	"github.com/turtacn/cyberrisk/pkg/constants"
	"github.com/turtacn/cyberrisk/pkg/logger"
	"github.com/turtacn/cyberrisk/sdk/go/cyberrisk"
)

// app carries the flags and the client shared by every subcommand.
type app struct {
	configFile string
	output     string
	baseURL    string
	store      string
	storePath  string
	verbose    bool

	client *cyberrisk.Client
	log    logger.Logger
}

// NewRootCommand builds the `riskctl` command tree.
// NewRootCommand 构建 `riskctl` 命令树。
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "riskctl",
		Short: "A CLI client for the CyberRisk assessment service.",
		Long: `riskctl signs in to the CyberRisk service, runs scans and reads the
resulting risk analysis, reports and administrative views. The session is
kept in a local store between invocations.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	f := root.PersistentFlags()
	f.StringVar(&a.configFile, "config", "", "config file (default ./riskctl.yaml or ~/.config/riskctl/riskctl.yaml)")
	f.StringVarP(&a.output, "output", "o", "table", "output format: table or json")
	f.StringVar(&a.baseURL, "base-url", "", "service base URL, overrides api.base_url")
	f.StringVar(&a.store, "store", "", "session store driver: memory, sqlite or redis (default sqlite)")
	f.StringVar(&a.storePath, "store-path", "", "sqlite session file")
	f.BoolVarP(&a.verbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(
		newLoginCmd(a), newRegisterCmd(a), newLogoutCmd(a), newWhoamiCmd(a), newHealthCmd(a),
		newScanCmd(a),
		newAnalysisCmd(a), newStatsCmd(a), newTrendCmd(a), newDashboardCmd(a),
		newReportCmd(a),
		newAdminCmd(a),
	)
	return root
}

// Execute is the main entry point for the CLI application.
// Execute 是 CLI 应用程序的主入口点。
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.output != "table" && a.output != "json" {
		return fmt.Errorf("unknown output format %q", a.output)
	}
	cfg, err := config.LoadConfig(a.configFile)
	if err != nil {
		return err
	}
	if a.baseURL != "" {
		cfg.API.BaseURL = a.baseURL
	}

	// The session has to outlive the process, so the in-memory default is
	// replaced unless asked for explicitly.
	switch {
	case a.store != "":
		cfg.Store.Driver = a.store
	case cfg.Store.Driver == string(constants.StoreDriverMemory):
		cfg.Store.Driver = string(constants.StoreDriverSQLite)
	}
	if a.storePath != "" {
		cfg.Store.Path = a.storePath
	}
	if cfg.Store.Driver == string(constants.StoreDriverSQLite) {
		if cfg.Store.Path == "" {
			if cfg.Store.Path, err = defaultStorePath(); err != nil {
				return err
			}
		}
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o700); err != nil {
			return fmt.Errorf("failed to create session directory: %w", err)
		}
	}

	level := string(constants.LogLevelWarn)
	if a.verbose {
		level = string(constants.LogLevelDebug)
	}
	a.log = logger.NewZapLogger(level, "console", cmd.ErrOrStderr())

	a.client, err = cyberrisk.New(cmd.Context(), cfg,
		cyberrisk.WithLogger(a.log),
		cyberrisk.WithSessionExpiredHook(func(context.Context) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Session expired, run `riskctl login` again.")
		}),
	)
	return err
}

func (a *app) teardown(*cobra.Command, []string) error {
	if a.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := a.client.Close(ctx)
	_ = a.log.Sync()
	return err
}

func defaultStorePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate a config directory for the session store: %w", err)
	}
	return filepath.Join(dir, "riskctl", "session.db"), nil
}
