// Command mockapi serves a local stand-in for the CyberRisk service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/cyberrisk/internal/config"
	"github.com/turtacn/cyberrisk/internal/infrastructure/monitoring"
	"github.com/turtacn/cyberrisk/internal/interfaces/http/router"
	"github.com/turtacn/cyberrisk/internal/mockapi"
	"github.com/turtacn/cyberrisk/pkg/logger"
)

func main() {
	var configFile string
	cmd := &cobra.Command{
		Use:           "mockapi",
		Short:         "Run the local CyberRisk mock API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, configFile)
		},
	}
	cmd.Flags().StringVar(&configFile, "config", "", "config file (default ./riskctl.yaml)")
	cmd.Flags().String("listen", "", "listen address, overrides mock_api.listen_addr")
	cmd.Flags().Bool("deterministic", false, "derive scan findings from the target instead of at random")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, configFile string) error {
	reloads := make(chan reload, 1)
	cfg, err := config.WatchConfig(configFile, func(next *config.Config, err error) {
		select {
		case reloads <- reload{next, err}:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.MockAPI.ListenAddr = listen
	}
	if det, _ := cmd.Flags().GetBool("deterministic"); det {
		cfg.MockAPI.DeterministicScans = true
	}

	log := logger.NewZapLogger(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize tracing
	cfg.Tracing.ServiceName = "cyberrisk-mockapi"
	tracing, err := monitoring.NewTracingManager(cfg.Tracing, log)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tracing.Shutdown(shutdownCtx)
	}()

	// Initialize backend
	backend, err := mockapi.New(ctx, cfg.MockAPI, log)
	if err != nil {
		return fmt.Errorf("failed to start mock backend: %w", err)
	}
	defer backend.Close()
	go applyReloads(ctx, reloads, backend, log)

	r, err := router.NewRouter(cfg.MockAPI, log, backend, tracing.Tracer())
	if err != nil {
		return err
	}
	return r.Start(ctx)
}

type reload struct {
	cfg *config.Config
	err error
}

// applyReloads picks up scan delay changes from the watched config file.
func applyReloads(ctx context.Context, reloads <-chan reload, backend *mockapi.Backend, log logger.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-reloads:
			if r.err != nil {
				log.Warn(ctx, "ignoring invalid config change", logger.Err(r.err))
				continue
			}
			backend.SetScanDelay(r.cfg.MockAPI.ScanDelay)
			log.Info(ctx, "config reloaded", logger.Duration("scan_delay", r.cfg.MockAPI.ScanDelay))
		}
	}
}
