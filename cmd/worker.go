package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/inventory-management/internal/integration"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start background workers that run outside the HTTP server, such as the integration sync.`,
}

// Integration sync worker command
var syncWorkerCmd = &cobra.Command{
	Use:   "sync",
	Short: "Start the integration sync worker",
	Long:  `Periodically reconcile devices from the configured provider into equipment`,
	Run: func(cmd *cobra.Command, args []string) {
		startSyncWorker()
	},
}

var (
	syncInterval time.Duration
	syncOnce     bool
)

func startSyncWorker() {
	cfg := mustLoadConfig()

	deps, err := initializeDependencies(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	interval := getDurationFlag(syncInterval, cfg.Integration.SyncInterval)
	scheduler := integration.NewScheduler(deps.IntegrationService, interval, cfg.Integration.SyncTimeout, deps.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if syncOnce {
		result, err := scheduler.RunOnce(ctx)
		if err != nil {
			deps.Logger.Error("integration sync failed", "error", err)
			os.Exit(1)
		}
		deps.Logger.Info("integration sync finished",
			"added", result.Added,
			"updated", result.Updated,
			"skipped", result.Skipped)
		return
	}

	if interval <= 0 {
		fmt.Fprintln(os.Stderr, "sync interval is 0; pass --interval or set integration.sync_interval, or use --once")
		os.Exit(1)
	}

	deps.Logger.Info("sync worker is running. Press Ctrl+C to stop.", "interval", interval)
	if err := scheduler.Run(ctx); err != nil {
		deps.Logger.Error("sync worker stopped with error", "error", err)
		os.Exit(1)
	}
	deps.Logger.Info("sync worker shutdown complete")
}

func getDurationFlag(flagValue, configValue time.Duration) time.Duration {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	syncWorkerCmd.Flags().DurationVar(&syncInterval, "interval", 0, "Sync interval (overrides config)")
	syncWorkerCmd.Flags().BoolVar(&syncOnce, "once", false, "Run a single sync and exit")

	workerCmd.AddCommand(syncWorkerCmd)
}
