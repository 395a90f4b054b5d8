package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aellingwood/skygen/internal/build"
	"github.com/aellingwood/skygen/internal/config"
	"github.com/aellingwood/skygen/internal/observability"
	"github.com/aellingwood/skygen/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate images when the config or font changes",
	Long: "Watch generates the missing images, then regenerates every image\n" +
		"whenever the config file or the label font is modified.",
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load config.
		configPath, _ := cmd.Root().PersistentFlags().GetString("config")
		verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
		debounce, _ := cmd.Flags().GetDuration("debounce")

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		logger := observability.NewLogger(verbose)
		defer func() { _ = logger.Sync() }()
		metrics := observability.NewMetrics()

		// 2. Run initial build.
		builder := build.NewBuilder(cfg, build.BuildOptions{Logger: logger, Metrics: metrics})
		if _, err := builder.Build(); err != nil {
			return fmt.Errorf("initial build failed: %w", err)
		}

		// 3. Set up file watcher for regeneration. The config is reloaded on
		// every change so edited colours and font settings take effect.
		watcher := watch.NewWatcher([]string{configPath, cfg.Font.Path}, debounce, logger, func() {
			logger.Info("change detected, regenerating")
			next, err := config.Load(configPath)
			if err != nil {
				logger.Error("reloading config failed", zap.Error(err))
				return
			}
			b := build.NewBuilder(next, build.BuildOptions{Force: true, Logger: logger, Metrics: metrics})
			if _, err := b.Build(); err != nil {
				logger.Error("regeneration failed", zap.Error(err))
			}
		})

		// 4. Handle graceful shutdown.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		go func() {
			<-sigCh
			fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down...")
			watcher.Stop()
		}()

		logger.Info("watching for changes", zap.String("config", configPath), zap.String("font", cfg.Font.Path))

		// 5. Block until shutdown.
		if err := watcher.Start(); err != nil {
			return fmt.Errorf("watcher error: %w", err)
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().Duration("debounce", 100*time.Millisecond, "delay before regenerating after a change")

	rootCmd.AddCommand(watchCmd)
}
