package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aellingwood/skygen/internal/build"
	"github.com/aellingwood/skygen/internal/config"
	"github.com/aellingwood/skygen/internal/observability"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the missing hourly images",
	Long: "Generate writes an image for every hour of the day whose file is\n" +
		"missing from the output folder.",
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().Bool("force", false, "regenerate images that already exist")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Root().PersistentFlags().GetString("config")
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	force, _ := cmd.Flags().GetBool("force")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := observability.NewLogger(verbose)
	defer func() { _ = logger.Sync() }()
	logger.Info("starting generator",
		zap.String("config", configPath),
		zap.String("name", cfg.Name),
		zap.Int("colour_stops", len(cfg.SkyColours)),
	)

	builder := build.NewBuilder(cfg, build.BuildOptions{
		Force:   force,
		Logger:  logger,
		Metrics: observability.NewMetrics(),
	})
	result, err := builder.Build()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Generated %d, skipped %d, failed %d in %s\n",
		len(result.Generated),
		len(result.Skipped),
		len(result.Failed),
		result.Duration.Round(time.Millisecond),
	)
	return nil
}
