package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/aellingwood/skygen/internal/config"
	raster "github.com/aellingwood/skygen/internal/image"
)

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Print the image for the current hour",
	Long: "Print the path of the image that matches the current hour in the\n" +
		"configured timezone.",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Root().PersistentFlags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		hour, paths, err := currentImages(cfg, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "hour %02d\n", hour)
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(currentCmd)
}

// currentImages returns the local hour of now in the configured timezone and
// the image paths for that hour.
func currentImages(cfg *config.Config, now time.Time) (int, []string, error) {
	loc, err := cfg.Location()
	if err != nil {
		return 0, nil, err
	}
	hour := now.In(loc).Hour()

	paths := make([]string, 0, len(cfg.Output.Formats))
	for _, f := range cfg.Output.Formats {
		paths = append(paths, filepath.Join(cfg.Output.Folder, raster.Filename(hour, f)))
	}
	return hour, paths, nil
}
