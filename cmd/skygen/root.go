package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "skygen",
	Short: "Generate hourly sky background images",
	Long: "Skygen renders one background image per hour of the day, tinted by the\n" +
		"sky colours in the generation config. Existing images are left alone.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runGenerate,
}

func init() {
	rootCmd.PersistentFlags().String("config", "./config/generation.json", "path to config file")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
	rootCmd.Flags().Bool("force", false, "regenerate images that already exist")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
