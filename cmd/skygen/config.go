package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aellingwood/skygen/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration",
	Long:  "Print the fully resolved configuration after applying defaults.",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Root().PersistentFlags().GetString("config")
		format, _ := cmd.Flags().GetString("format")

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		out, err := cfg.Marshal(format)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	configCmd.Flags().StringP("format", "f", "yaml", "output format (yaml, toml, json)")

	rootCmd.AddCommand(configCmd)
}
