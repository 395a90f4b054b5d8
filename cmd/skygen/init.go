package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aellingwood/skygen/internal/scaffold"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a starter generation config",
	Long: "Init writes config/generation.json with a default day palette and\n" +
		"creates config/fonts for the label font.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		name, _ := cmd.Flags().GetString("name")
		timezone, _ := cmd.Flags().GetString("timezone")
		if name == "" {
			abs, err := filepath.Abs(root)
			if err != nil {
				return fmt.Errorf("resolving %s: %w", root, err)
			}
			name = filepath.Base(abs)
		}

		if err := scaffold.NewProject(root, name, timezone); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", filepath.Join(root, scaffold.ConfigPath))
		return nil
	},
}

func init() {
	initCmd.Flags().String("name", "", "label drawn on every image (default: directory name)")
	initCmd.Flags().String("timezone", "UTC", "IANA timezone of the site")

	rootCmd.AddCommand(initCmd)
}
