// Package scaffold creates a starter generation config for a new project.
package scaffold

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ConfigPath is the location of the generation config inside a project.
var ConfigPath = filepath.Join("config", "generation.json")

// FontDir is where the label font is expected to live.
var FontDir = filepath.Join("config", "fonts")

// NewProject writes a starter config into root and creates the font
// directory next to it. It returns an error if a config already exists.
// An empty timezone is written as UTC.
func NewProject(root, name, timezone string) error {
	configPath := filepath.Join(root, ConfigPath)

	// Check if a config already exists.
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config %q already exists", configPath)
	}

	fontDir := filepath.Join(root, FontDir)
	if err := os.MkdirAll(fontDir, 0o755); err != nil {
		return fmt.Errorf("creating directory %q: %w", fontDir, err)
	}

	if timezone == "" {
		timezone = "UTC"
	}
	nameJSON, err := json.Marshal(name)
	if err != nil {
		return fmt.Errorf("encoding name: %w", err)
	}
	tzJSON, err := json.Marshal(timezone)
	if err != nil {
		return fmt.Errorf("encoding timezone: %w", err)
	}

	// Night at both ends of the day, blue at midday, warm dawn and dusk.
	configContent := fmt.Sprintf(`{
  "name": %s,
  "timezone": %s,
  "sky_colours": {
    "0": [12, 20, 48],
    "5": [40, 48, 92],
    "7": [255, 166, 120],
    "10": [135, 206, 235],
    "16": [135, 206, 235],
    "19": [250, 128, 90],
    "21": [40, 40, 90],
    "23": [12, 20, 48]
  },
  "output": {
    "folder": "./src/blobs",
    "formats": ["png"]
  }
}
`, nameJSON, tzJSON)

	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", ConfigPath, err)
	}
	return nil
}
