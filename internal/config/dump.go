package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// dumpConfig is the serialised form of Config. Hours become string keys so
// every encoder accepts them.
type dumpConfig struct {
	SkyColours map[string][3]uint8 `json:"sky_colours" yaml:"sky_colours" toml:"sky_colours"`
	Name       string              `json:"name"        yaml:"name"        toml:"name"`
	Timezone   string              `json:"timezone"    yaml:"timezone"    toml:"timezone"`
	Output     dumpOutput          `json:"output"      yaml:"output"      toml:"output"`
	Image      dumpImage           `json:"image"       yaml:"image"       toml:"image"`
	Font       dumpFont            `json:"font"        yaml:"font"        toml:"font"`
	Metrics    dumpMetrics         `json:"metrics"     yaml:"metrics"     toml:"metrics"`
}

type dumpOutput struct {
	Folder  string   `json:"folder"  yaml:"folder"  toml:"folder"`
	Formats []string `json:"formats" yaml:"formats" toml:"formats"`
}

type dumpImage struct {
	Width     int     `json:"width"      yaml:"width"      toml:"width"`
	Height    int     `json:"height"     yaml:"height"     toml:"height"`
	FadeRatio float64 `json:"fade_ratio" yaml:"fade_ratio" toml:"fade_ratio"`
}

type dumpFont struct {
	Path string  `json:"path" yaml:"path" toml:"path"`
	Size float64 `json:"size" yaml:"size" toml:"size"`
}

type dumpMetrics struct {
	Textfile string `json:"textfile" yaml:"textfile" toml:"textfile"`
}

// Marshal renders the resolved configuration in the given format: "yaml",
// "toml" or "json".
func (c *Config) Marshal(format string) ([]byte, error) {
	d := c.dump()
	switch format {
	case "yaml", "yml":
		return yaml.Marshal(d)
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(d); err != nil {
			return nil, fmt.Errorf("encoding toml: %w", err)
		}
		return buf.Bytes(), nil
	case "json":
		return json.MarshalIndent(d, "", "  ")
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
}

// SortedHours returns the configured sky colour hours in ascending order.
func (c *Config) SortedHours() []int {
	hours := make([]int, 0, len(c.SkyColours))
	for h := range c.SkyColours {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	return hours
}

func (c *Config) dump() dumpConfig {
	colours := make(map[string][3]uint8, len(c.SkyColours))
	for h, col := range c.SkyColours {
		r, g, b := col.Bytes()
		colours[strconv.Itoa(h)] = [3]uint8{r, g, b}
	}
	return dumpConfig{
		SkyColours: colours,
		Name:       c.Name,
		Timezone:   c.Timezone,
		Output:     dumpOutput{Folder: c.Output.Folder, Formats: c.Output.Formats},
		Image:      dumpImage{Width: c.Image.Width, Height: c.Image.Height, FadeRatio: c.Image.FadeRatio},
		Font:       dumpFont{Path: c.Font.Path, Size: c.Font.Size},
		Metrics:    dumpMetrics{Textfile: c.Metrics.Textfile},
	}
}
