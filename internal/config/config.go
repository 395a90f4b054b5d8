// Package config handles loading, validating, and dumping the generation
// configuration for skygen.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/afero"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/aellingwood/skygen/internal/sky"
)

// Config is the resolved generation configuration. It is loaded once at
// startup and not modified afterwards.
type Config struct {
	SkyColours map[int]sky.Colour `mapstructure:"-"`
	Name       string             `mapstructure:"name"`
	Timezone   string             `mapstructure:"timezone"`
	Output     OutputConfig       `mapstructure:"output"`
	Image      ImageConfig        `mapstructure:"image"`
	Font       FontConfig         `mapstructure:"font"`
	Metrics    MetricsConfig      `mapstructure:"metrics"`
}

// OutputConfig controls where generated images go and in which formats.
type OutputConfig struct {
	Folder  string   `mapstructure:"folder"`
	Formats []string `mapstructure:"formats"`
}

// ImageConfig controls the raster geometry.
type ImageConfig struct {
	Width     int     `mapstructure:"width"`
	Height    int     `mapstructure:"height"`
	FadeRatio float64 `mapstructure:"fade_ratio"`
}

// FontConfig names the label font. A font that cannot be loaded is replaced
// by a built-in face.
type FontConfig struct {
	Path string  `mapstructure:"path"`
	Size float64 `mapstructure:"size"`
}

// MetricsConfig controls the Prometheus textfile written after each run.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// Keys that must be present in every configuration file. They have no
// defaults.
var requiredKeys = []string{"sky_colours", "name", "timezone"}

var supportedFormats = map[string]bool{"png": true, "webp": true}

// Default returns a Config with every optional setting filled in. The
// required keys are left empty.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Folder:  "./src/blobs",
			Formats: []string{"png"},
		},
		Image: ImageConfig{
			Width:     1500,
			Height:    500,
			FadeRatio: 0.3,
		},
		Font: FontConfig{
			Path: "./config/fonts/madecarvingsoft.ttf",
			Size: 50,
		},
	}
}

// Load reads the configuration file at configPath from the OS file system.
func Load(configPath string) (*Config, error) {
	return LoadFs(afero.NewOsFs(), configPath)
}

// LoadFs reads a configuration file (JSON, YAML or TOML by extension) from
// fsys and returns a Config with defaults applied first and file values
// overlaid on top. Every failure is reported as an *Error.
func LoadFs(fsys afero.Fs, configPath string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetFs(fsys)

	ext := strings.TrimPrefix(filepath.Ext(configPath), ".")
	switch ext {
	case "yaml", "yml":
		v.SetConfigType("yaml")
	case "toml":
		v.SetConfigType("toml")
	default:
		v.SetConfigType("json")
	}
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, &Error{Path: configPath, Err: fmt.Errorf("reading config file: %w", err)}
	}

	if err := checkRequired(v); err != nil {
		return nil, &Error{Path: configPath, Err: err}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, &Error{Path: configPath, Err: fmt.Errorf("parsing config file: %w", err)}
	}

	colours, err := parseSkyColours(v.Get("sky_colours"))
	if err != nil {
		return nil, &Error{Path: configPath, Err: err}
	}
	cfg.SkyColours = colours

	if err := cfg.Validate(); err != nil {
		return nil, &Error{Path: configPath, Err: fmt.Errorf("validating config: %w", err)}
	}

	return cfg, nil
}

// checkRequired reports the first required key missing from v.
func checkRequired(v *viper.Viper) error {
	present := topLevelKeys(v)
	for _, key := range requiredKeys {
		if v.IsSet(key) {
			continue
		}
		err := fmt.Errorf("%w %q", ErrMissingKey, key)
		if s := suggest(key, present); s != "" {
			err = fmt.Errorf("%w (found %q, did you mean %q?)", err, s, key)
		}
		return err
	}
	return nil
}

func topLevelKeys(v *viper.Viper) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, k := range v.AllKeys() {
		top, _, _ := strings.Cut(k, ".")
		if !seen[top] {
			seen[top] = true
			keys = append(keys, top)
		}
	}
	return keys
}

// parseSkyColours converts the raw sky_colours value into hour colours.
// Keys are stringified integer hours; keys outside 0-23 (such as 24 for the
// next midnight) only act as interpolation endpoints. Values are [r, g, b]
// arrays or "#rrggbb" strings.
func parseSkyColours(raw any) (map[int]sky.Colour, error) {
	m, err := cast.ToStringMapE(raw)
	if err != nil {
		return nil, fmt.Errorf("sky_colours: expected an object keyed by hour: %w", err)
	}
	if len(m) == 0 {
		return nil, ErrNoColours
	}

	colours := make(map[int]sky.Colour, len(m))
	for key, val := range m {
		hour, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("sky_colours: key %q is not an hour", key)
		}
		c, err := parseColour(val)
		if err != nil {
			return nil, fmt.Errorf("sky_colours[%q]: %w", key, err)
		}
		colours[hour] = c
	}
	return colours, nil
}

func parseColour(val any) (sky.Colour, error) {
	if s, ok := val.(string); ok {
		return sky.ParseHex(s)
	}
	channels, err := cast.ToSliceE(val)
	if err != nil {
		return sky.Colour{}, fmt.Errorf("expected [r, g, b] or \"#rrggbb\", got %T", val)
	}
	if len(channels) != 3 {
		return sky.Colour{}, fmt.Errorf("expected 3 channels, got %d", len(channels))
	}
	var rgb [3]uint8
	for i, ch := range channels {
		f, err := cast.ToFloat64E(ch)
		if err != nil {
			return sky.Colour{}, fmt.Errorf("channel %d: %w", i, err)
		}
		if f < 0 || f > 255 || f != float64(int(f)) {
			return sky.Colour{}, fmt.Errorf("channel %d: %v is not an integer in 0-255", i, ch)
		}
		rgb[i] = uint8(f)
	}
	return sky.RGB(rgb[0], rgb[1], rgb[2]), nil
}

// Validate checks the Config for errors that would make generation
// impossible. It returns a descriptive error if:
//   - no sky colours are configured
//   - an output format is not png or webp
//   - the image geometry is not positive or the fade ratio is outside [0,1]
//   - the font size is not positive
func (c *Config) Validate() error {
	if len(c.SkyColours) == 0 {
		return ErrNoColours
	}

	if strings.TrimSpace(c.Output.Folder) == "" {
		return errors.New("config: output.folder is required")
	}
	if len(c.Output.Formats) == 0 {
		return errors.New("config: output.formats must not be empty")
	}
	for i, f := range c.Output.Formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if !supportedFormats[f] {
			return fmt.Errorf("config: unsupported output format %q", f)
		}
		c.Output.Formats[i] = f
	}

	if c.Image.Width <= 0 || c.Image.Height <= 0 {
		return fmt.Errorf("config: image size must be positive (got %dx%d)", c.Image.Width, c.Image.Height)
	}
	if c.Image.FadeRatio < 0 || c.Image.FadeRatio > 1 {
		return fmt.Errorf("config: image.fade_ratio must be within [0,1] (got %v)", c.Image.FadeRatio)
	}
	if c.Font.Size <= 0 {
		return fmt.Errorf("config: font.size must be positive (got %v)", c.Font.Size)
	}
	return nil
}

// Location resolves the configured timezone. Generation itself never needs
// it.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
