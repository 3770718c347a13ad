package config

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/soocke/scansurface-go/domain/camera"
)

// Config holds runtime configuration for the scanner and app behavior.
// Fields may be loaded from a JSON or YAML file and overridden by command-line flags.
type Config struct {
	Debug bool `json:"debug" yaml:"debug"`

	// Stream parameters
	Camera  string `json:"camera" yaml:"camera"`
	Torch   bool   `json:"torch" yaml:"torch"`
	Enabled bool   `json:"enabled" yaml:"enabled"`

	// Tracking overlay
	Tracking      string  `json:"tracking" yaml:"tracking"`
	TrackingColor string  `json:"tracking_color" yaml:"tracking_color"`
	TrackingWidth float64 `json:"tracking_width" yaml:"tracking_width"`

	// Video box size in pixels
	DisplayWidth  int `json:"display_width" yaml:"display_width"`
	DisplayHeight int `json:"display_height" yaml:"display_height"`

	TrackingMinDelayMs int `json:"tracking_min_delay_ms" yaml:"tracking_min_delay_ms"`
	IdleMinDelayMs     int `json:"idle_min_delay_ms" yaml:"idle_min_delay_ms"`

	// Number of detections kept in the history panel
	HistorySize int `json:"history_size" yaml:"history_size"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:              false,
		Camera:             string(camera.SelectorAuto),
		Torch:              false,
		Enabled:            true,
		Tracking:           "on",
		TrackingColor:      "#32cd32",
		TrackingWidth:      3,
		DisplayWidth:       640,
		DisplayHeight:      480,
		TrackingMinDelayMs: 40,
		IdleMinDelayMs:     500,
		HistorySize:        20,
	}
}

// Validate clamps/normalizes values to safe ranges. An unknown camera
// selector is reported as an error after falling back to auto.
func (c *Config) Validate() error {
	var err error
	sel, perr := camera.ParseSelector(c.Camera)
	if perr != nil {
		err = perr
		sel = camera.SelectorAuto
	}
	c.Camera = string(sel)

	switch strings.ToLower(strings.TrimSpace(c.Tracking)) {
	case "off", "false", "no":
		c.Tracking = "off"
	default:
		c.Tracking = "on"
	}
	if _, cerr := ParseHexColor(c.TrackingColor); cerr != nil {
		c.TrackingColor = "#32cd32"
	}
	if c.TrackingWidth <= 0 || c.TrackingWidth > 32 {
		c.TrackingWidth = 3
	}
	if c.DisplayWidth <= 0 {
		c.DisplayWidth = 640
	}
	if c.DisplayHeight <= 0 {
		c.DisplayHeight = 480
	}
	if c.TrackingMinDelayMs <= 0 {
		c.TrackingMinDelayMs = 40
	}
	if c.IdleMinDelayMs <= 0 {
		c.IdleMinDelayMs = 500
	}
	if c.IdleMinDelayMs < c.TrackingMinDelayMs {
		c.IdleMinDelayMs = c.TrackingMinDelayMs
	}
	if c.HistorySize <= 0 {
		c.HistorySize = 20
	}
	return err
}

// Selector returns the validated camera selector.
func (c *Config) Selector() camera.Selector {
	sel, err := camera.ParseSelector(c.Camera)
	if err != nil {
		return camera.SelectorAuto
	}
	return sel
}

// TrackingEnabled reports whether the overlay is on.
func (c *Config) TrackingEnabled() bool { return c.Tracking != "off" }

// ParseHexColor parses "#rgb" or "#rrggbb" (the leading '#' is optional).
func ParseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("config: invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("config: invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Load attempts to read configuration from the given path. Files ending in
// .yaml or .yml are parsed as YAML, everything else as JSON. If the file does
// not exist it returns DefaultConfig(). On parse error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	if isYAML(path) {
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return DefaultConfig(), err
		}
	} else {
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			return DefaultConfig(), err
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the configuration to the given path, in YAML or JSON depending
// on the extension.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if isYAML(path) {
		enc := yaml.NewEncoder(f)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
