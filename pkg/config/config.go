// Package config provides configuration loading and management for volmeasure.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"volmeasure/pkg/annotation"
	"volmeasure/pkg/draw"
	"volmeasure/pkg/drawgroup"
	"volmeasure/pkg/errs"
	"volmeasure/pkg/geom"
	"volmeasure/pkg/shape"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Position indexing parameters
	Position struct {
		// Precision is the number of decimals kept in position group keys
		Precision int `yaml:"precision"`
	} `yaml:"position"`

	// Quantification parameters
	Quantification struct {
		// FullStats adds median and quartiles to every quantification
		FullStats bool `yaml:"fullStats"`
	} `yaml:"quantification"`

	// Drawing parameters
	Drawing struct {
		// Colour is the default annotation colour, as a hex string
		Colour       string  `yaml:"colour"`
		StrokeWidth  float64 `yaml:"strokeWidth"`
		FontSize     float64 `yaml:"fontSize"`
		AnchorRadius float64 `yaml:"anchorRadius"`

		// TextExprs are the label templates per shape kind name
		TextExprs map[string]string `yaml:"textExprs"`
	} `yaml:"drawing"`

	// History parameters
	History struct {
		// MaxDepth is the maximum number of undoable commands, 0 for no limit
		MaxDepth int `yaml:"maxDepth"`
	} `yaml:"history"`

	Logging struct {
		// Level is one of debug, info, warn or error
		Level string `yaml:"level"`
	} `yaml:"logging"`

	// Volume parameters used when loading slice stacks
	Volume struct {
		// Spacing is the in-plane pixel size in mm
		Spacing float64 `yaml:"spacing"`

		// SliceGap represents the physical distance between consecutive slices in mm
		SliceGap float64 `yaml:"sliceGap"`

		// Orientation is the view orientation: axial, coronal or sagittal
		Orientation string `yaml:"orientation"`

		Modality  string `yaml:"modality"`
		PixelUnit string `yaml:"pixelUnit"`
	} `yaml:"volume"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Position.Precision = drawgroup.DefaultPrecision

	cfg.Quantification.FullStats = false

	cfg.Drawing.Colour = "#ffff00"
	cfg.Drawing.StrokeWidth = 2
	cfg.Drawing.FontSize = 12
	cfg.Drawing.AnchorRadius = 3
	cfg.Drawing.TextExprs = map[string]string{}

	cfg.History.MaxDepth = 0

	cfg.Logging.Level = "warn"

	cfg.Volume.Spacing = 1.0
	cfg.Volume.SliceGap = 1.0
	cfg.Volume.Orientation = string(geom.Axial)
	cfg.Volume.Modality = "MR"

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w: %w", errs.ErrParsingFailed, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("config: %s: %w", fmt.Sprintf(format, args...), errs.ErrInvalidConfig)
	}
	if c.Position.Precision < 0 || c.Position.Precision > 12 {
		return invalid("position precision %d outside [0, 12]", c.Position.Precision)
	}
	if _, err := colorful.Hex(c.Drawing.Colour); err != nil {
		return invalid("drawing colour %q", c.Drawing.Colour)
	}
	if c.Drawing.StrokeWidth <= 0 || c.Drawing.FontSize <= 0 || c.Drawing.AnchorRadius <= 0 {
		return invalid("drawing sizes must be positive")
	}
	for name := range c.Drawing.TextExprs {
		if _, ok := shape.ParseKind(name); !ok {
			return invalid("text template for unknown shape %q", name)
		}
	}
	if c.History.MaxDepth < 0 {
		return invalid("negative history depth %d", c.History.MaxDepth)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("logging level %q", c.Logging.Level)
	}
	if c.Volume.Spacing <= 0 || c.Volume.SliceGap <= 0 {
		return invalid("volume spacing and slice gap must be positive")
	}
	if _, ok := geom.MatrixFromName(geom.Orientation(c.Volume.Orientation)); !ok {
		return invalid("volume orientation %q", c.Volume.Orientation)
	}
	return nil
}

// Colour returns the default annotation colour.
func (c *Config) Colour() colorful.Color {
	col, err := colorful.Hex(c.Drawing.Colour)
	if err != nil {
		return annotation.DefaultColour
	}
	return col
}

// TextExprs returns the label template of every shape kind: the configured
// one or the default. With FullStats the quartiles and median are appended.
func (c *Config) TextExprs() map[shape.Kind]string {
	exprs := map[shape.Kind]string{}
	for _, k := range shape.Kinds() {
		expr, ok := c.Drawing.TextExprs[k.String()]
		if !ok {
			expr = draw.DefaultTextExpr(k)
		}
		switch k {
		case shape.KindCircle, shape.KindEllipse, shape.KindRectangle, shape.KindROI:
			if c.Quantification.FullStats {
				expr = strings.TrimSpace(expr + " [{p25} {median} {p75}]")
			}
		}
		exprs[k] = expr
	}
	return exprs
}

// Style returns the drawing settings.
func (c *Config) Style() draw.Style {
	return draw.Style{
		StrokeWidth:  c.Drawing.StrokeWidth,
		FontSize:     c.Drawing.FontSize,
		AnchorRadius: c.Drawing.AnchorRadius,
		Scale:        1,
	}
}

// ViewOrientation returns the configured view orientation matrix.
func (c *Config) ViewOrientation() geom.Matrix33 {
	m, ok := geom.MatrixFromName(geom.Orientation(c.Volume.Orientation))
	if !ok {
		return geom.Identity33()
	}
	return m
}
