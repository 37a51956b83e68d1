// Package config provides configuration loading and management for cubefit.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"cubefit/internal/models"
	"cubefit/pkg/geometry"
	"cubefit/pkg/optimize"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Image parameters
	Image struct {
		// Width and Height are the dimensions every image is resized to
		// before annotations are read against it
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"image"`

	// Fit parameters
	Fit struct {
		// Initial is the starting pose
		// [thetaX, thetaY, thetaZ, cameraDist, scale, offsetX, offsetY].
		// Offsets left at zero are replaced by the image centre.
		Initial []float64 `yaml:"initial"`

		// Rate holds one learning rate per parameter
		Rate []float64 `yaml:"rate"`

		// Tolerance on the squared gradient norm
		Tolerance float64 `yaml:"tolerance"`

		// Step is the finite-difference perturbation
		Step float64 `yaml:"step"`

		// MaxIterations caps the descent
		MaxIterations int `yaml:"maxIterations"`
	} `yaml:"fit"`

	// Processing parameters
	Processing struct {
		// NumCores specifies how many images are fitted concurrently
		NumCores int `yaml:"numCores"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// CSVName is the file accepted fits are written to
		CSVName string `yaml:"csvName"`

		// RenderOverlays writes each image with the fitted wireframe
		RenderOverlays bool `yaml:"renderOverlays"`

		// AcceptUnconverged keeps fits that hit the iteration cap
		AcceptUnconverged bool `yaml:"acceptUnconverged"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Image.Width = 480
	cfg.Image.Height = 640

	cfg.Fit.Initial = []float64{0, -math.Pi / 4, -math.Pi / 4, -1, 1000, 0, 0}
	cfg.Fit.Rate = []float64{1e-6, 1e-6, 1e-6, 1e-4, 10, 0.01, 0.01}
	cfg.Fit.Tolerance = 10
	cfg.Fit.Step = optimize.DefaultStep
	cfg.Fit.MaxIterations = optimize.DefaultMaxIterations

	cfg.Processing.NumCores = runtime.NumCPU()

	cfg.Output.CSVName = "out.csv"
	cfg.Output.RenderOverlays = true
	cfg.Output.AcceptUnconverged = false
	cfg.Output.Verbose = false

	return cfg
}

// Validate checks that the configuration can drive a fit
func (c *Config) Validate() error {
	if c.Image.Width <= 0 || c.Image.Height <= 0 {
		return fmt.Errorf("image size %dx%d: %w", c.Image.Width, c.Image.Height, models.ErrInvalidArgument)
	}
	if len(c.Fit.Initial) != geometry.NumParams {
		return fmt.Errorf("fit.initial has %d values, want %d: %w",
			len(c.Fit.Initial), geometry.NumParams, models.ErrInvalidArgument)
	}
	if len(c.Fit.Rate) != geometry.NumParams {
		return fmt.Errorf("fit.rate has %d values, want %d: %w",
			len(c.Fit.Rate), geometry.NumParams, models.ErrInvalidArgument)
	}
	if c.Fit.Tolerance < 0 || c.Fit.Step <= 0 || c.Fit.MaxIterations <= 0 {
		return fmt.Errorf("fit tolerance %g, step %g, max iterations %d: %w",
			c.Fit.Tolerance, c.Fit.Step, c.Fit.MaxIterations, models.ErrInvalidArgument)
	}
	if c.Output.CSVName == "" {
		return fmt.Errorf("output.csvName is empty: %w", models.ErrInvalidArgument)
	}
	return nil
}

// InitialGuess returns the starting pose with unset offsets moved to the
// image centre
func (c *Config) InitialGuess() []float64 {
	init := append([]float64(nil), c.Fit.Initial...)
	if len(init) != geometry.NumParams {
		return init
	}
	if init[geometry.OffsetX] == 0 && init[geometry.OffsetY] == 0 {
		init[geometry.OffsetX] = float64(c.Image.Width) / 2
		init[geometry.OffsetY] = float64(c.Image.Height) / 2
	}
	return init
}

// OptimizeSettings converts the fit section to optimizer settings
func (c *Config) OptimizeSettings() *optimize.Settings {
	s := optimize.DefaultSettings()
	s.Step = c.Fit.Step
	s.MaxIterations = c.Fit.MaxIterations
	return s
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
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
