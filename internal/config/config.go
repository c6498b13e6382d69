package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/menta2k/pinboard/pkg/capture"
	"github.com/menta2k/pinboard/pkg/orientation"
)

// Config holds the application configuration
type Config struct {
	Capture     CaptureConfig     `json:"capture"`
	Resolver    ResolverConfig    `json:"resolver"`
	Orientation OrientationConfig `json:"orientation"`
	Output      OutputConfig      `json:"output"`
}

// CaptureConfig holds configuration for surface capture
type CaptureConfig struct {
	Oversample float64 `json:"oversample"`
}

// ResolverConfig holds configuration for image source resolution
type ResolverConfig struct {
	TimeoutSeconds int `json:"timeout_seconds"`
}

// OrientationConfig holds configuration for flip detection
type OrientationConfig struct {
	MatchThreshold float64 `json:"match_threshold"`
}

// OutputConfig holds configuration for export output
type OutputConfig struct {
	OutputDir  string `json:"output_dir"`
	GalleryDir string `json:"gallery_dir"`
	TempDir    string `json:"temp_dir"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Capture: CaptureConfig{
			Oversample: capture.DefaultOversample,
		},
		Resolver: ResolverConfig{
			TimeoutSeconds: 30,
		},
		Orientation: OrientationConfig{
			MatchThreshold: orientation.DefaultMatchThreshold,
		},
		Output: OutputConfig{
			OutputDir:  "./output",
			GalleryDir: "",
			TempDir:    os.TempDir(),
		},
	}
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Capture.Oversample <= 0 || c.Capture.Oversample > 8 {
		return fmt.Errorf("capture.oversample must be between 0 and 8")
	}

	if c.Resolver.TimeoutSeconds < 1 {
		return fmt.Errorf("resolver.timeout_seconds must be positive")
	}

	if c.Orientation.MatchThreshold <= 0 || c.Orientation.MatchThreshold > 1 {
		return fmt.Errorf("orientation.match_threshold must be between 0 and 1")
	}

	if c.Output.OutputDir == "" {
		return fmt.Errorf("output.output_dir cannot be empty")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "pinboard", "config.json")
}
