package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the file.
const (
	EnvOutput     = "RSTGRID_OUTPUT"
	EnvLineBreaks = "RSTGRID_LINE_BREAKS"
)

// Config represents the CLI configuration
type Config struct {
	// Default output format (text, json, ndjson, table, yaml)
	Output string `yaml:"output,omitempty"`

	// Default color mode (auto, always, never)
	Color string `yaml:"color,omitempty"`

	// Default line break handling for cell text (flatten, preserve)
	LineBreaks string `yaml:"line_breaks,omitempty"`

	// Default cell padding; documents and cells may override it
	Padding *Padding `yaml:"padding,omitempty"`

	// Default error output format (auto, text, json, yaml)
	ErrorFormat string `yaml:"error_format,omitempty"`
}

// Padding holds the default spaces left and right of cell text.
type Padding struct {
	Left  *int `yaml:"left,omitempty"`
	Right *int `yaml:"right,omitempty"`
}

// configPathFunc is the function used to get the default config path
// It can be overridden for testing
var configPathFunc = defaultConfigPath

// SetConfigPathFunc sets the config path function for testing.
// Returns the original function so it can be restored.
func SetConfigPathFunc(fn func() (string, error)) func() (string, error) {
	orig := configPathFunc
	configPathFunc = fn
	return orig
}

// defaultConfigPath returns ~/.config/rstgrid/config.yaml
func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "rstgrid", "config.yaml"), nil
}

// DefaultConfigPath returns ~/.config/rstgrid/config.yaml
func DefaultConfigPath() (string, error) {
	return configPathFunc()
}

// Load loads config from the default path, returns empty config if not found
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return &Config{}, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil // Return empty config if file doesn't exist
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}
	return &cfg, nil
}

// Save saves config to the default path
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveToPath(path)
}

// SaveToPath saves config to a specific path
func (c *Config) SaveToPath(path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// ApplyEnv overrides file values with non-empty environment variables.
// lookup is os.LookupEnv outside tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvOutput); ok && v != "" {
		c.Output = v
	}
	if v, ok := lookup(EnvLineBreaks); ok && v != "" {
		c.LineBreaks = v
	}
}

// GetOutput returns the effective output format (config default or empty)
func (c *Config) GetOutput() string {
	return c.Output
}

// GetColor returns the effective color mode (config default or empty)
func (c *Config) GetColor() string {
	return c.Color
}

// GetLineBreaks returns the configured line break mode (or empty)
func (c *Config) GetLineBreaks() string {
	return c.LineBreaks
}

// GetPadding returns the configured padding, falling back to def for each
// side that is not set.
func (c *Config) GetPadding(def int) (left, right int) {
	left, right = def, def
	if c.Padding == nil {
		return left, right
	}
	if c.Padding.Left != nil {
		left = *c.Padding.Left
	}
	if c.Padding.Right != nil {
		right = *c.Padding.Right
	}
	return left, right
}

// SetPadding sets one side ("left" or "right") or both ("") of the padding.
func (c *Config) SetPadding(side string, n int) error {
	if n < 0 {
		return fmt.Errorf("padding must not be negative, got %d", n)
	}
	if c.Padding == nil {
		c.Padding = &Padding{}
	}
	switch side {
	case "left":
		c.Padding.Left = &n
	case "right":
		c.Padding.Right = &n
	case "":
		left, right := n, n
		c.Padding.Left, c.Padding.Right = &left, &right
	default:
		return fmt.Errorf("unknown padding side %q", side)
	}
	return nil
}
