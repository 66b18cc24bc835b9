package views

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"bim-viewer/internal/viewer/model"
)

// ============================================================
// View configuration document
// ============================================================

// ErrUnknownView indicates a requested view name absent from the
// configuration document.
var ErrUnknownView = errors.New("views: unknown view")

// Config is the parsed configuration document: named views, each an
// ordered rule list. Rule order is evaluation order.
type Config struct {
	Views map[string]View `yaml:"views"`
}

// View selects the subset of rules applied for one rendering context.
type View struct {
	Rules []model.ColorRule `yaml:"rules"`
}

// Parse decodes a YAML configuration document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("views: decode config: %w", err)
	}
	return &cfg, nil
}

// Load reads and decodes a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("views: read config: %w", err)
	}
	return Parse(data)
}

// Rules returns the ordered rule list of a named view. The empty
// name selects the "default" view when present, else no rules.
func (c *Config) Rules(name string) ([]model.ColorRule, error) {
	if name == "" {
		if v, ok := c.Views["default"]; ok {
			return v.Rules, nil
		}
		return nil, nil
	}
	v, ok := c.Views[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, name)
	}
	return v.Rules, nil
}
