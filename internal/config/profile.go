package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/i474232898/weather-blender/internal/weather"
)

// Profile is the on-disk description of the weather states a scene blends
// between. Missing sections fall back to the built-in defaults.
type Profile struct {
	Clear          *weather.StateSettings     `yaml:"clear"`
	Categories     []weather.CategorySettings `yaml:"categories" validate:"omitempty,dive"`
	InitialWeights map[string]float64         `yaml:"initial_weights" validate:"omitempty,dive,gte=0,lte=1"`
}

// LoadProfile reads and validates a YAML profile.
func LoadProfile(path string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weather profile: %w", err)
	}
	return ParseProfile(raw)
}

// ParseProfile decodes and validates YAML profile content.
func ParseProfile(raw []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode weather profile: %w", err)
	}
	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("invalid weather profile: %w", err)
	}
	return &p, nil
}

// apply overlays the profile onto a blender configuration.
func (p *Profile) apply(cfg *weather.Config) {
	if p.Clear != nil {
		cfg.Clear = *p.Clear
	}
	if len(p.Categories) > 0 {
		cfg.Categories = p.Categories
	}
	if len(p.InitialWeights) > 0 {
		cfg.InitialWeights = make(weather.Weights, len(p.InitialWeights))
		for name, w := range p.InitialWeights {
			cfg.InitialWeights[weather.Category(name).Normalize()] = w
		}
	}
}
