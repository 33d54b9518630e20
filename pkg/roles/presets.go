package roles

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/presets.yaml
var embeddedPresets []byte

// Preset is a named selection of role codes
type Preset struct {
	Name  string   `yaml:"name" json:"name"`
	Roles []string `yaml:"roles" json:"roles"`
}

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

// DefaultPresets returns the presets bundled with the binary
func DefaultPresets() ([]Preset, error) {
	return ParsePresets(embeddedPresets)
}

// LoadPresets reads presets from a YAML file
func LoadPresets(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	presets, err := ParsePresets(data)
	if err != nil {
		return nil, fmt.Errorf("parsing preset file %s: %w", path, err)
	}
	return presets, nil
}

// ParsePresets decodes a YAML document of the form {presets: [{name, roles}]}
func ParsePresets(data []byte) ([]Preset, error) {
	var f presetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	for i, p := range f.Presets {
		if p.Name == "" {
			return nil, fmt.Errorf("preset %d has no name", i)
		}
	}
	return f.Presets, nil
}

// FindPreset returns the preset called name
func FindPreset(presets []Preset, name string) (Preset, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// Resolve returns the preset's codes that exist in the catalogue, in preset order
func (c *Catalogue) Resolve(p Preset) []string {
	codes := make([]string, 0, len(p.Roles))
	for _, code := range p.Roles {
		if _, ok := c.ByCode(code); ok {
			codes = append(codes, code)
		}
	}
	return codes
}
