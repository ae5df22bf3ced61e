// Package manifest reads the run manifest: a small YAML or JSON file
// naming the explicit MDP sources plus stepping options.
package manifest

// #region imports
import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cancetinsoy/stormenv/internal/explicit"
)

// #endregion imports

// #region types

// Manifest names the model sources and the run options. Tra is required;
// Rew and Lab are optional. A nil Seed means the caller chooses one.
type Manifest struct {
	Tra    string `yaml:"tra" json:"tra"`
	Rew    string `yaml:"rew,omitempty" json:"rew,omitempty"`
	Lab    string `yaml:"lab,omitempty" json:"lab,omitempty"`
	Seed   *int64 `yaml:"seed,omitempty" json:"seed,omitempty"`
	Strict bool   `yaml:"strict,omitempty" json:"strict,omitempty"`
}

// Paths converts the manifest's file references into loader paths.
func (m *Manifest) Paths() explicit.Paths {
	return explicit.Paths{Tra: m.Tra, Rew: m.Rew, Lab: m.Lab}
}

// Options converts the manifest's flags into loader options.
func (m *Manifest) Options() explicit.Options {
	return explicit.Options{Strict: m.Strict}
}

// #endregion types

// #region load

// LoadFromPath reads a manifest file (YAML or JSON) and resolves its
// relative source paths against the manifest's own directory.
func LoadFromPath(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := Load(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	base := filepath.Dir(path)
	m.Tra = resolve(base, m.Tra)
	m.Rew = resolve(base, m.Rew)
	m.Lab = resolve(base, m.Lab)
	return m, nil
}

// Load parses a manifest from bytes. ext is the file extension for a
// format hint (".yaml"/".yml"/".json"); empty = detect from content.
func Load(data []byte, ext string) (*Manifest, error) {
	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}

	var m Manifest
	switch {
	case ext == ".yaml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse manifest yaml: %w", err)
		}
	case ext == ".json":
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse manifest json: %w", err)
		}
	case strings.HasPrefix(strings.TrimSpace(string(data)), "{"):
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse manifest json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse manifest yaml: %w", err)
		}
	}

	if m.Tra == "" {
		return nil, fmt.Errorf("manifest: missing required field %q", "tra")
	}
	return &m, nil
}

// resolve joins base and path unless path is empty or already absolute.
func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// #endregion load
