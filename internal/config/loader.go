package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/embertail-io/embertail/internal/models"
)

// EnvMarker prefixes string values that are substituted from the process
// environment at load time, e.g. password: env:PROD_PASSWORD.
const EnvMarker = "env:"

// Load reads a profiles.yaml file, substitutes env-marked values, and
// decodes it. Profile names are filled in from the map keys.
func Load(path string) (*models.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML from %s: %w", path, err)
	}
	if err := interpolateEnv(&doc); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	var cfg models.Config
	if err := doc.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	for name, p := range cfg.Profiles {
		p.Name = name
		cfg.Profiles[name] = p
	}
	return &cfg, nil
}

// interpolateEnv walks every string scalar in the document and replaces
// env-marked values with the corresponding environment variable. The
// substitution is recursive over the whole tree, so nested blocks
// (forward, profiles, future additions) are covered uniformly.
func interpolateEnv(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" && strings.HasPrefix(n.Value, EnvMarker) {
		key := strings.TrimPrefix(n.Value, EnvMarker)
		val, ok := os.LookupEnv(key)
		if !ok {
			return fmt.Errorf("environment variable %s referenced but not set", key)
		}
		n.Value = val
		return nil
	}
	for _, child := range n.Content {
		if err := interpolateEnv(child); err != nil {
			return err
		}
	}
	return nil
}
