// Package guidance holds the static prompt templates offered next to the
// interview: a system instruction plus a user request per template.
package guidance

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed guidance.yaml
var guidanceYAML []byte

type Template struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	System      string `yaml:"system"`
	User        string `yaml:"user"`
}

type document struct {
	Templates []Template `yaml:"templates"`
}

// Load parses the embedded templates, keeping their declared order.
func Load() ([]Template, error) {
	return Parse(guidanceYAML)
}

func Parse(data []byte) ([]Template, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing guidance templates: %w", err)
	}
	seen := make(map[string]bool, len(doc.Templates))
	for _, t := range doc.Templates {
		if t.Name == "" {
			return nil, fmt.Errorf("guidance template without a name")
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("duplicate guidance template %q", t.Name)
		}
		seen[t.Name] = true
	}
	return doc.Templates, nil
}
