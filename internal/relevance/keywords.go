package relevance

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Category is a named, weighted group of keyword terms. Terms compile once to
// whole-word, case-insensitive patterns; categories are immutable after load.
type Category struct {
	Name     string
	Weight   float64
	Terms    []string
	patterns []*regexp.Regexp
}

// NewCategory compiles term patterns. A missing weight defaults to 1.0 and an
// empty term list simply never matches.
func NewCategory(name string, weight float64, terms []string) Category {
	if weight <= 0 {
		weight = 1.0
	}

	patterns := make([]*regexp.Regexp, 0, len(terms))
	for _, term := range terms {
		patterns = append(patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(term)+`\b`))
	}

	return Category{Name: name, Weight: weight, Terms: terms, patterns: patterns}
}

type categoryConfig struct {
	Weight float64  `yaml:"weight"`
	Terms  []string `yaml:"terms"`
}

// LoadCategories reads the keywords YAML file, a mapping from category name to
// {weight, terms}. Document order is preserved so that scoring output follows
// the configured category order.
func LoadCategories(path string) ([]Category, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keywords config: %w", err)
	}
	return ParseCategories(raw)
}

// ParseCategories decodes the keywords mapping from raw YAML.
func ParseCategories(raw []byte) ([]Category, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse keywords config: %w", err)
	}

	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("keywords config: expected mapping at top level")
	}

	// Mapping nodes store alternating key/value children; walking them keeps
	// the file's category order.
	categories := make([]Category, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value

		var cfg categoryConfig
		if err := root.Content[i+1].Decode(&cfg); err != nil {
			return nil, fmt.Errorf("keywords config: category %s: %w", name, err)
		}
		if cfg.Weight == 0 {
			cfg.Weight = 1.0
		}

		categories = append(categories, NewCategory(name, cfg.Weight, cfg.Terms))
	}

	return categories, nil
}
