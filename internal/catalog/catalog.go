// Package catalog serves the embedded model catalog: the known models
// per provider, used by the models command and for lookup hints.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"inkwell/pkg/inktypes"
)

//go:embed models.yaml
var catalogData []byte

// Entry describes one known model.
type Entry struct {
	ID              string `yaml:"id"`
	Provider        string `yaml:"provider"`
	DisplayName     string `yaml:"display_name"`
	ContextWindow   int    `yaml:"context_window"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
}

type catalogFile struct {
	Models []Entry `yaml:"models"`
}

// Catalog is the parsed embedded model list.
type Catalog struct {
	entries []Entry
}

// Load parses the embedded catalog and validates that model IDs are
// unique, case-insensitively.
func Load() (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(catalogData, &file); err != nil {
		return nil, fmt.Errorf("failed to parse model catalog: %w", err)
	}

	seen := make(map[string]bool, len(file.Models))
	for _, entry := range file.Models {
		key := strings.ToLower(entry.ID)
		if seen[key] {
			return nil, fmt.Errorf("duplicate model id in catalog: %s", entry.ID)
		}
		seen[key] = true
	}

	return &Catalog{entries: file.Models}, nil
}

// Models returns all entries in catalog order.
func (c *Catalog) Models() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// ModelsByProvider returns the entries for one provider.
func (c *Catalog) ModelsByProvider(provider inktypes.Provider) []Entry {
	var out []Entry
	for _, entry := range c.entries {
		if strings.EqualFold(entry.Provider, string(provider)) {
			out = append(out, entry)
		}
	}
	return out
}

// Find looks a model up by ID, case-insensitively.
func (c *Catalog) Find(id string) (Entry, bool) {
	for _, entry := range c.entries {
		if strings.EqualFold(entry.ID, id) {
			return entry, true
		}
	}
	return Entry{}, false
}
