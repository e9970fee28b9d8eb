package store

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type GrainReference struct {
	StandardName string   `yaml:"standard_name"`
	Synonyms     []string `yaml:"synonyms"`
}

type CatalogRecipe struct {
	Key     string `yaml:"key"`
	No      string `yaml:"no"`
	Name    string `yaml:"name"`
	Enabled *bool  `yaml:"enabled,omitempty"`
}

// IsEnabled treats a missing flag as enabled.
func (r CatalogRecipe) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// Catalog is the seed file layout.
type Catalog struct {
	Grains  []GrainReference `yaml:"grains"`
	Recipes []CatalogRecipe  `yaml:"recipes"`
}

type SeedStats struct {
	Grains  int
	Aliases int
	Recipes int
}

func ParseCatalog(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		if err == io.EOF {
			return &c, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &c, nil
}

func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return ParseCatalog(f)
}
