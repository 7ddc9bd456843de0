package migration

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Skotchmaster/storefront/internal/domain"
)

// Mapping names one media field and the remote folder its files go to.
type Mapping struct {
	Collection string `yaml:"collection"`
	Field      string `yaml:"field"`
	Folder     string `yaml:"folder"`
}

func (m Mapping) String() string {
	return m.Collection + "." + m.Field + " -> " + m.Folder
}

func DefaultMappings() []Mapping {
	return []Mapping{
		{Collection: "products", Field: "main_image", Folder: "products/main"},
		{Collection: "categories", Field: "image", Folder: "categories"},
		{Collection: "product_images", Field: "image", Folder: "products/gallery"},
		{Collection: "testimonials", Field: "avatar", Folder: "testimonials"},
	}
}

type mappingFile struct {
	Mappings []Mapping `yaml:"mappings"`
}

// LoadMappings reads a YAML file of the form
//
//	mappings:
//	  - collection: products
//	    field: main_image
//	    folder: products/main
func LoadMappings(path string) ([]Mapping, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mappings: %w", err)
	}

	var f mappingFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: parse mappings: %v", domain.ErrValidation, err)
	}
	if len(f.Mappings) == 0 {
		return nil, fmt.Errorf("%w: %s has no mappings", domain.ErrValidation, path)
	}
	for i, m := range f.Mappings {
		if m.Collection == "" || m.Field == "" || m.Folder == "" {
			return nil, fmt.Errorf("%w: mapping %d needs collection, field and folder", domain.ErrValidation, i)
		}
	}
	return f.Mappings, nil
}
