package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/domain"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "mappings.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadMappings(t *testing.T) {
	p := writeYAML(t, `
mappings:
  - collection: products
    field: main_image
    folder: products/main
  - collection: testimonials
    field: avatar
    folder: testimonials
`)
	got, err := LoadMappings(p)
	require.NoError(t, err)
	assert.Equal(t, []Mapping{
		{Collection: "products", Field: "main_image", Folder: "products/main"},
		{Collection: "testimonials", Field: "avatar", Folder: "testimonials"},
	}, got)
}

func TestLoadMappings_Invalid(t *testing.T) {
	tests := map[string]string{
		"empty":          "mappings: []\n",
		"missing folder": "mappings:\n  - collection: products\n    field: main_image\n",
		"not yaml":       "mappings: [\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadMappings(writeYAML(t, body))
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestLoadMappings_MissingFile(t *testing.T) {
	_, err := LoadMappings(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestDefaultMappingsAreAllowed(t *testing.T) {
	for _, m := range DefaultMappings() {
		assert.NoError(t, checkColumn(m.Collection, m.Field), m.String())
	}
}
