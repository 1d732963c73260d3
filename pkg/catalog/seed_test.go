package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed(t *testing.T) {
	products, err := Seed()
	require.NoError(t, err)
	require.Len(t, products, 20)
	require.NoError(t, ValidateCollection(products))

	activeRaw := 0
	for _, p := range products {
		if p.Category == CategoryRawHoney && p.Status == StatusActive {
			activeRaw++
		}
		assert.False(t, p.CreatedAt.IsZero(), p.ID)
	}
	assert.Equal(t, 9, activeRaw)

	again, err := Seed()
	require.NoError(t, err)
	again[0].Name = "changed"
	assert.NotEqual(t, "changed", products[0].Name)
}

func TestLoadProductsJSON(t *testing.T) {
	data := `[{"id":"x","slug":"x","name":"X","price":{"amount":3,"currency":"USD"},` +
		`"category":"honeycomb","status":"active","images":[{"url":"/x.jpg"}]}]`

	products, err := LoadProducts(strings.NewReader(data), "json")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, CategoryHoneycomb, products[0].Category)
	assert.NoError(t, ValidateCollection(products))
}

func TestLoadProductsUnsupported(t *testing.T) {
	_, err := LoadProducts(strings.NewReader("[]"), "toml")
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.yml")
	require.NoError(t, os.WriteFile(path, seedYAML, 0o644))

	products, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, products, 20)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
