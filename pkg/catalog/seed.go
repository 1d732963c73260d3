package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed seed/products.yaml
var seedYAML []byte

// Seed returns the built-in product dataset. Every call decodes a fresh copy,
// so callers may keep or modify the result freely.
//
// Seed 返回内置的产品数据集。每次调用都会解码一份新的副本。
func Seed() ([]Product, error) {
	return LoadProducts(bytes.NewReader(seedYAML), "yaml")
}

// LoadFile loads a product collection from a YAML or JSON file,
// detecting the format from the file extension.
//
// LoadFile 从YAML或JSON文件加载产品集合，根据文件扩展名检测格式。
func LoadFile(filename string) ([]Product, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open product file: %w", err)
	}
	defer file.Close()

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	return LoadProducts(file, ext)
}

// LoadProducts decodes a product collection from r.
// format is one of "json", "yaml" or "yml".
func LoadProducts(r io.Reader, format string) ([]Product, error) {
	var products []Product
	var err error

	switch strings.ToLower(format) {
	case "yaml", "yml":
		err = yaml.NewDecoder(r).Decode(&products)
	case "json":
		err = json.NewDecoder(r).Decode(&products)
	default:
		return nil, fmt.Errorf("unsupported product file format: %s", format)
	}

	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}
