package permission

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is the seed file layout:
//
//	permissions:
//	  - key: admin
//	    name: Administer
//	roles:
//	  - name: Admin
//	    default_path: /admin
//	    permissions: [admin]
type Catalog struct {
	Permissions []CatalogPermission `yaml:"permissions"`
	Roles       []CatalogRole       `yaml:"roles"`
}

type CatalogPermission struct {
	Key         string `yaml:"key"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type CatalogRole struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	DefaultPath string   `yaml:"default_path"`
	Permissions []string `yaml:"permissions"`
}

func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a catalog, rejecting unknown fields.
func ParseCatalog(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var catalog Catalog
	if err := dec.Decode(&catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(catalog.Permissions))
	for i, p := range catalog.Permissions {
		if p.Key == "" {
			return nil, fmt.Errorf("catalog permission #%d has no key", i+1)
		}
		if _, dup := seen[p.Key]; dup {
			return nil, fmt.Errorf("catalog permission key %q is listed twice", p.Key)
		}
		seen[p.Key] = struct{}{}
	}

	return &catalog, nil
}
