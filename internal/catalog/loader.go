package catalog

import (
	"fmt"
	"os"

	"github.com/nutsdb/nutsquery/internal/tuple"
	"gopkg.in/yaml.v3"
)

// FieldConfig is the YAML form of a Field.
type FieldConfig struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Nullable bool   `yaml:"nullable"`
}

// IndexConfig is the YAML form of an Index.
type IndexConfig struct {
	Name   string   `yaml:"name"`
	Fields []string `yaml:"fields"`
}

// TableConfig is the YAML form of a Table.
type TableConfig struct {
	Name       string        `yaml:"name"`
	PrimaryKey string        `yaml:"primary_key"`
	Fields     []FieldConfig `yaml:"fields"`
	Indexes    []IndexConfig `yaml:"indexes"`
}

// Config is the YAML document describing a catalog.
type Config struct {
	Tables []TableConfig `yaml:"tables"`
}

// LoadFile reads a catalog definition from a YAML file.
func LoadFile(filePath string) (*MemCatalog, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Load(data)
}

// Load parses a YAML catalog definition.
func Load(data []byte) (*MemCatalog, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	c := NewMemCatalog()
	for _, tc := range cfg.Tables {
		t, err := tc.build()
		if err != nil {
			return nil, err
		}
		if err := c.Register(t); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (tc TableConfig) build() (*Table, error) {
	fields := make([]Field, 0, len(tc.Fields))
	for _, fc := range tc.Fields {
		kind, ok := tuple.ParseKind(fc.Kind)
		if !ok {
			return nil, fmt.Errorf("%w: field %s.%s has unknown kind %q", ErrInvalidTable, tc.Name, fc.Name, fc.Kind)
		}
		fields = append(fields, Field{Name: fc.Name, Kind: kind, Nullable: fc.Nullable})
	}
	indexes := make([]Index, 0, len(tc.Indexes))
	for _, ic := range tc.Indexes {
		indexes = append(indexes, Index{Name: ic.Name, Fields: ic.Fields})
	}
	return NewTable(tc.Name, fields, tc.PrimaryKey, indexes...)
}
