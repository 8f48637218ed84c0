package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nutsdb/nutsquery/internal/tuple"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersYAML = `
tables:
  - name: users
    primary_key: id
    fields:
      - {name: id, kind: int}
      - {name: name, kind: string}
      - {name: age, kind: int, nullable: true}
    indexes:
      - {name: by_age, fields: [age]}
      - {name: by_name_age, fields: [name, age]}
`

func TestLoad(t *testing.T) {
	c, err := Load([]byte(usersYAML))
	require.NoError(t, err)

	users, err := c.Table("users")
	require.NoError(t, err)
	assert.Equal(t, "id", users.PrimaryKey)
	assert.Equal(t, "users.primary", users.PrimaryIndexID())

	f, slot, ok := users.Field("age")
	require.True(t, ok)
	assert.Equal(t, 2, slot)
	assert.Equal(t, tuple.KindInt, f.Kind)
	assert.True(t, f.Nullable)

	idx, ok := users.Index("by_name_age")
	require.True(t, ok)
	assert.Equal(t, []string{"name", "age"}, idx.Fields)

	assert.Equal(t, []string{"users"}, c.Tables())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(usersYAML), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	_, err = c.Table("users")
	require.NoError(t, err)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewTable_Invalid(t *testing.T) {
	fields := []Field{{Name: "id", Kind: tuple.KindInt}, {Name: "v", Kind: tuple.KindString}}

	tests := []struct {
		name    string
		pk      string
		fields  []Field
		indexes []Index
	}{
		{"unknown primary key", "nope", fields, nil},
		{"nullable primary key", "id", []Field{{Name: "id", Kind: tuple.KindInt, Nullable: true}}, nil},
		{"index on unknown field", "id", fields, []Index{{Name: "i", Fields: []string{"x"}}}},
		{"index named primary", "id", fields, []Index{{Name: PrimaryIndexName, Fields: []string{"v"}}}},
		{"duplicate field", "id", append(fields, Field{Name: "v", Kind: tuple.KindInt}), nil},
		{"invalid kind", "id", append(fields, Field{Name: "w"}), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable("t", tt.fields, tt.pk, tt.indexes...)
			assert.ErrorIs(t, err, ErrInvalidTable)
		})
	}
}

func TestMemCatalog(t *testing.T) {
	c := NewMemCatalog()
	tbl, err := NewTable("t", []Field{{Name: "id", Kind: tuple.KindInt}}, "id")
	require.NoError(t, err)

	require.NoError(t, c.Register(tbl))
	assert.ErrorIs(t, c.Register(tbl), ErrTableExists)

	_, err = c.Table("missing")
	assert.ErrorIs(t, err, ErrTableNotFound)
}
