// Copyright 2026 The nutsdb Author. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package catalog

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/nutsdb/nutsquery/internal/tuple"
)

// PrimaryIndexName names the index holding a table's rows.
const PrimaryIndexName = "primary"

var (
	// ErrTableNotFound is returned when looking for a table that does not exist.
	ErrTableNotFound = errors.New("table not found")

	// ErrTableExists is returned when registering a table twice.
	ErrTableExists = errors.New("table already exists")

	// ErrInvalidTable is returned when a table definition is inconsistent.
	ErrInvalidTable = errors.New("invalid table definition")
)

// Catalog resolves table descriptors by name.
type Catalog interface {
	Table(name string) (*Table, error)
}

// Field describes one column of a table.
type Field struct {
	Name     string
	Kind     tuple.Kind
	Nullable bool
}

// Index describes a secondary index over one or more fields. Entries are
// keyed by the indexed values followed by the primary key.
type Index struct {
	Name   string
	Fields []string
}

// Table describes a table with a single field primary key.
type Table struct {
	Name       string
	Fields     []Field
	PrimaryKey string
	Indexes    []Index

	slots map[string]int
}

// NewTable validates a definition and returns a ready Table.
func NewTable(name string, fields []Field, primaryKey string, indexes ...Index) (*Table, error) {
	t := &Table{
		Name:       name,
		Fields:     fields,
		PrimaryKey: primaryKey,
		Indexes:    indexes,
	}
	if err := t.init(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) init() error {
	if t.Name == "" {
		return fmt.Errorf("%w: empty table name", ErrInvalidTable)
	}
	t.slots = make(map[string]int, len(t.Fields))
	for i, f := range t.Fields {
		if f.Name == "" || !f.Kind.Valid() {
			return fmt.Errorf("%w: field %d of %s", ErrInvalidTable, i, t.Name)
		}
		if _, dup := t.slots[f.Name]; dup {
			return fmt.Errorf("%w: duplicate field %s", ErrInvalidTable, f.Name)
		}
		t.slots[f.Name] = i
	}
	pk, ok := t.slots[t.PrimaryKey]
	if !ok {
		return fmt.Errorf("%w: primary key %q is not a field of %s", ErrInvalidTable, t.PrimaryKey, t.Name)
	}
	if t.Fields[pk].Nullable {
		return fmt.Errorf("%w: primary key %q is nullable", ErrInvalidTable, t.PrimaryKey)
	}
	names := map[string]struct{}{PrimaryIndexName: {}}
	for _, idx := range t.Indexes {
		if _, dup := names[idx.Name]; dup || idx.Name == "" || len(idx.Fields) == 0 {
			return fmt.Errorf("%w: index %q of %s", ErrInvalidTable, idx.Name, t.Name)
		}
		names[idx.Name] = struct{}{}
		for _, f := range idx.Fields {
			if _, ok := t.slots[f]; !ok {
				return fmt.Errorf("%w: index %q references unknown field %q", ErrInvalidTable, idx.Name, f)
			}
		}
	}
	return nil
}

// Field returns the field called name and its slot in the row tuple.
func (t *Table) Field(name string) (Field, int, bool) {
	slot, ok := t.slots[name]
	if !ok {
		return Field{}, -1, false
	}
	return t.Fields[slot], slot, true
}

// PrimaryField returns the primary key field.
func (t *Table) PrimaryField() Field {
	f, _, _ := t.Field(t.PrimaryKey)
	return f
}

// Index returns the secondary index called name.
func (t *Table) Index(name string) (Index, bool) {
	for _, idx := range t.Indexes {
		if idx.Name == name {
			return idx, true
		}
	}
	return Index{}, false
}

// PrimaryIndexID returns the storage identity of the table's rows.
func (t *Table) PrimaryIndexID() string {
	return IndexID(t.Name, PrimaryIndexName)
}

// IndexID returns the storage identity of a table index.
func IndexID(table, index string) string {
	return table + "." + index
}

// MemCatalog is an in-memory Catalog.
type MemCatalog struct {
	mu     sync.RWMutex
	tables map[string]*Table
}

func NewMemCatalog() *MemCatalog {
	return &MemCatalog{tables: make(map[string]*Table)}
}

// Register adds t to the catalog.
func (c *MemCatalog) Register(t *Table) error {
	if t.slots == nil {
		if err := t.init(); err != nil {
			return err
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.tables[t.Name]; ok {
		return fmt.Errorf("%w: %s", ErrTableExists, t.Name)
	}
	c.tables[t.Name] = t
	return nil
}

// Table implements Catalog.
func (c *MemCatalog) Table(name string) (*Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return t, nil
}

// Tables returns the registered table names in sorted order.
func (c *MemCatalog) Tables() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
