// Copyright 2023 The PromiseDB Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package testutils

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/nutsdb/nutsquery/internal/catalog"
	"github.com/nutsdb/nutsquery/internal/codec"
	"github.com/nutsdb/nutsquery/internal/tuple"
	"github.com/stretchr/testify/require"
)

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Names used by the seeded users fixture, in insertion rotation.
var Names = []string{"ann", "bob", "cat", "dan", "eve", "fay", "gus"}

// Inserter is the write side of a store.
type Inserter interface {
	Insert(t *catalog.Table, record map[string]codec.Value) error
}

// UsersTable returns the users fixture:
//
//	id int primary key, name string, age int nullable, city string nullable
//	by_age (age), by_name_age (name, age)
//
// city has no index.
func UsersTable(t testing.TB) *catalog.Table {
	table, err := catalog.NewTable("users",
		[]catalog.Field{
			{Name: "id", Kind: tuple.KindInt},
			{Name: "name", Kind: tuple.KindString},
			{Name: "age", Kind: tuple.KindInt, Nullable: true},
			{Name: "city", Kind: tuple.KindString, Nullable: true},
		},
		"id",
		catalog.Index{Name: "by_age", Fields: []string{"age"}},
		catalog.Index{Name: "by_name_age", Fields: []string{"name", "age"}},
	)
	require.NoError(t, err)
	return table
}

// UsersCatalog returns a catalog holding only the users fixture.
func UsersCatalog(t testing.TB) (*catalog.MemCatalog, *catalog.Table) {
	cat := catalog.NewMemCatalog()
	table := UsersTable(t)
	require.NoError(t, cat.Register(table))
	return cat, table
}

// User builds a users record. A negative age stores null.
func User(id int64, name string, age int64, city string) map[string]codec.Value {
	rec := map[string]codec.Value{
		"id":   codec.Int(id),
		"name": codec.String(name),
		"age":  codec.Int(age),
	}
	if age < 0 {
		rec["age"] = codec.Null()
	}
	if city != "" {
		rec["city"] = codec.String(city)
	}
	return rec
}

// SeedUser returns the deterministic record with primary key id. Every
// eleventh user has no age.
func SeedUser(id int64) map[string]codec.Value {
	age := 18 + id%40
	if id%11 == 0 {
		age = -1
	}
	city := ""
	if id%3 != 0 {
		city = fmt.Sprintf("city-%d", id%5)
	}
	return User(id, Names[id%int64(len(Names))], age, city)
}

// SeedUsers inserts users 1..n.
func SeedUsers(t testing.TB, db Inserter, table *catalog.Table, n int) {
	for id := int64(1); id <= int64(n); id++ {
		require.NoError(t, db.Insert(table, SeedUser(id)))
	}
}

func GetRandomBytes(length int) []byte {
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return b
}

// AssertErr requires err to match expectErr, or to be nil when expectErr is.
func AssertErr(t *testing.T, err error, expectErr error) {
	if expectErr != nil {
		require.ErrorIs(t, err, expectErr)
	} else {
		require.NoError(t, err)
	}
}
