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

package nutsquery_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/nutsdb/nutsquery"
)

type testLogger struct{}

func (l *testLogger) Printf(format string, args ...any) {
	fmt.Printf("testlogger:"+format+"\n", args...)
}

func ExampleILogger_Printf() {
	logger := &testLogger{}
	nutsquery.SetLogger(logger)

	nutsquery.GetLogger().Printf("test")
	nutsquery.GetLogger().Printf("test: %d", 1)
	nutsquery.GetLogger().Printf("test: %d, %s", 1, "test")
	// Output:
	// testlogger:test
	// testlogger:test: 1
	// testlogger:test: 1, test
}

func ExampleEngine_Query() {
	users, _ := nutsquery.NewTable("users",
		[]nutsquery.Field{
			{Name: "id", Kind: nutsquery.KindInt},
			{Name: "name", Kind: nutsquery.KindString},
		},
		"id",
		nutsquery.Index{Name: "by_name", Fields: []string{"name"}},
	)
	cat := nutsquery.NewMemCatalog()
	_ = cat.Register(users)

	db, _ := nutsquery.Open(cat, nutsquery.NewStore(), nutsquery.WithLogger(nutsquery.DiscardLogger()))
	for i, name := range []string{"ann", "bob", "cat", "dan", "eve"} {
		_ = db.Insert("users", map[string]nutsquery.Value{
			"id":   nutsquery.Int(int64(i + 1)),
			"name": nutsquery.String(name),
		})
	}

	q := nutsquery.Query{Table: "users", Where: nutsquery.Where(nutsquery.Gt("id", nutsquery.Int(1))), Limit: 2}
	token := ""
	for {
		res, err := db.Query(context.Background(), q, token)
		if err != nil {
			fmt.Println(err)
			return
		}
		names := make([]string, len(res.Rows))
		for i, row := range res.Rows {
			v, _ := row.Get("name")
			names[i] = v.AsString()
		}
		fmt.Println(res.Path, strings.Join(names, ","))
		if !res.HasMore() {
			break
		}
		token = res.Next
	}
	// Output:
	// pk_range bob,cat
	// pk_range dan,eve
}
