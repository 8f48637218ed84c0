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

package executor

import (
	"bytes"

	"github.com/nutsdb/nutsquery/internal/access"
	"github.com/nutsdb/nutsquery/internal/envelope"
	"github.com/nutsdb/nutsquery/internal/keyrange"
	"github.com/nutsdb/nutsquery/internal/kv"
)

// PKPointExecutor reads the single primary key named by the inclusive
// lower bound of the envelope.
type PKPointExecutor struct{}

func (PKPointExecutor) Kind() access.Kind { return access.KindPKPoint }

func (PKPointExecutor) Open(src kv.Source, path access.Path, env envelope.Envelope, anchor []byte, budget int) (RowIterator, error) {
	p, ok := path.(access.PKPoint)
	if !ok {
		panic(mismatch(access.KindPKPoint, path))
	}
	mustResolved(env)
	if env.Range.Lower.Unbounded {
		panic("executor: pk point envelope without a key")
	}

	key := env.Range.Lower.Key
	if budget <= 0 || !env.Contains(key) || bytes.Equal(key, anchor) {
		return emptyIterator{}, nil
	}
	value, found, err := src.Get(p.Primary, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return &pointIterator{scanned: 1}, nil
	}
	ok, err = accept(p.Residual, value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &pointIterator{scanned: 1}, nil
	}
	return &pointIterator{row: Row{Key: key, PK: key, Value: value}, has: true, scanned: 1}, nil
}

// pointIterator yields at most one row.
type pointIterator struct {
	row     Row
	has     bool
	started bool
	scanned int
}

func (it *pointIterator) Next() bool {
	if it.started || !it.has {
		it.started = true
		return false
	}
	it.started = true
	return true
}

func (it *pointIterator) Row() Row     { return it.row }
func (it *pointIterator) Err() error   { return nil }
func (it *pointIterator) Close()       {}
func (it *pointIterator) Scanned() int { return it.scanned }

// PKRangeExecutor scans the primary index.
type PKRangeExecutor struct{}

func (PKRangeExecutor) Kind() access.Kind { return access.KindPKRange }

func (PKRangeExecutor) Open(src kv.Source, path access.Path, env envelope.Envelope, anchor []byte, budget int) (RowIterator, error) {
	p, ok := path.(access.PKRange)
	if !ok {
		panic(mismatch(access.KindPKRange, path))
	}
	mustResolved(env)
	return newRangeIterator(src, p.Primary, env, anchor, budget, primaryRow(p.Residual))
}

// FullScanExecutor reads the primary index inside the envelope and keeps
// the rows the path's matcher accepts.
type FullScanExecutor struct{}

func (FullScanExecutor) Kind() access.Kind { return access.KindFullScan }

func (FullScanExecutor) Open(src kv.Source, path access.Path, env envelope.Envelope, anchor []byte, budget int) (RowIterator, error) {
	p, ok := path.(access.FullScan)
	if !ok {
		panic(mismatch(access.KindFullScan, path))
	}
	mustResolved(env)
	return newRangeIterator(src, p.Primary, env, anchor, budget, primaryRow(p.Matcher))
}

func primaryRow(m keyrange.Matcher) rowFunc {
	return func(key, value []byte) (Row, bool, error) {
		ok, err := accept(m, value)
		if err != nil || !ok {
			return Row{}, true, err
		}
		return Row{Key: key, PK: key, Value: value}, false, nil
	}
}
