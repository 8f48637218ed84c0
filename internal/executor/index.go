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
	"github.com/nutsdb/nutsquery/internal/access"
	"github.com/nutsdb/nutsquery/internal/envelope"
	"github.com/nutsdb/nutsquery/internal/keyrange"
	"github.com/nutsdb/nutsquery/internal/kv"
	"github.com/pkg/errors"
)

// IndexPointExecutor reads the secondary index entries of a fully bound key.
type IndexPointExecutor struct{}

func (IndexPointExecutor) Kind() access.Kind { return access.KindIndexPoint }

func (IndexPointExecutor) Open(src kv.Source, path access.Path, env envelope.Envelope, anchor []byte, budget int) (RowIterator, error) {
	p, ok := path.(access.IndexPoint)
	if !ok {
		panic(mismatch(access.KindIndexPoint, path))
	}
	mustResolved(env)
	return openIndex(src, p.Index, p.Primary, p.Residual, env, anchor, budget)
}

// IndexRangeExecutor scans a range of a secondary index.
type IndexRangeExecutor struct{}

func (IndexRangeExecutor) Kind() access.Kind { return access.KindIndexRange }

func (IndexRangeExecutor) Open(src kv.Source, path access.Path, env envelope.Envelope, anchor []byte, budget int) (RowIterator, error) {
	p, ok := path.(access.IndexRange)
	if !ok {
		panic(mismatch(access.KindIndexRange, path))
	}
	mustResolved(env)
	return openIndex(src, p.Index, p.Primary, p.Residual, env, anchor, budget)
}

// IndexPrefixExecutor scans the entries of a secondary index that share a
// bound key prefix.
type IndexPrefixExecutor struct{}

func (IndexPrefixExecutor) Kind() access.Kind { return access.KindIndexPrefix }

func (IndexPrefixExecutor) Open(src kv.Source, path access.Path, env envelope.Envelope, anchor []byte, budget int) (RowIterator, error) {
	p, ok := path.(access.IndexPrefix)
	if !ok {
		panic(mismatch(access.KindIndexPrefix, path))
	}
	mustResolved(env)
	return openIndex(src, p.Index, p.Primary, p.Residual, env, anchor, budget)
}

// openIndex walks index inside env. Each entry's value is a primary key;
// the row is fetched from primary and offered to residual.
func openIndex(src kv.Source, index, primary string, residual keyrange.Matcher, env envelope.Envelope, anchor []byte, budget int) (RowIterator, error) {
	return newRangeIterator(src, index, env, anchor, budget, func(key, pk []byte) (Row, bool, error) {
		value, found, err := src.Get(primary, pk)
		if err != nil {
			return Row{}, true, err
		}
		if !found {
			return Row{}, true, errors.Wrapf(ErrDanglingEntry, "%s entry %x", index, key)
		}
		ok, err := accept(residual, value)
		if err != nil || !ok {
			return Row{}, true, err
		}
		return Row{Key: key, PK: pk, Value: value}, false, nil
	})
}
