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

	"github.com/nutsdb/nutsquery/internal/envelope"
	"github.com/nutsdb/nutsquery/internal/keyrange"
	"github.com/nutsdb/nutsquery/internal/kv"
)

// scanner yields the entries of one index that lie inside an envelope, in
// the envelope's direction. It seeks to the near bound once and stops at
// the first key past the far bound.
type scanner struct {
	it      kv.Iterator
	env     envelope.Envelope
	started bool
	closed  bool

	// Scanned counts entries read from the index, including those
	// skipped by the caller.
	scanned int
}

func newScanner(src kv.Source, index string, env envelope.Envelope) (*scanner, error) {
	it, err := src.Iterator(index, env.Direction == keyrange.Backward)
	if err != nil {
		return nil, err
	}
	return &scanner{it: it, env: env}, nil
}

func (s *scanner) seek() bool {
	r := s.env.Range
	near := r.Lower
	if s.env.Direction == keyrange.Backward {
		near = r.Upper
	}
	if near.Unbounded {
		return s.it.Rewind()
	}
	if !s.it.Seek(near.Key) {
		return false
	}
	if !near.Inclusive && bytes.Equal(s.it.Key(), near.Key) {
		return s.it.Next()
	}
	return true
}

// next returns the next entry inside the envelope.
func (s *scanner) next() (key, value []byte, ok bool) {
	if s.closed {
		return nil, nil, false
	}
	if !s.started {
		s.started = true
		ok = s.seek()
	} else {
		ok = s.it.Next()
	}
	if !ok {
		s.close()
		return nil, nil, false
	}

	key = s.it.Key()
	s.scanned++
	if !s.inside(key) {
		s.close()
		return nil, nil, false
	}
	return key, s.it.Value(), true
}

func (s *scanner) inside(key []byte) bool {
	if s.env.Direction == keyrange.Backward {
		return s.env.Range.AboveLower(key)
	}
	return s.env.Range.BelowUpper(key)
}

func (s *scanner) close() {
	if s.closed {
		return
	}
	s.closed = true
	s.it.Close()
}
