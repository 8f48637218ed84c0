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

// Package envelope bounds a scan. It checks that a resume anchor lies
// within the plan's range and moves the range past the anchor.
package envelope

import (
	"errors"
	"fmt"

	"github.com/nutsdb/nutsquery/internal/access"
	"github.com/nutsdb/nutsquery/internal/keyrange"
)

// ErrNotContained is returned when an anchor lies outside the envelope.
var ErrNotContained = errors.New("anchor outside plan envelope")

// Envelope is the range a scan may touch together with its direction.
type Envelope struct {
	Range     keyrange.Range
	Direction keyrange.Direction
}

// Compute derives the envelope of plan.
func Compute(plan *access.Plan) Envelope {
	return Envelope{Range: plan.Boundary, Direction: plan.Direction}
}

// Contains reports whether anchor lies within the envelope, honoring the
// inclusivity of each bound.
func (e Envelope) Contains(anchor []byte) bool {
	return e.Range.Contains(anchor)
}

// Check returns ErrNotContained when anchor lies outside the envelope.
func (e Envelope) Check(anchor []byte) error {
	if !e.Contains(anchor) {
		return fmt.Errorf("%w: %x not in %s", ErrNotContained, anchor, e.Range)
	}
	return nil
}

// Rewrite returns the envelope that resumes after anchor: a forward scan
// gets anchor as its exclusive lower bound, a backward scan as its
// exclusive upper bound. The anchor must already be contained.
func (e Envelope) Rewrite(anchor []byte) (Envelope, error) {
	if err := e.Check(anchor); err != nil {
		return Envelope{}, err
	}
	key := append([]byte(nil), anchor...)
	r := e.Range
	if e.Direction == keyrange.Backward {
		r = keyrange.New(r.Lower, keyrange.Exclusive(key))
	} else {
		r = keyrange.New(keyrange.Exclusive(key), r.Upper)
	}
	return Envelope{Range: r, Direction: e.Direction}, nil
}

// Nest maps the envelope into the keys starting with prefix. Composite
// streams use it to carry a primary key envelope into index entries whose
// suffix is the primary key.
func (e Envelope) Nest(prefix []byte) Envelope {
	return Envelope{Range: keyrange.Nest(prefix, e.Range), Direction: e.Direction}
}

func (e Envelope) String() string {
	return fmt.Sprintf("%s %s", e.Direction, e.Range)
}
