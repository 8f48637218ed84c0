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

package codec

import (
	"bytes"
	"math"
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/nutsdb/nutsquery/internal/tuple"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_OrderMatchesValueOrder(t *testing.T) {
	t.Run("ints", func(t *testing.T) {
		ints := []int64{math.MinInt64, -1000, -1, 0, 1, 42, math.MaxInt64}
		for i := 1; i < len(ints); i++ {
			assert.Equal(t, -1, bytes.Compare(Encode(Int(ints[i-1])), Encode(Int(ints[i]))), "%d < %d", ints[i-1], ints[i])
		}
	})

	t.Run("floats", func(t *testing.T) {
		floats := []float64{math.Inf(-1), -2.5, -0.1, 0, 0.1, 3, math.Inf(1)}
		for i := 1; i < len(floats); i++ {
			assert.Equal(t, -1, bytes.Compare(Encode(Float(floats[i-1])), Encode(Float(floats[i]))))
		}
	})

	t.Run("strings", func(t *testing.T) {
		strs := []string{"", "a", "a\x00", "a\x00b", "ab", "b"}
		for i := 1; i < len(strs); i++ {
			assert.Equal(t, -1, bytes.Compare(Encode(String(strs[i-1])), Encode(String(strs[i]))), "%q < %q", strs[i-1], strs[i])
		}
	})

	t.Run("null sorts first", func(t *testing.T) {
		assert.Equal(t, -1, Compare(Null(), Int(math.MinInt64)))
		assert.Equal(t, -1, Compare(Null(), String("")))
	})
}

func TestDecodeTuple(t *testing.T) {
	vals := []Value{Int(-7), String("x\x00y"), Null(), Bool(true), Uint(9), Float(-1.5), Bytes([]byte{0, 1, 0xFF})}
	got, err := DecodeTuple(EncodeTuple(vals...))
	require.NoError(t, err)
	require.Len(t, got, len(vals))
	for i := range vals {
		assert.True(t, Equal(vals[i], got[i]), "slot %d: %v != %v", i, vals[i], got[i])
	}
}

func TestDecode_RejectsTrailingBytes(t *testing.T) {
	_, err := Decode(append(Encode(Int(1)), 0x01))
	assert.ErrorIs(t, err, tuple.ErrMalformed)
}

func TestEncodePrefix(t *testing.T) {
	prefix, err := EncodePrefix(String("ab"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(Encode(String("abc")), prefix))
	assert.True(t, bytes.HasPrefix(Encode(String("ab")), prefix))
	assert.False(t, bytes.HasPrefix(Encode(String("a")), prefix))

	_, err = EncodePrefix(Int(1))
	assert.ErrorIs(t, err, ErrNotPrefixable)
}

func TestCoerce(t *testing.T) {
	v, err := Coerce(Int(3), KindUint)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), v.AsUint())

	_, err = Coerce(Int(-3), KindUint)
	assert.ErrorIs(t, err, ErrIncompatible)

	_, err = Coerce(String("3"), KindInt)
	assert.ErrorIs(t, err, ErrIncompatible)

	v, err = Coerce(Null(), KindString)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestProperty_EncodingPreservesOrder(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("int encodings sort like ints", prop.ForAll(
		func(xs []int64) bool {
			encoded := make([][]byte, len(xs))
			for i, x := range xs {
				encoded[i] = Encode(Int(x))
			}
			sort.Slice(encoded, func(i, j int) bool { return bytes.Compare(encoded[i], encoded[j]) < 0 })
			sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
			for i := range xs {
				v, err := Decode(encoded[i])
				if err != nil || v.AsInt() != xs[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Int64()),
	))

	properties.Property("string encodings sort like strings", prop.ForAll(
		func(a, b string) bool {
			want := 0
			if a < b {
				want = -1
			} else if a > b {
				want = 1
			}
			return bytes.Compare(Encode(String(a)), Encode(String(b))) == want
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
