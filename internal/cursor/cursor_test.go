package cursor

import (
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/nutsdb/nutsquery/internal/access"
	"github.com/nutsdb/nutsquery/internal/keyrange"
	"github.com/nutsdb/nutsquery/internal/tuple"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The tests build keys by hand so this package stays free of the codec.
func intElem(v int64) []byte {
	b := make([]byte, 9)
	b[0] = tuple.TagInt
	binary.BigEndian.PutUint64(b[1:], uint64(v)^(1<<63))
	return b
}

func strElem(s string) []byte {
	return tuple.AppendTerminated([]byte{tuple.TagString}, []byte(s))
}

func indexKey(age, pk int64) []byte {
	return append(intElem(age), intElem(pk)...)
}

func agePlan() *access.Plan {
	lo, hi := intElem(18), intElem(65)
	return &access.Plan{
		Table:     "users",
		Path:      access.IndexRange{Index: "users.by_age", Primary: "users.primary"},
		Direction: keyrange.Forward,
		Boundary:  keyrange.New(keyrange.Inclusive(lo), keyrange.Exclusive(hi)),
		Shape: access.KeyShape{
			Slots:  []access.SlotShape{{Kind: tuple.KindInt, Nullable: true}, {Kind: tuple.KindInt}},
			PkSlot: 1,
		},
		Offset:    5,
		Limit:     10,
		Signature: access.NewSignatureBuilder(access.KindIndexRange).Add("users.by_age").Add("age>=int,age<int").Sum(),
	}
}

func issue(t *testing.T, plan *access.Plan, key []byte) []byte {
	tok, err := NewToken(plan, key)
	require.NoError(t, err)
	return tok.Encode()
}

func TestToken_RoundTrip(t *testing.T) {
	plan := agePlan()
	tok, err := NewToken(plan, indexKey(30, 7))
	require.NoError(t, err)

	got, err := Decode(tok.Encode())
	require.NoError(t, err)
	assert.Equal(t, tok, got)
	assert.Equal(t, indexKey(30, 7), got.Key())
	assert.Equal(t, tok.Size(), len(tok.Encode()))
}

func TestNewToken_ShapeMismatch(t *testing.T) {
	_, err := NewToken(agePlan(), intElem(30))
	require.Error(t, err)

	_, err = NewToken(agePlan(), []byte{0xEE})
	require.Error(t, err)
}

func TestValidate_Accepts(t *testing.T) {
	plan := agePlan()
	raw := issue(t, plan, indexKey(30, 7))

	anchor, trace, err := Validate(raw, plan)
	require.NoError(t, err)
	assert.Equal(t, indexKey(30, 7), anchor.Key)
	assert.Equal(t, StateAccepted, trace.Last())
	assert.Equal(t, []State{
		StateReceived, StateDecoded, StateVersionOk, StateSignatureOk, StateDirectionOk,
		StateWindowShapeOk, StateBoundaryArityOk, StateBoundaryTypeOk, StatePkSlotOk,
		StateContained, StateAccepted,
	}, trace.States)

	again, trace2, err := Validate(raw, plan)
	require.NoError(t, err)
	assert.Equal(t, anchor, again)
	assert.Equal(t, trace, trace2)
}

// reseal recomputes the crc after a test tampers with a token.
func reseal(buf []byte) []byte {
	binary.LittleEndian.PutUint32(buf[0:4], crc32.ChecksumIEEE(buf[4:]))
	return buf
}

// ageOnlyPlan sorts by a single age slot, so the envelope edges are whole
// sort keys.
func ageOnlyPlan() *access.Plan {
	p := agePlan()
	p.Shape = access.KeyShape{Slots: []access.SlotShape{{Kind: tuple.KindInt}}}
	return p
}

func TestValidate_Rejects(t *testing.T) {
	base := agePlan()

	tests := []struct {
		name  string
		raw   func(t *testing.T) []byte
		plan  func() *access.Plan
		want  error
		state State
	}{
		{
			name:  "empty",
			raw:   func(t *testing.T) []byte { return nil },
			want:  ErrMalformedToken,
			state: StateReceived,
		},
		{
			name: "flipped byte",
			raw: func(t *testing.T) []byte {
				raw := issue(t, base, indexKey(30, 7))
				raw[len(raw)-1] ^= 0x01
				return raw
			},
			want:  ErrMalformedToken,
			state: StateReceived,
		},
		{
			name: "truncated",
			raw: func(t *testing.T) []byte {
				raw := issue(t, base, indexKey(30, 7))
				return reseal(raw[:len(raw)-3])
			},
			want:  ErrMalformedToken,
			state: StateReceived,
		},
		{
			name: "future version",
			raw: func(t *testing.T) []byte {
				raw := issue(t, base, indexKey(30, 7))
				raw[6] = Version + 1
				return reseal(raw)
			},
			want:  ErrVersionMismatch,
			state: StateDecoded,
		},
		{
			name: "other query shape",
			raw: func(t *testing.T) []byte {
				return issue(t, base, indexKey(30, 7))
			},
			plan: func() *access.Plan {
				p := agePlan()
				p.Signature = access.NewSignatureBuilder(access.KindIndexRange).Add("users.by_name").Sum()
				return p
			},
			want:  ErrSignatureMismatch,
			state: StateVersionOk,
		},
		{
			name: "other sort index",
			raw: func(t *testing.T) []byte {
				return issue(t, base, indexKey(30, 7))
			},
			plan: func() *access.Plan {
				p := agePlan()
				p.Path = access.IndexRange{Index: "users.by_height", Primary: "users.primary"}
				return p
			},
			want:  ErrSignatureMismatch,
			state: StateVersionOk,
		},
		{
			name: "reversed direction",
			raw: func(t *testing.T) []byte {
				return issue(t, base, indexKey(30, 7))
			},
			plan: func() *access.Plan {
				p := agePlan()
				p.Direction = keyrange.Backward
				return p
			},
			want:  ErrDirectionMismatch,
			state: StateSignatureOk,
		},
		{
			name: "other initial offset",
			raw: func(t *testing.T) []byte {
				return issue(t, base, indexKey(30, 7))
			},
			plan: func() *access.Plan {
				p := agePlan()
				p.Offset = 0
				return p
			},
			want:  ErrWindowMismatch,
			state: StateDirectionOk,
		},
		{
			name: "missing slot",
			raw: func(t *testing.T) []byte {
				tok, err := NewToken(base, indexKey(30, 7))
				require.NoError(t, err)
				tok.Slots = tok.Slots[:1]
				return tok.Encode()
			},
			want:  ErrArityMismatch,
			state: StateWindowShapeOk,
		},
		{
			name: "declared kind differs",
			raw: func(t *testing.T) []byte {
				tok, err := NewToken(base, indexKey(30, 7))
				require.NoError(t, err)
				tok.Slots[0].Kind = tuple.KindString
				return tok.Encode()
			},
			want:  ErrTypeMismatch,
			state: StateBoundaryArityOk,
		},
		{
			name: "raw kind differs",
			raw: func(t *testing.T) []byte {
				tok, err := NewToken(base, indexKey(30, 7))
				require.NoError(t, err)
				tok.Slots[0].Raw = strElem("thirty")
				return tok.Encode()
			},
			want:  ErrTypeMismatch,
			state: StateBoundaryArityOk,
		},
		{
			name: "null in non-nullable slot",
			raw: func(t *testing.T) []byte {
				tok, err := NewToken(base, indexKey(30, 7))
				require.NoError(t, err)
				tok.Slots[1].Raw = []byte{tuple.TagNull}
				return tok.Encode()
			},
			want:  ErrTypeMismatch,
			state: StateBoundaryArityOk,
		},
		{
			name: "pk slot moved",
			raw: func(t *testing.T) []byte {
				tok, err := NewToken(base, indexKey(30, 7))
				require.NoError(t, err)
				tok.PkSlot = 0
				return tok.Encode()
			},
			want:  ErrPkSlotMismatch,
			state: StateBoundaryTypeOk,
		},
		{
			name: "anchor outside envelope",
			raw: func(t *testing.T) []byte {
				return issue(t, base, indexKey(70, 7))
			},
			want:  ErrNotContained,
			state: StatePkSlotOk,
		},
		{
			name: "anchor on exclusive upper bound",
			raw: func(t *testing.T) []byte {
				return issue(t, ageOnlyPlan(), intElem(65))
			},
			plan:  ageOnlyPlan,
			want:  ErrNotContained,
			state: StatePkSlotOk,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := base
			if tt.plan != nil {
				plan = tt.plan()
			}
			raw := tt.raw(t)
			anchor, trace, err := Validate(raw, plan)
			require.Error(t, err)
			assert.Nil(t, anchor)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsContinuation(err))
			assert.Equal(t, StateRejected, trace.Last())

			var cerr *Error
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.state, cerr.State)
			assert.Equal(t, tt.want, cerr.Kind.Sentinel())

			// a second look at the same token fails the same way
			again, trace2, err2 := Validate(raw, plan)
			assert.Nil(t, again)
			var cerr2 *Error
			require.ErrorAs(t, err2, &cerr2)
			assert.Equal(t, cerr.Kind, cerr2.Kind)
			assert.Equal(t, cerr.State, cerr2.State)
			assert.Equal(t, trace, trace2)
		})
	}
}

func TestValidate_InclusiveLowerBound(t *testing.T) {
	plan := ageOnlyPlan()

	_, _, err := Validate(issue(t, plan, intElem(18)), plan)
	require.NoError(t, err)

	_, _, err = Validate(issue(t, plan, intElem(17)), plan)
	require.ErrorIs(t, err, ErrNotContained)
}

func TestIsContinuation(t *testing.T) {
	assert.False(t, IsContinuation(nil))
	assert.False(t, IsContinuation(ErrSignatureMismatch))
	assert.True(t, IsContinuation(&Error{Kind: RejectSignature}))
}

func TestValidate_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("tokens issued inside the envelope are accepted", prop.ForAll(
		func(age, pk int64) bool {
			plan := agePlan()
			tok, err := NewToken(plan, indexKey(age, pk))
			if err != nil {
				return false
			}
			anchor, _, err := Validate(tok.Encode(), plan)
			return err == nil && string(anchor.Key) == string(indexKey(age, pk))
		},
		gen.Int64Range(18, 64),
		gen.Int64(),
	))

	properties.Property("any single byte flip is rejected", prop.ForAll(
		func(pos int, bit uint8) bool {
			plan := agePlan()
			tok, err := NewToken(plan, indexKey(30, 7))
			if err != nil {
				return false
			}
			raw := tok.Encode()
			raw[pos%len(raw)] ^= 1 << (bit % 8)
			_, _, err = Validate(raw, plan)
			return IsContinuation(err)
		},
		gen.IntRange(0, 1<<16),
		gen.UInt8(),
	))

	properties.TestingRun(t)
}
