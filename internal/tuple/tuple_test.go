package tuple

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementLen(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want int
		err  error
	}{
		{"null", []byte{TagNull, 0x10}, 1, nil},
		{"int", []byte{TagInt, 1, 2, 3, 4, 5, 6, 7, 8, TagNull}, 9, nil},
		{"short int", []byte{TagInt, 1, 2}, 0, ErrMalformed},
		{"string", []byte{TagString, 'a', 0x00, TagNull}, 3, nil},
		{"escaped zero", []byte{TagString, 'a', 0x00, 0xFF, 'b', 0x00}, 6, nil},
		{"unterminated", []byte{TagBytes, 'a'}, 0, ErrMalformed},
		{"unknown tag", []byte{0x7F}, 0, ErrMalformed},
		{"empty", nil, 0, ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := ElementLen(tt.in)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestSlotAndElements(t *testing.T) {
	b := []byte{TagString, 'x', 0x00, TagNull, TagTrue}

	elems, err := Elements(b)
	require.NoError(t, err)
	require.Len(t, elems, 3)

	s, err := Slot(b, 1)
	require.NoError(t, err)
	assert.True(t, IsNull(s))

	_, err = Slot(b, 3)
	assert.ErrorIs(t, err, ErrSlotOutOfRange)
}

func TestCheckKind(t *testing.T) {
	assert.NoError(t, CheckKind([]byte{TagTrue}, KindBool, false))
	assert.ErrorIs(t, CheckKind([]byte{TagTrue}, KindInt, false), ErrKind)
	assert.NoError(t, CheckKind([]byte{TagNull}, KindInt, true))
	assert.ErrorIs(t, CheckKind([]byte{TagNull}, KindInt, false), ErrKind)
	assert.ErrorIs(t, CheckKind([]byte{TagTrue, TagTrue}, KindBool, false), ErrMalformed)
}

func TestElementsEnd(t *testing.T) {
	v := AppendTerminated([]byte{TagString}, []byte("v"))
	longer := AppendTerminated([]byte{TagString}, []byte("v\x00"))
	withSlot := append(append([]byte(nil), v...), TagInt)

	end := ElementsEnd(v)
	assert.Equal(t, append(append([]byte(nil), v...), 0xFF), end)
	assert.Negative(t, bytes.Compare(withSlot, end))
	assert.Positive(t, bytes.Compare(longer, end))
	assert.Len(t, v, 3, "ElementsEnd must not alias its input")
}

func TestPrefixEnd(t *testing.T) {
	assert.Equal(t, []byte{0x01, 0x03}, PrefixEnd([]byte{0x01, 0x02}))
	assert.Equal(t, []byte{0x02}, PrefixEnd([]byte{0x01, 0xFF}))
	assert.Nil(t, PrefixEnd([]byte{0xFF, 0xFF}))
}

func TestUnescape(t *testing.T) {
	raw := AppendTerminated([]byte{TagBytes}, []byte{0x00, 'a', 0x00})
	got, err := Unescape(raw)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 'a', 0x00}, got)
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("string")
	assert.True(t, ok)
	assert.Equal(t, KindString, k)

	_, ok = ParseKind("invalid")
	assert.False(t, ok)
}
