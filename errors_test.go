package nutsquery

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsUnknownField(t *testing.T) {
	ts := []struct {
		err error

		want bool
	}{
		{
			ErrUnknownField,
			true,
		},
		{
			errors.Wrap(ErrUnknownField, "foobar"),
			true,
		},
		{
			errors.New("foo bar"),
			false,
		},
	}

	for _, tc := range ts {
		got := IsUnknownField(tc.err)

		assert.Equal(t, tc.want, got)
	}
}

func TestIsPlanning(t *testing.T) {
	ts := []struct {
		err    error
		want   bool
		reason string
	}{
		{errors.Wrap(ErrUnknownTable, "test"), true, "unknown_table"},
		{errors.Wrapf(ErrInvalidWindow, "offset %d", -1), true, "invalid_window"},
		{ErrOrderNotIndexed, true, "order_not_indexed"},
		{ErrSignatureMismatch, false, "other"},
		{errors.New("test"), false, "other"},
	}

	for _, tc := range ts {
		assert.Equal(t, tc.want, IsPlanning(tc.err))
		assert.Equal(t, tc.reason, planningReason(tc.err))
	}
}

func TestIsContinuation(t *testing.T) {
	assert.True(t, IsContinuation(&TokenError{Kind: 3}))
	assert.False(t, IsContinuation(ErrSignatureMismatch))
	assert.False(t, IsContinuation(errors.New("test")))
}

func TestIsStoreClosed(t *testing.T) {
	assert.True(t, IsStoreClosed(errors.Wrap(ErrStoreClosed, "test")))
	assert.False(t, IsStoreClosed(ErrUnknownTable))
}
