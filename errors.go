package nutsquery

import (
	"errors"

	"github.com/nutsdb/nutsquery/internal/catalog"
	"github.com/nutsdb/nutsquery/internal/codec"
	"github.com/nutsdb/nutsquery/internal/cursor"
	"github.com/nutsdb/nutsquery/internal/planner"
	"github.com/nutsdb/nutsquery/internal/store"
)

var (
	// ErrUnknownTable is returned when a query names a table the catalog lacks.
	ErrUnknownTable = planner.ErrUnknownTable

	// ErrUnknownField is returned when a predicate or ordering names a field the table lacks.
	ErrUnknownField = planner.ErrUnknownField

	// ErrKindMismatch is returned when a predicate value cannot be compared with its field.
	ErrKindMismatch = planner.ErrKindMismatch

	// ErrUnsupportedOp is returned when a predicate carries an unknown operator.
	ErrUnsupportedOp = planner.ErrUnsupportedOp

	// ErrInvalidWindow is returned for a negative offset or limit, or an unknown direction.
	ErrInvalidWindow = planner.ErrInvalidWindow

	// ErrOrderNotIndexed is returned when no index leads with the ordering field.
	ErrOrderNotIndexed = planner.ErrOrderNotIndexed
)

var (
	// ErrMalformedToken is returned when a token cannot be decoded.
	ErrMalformedToken = cursor.ErrMalformedToken

	// ErrVersionMismatch is returned when a token was written by another format version.
	ErrVersionMismatch = cursor.ErrVersionMismatch

	// ErrSignatureMismatch is returned when a token was issued for a query of another shape.
	ErrSignatureMismatch = cursor.ErrSignatureMismatch

	// ErrDirectionMismatch is returned when a token was issued for the opposite direction.
	ErrDirectionMismatch = cursor.ErrDirectionMismatch

	// ErrWindowMismatch is returned when a token was issued for another initial offset.
	ErrWindowMismatch = cursor.ErrWindowMismatch

	// ErrArityMismatch is returned when a token's anchor has the wrong number of slots.
	ErrArityMismatch = cursor.ErrArityMismatch

	// ErrTypeMismatch is returned when an anchor slot does not carry the expected kind.
	ErrTypeMismatch = cursor.ErrTypeMismatch

	// ErrPkSlotMismatch is returned when the anchor's primary key slot is wrong or null.
	ErrPkSlotMismatch = cursor.ErrPkSlotMismatch

	// ErrNotContained is returned when the anchor lies outside the query's range.
	ErrNotContained = cursor.ErrNotContained
)

var (
	// ErrStoreClosed is returned when the store is closed.
	ErrStoreClosed = store.ErrStoreClosed

	// ErrMissingField is returned when a record lacks a non-nullable field.
	ErrMissingField = store.ErrMissingField

	// ErrIncompatible is returned when a value cannot be stored in a field.
	ErrIncompatible = codec.ErrIncompatible

	// ErrTableNotFound is returned by catalog lookups of an unknown table.
	ErrTableNotFound = catalog.ErrTableNotFound
)

// TokenError describes a rejected continuation token.
type TokenError = cursor.Error

// IsContinuation is true if the error rejects a continuation token. Drop
// the token and query again from the first page.
func IsContinuation(err error) bool {
	return cursor.IsContinuation(err)
}

// IsPlanning is true if the error was raised while planning, before any
// storage access.
func IsPlanning(err error) bool {
	for _, target := range planningErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsUnknownField is true if the error indicates the field is not in the table.
func IsUnknownField(err error) bool {
	return errors.Is(err, ErrUnknownField)
}

// IsUnknownTable is true if the error indicates the table is not in the catalog.
func IsUnknownTable(err error) bool {
	return errors.Is(err, ErrUnknownTable)
}

// IsStoreClosed is true if the error indicates the store was closed.
func IsStoreClosed(err error) bool {
	return errors.Is(err, ErrStoreClosed)
}

var planningErrors = []error{
	ErrUnknownTable, ErrUnknownField, ErrKindMismatch, ErrUnsupportedOp, ErrInvalidWindow, ErrOrderNotIndexed,
}

var planningReasons = map[error]string{
	ErrUnknownTable:    "unknown_table",
	ErrUnknownField:    "unknown_field",
	ErrKindMismatch:    "kind_mismatch",
	ErrUnsupportedOp:   "unsupported_op",
	ErrInvalidWindow:   "invalid_window",
	ErrOrderNotIndexed: "order_not_indexed",
}

func planningReason(err error) string {
	for _, target := range planningErrors {
		if errors.Is(err, target) {
			return planningReasons[target]
		}
	}
	return "other"
}
