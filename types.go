package nutsquery

import (
	"github.com/nutsdb/nutsquery/internal/catalog"
	"github.com/nutsdb/nutsquery/internal/codec"
	"github.com/nutsdb/nutsquery/internal/keyrange"
	"github.com/nutsdb/nutsquery/internal/planner"
	"github.com/nutsdb/nutsquery/internal/store"
	"github.com/nutsdb/nutsquery/internal/tuple"
)

type (
	Value     = codec.Value
	Kind      = tuple.Kind
	Direction = keyrange.Direction

	Table      = catalog.Table
	Field      = catalog.Field
	Index      = catalog.Index
	Catalog    = catalog.Catalog
	MemCatalog = catalog.MemCatalog
	Store      = store.Store
	Query      = planner.Query
	Predicate  = planner.Predicate
	Condition  = planner.Condition
	Op         = planner.Op
)

const (
	KindBool   = tuple.KindBool
	KindInt    = tuple.KindInt
	KindUint   = tuple.KindUint
	KindFloat  = tuple.KindFloat
	KindString = tuple.KindString
	KindBytes  = tuple.KindBytes

	Forward  = keyrange.Forward
	Backward = keyrange.Backward

	OpEq     = planner.OpEq
	OpLt     = planner.OpLt
	OpLe     = planner.OpLe
	OpGt     = planner.OpGt
	OpGe     = planner.OpGe
	OpPrefix = planner.OpPrefix
)

// Values.
var (
	Null   = codec.Null
	Bool   = codec.Bool
	Int    = codec.Int
	Uint   = codec.Uint
	Float  = codec.Float
	String = codec.String
	Bytes  = codec.Bytes

	// ValueOf converts a Go value (integers, floats, strings, byte slices,
	// bools, nil) into a Value.
	ValueOf = codec.FromAny
)

// Predicates.
var (
	Where     = planner.Where
	AnyOf     = planner.AnyOf
	In        = planner.In
	And       = planner.And
	Eq        = planner.Eq
	Lt        = planner.Lt
	Le        = planner.Le
	Gt        = planner.Gt
	Ge        = planner.Ge
	HasPrefix = planner.HasPrefix
)

// Schema and storage.
var (
	NewTable      = catalog.NewTable
	NewMemCatalog = catalog.NewMemCatalog
	LoadCatalog   = catalog.LoadFile
	NewStore      = store.New
	OpenSnapshot  = store.OpenSnapshot
	WriteSnapshot = store.WriteSnapshot
)
