package ssa

import "github.com/raymyers/qbessa/pkg/ctypes"

// ValueKind tags the variant a Value holds.
type ValueKind int

const (
	VNone ValueKind = iota
	VGlobal
	VConst
	VTemp
	VType
)

// Value is an SSA operand: a constant, a global or temporary name, or
// (for ICALL's aggregate-return marker) a reference to a type
// descriptor. Every Value carries an immutable Repr fixed at
// construction.
type Value struct {
	Kind ValueKind
	Repr ctypes.Repr

	Name Name // VGlobal, VTemp

	Int   uint64 // VConst integer bit pattern
	Flt   float64
	IsFlt bool // VConst: read Flt instead of Int

	Type ctypes.Type // VType
}

// MkIntConst builds an integer constant value of the given repr.
func MkIntConst(repr ctypes.Repr, n uint64) *Value {
	return &Value{Kind: VConst, Repr: repr, Int: n}
}

// MkFltConst builds a floating-point constant value of the given repr.
func MkFltConst(repr ctypes.Repr, x float64) *Value {
	return &Value{Kind: VConst, Repr: repr, Flt: x, IsFlt: true}
}

// MkTypeRef builds a VType value referencing an aggregate type
// descriptor, the form an ICALL's second argument takes for a call
// returning a struct/union. irgen's call lowering does not emit one:
// its ICALL/IVACALL second argument is always nil.
func MkTypeRef(t ctypes.Type) *Value {
	return &Value{Kind: VType, Type: t}
}
