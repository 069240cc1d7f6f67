package ctypes

// Repr is the machine-level representation of a scalar value: base
// selects the SSA value class ('w' word, 'l' long, 's' single, 'd'
// double), ext selects the storage width for memory ops. Aggregate
// types have no Repr; HasRepr reports that.
type Repr struct {
	Base byte
	Ext  byte
}

var (
	ReprI8   = Repr{'w', 'b'}
	ReprI16  = Repr{'w', 'h'}
	ReprI32  = Repr{'w', 'w'}
	ReprI64  = Repr{'l', 'l'}
	ReprF32  = Repr{'s', 's'}
	ReprF64  = Repr{'d', 'd'}
	ReprPtr  = Repr{'l', 'l'}
	ReprNone = Repr{}
)

func (r Repr) String() string {
	if r == ReprNone {
		return "<none>"
	}
	return string(r.Base)
}

// Prop is a bitset of scalar properties, mirroring qbe.c's typeprop.
type Prop uint8

const (
	PropInt Prop = 1 << iota
	PropFloat
	PropScalar
	PropReal // int or float, i.e. not a pointer and not an aggregate
)

func (p Prop) Has(q Prop) bool { return p&q != 0 }

// PropOf returns the scalar property bitset for t.
func PropOf(t Type) Prop {
	switch t.(type) {
	case Tbool, Tint, Tlong:
		return PropInt | PropScalar | PropReal
	case Tfloat:
		return PropFloat | PropScalar | PropReal
	case Tpointer:
		return PropScalar
	default:
		return 0
	}
}

// ReprOf returns the machine representation for t, or ReprNone for
// aggregate/void/function types.
func ReprOf(t Type) Repr {
	switch tt := t.(type) {
	case Tbool:
		return ReprI8
	case Tint:
		switch tt.Size {
		case I8, IBool:
			return ReprI8
		case I16:
			return ReprI16
		default:
			return ReprI32
		}
	case Tlong:
		return ReprI64
	case Tfloat:
		if tt.Size == F32 {
			return ReprF32
		}
		return ReprF64
	case Tpointer:
		return ReprPtr
	default:
		return ReprNone
	}
}

// HasRepr reports whether t is a scalar with a machine representation.
func HasRepr(t Type) bool {
	return ReprOf(t) != ReprNone
}

// IsSigned reports whether t is a signed integer type. Floats and
// pointers answer false; callers must gate on PropInt first.
func IsSigned(t Type) bool {
	switch tt := t.(type) {
	case Tint:
		return tt.Sign == Signed
	case Tlong:
		return tt.Sign == Signed
	default:
		return false
	}
}

// Sizeof returns the size in bytes of t. Struct/union sizes are
// precomputed by the declaration/scope system and stored on the type;
// this just reads them back (or computes the few cases that are
// purely structural: arrays and the fixed-width scalars).
func Sizeof(t Type) int64 {
	switch tt := t.(type) {
	case Tvoid:
		return 0
	case Tbool:
		return 1
	case Tint:
		switch tt.Size {
		case I8, IBool:
			return 1
		case I16:
			return 2
		default:
			return 4
		}
	case Tlong:
		return 8
	case Tfloat:
		if tt.Size == F32 {
			return 4
		}
		return 8
	case Tpointer:
		return 8
	case Tarray:
		if tt.Size < 0 {
			return 0
		}
		return tt.Size * Sizeof(tt.Elem)
	case Tstruct:
		return tt.Size
	case Tunion:
		return tt.Size
	default:
		return 0
	}
}

// Alignof returns the required alignment in bytes of t.
func Alignof(t Type) int64 {
	switch tt := t.(type) {
	case Tarray:
		return Alignof(tt.Elem)
	case Tstruct:
		return tt.Align
	case Tunion:
		return tt.Align
	default:
		return Sizeof(t)
	}
}

// IsScalar reports whether t is a scalar type (int, float, or pointer).
func IsScalar(t Type) bool {
	return PropOf(t).Has(PropScalar)
}

// Promote implements C's integer/argument promotion: integer types
// narrower than int are widened to int, preserving the value's
// signedness only insofar as int can represent it (qbe.c's
// typepromote for -1, i.e. "default argument promotion").
func Promote(t Type) Type {
	if it, ok := t.(Tint); ok && it.Size != I32 {
		return Int()
	}
	if _, ok := t.(Tbool); ok {
		return Int()
	}
	return t
}
