// Package qbeemit defines the emission sink boundary between the IR
// core and the textual serializer, plus one concrete implementation
// that prints a QBE-flavored SSA text dump.
package qbeemit

import (
	"github.com/raymyers/qbessa/pkg/ctypes"
	"github.com/raymyers/qbessa/pkg/ssa"
)

// DataItem is one component of a global data definition: either a
// literal byte run, a zero-fill run, or a pointer-sized relocation to
// another global.
type DataItem struct {
	Bytes []byte
	Zero  int64
	Sym   *ssa.Value
}

// Sink is the only IR output surface (spec §6): whatever serializes
// the core's blocks/instructions into a consumable form implements
// this. The core calls it read-only — it never inspects what the sink
// does with the data.
type Sink interface {
	EmitName(n ssa.Name)
	EmitValue(v *ssa.Value)
	EmitRepr(r ctypes.Repr, v *ssa.Value, ext bool)
	EmitType(t ctypes.Type)
	EmitInst(i *ssa.Instruction)
	EmitJump(j *ssa.Jump)
	EmitFunc(f *ssa.Function, global bool)
	EmitData(v *ssa.Value, global bool, items []DataItem)
}
