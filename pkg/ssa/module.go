package ssa

import "github.com/raymyers/qbessa/pkg/ctypes"

// Module is a translation-unit-scoped context that owns the counters
// mkblock/mkglobal used as process-wide statics in qbe.c. Threading
// them through a context instead of package-level mutable state keeps
// translation units independent and lets a caller translate several
// functions (each with its own Function builder) concurrently so long
// as each has its own Module, or none at all if run single-threaded.
type Module struct {
	nextBlockID  uint64
	nextGlobalID uint64
}

// NewModule creates an empty translation-unit context.
func NewModule() *Module {
	return &Module{}
}

// MkBlock creates a fresh, empty, unterminated block.
func (m *Module) MkBlock(name string) *Block {
	m.nextBlockID++
	return &Block{Label: Name{Str: name, ID: m.nextBlockID}}
}

// MkGlobal creates a global value. If private, it is assigned a fresh
// id so the sink can produce a name unique to this translation unit;
// otherwise its id is 0 and name is used verbatim (external linkage).
func (m *Module) MkGlobal(name string, private bool) *Value {
	n := Name{Str: name}
	if private {
		m.nextGlobalID++
		n.ID = m.nextGlobalID
	}
	return &Value{Kind: VGlobal, Repr: ctypes.ReprPtr, Name: n}
}
