package irgen

import (
	"fmt"

	"github.com/raymyers/qbessa/pkg/cast"
	"github.com/raymyers/qbessa/pkg/ctypes"
	"github.com/raymyers/qbessa/pkg/qbeemit"
	"github.com/raymyers/qbessa/pkg/ssa"
)

// Gen owns translation-unit-scoped state shared across every function
// lowered with it: the block/global id counters (via Module) and the
// string-literal dedup table.
type Gen struct {
	Module *ssa.Module
	Sink   qbeemit.Sink

	strings      map[string]*ssa.Value
	stringSerial int
}

// NewGen creates a translation-unit generator bound to a sink.
func NewGen(m *ssa.Module, sink qbeemit.Sink) *Gen {
	return &Gen{Module: m, Sink: sink, strings: make(map[string]*ssa.Value)}
}

// stringDecl returns the deduplicated global for a string literal,
// emitting its data definition once on first use.
func (g *Gen) stringDecl(s cast.String) *ssa.Value {
	key := string(s.Value)
	if v, ok := g.strings[key]; ok {
		return v
	}
	g.stringSerial++
	v := g.Module.MkGlobal(fmt.Sprintf(".str%d", g.stringSerial), true)
	g.Sink.EmitData(v, false, []qbeemit.DataItem{{Bytes: s.Value}})
	g.strings[key] = v
	return v
}

// expr is irgen's recursive expression lowering entry point; the
// lowering itself is funcexpr in expr.go, and this wrapper is listed
// here for package-level discoverability.
func (g *Gen) expr(f *ssa.Function, e cast.Expr) *ssa.Value {
	return g.funcexpr(f, e)
}

// assertf panics with a formatted internal-error message, matching
// the teacher's own use of panic() for invariant violations rather
// than explicit error returns (those are reserved for user errors
// that a caller can recover from — see userErrorf below).
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("internal error: "+format, args...))
	}
}

// userErrorf formats a user-facing diagnostic, per the malformed-input
// error class (spec §7.1): duplicate case labels, volatile/const
// stores, va_arg on non-scalar types, and the like.
func userErrorf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// ctypesULong is the unsigned-64 type pointers decay to for signed/
// unsigned-agnostic arithmetic (qbe.c's typeulong).
var ctypesULong = ctypes.Tlong{Sign: ctypes.Unsigned}
