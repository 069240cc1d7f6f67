// Package irgen lowers a typed cast.Expr/cast.Stmt tree into the pkg/ssa
// builder's instruction stream: expression evaluation, aggregate/
// bit-field load and store, initializers, conversions, switch
// dispatch, and the statement-level control-flow driver.
package irgen

import (
	"github.com/raymyers/qbessa/pkg/cast"
	"github.com/raymyers/qbessa/pkg/ctypes"
	"github.com/raymyers/qbessa/pkg/qbeemit"
	"github.com/raymyers/qbessa/pkg/ssa"
)

// Lvalue is an object's address plus an optional bit-field narrowing,
// mirroring qbe.c's struct lvalue. Qual carries the qualifiers of the
// underlying object (const, volatile) so a store through this lvalue
// can be rejected the way qbe.c's funcstore does.
type Lvalue struct {
	Addr *ssa.Value
	Bits ctypes.Bitfield
	Qual ctypes.Qual
}

// lval resolves e to its address. Only expressions that denote storage
// reach here: identifiers, string literals, compound literals, `*base`,
// a bit-field wrapper around one of those, and struct/union-valued
// expressions (whose value already is an address); anything else is a
// user error (qbe.c funclval's default case, guarded there by
// "expression is not an object").
func (g *Gen) lval(f *ssa.Function, e cast.Expr) Lvalue {
	if bf, ok := e.(cast.Bitfield); ok {
		lv := g.lval(f, bf.Base)
		lv.Bits = bf.Bits
		return lv
	}
	switch ex := e.(type) {
	case cast.Ident:
		if ex.Decl.Kind != cast.DeclObject && ex.Decl.Kind != cast.DeclFunc {
			panic("identifier is not an object or function")
		}
		g.emitFuncNameOnce(f, ex.Decl)
		return Lvalue{Addr: g.materialize(f, ex.Decl), Qual: ex.Decl.Qual}
	case cast.String:
		return Lvalue{Addr: g.stringDecl(ex)}
	case cast.Compound:
		d := &cast.Decl{Kind: cast.DeclObject, Type: ex.Typ}
		g.funcinit(f, d, ex.Init)
		return Lvalue{Addr: d.Value}
	case cast.Unary:
		if ex.Op != cast.OpDeref {
			panic("expression is not an object")
		}
		return Lvalue{Addr: g.expr(f, ex.Base)}
	default:
		switch e.Type().(type) {
		case ctypes.Tstruct, ctypes.Tunion:
			return Lvalue{Addr: g.expr(f, e)}
		default:
			panic(userErrorf("expression of type %T is not an object", e))
		}
	}
}

// emitFuncNameOnce implements the lazy "__func__" data latch: the
// first lvalue reference to the function's own name-decl triggers a
// one-time string data definition on the sink.
func (g *Gen) emitFuncNameOnce(f *ssa.Function, d *cast.Decl) {
	if d.Value != f.NameGlobal || f.NameEmitted {
		return
	}
	f.NameEmitted = true
	g.Sink.EmitData(f.NameGlobal, false, []qbeemit.DataItem{
		{Bytes: []byte(f.Name)},
		{Bytes: []byte{0}},
	})
}
