package irgen

import (
	"github.com/raymyers/qbessa/pkg/cast"
	"github.com/raymyers/qbessa/pkg/ctypes"
	"github.com/raymyers/qbessa/pkg/ssa"
)

// NewFunc builds a function's entry sequence: each parameter arrives
// promoted to its default-argument-promoted representation (the ABI
// never passes a narrower-than-int value directly). A parameter whose
// promoted type already matches its declared type is aliased straight
// to its incoming temp — no slot, no store, no reload. Only a
// parameter that needs narrowing or widening gets a stack slot, so
// that taking its address or assigning into it goes through the same
// lval path as any other local object.
func (g *Gen) NewFunc(name string, ret ctypes.Type, params []*cast.Decl, vararg bool) *ssa.Function {
	f := ssa.NewFunction(g.Module, name, ret)
	f.Vararg = vararg

	for _, d := range params {
		promoted := ctypes.Promote(d.Type)
		pv := f.AddParam(promoted, ctypes.ReprOf(promoted))

		if ctypes.Equal(promoted, d.Type) {
			d.Value = pv
			d.Direct = true
			continue
		}

		addr, err := f.Alloc(ctypes.Sizeof(d.Type), ctypes.Alignof(d.Type), d.Align)
		if err != nil {
			panic(err.Error())
		}
		d.Value = addr

		v := g.convert(f, d.Type, promoted, pv)
		if _, err := g.funcstore(f, d.Type, ctypes.QualNone, Lvalue{Addr: addr}, v); err != nil {
			panic(err)
		}
	}
	return f
}

// LowerFunc builds the function and lowers its body, appending an
// implicit `return;` if control falls off the closing brace — valid
// for a void function and otherwise matching the ABI's prevailing
// "do nothing, let the caller ignore an unspecified return value"
// behavior rather than miscompiling into a dangling block.
func (g *Gen) LowerFunc(name string, ret ctypes.Type, params []*cast.Decl, vararg bool, body cast.Stmt) *ssa.Function {
	f := g.NewFunc(name, ret, params, vararg)
	g.stmt(f, body, nil)
	if f.End.Jump.Kind == ssa.JNone {
		f.Ret(nil)
	}
	return f
}
