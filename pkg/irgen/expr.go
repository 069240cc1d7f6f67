package irgen

import (
	"github.com/raymyers/qbessa/pkg/cast"
	"github.com/raymyers/qbessa/pkg/ctypes"
	"github.com/raymyers/qbessa/pkg/ssa"
)

// materialize forces a register-resident parameter decl into a real
// stack slot, for the rare reference that needs its address or must
// narrow/widen it in place. Once materialized, a decl behaves exactly
// like any other local object from then on.
func (g *Gen) materialize(f *ssa.Function, d *cast.Decl) *ssa.Value {
	if !d.Direct {
		return d.Value
	}
	cur := d.Value
	addr, err := f.Alloc(ctypes.Sizeof(d.Type), ctypes.Alignof(d.Type), d.Align)
	if err != nil {
		panic(err.Error())
	}
	d.Direct = false
	d.Value = addr
	if _, err := g.funcstore(f, d.Type, ctypes.QualNone, Lvalue{Addr: addr}, cur); err != nil {
		panic(err)
	}
	return addr
}

// funcbits narrows a loaded storage-unit value down to a bit-field's
// extent, sign- or zero-extending depending on the field's declared
// type. A shift left by bits.After followed by a shift right by
// bits.Before+bits.After isolates the field regardless of which side
// of the word it sits on. A descriptor with Before == After == 0 is
// not a bit-field, and v is returned unchanged with no shift emitted.
func (g *Gen) funcbits(f *ssa.Function, t ctypes.Type, v *ssa.Value, bits ctypes.Bitfield) *ssa.Value {
	if !bits.IsSet() {
		return v
	}
	r := v.Repr
	lshift := int64(bits.After)
	rshift := int64(bits.Before) + int64(bits.After)

	v = f.Inst(ssa.IShl, r, v, ssa.MkIntConst(r, uint64(lshift)))
	shrOp := ssa.IShr
	if ctypes.IsSigned(t) {
		shrOp = ssa.ISar
	}
	return f.Inst(shrOp, r, v, ssa.MkIntConst(r, uint64(rshift)))
}

// funcload reads t's value out of lval. Aggregates are never actually
// loaded: their "value" is just the address, since every consumer of
// an aggregate rvalue (assignment, init, call argument) operates on it
// through a copy of bytes, not a register load.
func (g *Gen) funcload(f *ssa.Function, t ctypes.Type, lval Lvalue) *ssa.Value {
	switch t.(type) {
	case ctypes.Tstruct, ctypes.Tunion, ctypes.Tarray:
		return lval.Addr
	}

	var op ssa.InstKind
	signed := ctypes.IsSigned(t)
	switch tt := t.(type) {
	case ctypes.Tpointer:
		op = ssa.ILoadl
	case ctypes.Tfloat:
		if tt.Size == ctypes.F32 {
			op = ssa.ILoads
		} else {
			op = ssa.ILoadd
		}
	default:
		switch ctypes.Sizeof(t) {
		case 1:
			op = extOp(signed, ssa.ILoadsb, ssa.ILoadub)
		case 2:
			op = extOp(signed, ssa.ILoadsh, ssa.ILoaduh)
		case 8:
			op = ssa.ILoadl
		default:
			op = extOp(signed, ssa.ILoadsw, ssa.ILoaduw)
		}
	}
	v := f.Inst(op, ctypes.ReprOf(t), lval.Addr, nil)
	return g.funcbits(f, t, v, lval.Bits)
}

// checkWritable rejects a store to a qualified object, volatile before
// const as qbe.c's funcstore does.
func checkWritable(tq ctypes.Qual) error {
	if tq.Has(ctypes.QualVolatile) {
		return userErrorf("volatile stores are not implemented")
	}
	if tq.Has(ctypes.QualConst) {
		return userErrorf("cannot assign to a const-qualified object")
	}
	return nil
}

// funcstore writes v, of type t, into lval, returning the value an
// immediately following load would observe — for a plain scalar or
// aggregate store that's just v, but a bit-field destination truncates
// it to the field's width, and C requires an assignment expression to
// yield that truncated value, not the raw right-hand side. Aggregates
// are copied scalar-chunk by scalar-chunk at the object's alignment; a
// bit-field destination does a read-modify-write against the
// surrounding storage unit so sibling fields are left untouched.
func (g *Gen) funcstore(f *ssa.Function, t ctypes.Type, tq ctypes.Qual, lval Lvalue, v *ssa.Value) (*ssa.Value, error) {
	if err := checkWritable(tq); err != nil {
		return nil, err
	}

	switch tt := t.(type) {
	case ctypes.Tstruct, ctypes.Tunion, ctypes.Tarray:
		g.copyAggregate(f, t, lval.Addr, v)
		return v, nil
	case ctypes.Tpointer:
		f.Inst(ssa.IStorel, ctypes.ReprNone, v, lval.Addr)
		return v, nil
	case ctypes.Tfloat:
		op := ssa.IStores
		if tt.Size == ctypes.F64 {
			op = ssa.IStored
		}
		f.Inst(op, ctypes.ReprNone, v, lval.Addr)
		return v, nil
	}

	if lval.Bits.IsSet() {
		return g.storeBitfield(f, t, lval, v), nil
	}

	var op ssa.InstKind
	switch ctypes.Sizeof(t) {
	case 1:
		op = ssa.IStoreb
	case 2:
		op = ssa.IStoreh
	case 8:
		op = ssa.IStorel
	default:
		op = ssa.IStorew
	}
	f.Inst(op, ctypes.ReprNone, v, lval.Addr)
	return v, nil
}

// storeBitfield masks v into the field's extent of the surrounding
// storage unit, preserving every bit outside [Before, Before+width),
// and returns v sign/zero-extended back out of that width via
// funcbits — the value an immediately following load would produce.
func (g *Gen) storeBitfield(f *ssa.Function, t ctypes.Type, lval Lvalue, v *ssa.Value) *ssa.Value {
	r := ctypes.ReprOf(t)
	width := int64(32)
	if r.Base == 'l' {
		width = 64
	}
	fieldWidth := width - int64(lval.Bits.Before) - int64(lval.Bits.After)
	mask := uint64(1)<<uint(fieldWidth) - 1
	mask <<= uint(lval.Bits.Before)

	cur := f.Inst(loadOpFor(t), r, lval.Addr, nil)
	cleared := f.Inst(ssa.IAnd, r, cur, ssa.MkIntConst(r, ^mask))
	shifted := f.Inst(ssa.IShl, r, v, ssa.MkIntConst(r, uint64(lval.Bits.Before)))
	masked := f.Inst(ssa.IAnd, r, shifted, ssa.MkIntConst(r, mask))
	merged := f.Inst(ssa.IOr, r, cleared, masked)
	f.Inst(storeOpFor(t), ctypes.ReprNone, merged, lval.Addr)
	return g.funcbits(f, t, merged, lval.Bits)
}

func loadOpFor(t ctypes.Type) ssa.InstKind {
	if ctypes.Sizeof(t) == 8 {
		return ssa.ILoadl
	}
	return ssa.ILoaduw
}

func storeOpFor(t ctypes.Type) ssa.InstKind {
	if ctypes.Sizeof(t) == 8 {
		return ssa.IStorel
	}
	return ssa.IStorew
}

// copyAggregate copies t's value byte range from src to dst, a chunk
// at a time sized to the type's alignment (never wider than 8).
func (g *Gen) copyAggregate(f *ssa.Function, t ctypes.Type, dst, src *ssa.Value) {
	size := ctypes.Sizeof(t)
	align := ctypes.Alignof(t)
	if align > 8 {
		align = 8
	}
	loadOp, storeOp, repr := chunkOps(align)
	var off int64
	for off+align <= size {
		a := offsetPtr(f, src, off)
		b := offsetPtr(f, dst, off)
		v := f.Inst(loadOp, repr, a, nil)
		f.Inst(storeOp, ctypes.ReprNone, v, b)
		off += align
	}
	for off < size {
		a := offsetPtr(f, src, off)
		b := offsetPtr(f, dst, off)
		v := f.Inst(ssa.ILoadub, ctypes.ReprI32, a, nil)
		f.Inst(ssa.IStoreb, ctypes.ReprNone, v, b)
		off++
	}
}

func chunkOps(align int64) (ssa.InstKind, ssa.InstKind, ctypes.Repr) {
	switch align {
	case 8:
		return ssa.ILoadl, ssa.IStorel, ctypes.ReprI64
	case 4:
		return ssa.ILoaduw, ssa.IStorew, ctypes.ReprI32
	case 2:
		return ssa.ILoaduh, ssa.IStoreh, ctypes.ReprI32
	default:
		return ssa.ILoadub, ssa.IStoreb, ctypes.ReprI32
	}
}

func offsetPtr(f *ssa.Function, base *ssa.Value, off int64) *ssa.Value {
	if off == 0 {
		return base
	}
	return f.Inst(ssa.IAdd, ctypes.ReprPtr, base, ssa.MkIntConst(ctypes.ReprI64, uint64(off)))
}

// funcexpr is the full expression-lowering switch: every cast.Expr
// kind reaches here to produce an *ssa.Value (or nil for a void
// result).
func (g *Gen) funcexpr(f *ssa.Function, e cast.Expr) *ssa.Value {
	switch ex := e.(type) {
	case cast.Const:
		if ex.IsFlt {
			return ssa.MkFltConst(ctypes.ReprOf(ex.Typ), ex.FltVal)
		}
		return ssa.MkIntConst(ctypes.ReprOf(ex.Typ), ex.IntVal)

	case cast.Ident:
		if ex.Decl.Kind == cast.DeclConst {
			return ex.Decl.Value
		}
		if _, ok := ex.Typ.(ctypes.Tfunction); ok {
			g.emitFuncNameOnce(f, ex.Decl)
			return ex.Decl.Value
		}
		if ex.Decl.Direct {
			return ex.Decl.Value
		}
		lv := g.lval(f, ex)
		return g.funcload(f, ex.Typ, lv)

	case cast.String:
		lv := g.lval(f, ex)
		return lv.Addr

	case cast.Bitfield:
		lv := g.lval(f, ex)
		return g.funcload(f, ex.Typ, lv)

	case cast.Compound:
		lv := g.lval(f, ex)
		return g.funcload(f, ex.Typ, lv)

	case *cast.Temp:
		return ex.Value

	case cast.Unary:
		return g.funcUnary(f, ex)

	case cast.IncDec:
		return g.funcIncDec(f, ex)

	case cast.Cast:
		v := g.expr(f, ex.Base)
		return g.convert(f, ex.Typ, ex.Base.Type(), v)

	case cast.Binary:
		return g.funcBinary(f, ex)

	case cast.Cond:
		return g.funcCond(f, ex)

	case cast.Assign:
		return g.funcAssign(f, ex)

	case cast.Comma:
		var v *ssa.Value
		for _, sub := range ex.Exprs {
			v = g.expr(f, sub)
		}
		return v

	case cast.Call:
		return g.funcCall(f, ex)

	case cast.Builtin:
		return g.funcBuiltin(f, ex)

	default:
		panic("internal error: unhandled expression kind")
	}
}

func (g *Gen) funcUnary(f *ssa.Function, ex cast.Unary) *ssa.Value {
	switch ex.Op {
	case cast.OpAddr:
		return g.lval(f, ex.Base).Addr
	case cast.OpDeref:
		lv := g.lval(f, ex)
		return g.funcload(f, ex.Typ, lv)
	default:
		panic("internal error: unknown unary op")
	}
}

// funcIncDec desugars ++/-- into a load, an add/sub by one, a store,
// returning either the old or the new value depending on Post.
func (g *Gen) funcIncDec(f *ssa.Function, ex cast.IncDec) *ssa.Value {
	one := incDecStep(ex.Typ)
	op := ssa.IAdd
	if ex.Op == cast.OpDec {
		op = ssa.ISub
	}

	if id, ok := ex.Base.(cast.Ident); ok && id.Decl.Direct {
		if err := checkWritable(id.Decl.Qual); err != nil {
			panic(err)
		}
		old := id.Decl.Value
		next := f.Inst(op, ctypes.ReprOf(ex.Typ), old, one)
		id.Decl.Value = next
		if ex.Post {
			return old
		}
		return next
	}

	lv := g.lval(f, ex.Base)
	old := g.funcload(f, ex.Typ, lv)
	next := f.Inst(op, ctypes.ReprOf(ex.Typ), old, one)
	if _, err := g.funcstore(f, ex.Typ, lv.Qual, lv, next); err != nil {
		panic(err)
	}
	if ex.Post {
		return old
	}
	return next
}

func incDecStep(t ctypes.Type) *ssa.Value {
	if _, ok := t.(ctypes.Tfloat); ok {
		return ssa.MkFltConst(ctypes.ReprOf(t), 1)
	}
	if pt, ok := t.(ctypes.Tpointer); ok {
		size := ctypes.Sizeof(pt.Elem)
		if size == 0 {
			size = 1
		}
		return ssa.MkIntConst(ctypes.ReprI64, uint64(size))
	}
	return ssa.MkIntConst(ctypes.ReprOf(t), 1)
}

func (g *Gen) funcAssign(f *ssa.Function, ex cast.Assign) *ssa.Value {
	v := g.expr(f, ex.R)
	v = g.convert(f, ex.Typ, ex.R.Type(), v)

	if tmp, ok := ex.L.(*cast.Temp); ok {
		tmp.Value = v
		return v
	}
	if id, ok := ex.L.(cast.Ident); ok && id.Decl.Direct {
		if err := checkWritable(id.Decl.Qual); err != nil {
			panic(err)
		}
		id.Decl.Value = v
		return v
	}
	lv := g.lval(f, ex.L)
	stored, err := g.funcstore(f, ex.Typ, lv.Qual, lv, v)
	if err != nil {
		panic(err)
	}
	return stored
}

// funcCond lowers `cond ? t : f` via a branch to two blocks joined by
// a phi, matching qbe.c's EXPRCOND.
func (g *Gen) funcCond(f *ssa.Function, ex cast.Cond) *ssa.Value {
	tblk := g.Module.MkBlock("cond_t")
	fblk := g.Module.MkBlock("cond_f")
	join := g.Module.MkBlock("cond_join")
	join.Phi.Blk[0] = tblk
	join.Phi.Blk[1] = fblk

	c := g.expr(f, ex.Cond)
	f.Jnz(c, tblk, fblk)

	f.Label(tblk)
	tv := g.expr(f, ex.T)
	join.Phi.Val[0] = g.convert(f, ex.Typ, ex.T.Type(), tv)
	f.Jmp(join)

	f.Label(fblk)
	fv := g.expr(f, ex.F)
	join.Phi.Val[1] = g.convert(f, ex.Typ, ex.F.Type(), fv)
	f.Jmp(join)

	f.Label(join)
	if _, ok := ex.Typ.(ctypes.Tvoid); ok {
		return nil
	}
	return f.MkPhi(join, ctypes.ReprOf(ex.Typ))
}

// funcBinary lowers every binary operator. && and || short-circuit
// through branches and a phi instead of a plain instruction; the rest
// map onto a single three-address op keyed on the operand type.
func (g *Gen) funcBinary(f *ssa.Function, ex cast.Binary) *ssa.Value {
	switch ex.Op {
	case cast.OpLogAnd:
		return g.funcLogical(f, ex, false)
	case cast.OpLogOr:
		return g.funcLogical(f, ex, true)
	}

	lt := ex.L.Type()
	l := g.expr(f, ex.L)
	r := g.expr(f, ex.R)
	op := binOp(ex.Op, lt)
	return f.Inst(op, ctypes.ReprOf(ex.Typ), l, r)
}

// funcLogical lowers && and ||: shortCircuitOnTrue selects || (which
// short-circuits on a true left operand) vs && (short-circuits on
// false).
func (g *Gen) funcLogical(f *ssa.Function, ex cast.Binary, shortCircuitOnTrue bool) *ssa.Value {
	rblk := g.Module.MkBlock("log_rhs")
	join := g.Module.MkBlock("log_join")

	l := g.expr(f, ex.L)
	lbool := toBool(f, l, ex.L.Type())

	shortBlk := g.Module.MkBlock("log_short")
	join.Phi.Blk[0] = shortBlk
	join.Phi.Blk[1] = rblk
	if shortCircuitOnTrue {
		f.Jnz(lbool, shortBlk, rblk)
	} else {
		f.Jnz(lbool, rblk, shortBlk)
	}

	f.Label(shortBlk)
	var shortVal uint64
	if shortCircuitOnTrue {
		shortVal = 1
	}
	join.Phi.Val[0] = ssa.MkIntConst(ctypes.ReprOf(ex.Typ), shortVal)
	f.Jmp(join)

	f.Label(rblk)
	r := g.expr(f, ex.R)
	rbool := toBool(f, r, ex.R.Type())
	join.Phi.Val[1] = rbool
	f.Jmp(join)

	f.Label(join)
	return f.MkPhi(join, ctypes.ReprOf(ex.Typ))
}

// toBool reduces v to a 0/1 word, comparing against a same-kind zero.
func toBool(f *ssa.Function, v *ssa.Value, t ctypes.Type) *ssa.Value {
	r := ctypes.ReprOf(t)
	switch {
	case ctypes.PropOf(t).Has(ctypes.PropFloat):
		op := ssa.ICned
		if r.Base == 's' {
			op = ssa.ICnes
		}
		return f.Inst(op, ctypes.ReprI32, v, ssa.MkFltConst(r, 0))
	default:
		op := ssa.ICnew
		if r.Base == 'l' {
			op = ssa.ICnel
		}
		return f.Inst(op, ctypes.ReprI32, v, ssa.MkIntConst(r, 0))
	}
}

// binOp picks the instruction for a non-short-circuit binary operator,
// keyed on the operand type's signedness/floatness/width.
func binOp(op cast.BinaryOp, t ctypes.Type) ssa.InstKind {
	flt := ctypes.PropOf(t).Has(ctypes.PropFloat)
	signed := ctypes.IsSigned(t)
	wide := ctypes.ReprOf(t).Base == 'l'

	switch op {
	case cast.OpAdd:
		return ssa.IAdd
	case cast.OpSub:
		return ssa.ISub
	case cast.OpMul:
		return ssa.IMul
	case cast.OpDiv:
		if flt {
			return ssa.IDiv
		}
		return extOp(signed, ssa.IDiv, ssa.IUdiv)
	case cast.OpMod:
		return extOp(signed, ssa.IRem, ssa.IUrem)
	case cast.OpShl:
		return ssa.IShl
	case cast.OpShr:
		return extOp(signed, ssa.ISar, ssa.IShr)
	case cast.OpBitOr:
		return ssa.IOr
	case cast.OpBitAnd:
		return ssa.IAnd
	case cast.OpXor:
		return ssa.IXor
	case cast.OpEq:
		return cmpOp(flt, wide, eqFamily)
	case cast.OpNe:
		return cmpOp(flt, wide, neFamily)
	case cast.OpLt:
		return signedCmpOp(flt, signed, wide, ltFamily)
	case cast.OpGt:
		return signedCmpOp(flt, signed, wide, gtFamily)
	case cast.OpLe:
		return signedCmpOp(flt, signed, wide, leFamily)
	case cast.OpGe:
		return signedCmpOp(flt, signed, wide, geFamily)
	default:
		panic("internal error: unknown binary operator")
	}
}

type cmpFamily int

const (
	eqFamily cmpFamily = iota
	neFamily
	ltFamily
	gtFamily
	leFamily
	geFamily
)

func cmpOp(flt, wide bool, fam cmpFamily) ssa.InstKind {
	switch {
	case flt && wide:
		if fam == eqFamily {
			return ssa.ICeqd
		}
		return ssa.ICned
	case flt:
		if fam == eqFamily {
			return ssa.ICeqs
		}
		return ssa.ICnes
	case wide:
		if fam == eqFamily {
			return ssa.ICeql
		}
		return ssa.ICnel
	default:
		if fam == eqFamily {
			return ssa.ICeqw
		}
		return ssa.ICnew
	}
}

// signedCmpOp picks the width/signedness/float-specific variant of
// the four ordering comparisons.
func signedCmpOp(flt, signed, wide bool, fam cmpFamily) ssa.InstKind {
	if flt {
		if wide {
			switch fam {
			case ltFamily:
				return ssa.ICltd
			case gtFamily:
				return ssa.ICgtd
			case leFamily:
				return ssa.ICled
			default:
				return ssa.ICged
			}
		}
		switch fam {
		case ltFamily:
			return ssa.IClts
		case gtFamily:
			return ssa.ICgts
		case leFamily:
			return ssa.ICles
		default:
			return ssa.ICges
		}
	}
	if wide {
		if signed {
			switch fam {
			case ltFamily:
				return ssa.ICsltl
			case gtFamily:
				return ssa.ICsgtl
			case leFamily:
				return ssa.ICslel
			default:
				return ssa.ICsgel
			}
		}
		switch fam {
		case ltFamily:
			return ssa.ICultl
		case gtFamily:
			return ssa.ICugtl
		case leFamily:
			return ssa.ICulel
		default:
			return ssa.ICugel
		}
	}
	if signed {
		switch fam {
		case ltFamily:
			return ssa.ICsltw
		case gtFamily:
			return ssa.ICsgtw
		case leFamily:
			return ssa.ICslew
		default:
			return ssa.ICsgew
		}
	}
	switch fam {
	case ltFamily:
		return ssa.ICultw
	case gtFamily:
		return ssa.ICugtw
	case leFamily:
		return ssa.ICulew
	default:
		return ssa.ICugew
	}
}

// funcCall evaluates the callee and arguments left to right, then
// emits the call instruction followed by an IARG pseudo-instruction
// per argument, matching qbe.c's funccall: the ICALL/IVACALL comes
// first and the IARGs trail it in the instruction stream.
func (g *Gen) funcCall(f *ssa.Function, ex cast.Call) *ssa.Value {
	fn := g.expr(f, ex.Func)
	args := make([]*ssa.Value, len(ex.Args))
	for i, a := range ex.Args {
		args[i] = g.expr(f, a)
	}
	op := ssa.ICall
	if ex.Vararg {
		op = ssa.IVacall
	}
	var call *ssa.Value
	if _, ok := ex.Typ.(ctypes.Tvoid); ok {
		f.Inst(op, ctypes.ReprNone, fn, nil)
	} else {
		call = f.Inst(op, ctypes.ReprOf(ex.Typ), fn, nil)
	}
	for _, a := range args {
		f.Inst(ssa.IArg, ctypes.ReprNone, a, nil)
	}
	return call
}

func (g *Gen) funcBuiltin(f *ssa.Function, ex cast.Builtin) *ssa.Value {
	switch ex.Kind {
	case cast.BuiltinVaStart:
		list := g.lval(f, ex.Base)
		f.Inst(ssa.IVastart, ctypes.ReprNone, list.Addr, nil)
		return nil
	case cast.BuiltinVaArg:
		if !ctypes.PropOf(ex.Typ).Has(ctypes.PropScalar) {
			panic(userErrorf("va_arg on a non-scalar type is not allowed"))
		}
		list := g.lval(f, ex.Base)
		return f.Inst(ssa.IVaarg, ctypes.ReprOf(ex.Typ), list.Addr, nil)
	case cast.BuiltinVaEnd:
		return nil
	case cast.BuiltinAlloca:
		size := g.expr(f, ex.Base)
		return f.Inst(ssa.IAlloc16, ctypes.ReprPtr, size, nil)
	default:
		panic("internal error: unknown builtin")
	}
}
