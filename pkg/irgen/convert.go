package irgen

import (
	"github.com/raymyers/qbessa/pkg/ctypes"
	"github.com/raymyers/qbessa/pkg/ssa"
)

// convert lowers a cast from src to dst, picking the narrowest
// instruction that does the job: a no-op copy when the destination is
// no wider than the source, sign/zero extension when widening
// integers, and a dedicated path through utof/ftou for the
// unsigned-64-bit corners float conversion can't do directly.
func (g *Gen) convert(f *ssa.Function, dst, src ctypes.Type, l *ssa.Value) *ssa.Value {
	if _, ok := src.(ctypes.Tpointer); ok {
		src = ctypesULong
	}
	if _, ok := dst.(ctypes.Tpointer); ok {
		dst = ctypesULong
	}
	if _, ok := dst.(ctypes.Tvoid); ok {
		return nil
	}
	if ctypes.Equal(dst, src) {
		return l
	}
	assertf(ctypes.PropOf(src).Has(ctypes.PropReal) && ctypes.PropOf(dst).Has(ctypes.PropReal),
		"unsupported conversion from %s to %s", src, dst)

	_, dstBool := dst.(ctypes.Tbool)

	var op ssa.InstKind
	var r *ssa.Value

	switch {
	case dstBool:
		r = ssa.MkIntConst(ctypes.ReprOf(src), 0)
		if ctypes.PropOf(src).Has(ctypes.PropInt) {
			switch ctypes.Sizeof(src) {
			case 1:
				l = f.Inst(ssa.IExtub, ctypes.ReprI32, l, nil)
			case 2:
				l = f.Inst(ssa.IExtuh, ctypes.ReprI32, l, nil)
			}
			if ctypes.Sizeof(src) == 8 {
				op = ssa.ICnel
			} else {
				op = ssa.ICnew
			}
		} else {
			if ctypes.Sizeof(src) == 8 {
				op = ssa.ICned
			} else {
				op = ssa.ICnes
			}
		}
	case ctypes.PropOf(dst).Has(ctypes.PropInt):
		if ctypes.PropOf(src).Has(ctypes.PropInt) {
			if ctypes.Sizeof(dst) <= ctypes.Sizeof(src) {
				op = ssa.ICopy
			} else {
				switch ctypes.Sizeof(src) {
				case 4:
					op = extOp(ctypes.IsSigned(src), ssa.IExtsw, ssa.IExtuw)
				case 2:
					op = extOp(ctypes.IsSigned(src), ssa.IExtsh, ssa.IExtuh)
				case 1:
					op = extOp(ctypes.IsSigned(src), ssa.IExtsb, ssa.IExtub)
				default:
					panic("internal error: unknown int conversion")
				}
			}
		} else {
			if !ctypes.IsSigned(dst) {
				return g.ftou(f, ctypes.ReprOf(dst), l)
			}
			if ctypes.Sizeof(src) == 8 {
				op = ssa.IDtosi
			} else {
				op = ssa.IStosi
			}
		}
	default:
		if ctypes.PropOf(src).Has(ctypes.PropInt) {
			if !ctypes.IsSigned(src) {
				return g.utof(f, ctypes.ReprOf(dst), l)
			}
			if ctypes.Sizeof(src) == 8 {
				op = ssa.ISltof
			} else {
				op = ssa.ISwtof
			}
		} else {
			switch {
			case ctypes.Sizeof(src) < ctypes.Sizeof(dst):
				op = ssa.IExts
			case ctypes.Sizeof(src) > ctypes.Sizeof(dst):
				op = ssa.ITruncd
			default:
				op = ssa.ICopy
			}
		}
	}

	return f.Inst(op, ctypes.ReprOf(dst), l, r)
}

func extOp(signed bool, s, u ssa.InstKind) ssa.InstKind {
	if signed {
		return s
	}
	return u
}

// utof converts an unsigned integer to float/double. 32-bit unsigned
// zero-extends to 64 and converts directly (always representable);
// 64-bit unsigned needs the round-to-odd dance because no instruction
// converts an unsigned 64-bit value straight to float.
func (g *Gen) utof(f *ssa.Function, r ctypes.Repr, v *ssa.Value) *ssa.Value {
	if v.Repr.Base == 'w' {
		v = f.Inst(ssa.IExtuw, ctypes.ReprI64, v, nil)
		return f.Inst(ssa.ISltof, r, v, nil)
	}

	small := g.Module.MkBlock("utof_small")
	big := g.Module.MkBlock("utof_big")
	join := g.Module.MkBlock("utof_join")
	join.Phi.Blk[0] = small
	join.Phi.Blk[1] = big

	isBig := f.Inst(ssa.ICsltl, ctypes.ReprI32, v, ssa.MkIntConst(ctypes.ReprI64, 0))
	f.Jnz(isBig, big, small)

	f.Label(small)
	join.Phi.Val[0] = f.Inst(ssa.ISltof, r, v, nil)
	f.Jmp(join)

	f.Label(big)
	odd := f.Inst(ssa.IAnd, ctypes.ReprI64, v, ssa.MkIntConst(ctypes.ReprI64, 1))
	shifted := f.Inst(ssa.IShr, ctypes.ReprI64, v, ssa.MkIntConst(ctypes.ReprI64, 1))
	rounded := f.Inst(ssa.IOr, ctypes.ReprI64, shifted, odd)
	half := f.Inst(ssa.ISltof, r, rounded, nil)
	join.Phi.Val[1] = f.Inst(ssa.IAdd, r, half, half)

	f.Label(join)
	return f.MkPhi(join, r)
}

// ftou converts a float/double to an unsigned 64-bit integer (when r
// is word-sized, any narrower unsigned target fits in the signed
// conversion's range and no special-casing is needed). Values at or
// above 2^63 overflow the signed conversion path, so they're shifted
// down by 2^63 first and the high bit flipped back in afterward.
func (g *Gen) ftou(f *ssa.Function, r ctypes.Repr, v *ssa.Value) *ssa.Value {
	op := ssa.IDtosi
	if v.Repr.Base == 's' {
		op = ssa.IStosi
	}

	if r.Base == 'w' {
		v = f.Inst(op, ctypes.ReprI64, v, nil)
		return f.Inst(ssa.ICopy, r, v, nil)
	}

	small := g.Module.MkBlock("ftou_small")
	big := g.Module.MkBlock("ftou_big")
	join := g.Module.MkBlock("ftou_join")
	join.Phi.Blk[0] = small
	join.Phi.Blk[1] = big

	maxFlt := ssa.MkFltConst(v.Repr, 0x1p63)
	maxInt := ssa.MkIntConst(ctypes.ReprI64, 1<<63)

	cmp := ssa.ICged
	if v.Repr.Base == 's' {
		cmp = ssa.ICges
	}
	isBig := f.Inst(cmp, ctypes.ReprI32, v, maxFlt)
	f.Jnz(isBig, big, small)

	f.Label(small)
	join.Phi.Val[0] = f.Inst(op, r, v, nil)
	f.Jmp(join)

	f.Label(big)
	shifted := f.Inst(ssa.ISub, v.Repr, v, maxFlt)
	conv := f.Inst(op, r, shifted, nil)
	join.Phi.Val[1] = f.Inst(ssa.IXor, r, conv, maxInt)

	f.Label(join)
	return f.MkPhi(join, r)
}
