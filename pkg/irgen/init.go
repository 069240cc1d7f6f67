package irgen

import (
	"encoding/binary"
	"math"

	"github.com/raymyers/qbessa/pkg/cast"
	"github.com/raymyers/qbessa/pkg/ctypes"
	"github.com/raymyers/qbessa/pkg/qbeemit"
	"github.com/raymyers/qbessa/pkg/ssa"
)

// funcinit allocates storage for a local object of d's type, zeroes
// it, and stores each initializer piece over the zeroed extent — C99
// 6.7.8p21's "objects without an explicit initializer get zero" rule,
// done unconditionally rather than tracked field-by-field, mirroring
// qbe.c's zero()+funcinit() pair.
func (g *Gen) funcinit(f *ssa.Function, d *cast.Decl, pieces []cast.InitPiece) {
	size := ctypes.Sizeof(d.Type)
	align := d.Align
	if align == 0 {
		align = ctypes.Alignof(d.Type)
	}
	addr, err := f.Alloc(size, ctypes.Alignof(d.Type), align)
	if err != nil {
		panic(err.Error())
	}
	d.Value = addr

	g.zero(f, addr, size)
	for _, p := range pieces {
		g.storePiece(f, addr, p)
	}
}

// zero stores zero over [0, size) of addr in the widest chunks the
// extent allows, falling back to single bytes for the remainder.
func (g *Gen) zero(f *ssa.Function, addr *ssa.Value, size int64) {
	var off int64
	for size-off >= 8 {
		f.Inst(ssa.IStorel, ctypes.ReprNone, ssa.MkIntConst(ctypes.ReprI64, 0), offsetPtr(f, addr, off))
		off += 8
	}
	for size-off >= 4 {
		f.Inst(ssa.IStorew, ctypes.ReprNone, ssa.MkIntConst(ctypes.ReprI32, 0), offsetPtr(f, addr, off))
		off += 4
	}
	for size-off >= 2 {
		f.Inst(ssa.IStoreh, ctypes.ReprNone, ssa.MkIntConst(ctypes.ReprI32, 0), offsetPtr(f, addr, off))
		off += 2
	}
	for size-off >= 1 {
		f.Inst(ssa.IStoreb, ctypes.ReprNone, ssa.MkIntConst(ctypes.ReprI32, 0), offsetPtr(f, addr, off))
		off++
	}
}

// storePiece evaluates one initializer component and writes it at its
// byte offset within addr, narrowed to a bit-field when the piece
// names one.
func (g *Gen) storePiece(f *ssa.Function, addr *ssa.Value, p cast.InitPiece) {
	v := g.expr(f, p.Expr)
	t := p.Expr.Type()
	lv := Lvalue{Addr: offsetPtr(f, addr, p.Start), Bits: p.Bits}
	if _, err := g.funcstore(f, t, ctypes.QualNone, lv, v); err != nil {
		panic(err)
	}
}

// GlobalInit computes the data-segment contents for a file-scope
// object, a separate path from funcinit's store instructions since a
// global's initial value lives in the object file rather than being
// written by code at startup. Only expressions a static initializer
// can contain reach here: constants, string literals, and
// address-of-global relocations; anything else is a user error.
func (g *Gen) GlobalInit(t ctypes.Type, pieces []cast.InitPiece) ([]qbeemit.DataItem, error) {
	size := ctypes.Sizeof(t)
	var items []qbeemit.DataItem
	var off int64

	for _, p := range pieces {
		if p.Start > off {
			items = append(items, qbeemit.DataItem{Zero: p.Start - off})
		}
		item, err := g.staticItem(p)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		off = p.End
	}
	if size > off {
		items = append(items, qbeemit.DataItem{Zero: size - off})
	}
	return items, nil
}

func (g *Gen) staticItem(p cast.InitPiece) (qbeemit.DataItem, error) {
	switch e := p.Expr.(type) {
	case cast.Const:
		width := p.End - p.Start
		if e.IsFlt {
			return qbeemit.DataItem{Bytes: floatBytes(e.FltVal, width)}, nil
		}
		return qbeemit.DataItem{Bytes: intBytes(e.IntVal, width)}, nil
	case cast.String:
		return qbeemit.DataItem{Bytes: e.Value}, nil
	case cast.Unary:
		if e.Op != cast.OpAddr {
			break
		}
		if id, ok := e.Base.(cast.Ident); ok && id.Decl.Kind == cast.DeclObject {
			return qbeemit.DataItem{Sym: id.Decl.Value}, nil
		}
	case cast.Cast:
		return g.staticItem(cast.InitPiece{Start: p.Start, End: p.End, Bits: p.Bits, Expr: e.Base})
	}
	return qbeemit.DataItem{}, userErrorf("initializer element is not a compile-time constant")
}

func intBytes(v uint64, width int64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	if width <= 0 || width > 8 {
		width = 8
	}
	return buf[:width]
}

func floatBytes(v float64, width int64) []byte {
	if width == 4 {
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(v)))
		return buf
	}
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
	return buf
}
