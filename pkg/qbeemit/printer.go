package qbeemit

import (
	"fmt"
	"io"

	"github.com/raymyers/qbessa/pkg/ctypes"
	"github.com/raymyers/qbessa/pkg/ssa"
)

// Printer is a Sink that writes a QBE-flavored SSA text dump. It is
// not a byte-for-byte QBE frontend emitter (the block-id disambiguator
// and aggregate type table are this package's own convention), but
// every instruction/jump/phi maps one-to-one onto the IR the core
// built, in the per-kind switch style of pkg/rtl and pkg/linear's
// printers.
type Printer struct {
	w     io.Writer
	types map[string]bool
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, types: make(map[string]bool)}
}

func (p *Printer) EmitName(n ssa.Name) {
	fmt.Fprintf(p.w, "$%s", n)
}

func (p *Printer) EmitValue(v *ssa.Value) {
	if v == nil {
		return
	}
	switch v.Kind {
	case ssa.VGlobal:
		p.EmitName(v.Name)
	case ssa.VConst:
		if v.IsFlt {
			fmt.Fprintf(p.w, "%v", v.Flt)
		} else {
			fmt.Fprintf(p.w, "%d", v.Int)
		}
	case ssa.VTemp:
		fmt.Fprintf(p.w, "%%%s", v.Name)
	case ssa.VType:
		fmt.Fprintf(p.w, ":%s", typeName(v.Type))
	}
}

func (p *Printer) EmitRepr(r ctypes.Repr, v *ssa.Value, ext bool) {
	b := r.Base
	if ext {
		b = r.Ext
	}
	fmt.Fprintf(p.w, "%c ", b)
	p.EmitValue(v)
}

// typeName derives a stable aggregate type name for structs/unions
// that may be anonymous in source.
func typeName(t ctypes.Type) string {
	switch tt := t.(type) {
	case ctypes.Tstruct:
		if tt.Name != "" {
			return tt.Name
		}
		return "anon_struct"
	case ctypes.Tunion:
		if tt.Name != "" {
			return tt.Name
		}
		return "anon_union"
	default:
		return t.String()
	}
}

// EmitType declares an aggregate type once per translation unit.
func (p *Printer) EmitType(t ctypes.Type) {
	name := typeName(t)
	if p.types[name] {
		return
	}
	p.types[name] = true
	switch tt := t.(type) {
	case ctypes.Tstruct:
		fmt.Fprintf(p.w, "type :%s = align %d { ", name, tt.Align)
		for i, f := range tt.Fields {
			if i > 0 {
				fmt.Fprint(p.w, ", ")
			}
			fmt.Fprintf(p.w, "%s", fieldRepr(f.Type))
		}
		fmt.Fprintf(p.w, " } # size %d\n", tt.Size)
	case ctypes.Tunion:
		fmt.Fprintf(p.w, "type :%s = align %d { ", name, tt.Align)
		for i, f := range tt.Fields {
			if i > 0 {
				fmt.Fprint(p.w, ", ")
			}
			fmt.Fprintf(p.w, "{ %s }", fieldRepr(f.Type))
		}
		fmt.Fprintf(p.w, " } # size %d\n", tt.Size)
	}
}

func fieldRepr(t ctypes.Type) string {
	if ctypes.HasRepr(t) {
		return ctypes.ReprOf(t).String()
	}
	return typeName(t)
}

func (p *Printer) EmitInst(i *ssa.Instruction) {
	fmt.Fprint(p.w, "\t")
	if i.Res.Kind != ssa.VNone {
		p.EmitValue(&i.Res)
		fmt.Fprintf(p.w, " =%c ", i.Res.Repr.Base)
	}
	fmt.Fprintf(p.w, "%s", i.Kind)
	if i.Arg[0] != nil {
		fmt.Fprint(p.w, " ")
		p.EmitValue(i.Arg[0])
	}
	if i.Arg[1] != nil {
		fmt.Fprint(p.w, ", ")
		p.EmitValue(i.Arg[1])
	}
	fmt.Fprintln(p.w)
}

func (p *Printer) EmitJump(j *ssa.Jump) {
	fmt.Fprint(p.w, "\t")
	switch j.Kind {
	case ssa.JNone:
		fmt.Fprint(p.w, "# unterminated\n")
	case ssa.JJmp:
		fmt.Fprintf(p.w, "jmp @%s\n", j.Blk[0].Label)
	case ssa.JJnz:
		fmt.Fprint(p.w, "jnz ")
		p.EmitValue(j.Arg)
		fmt.Fprintf(p.w, ", @%s, @%s\n", j.Blk[0].Label, j.Blk[1].Label)
	case ssa.JRet:
		if j.Arg != nil {
			fmt.Fprint(p.w, "ret ")
			p.EmitValue(j.Arg)
			fmt.Fprintln(p.w)
		} else {
			fmt.Fprintln(p.w, "ret")
		}
	}
}

func (p *Printer) emitPhi(b *ssa.Block) {
	if !b.Phi.Set() {
		return
	}
	fmt.Fprint(p.w, "\t")
	p.EmitValue(&b.Phi.Res)
	fmt.Fprintf(p.w, " =%c phi @%s ", b.Phi.Res.Repr.Base, b.Phi.Blk[0].Label)
	p.EmitValue(b.Phi.Val[0])
	fmt.Fprintf(p.w, ", @%s ", b.Phi.Blk[1].Label)
	p.EmitValue(b.Phi.Val[1])
	fmt.Fprintln(p.w)
}

// EmitFunc prints a function's full block sequence: header, then each
// block's label, phi, instructions, and terminator in emission order.
func (p *Printer) EmitFunc(f *ssa.Function, global bool) {
	if global {
		fmt.Fprint(p.w, "export ")
	}
	fmt.Fprintf(p.w, "function")
	if ctypes.HasRepr(f.Type) {
		fmt.Fprintf(p.w, " %s", ctypes.ReprOf(f.Type))
	}
	fmt.Fprintf(p.w, " $%s(", f.Name)
	for i, prm := range f.Params {
		if i > 0 {
			fmt.Fprint(p.w, ", ")
		}
		fmt.Fprintf(p.w, "%s ", ctypes.ReprOf(prm.Type))
		p.EmitValue(prm.Value)
	}
	if f.Vararg {
		if len(f.Params) > 0 {
			fmt.Fprint(p.w, ", ")
		}
		fmt.Fprint(p.w, "...")
	}
	fmt.Fprint(p.w, ") {\n")
	for b := f.Start; b != nil; b = b.Next {
		fmt.Fprintf(p.w, "@%s\n", b.Label)
		p.emitPhi(b)
		for _, inst := range b.Insts {
			p.EmitInst(inst)
		}
		p.EmitJump(&b.Jump)
	}
	fmt.Fprintln(p.w, "}")
}

// EmitData prints a global data definition: $name = { item, item, ... }.
func (p *Printer) EmitData(v *ssa.Value, global bool, items []DataItem) {
	if global {
		fmt.Fprint(p.w, "export ")
	}
	fmt.Fprint(p.w, "data ")
	p.EmitValue(v)
	fmt.Fprint(p.w, " = { ")
	for i, it := range items {
		if i > 0 {
			fmt.Fprint(p.w, ", ")
		}
		switch {
		case it.Sym != nil:
			fmt.Fprint(p.w, "l ")
			p.EmitValue(it.Sym)
		case it.Zero > 0:
			fmt.Fprintf(p.w, "z %d", it.Zero)
		default:
			fmt.Fprint(p.w, "b ")
			for j, c := range it.Bytes {
				if j > 0 {
					fmt.Fprint(p.w, " ")
				}
				fmt.Fprintf(p.w, "%d", c)
			}
		}
	}
	fmt.Fprintln(p.w, " }")
}
