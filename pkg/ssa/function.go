package ssa

import (
	"fmt"

	"github.com/raymyers/qbessa/pkg/ctypes"
)

// GotoLabel is a forward- or backward-referenceable goto target,
// inserted lazily on first mention (either a goto or the matching
// label statement, whichever translates first).
type GotoLabel struct {
	Label *Block
}

// Param is one incoming parameter: its ABI-visible type and the SSA
// temp bound to its value at entry.
type Param struct {
	Type  ctypes.Type
	Value *Value
}

// Function owns a function's blocks and temp-name counter. Start is
// always the special block that local stack allocations get prepended
// to, regardless of where in the source they were declared; End is
// the currently appendable block and advances as Label is called.
type Function struct {
	Name   string
	Type   ctypes.Type
	Params []Param
	Vararg bool

	Start, End *Block
	Gotos      map[string]*GotoLabel

	lastID uint64

	// NameGlobal/NameEmitted implement the lazy "__func__" data latch:
	// the first lvalue reference to the function's own name triggers a
	// one-time data definition. A decl resolves to this function's own
	// name when its Value pointer equals NameGlobal.
	NameGlobal  *Value
	NameEmitted bool
}

// NewFunction creates a function whose block chain starts at a single
// "start" block (both Start and End point to it).
func NewFunction(m *Module, name string, t ctypes.Type) *Function {
	b := m.MkBlock("start")
	return &Function{
		Name:       name,
		Type:       t,
		Start:      b,
		End:        b,
		Gotos:      make(map[string]*GotoLabel),
		NameGlobal: m.MkGlobal("__func__", true),
	}
}

// temp stamps v as a fresh SSA temporary scoped to f. repr must be
// non-nil; a temp with no representation is an invariant violation in
// the caller, not something a user can trigger, so it panics.
func (f *Function) temp(v *Value, repr ctypes.Repr) {
	if repr == ctypes.ReprNone {
		panic("internal error: temp has no type")
	}
	f.lastID++
	v.Kind = VTemp
	v.Name = Name{ID: f.lastID}
	v.Repr = repr
}

// Inst appends an instruction to the current block and returns its
// result value, or nil if the current block is already terminated —
// the sole mechanism by which dead code after a return/goto/break is
// silently dropped (spec §4.3, §5).
func (f *Function) Inst(op InstKind, repr ctypes.Repr, arg0, arg1 *Value) *Value {
	if f.End.Jump.Kind != JNone {
		return nil
	}
	inst := &Instruction{Kind: op, Arg: [2]*Value{arg0, arg1}}
	if repr != ctypes.ReprNone {
		f.temp(&inst.Res, repr)
	}
	f.End.Insts = append(f.End.Insts, inst)
	return &inst.Res
}

// allocOp picks the IALLOCn opcode for an alignment, coalescing 1/2
// up to 4 as qbe.c does.
func allocOp(align int64) (InstKind, error) {
	switch align {
	case 1, 2, 4:
		return IAlloc4, nil
	case 8:
		return IAlloc8, nil
	case 16:
		return IAlloc16, nil
	default:
		return INone, errOverAligned(align)
	}
}

type errOverAligned int64

func (e errOverAligned) Error() string {
	return fmt.Sprintf("internal error: invalid alignment: %d", int64(e))
}

// Alloc prepends a stack allocation to the start block and returns its
// address (repr iptr). align is the object's declared alignment (0
// meaning "use typeAlign"); it is a user error for align to be
// stricter-than-required in the wrong direction (smaller than
// typeAlign), and a fatal internal error to ask for more than 16-byte
// alignment.
func (f *Function) Alloc(size, typeAlign, align int64) (*Value, error) {
	if align == 0 {
		align = typeAlign
	} else if align < typeAlign {
		return nil, fmt.Errorf("object requires alignment %d, which is stricter than %d", typeAlign, align)
	}
	op, err := allocOp(align)
	if err != nil {
		panic(err.Error())
	}
	inst := &Instruction{Kind: op, Arg: [2]*Value{MkIntConst(ctypes.ReprI64, uint64(size)), nil}}
	f.temp(&inst.Res, ctypes.ReprPtr)
	f.Start.Insts = append([]*Instruction{inst}, f.Start.Insts...)
	return &inst.Res, nil
}

// AddParam declares an incoming parameter of the given type, stamps
// its entry value with a fresh temp, and returns it. Order of calls is
// the declared parameter order.
func (f *Function) AddParam(t ctypes.Type, repr ctypes.Repr) *Value {
	v := &Value{}
	f.temp(v, repr)
	f.Params = append(f.Params, Param{Type: t, Value: v})
	return v
}

// Label appends b to the block chain and makes it the new end.
func (f *Function) Label(b *Block) {
	f.End.Next = b
	f.End = b
}

// MkPhi stamps b's phi result with a fresh temp of the given repr and
// returns it. Callers fill in b.Phi.Blk/Val themselves before or after
// calling this; it only handles the id-stamping that funcexpr's
// callers (logical &&/||, ?:, utof/ftou's join blocks) all repeat.
func (f *Function) MkPhi(b *Block, repr ctypes.Repr) *Value {
	f.temp(&b.Phi.Res, repr)
	return &b.Phi.Res
}

// Jmp terminates the current block with an unconditional jump, unless
// it is already terminated.
func (f *Function) Jmp(l *Block) {
	b := f.End
	if b.Jump.Kind == JNone {
		b.Jump = Jump{Kind: JJmp, Blk: [2]*Block{l, nil}}
	}
}

// Jnz terminates the current block with a conditional branch, unless
// it is already terminated.
func (f *Function) Jnz(v *Value, l1, l2 *Block) {
	b := f.End
	if b.Jump.Kind == JNone {
		b.Jump = Jump{Kind: JJnz, Arg: v, Blk: [2]*Block{l1, l2}}
	}
}

// Ret terminates the current block with a return, unless it is
// already terminated.
func (f *Function) Ret(v *Value) {
	b := f.End
	if b.Jump.Kind == JNone {
		b.Jump = Jump{Kind: JRet, Arg: v}
	}
}

// Goto looks up or lazily creates the GotoLabel for name. Whichever of
// "goto name" or "name:" is translated first creates the entry; the
// other reuses it, so forward and backward references both resolve
// without a fixup pass.
func (f *Function) Goto(m *Module, name string) *GotoLabel {
	g, ok := f.Gotos[name]
	if !ok {
		g = &GotoLabel{Label: m.MkBlock(name)}
		f.Gotos[name] = g
	}
	return g
}

// Delete releases a function's blocks and instructions. Go's GC would
// reclaim them regardless, but this mirrors qbe.c's delfunc so that
// callers which rely on the "a discarded function's nodes are
// unreachable" lifecycle invariant (spec §3) have an explicit point
// where that becomes true rather than "eventually, whenever GC runs".
func (f *Function) Delete() {
	f.Start = nil
	f.End = nil
	f.Gotos = nil
}
