package ssa

// Instruction is a three-address op: res = kind arg0, arg1. Res is
// the zero Value (Kind == VNone) for instructions with no result
// (stores, IARG, IVASTART).
type Instruction struct {
	Kind InstKind
	Res  Value
	Arg  [2]*Value
}

// JumpKind tags a block terminator.
type JumpKind int

const (
	JNone JumpKind = iota
	JJmp
	JJnz
	JRet
)

// Jump is a basic block's terminator.
type Jump struct {
	Kind JumpKind
	Arg  *Value   // JJnz condition, JRet value (nil for void return)
	Blk  [2]*Block // JJmp: Blk[0]; JJnz: Blk[0]=then, Blk[1]=else
}

// Phi is a two-operand merge at a block's entry. Val[i] is the value
// arriving from Blk[i]; this IR only ever needs two incoming edges,
// branches needing more chain additional join blocks.
type Phi struct {
	Blk [2]*Block
	Val [2]*Value
	Res Value
}

// Set reports whether this phi was actually populated (its result has
// a kind, i.e. functemp was called on it).
func (p *Phi) Set() bool { return p.Res.Kind != VNone }

// Block is a basic block: a label, its straight-line instructions, an
// optional phi at entry, and exactly one terminator once construction
// of the block is complete. Blocks chain in emission order via Next.
type Block struct {
	Label Name
	Insts []*Instruction
	Phi   Phi
	Jump  Jump
	Next  *Block
}
