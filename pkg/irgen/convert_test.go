package irgen

import (
	"testing"

	"github.com/raymyers/qbessa/pkg/ctypes"
	"github.com/raymyers/qbessa/pkg/ssa"
)

func TestConvertIdenticalTypesIsANoOp(t *testing.T) {
	g, f := newTestGen()
	v := ssa.MkIntConst(ctypes.ReprI32, 1)
	got := g.convert(f, ctypes.Int(), ctypes.Int(), v)
	if got != v {
		t.Error("converting between identical types should return the input unchanged")
	}
	if len(f.Start.Insts) != 0 {
		t.Errorf("expected no instructions for a same-type conversion, got %d", len(f.Start.Insts))
	}
}

func TestConvertWidensSignedShortToInt(t *testing.T) {
	g, f := newTestGen()
	v := ssa.MkIntConst(ctypes.ReprI16, 1)
	g.convert(f, ctypes.Int(), ctypes.Short(), v)
	if len(f.Start.Insts) != 1 || f.Start.Insts[0].Kind != ssa.IExtsh {
		t.Fatalf("expected a single extsh, got %v", f.Start.Insts)
	}
}

func TestConvertWidensUnsignedCharToInt(t *testing.T) {
	g, f := newTestGen()
	v := ssa.MkIntConst(ctypes.ReprI8, 1)
	g.convert(f, ctypes.Int(), ctypes.UChar(), v)
	if len(f.Start.Insts) != 1 || f.Start.Insts[0].Kind != ssa.IExtub {
		t.Fatalf("expected a single extub, got %v", f.Start.Insts)
	}
}

func TestConvertNarrowsIntToShortViaCopy(t *testing.T) {
	g, f := newTestGen()
	v := ssa.MkIntConst(ctypes.ReprI32, 1)
	g.convert(f, ctypes.Short(), ctypes.Int(), v)
	if len(f.Start.Insts) != 1 || f.Start.Insts[0].Kind != ssa.ICopy {
		t.Fatalf("expected a copy for a narrowing conversion, got %v", f.Start.Insts)
	}
}

func TestConvertIntToBoolComparesAgainstZero(t *testing.T) {
	g, f := newTestGen()
	v := ssa.MkIntConst(ctypes.ReprI32, 1)
	g.convert(f, ctypes.Bool(), ctypes.Int(), v)
	if len(f.Start.Insts) != 1 || f.Start.Insts[0].Kind != ssa.ICnew {
		t.Fatalf("expected a single cnew, got %v", f.Start.Insts)
	}
}

func TestConvertToVoidYieldsNil(t *testing.T) {
	g, f := newTestGen()
	v := ssa.MkIntConst(ctypes.ReprI32, 1)
	if got := g.convert(f, ctypes.Void(), ctypes.Int(), v); got != nil {
		t.Errorf("expected nil for a void destination, got %v", got)
	}
}

func TestConvertSmallUnsignedIntToFloatUsesFastPath(t *testing.T) {
	g, f := newTestGen()
	v := ssa.MkIntConst(ctypes.ReprI32, 1)
	g.convert(f, ctypes.Float(), ctypes.UInt(), v)
	if len(f.Start.Insts) != 2 {
		t.Fatalf("expected extuw+sltof, got %v", f.Start.Insts)
	}
	if f.Start.Insts[0].Kind != ssa.IExtuw || f.Start.Insts[1].Kind != ssa.ISltof {
		t.Errorf("unexpected instruction sequence: %v", f.Start.Insts)
	}
}

func TestConvertLargeUnsignedLongToDoubleBuildsJoinBlock(t *testing.T) {
	g, f := newTestGen()
	b := g.Module.MkBlock("body")
	f.Label(b)
	v := ssa.MkIntConst(ctypes.ReprI64, 1)
	g.convert(f, ctypes.Double(), ctypes.Tlong{Sign: ctypes.Unsigned}, v)

	n := 0
	for blk := f.Start; blk != nil; blk = blk.Next {
		n++
	}
	if n < 4 {
		t.Errorf("expected small/big/join blocks for the round-to-odd path, got %d blocks", n)
	}
}

func TestConvertDoubleToFloatTruncates(t *testing.T) {
	g, f := newTestGen()
	v := ssa.MkFltConst(ctypes.ReprF64, 1)
	g.convert(f, ctypes.Float(), ctypes.Double(), v)
	if len(f.Start.Insts) != 1 || f.Start.Insts[0].Kind != ssa.ITruncd {
		t.Fatalf("expected a single truncd, got %v", f.Start.Insts)
	}
}
