package ssa

import (
	"testing"

	"github.com/raymyers/qbessa/pkg/ctypes"
)

func TestInstReturnsNilOnTerminatedBlock(t *testing.T) {
	m := NewModule()
	f := NewFunction(m, "f", ctypes.Void())
	f.Ret(nil)
	if v := f.Inst(IAdd, ctypes.ReprI32, nil, nil); v != nil {
		t.Errorf("Inst on terminated block = %v, want nil", v)
	}
	if len(f.End.Insts) != 0 {
		t.Errorf("terminated block should not gain instructions, got %d", len(f.End.Insts))
	}
}

func TestInstAppendsAndStampsTemp(t *testing.T) {
	m := NewModule()
	f := NewFunction(m, "f", ctypes.Void())
	a := MkIntConst(ctypes.ReprI32, 1)
	b := MkIntConst(ctypes.ReprI32, 2)
	res := f.Inst(IAdd, ctypes.ReprI32, a, b)
	if res == nil {
		t.Fatal("Inst returned nil on open block")
	}
	if res.Kind != VTemp {
		t.Errorf("result kind = %v, want VTemp", res.Kind)
	}
	if len(f.End.Insts) != 1 {
		t.Fatalf("expected 1 instruction, got %d", len(f.End.Insts))
	}
	if f.End.Insts[0].Kind != IAdd {
		t.Errorf("inst kind = %v, want IAdd", f.End.Insts[0].Kind)
	}
}

func TestJumpIdempotence(t *testing.T) {
	m := NewModule()
	f := NewFunction(m, "f", ctypes.Void())
	b1 := m.MkBlock("x")
	b2 := m.MkBlock("y")
	f.Jmp(b1)
	f.Jmp(b2) // should be a no-op: jump already set
	if f.End.Jump.Kind != JJmp {
		t.Fatalf("jump kind = %v, want JJmp", f.End.Jump.Kind)
	}
	if f.End.Jump.Blk[0] != b1 {
		t.Errorf("second Jmp call overwrote the first terminator")
	}
}

func TestLabelAdvancesEnd(t *testing.T) {
	m := NewModule()
	f := NewFunction(m, "f", ctypes.Void())
	start := f.End
	b := m.MkBlock("body")
	f.Label(b)
	if f.End != b {
		t.Error("Label should make b the new end")
	}
	if start.Next != b {
		t.Error("Label should chain b after the previous end")
	}
}

func TestAllocPrependsToStart(t *testing.T) {
	m := NewModule()
	f := NewFunction(m, "f", ctypes.Void())
	b := m.MkBlock("body")
	f.Label(b)
	f.Inst(IAdd, ctypes.ReprI32, MkIntConst(ctypes.ReprI32, 1), MkIntConst(ctypes.ReprI32, 2))

	addr, err := f.Alloc(4, 4, 0)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if addr.Repr != ctypes.ReprPtr {
		t.Errorf("alloc result repr = %v, want iptr", addr.Repr)
	}
	if len(f.Start.Insts) != 1 {
		t.Fatalf("expected alloc to land in start block, got %d insts there", len(f.Start.Insts))
	}
	if f.Start.Insts[0].Kind != IAlloc4 {
		t.Errorf("alloc kind = %v, want IAlloc4", f.Start.Insts[0].Kind)
	}
}

func TestAllocRejectsUnderAlignedDecl(t *testing.T) {
	m := NewModule()
	f := NewFunction(m, "f", ctypes.Void())
	if _, err := f.Alloc(8, 8, 4); err == nil {
		t.Error("expected a user error for align < typeAlign")
	}
}

func TestAllocOverStrictAlignmentPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for alignment > 16")
		}
	}()
	m := NewModule()
	f := NewFunction(m, "f", ctypes.Void())
	f.Alloc(32, 32, 32)
}

func TestGotoLazyAndShared(t *testing.T) {
	m := NewModule()
	f := NewFunction(m, "f", ctypes.Void())
	g1 := f.Goto(m, "done")
	g2 := f.Goto(m, "done")
	if g1 != g2 {
		t.Error("repeated Goto calls for the same label should share a GotoLabel")
	}
}

func TestMkBlockIDsAreUniquePerModule(t *testing.T) {
	m := NewModule()
	b1 := m.MkBlock("x")
	b2 := m.MkBlock("x")
	if b1.Label.ID == b2.Label.ID {
		t.Error("blocks with the same name should still get distinct ids")
	}
}

func TestMkGlobalPrivateVsExternal(t *testing.T) {
	m := NewModule()
	ext := m.MkGlobal("printf", false)
	if !ext.Name.External() {
		t.Error("non-private global should be external (id 0)")
	}
	priv := m.MkGlobal("str", true)
	if priv.Name.External() {
		t.Error("private global should have a nonzero id")
	}
}

func TestAddParamAppendsInOrder(t *testing.T) {
	m := NewModule()
	f := NewFunction(m, "f", ctypes.Int())
	a := f.AddParam(ctypes.Int(), ctypes.ReprI32)
	b := f.AddParam(ctypes.Double(), ctypes.ReprF64)
	if len(f.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(f.Params))
	}
	if f.Params[0].Value != a || f.Params[1].Value != b {
		t.Error("params should be recorded in call order")
	}
	if f.Params[0].Value.Kind != VTemp {
		t.Error("a param's value should be a fresh temp")
	}
}

func TestNewFunctionAssignsPrivateNameGlobal(t *testing.T) {
	m := NewModule()
	f := NewFunction(m, "main", ctypes.Void())
	if f.NameGlobal == nil {
		t.Fatal("NameGlobal should be set")
	}
	if f.NameGlobal.Name.External() {
		t.Error("__func__ global should be private, not external")
	}
	if f.NameEmitted {
		t.Error("__func__ should not be emitted until first referenced")
	}
}
