package qbeemit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/raymyers/qbessa/pkg/ctypes"
	"github.com/raymyers/qbessa/pkg/ssa"
)

func TestEmitFuncSimpleAdd(t *testing.T) {
	m := ssa.NewModule()
	f := ssa.NewFunction(m, "add", ctypes.Int())
	a := ssa.MkIntConst(ctypes.ReprI32, 1)
	b := ssa.MkIntConst(ctypes.ReprI32, 2)
	res := f.Inst(ssa.IAdd, ctypes.ReprI32, a, b)
	f.Ret(res)

	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.EmitFunc(f, true)

	out := buf.String()
	if !strings.Contains(out, "export function") {
		t.Errorf("expected exported function header, got:\n%s", out)
	}
	if !strings.Contains(out, "$add") {
		t.Errorf("expected function symbol, got:\n%s", out)
	}
	if !strings.Contains(out, "add 1, 2") {
		t.Errorf("expected add instruction, got:\n%s", out)
	}
	if !strings.Contains(out, "ret") {
		t.Errorf("expected ret terminator, got:\n%s", out)
	}
}

func TestEmitFuncRendersParamsAndVararg(t *testing.T) {
	m := ssa.NewModule()
	f := ssa.NewFunction(m, "printf", ctypes.Int())
	f.Vararg = true
	f.AddParam(ctypes.Pointer(ctypes.Char()), ctypes.ReprPtr)
	f.Ret(ssa.MkIntConst(ctypes.ReprI32, 0))

	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.EmitFunc(f, true)

	out := buf.String()
	if !strings.Contains(out, "$printf(l %") {
		t.Errorf("expected a rendered pointer parameter, got:\n%s", out)
	}
	if !strings.Contains(out, ", ...)") {
		t.Errorf("expected a trailing vararg marker, got:\n%s", out)
	}
}

func TestEmitJumpVariants(t *testing.T) {
	m := ssa.NewModule()
	b1 := m.MkBlock("then")
	b2 := m.MkBlock("else")

	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.EmitJump(&ssa.Jump{Kind: ssa.JJmp, Blk: [2]*ssa.Block{b1, nil}})
	if got := buf.String(); !strings.Contains(got, "jmp @then") {
		t.Errorf("jmp = %q", got)
	}

	buf.Reset()
	cond := ssa.MkIntConst(ctypes.ReprI32, 1)
	p.EmitJump(&ssa.Jump{Kind: ssa.JJnz, Arg: cond, Blk: [2]*ssa.Block{b1, b2}})
	if got := buf.String(); !strings.Contains(got, "jnz 1, @then.1, @else.2") {
		t.Errorf("jnz = %q", got)
	}

	buf.Reset()
	p.EmitJump(&ssa.Jump{Kind: ssa.JRet})
	if got := buf.String(); strings.TrimSpace(got) != "ret" {
		t.Errorf("bare ret = %q", got)
	}
}

func TestEmitDataStringLiteral(t *testing.T) {
	m := ssa.NewModule()
	v := m.MkGlobal("str", true)

	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.EmitData(v, false, []DataItem{
		{Bytes: []byte("hi")},
		{Bytes: []byte{0}},
	})

	out := buf.String()
	if !strings.HasPrefix(out, "data ") {
		t.Errorf("expected data definition, got:\n%s", out)
	}
	if strings.Contains(out, "export") {
		t.Errorf("non-global data should not be exported, got:\n%s", out)
	}
}

func TestEmitTypeStructOnlyOnce(t *testing.T) {
	st := ctypes.Tstruct{
		Name:   "Point",
		Fields: []ctypes.Field{{Name: "x", Type: ctypes.Int()}, {Name: "y", Type: ctypes.Int()}},
		Size:   8,
		Align:  4,
	}

	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.EmitType(st)
	p.EmitType(st)

	out := buf.String()
	if strings.Count(out, "type :Point") != 1 {
		t.Errorf("expected a single type declaration, got:\n%s", out)
	}
}
