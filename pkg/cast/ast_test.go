package cast

import (
	"testing"

	"github.com/raymyers/qbessa/pkg/ctypes"
)

func TestExpressionTypes(t *testing.T) {
	intTyp := ctypes.Int()
	tests := []struct {
		name string
		expr Expr
		want ctypes.Type
	}{
		{
			"Const",
			Const{IntVal: 42, Typ: intTyp},
			intTyp,
		},
		{
			"Ident",
			Ident{Decl: &Decl{Kind: DeclObject, Type: intTyp}, Typ: intTyp},
			intTyp,
		},
		{
			"Unary deref",
			Unary{Op: OpDeref, Base: Ident{Decl: &Decl{Type: ctypes.Pointer(intTyp)}, Typ: ctypes.Pointer(intTyp)}, Typ: intTyp},
			intTyp,
		},
		{
			"Binary",
			Binary{Op: OpAdd, L: Const{IntVal: 1, Typ: intTyp}, R: Const{IntVal: 2, Typ: intTyp}, Typ: intTyp},
			intTyp,
		},
		{
			"Cast",
			Cast{Base: Const{IntVal: 1, Typ: intTyp}, Typ: ctypes.Long()},
			ctypes.Long(),
		},
		{
			"Comma empty",
			Comma{},
			ctypes.Void(),
		},
		{
			"Comma non-empty yields last",
			Comma{Exprs: []Expr{Const{IntVal: 1, Typ: intTyp}, Const{IntVal: 2, Typ: ctypes.Long()}}},
			ctypes.Long(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.expr.Type()
			if !ctypes.Equal(got, tt.want) {
				t.Errorf("Type() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTempSharesValueAcrossReferences(t *testing.T) {
	// Desugaring `a[i++] += x` binds one *Temp for the address, used
	// both in the read side and the write side of the expansion.
	tmp := &Temp{Typ: ctypes.Int()}
	uses := []Expr{tmp, tmp}

	assign := Assign{L: tmp, R: Const{IntVal: 7, Typ: ctypes.Int()}, Typ: ctypes.Int()}
	if assign.L != Expr(tmp) {
		t.Fatalf("Assign.L should be the same *Temp pointer")
	}

	// Simulate what irgen does on EXPRASSIGN into a *Temp: stash the
	// value directly on the node rather than through a store.
	tmp.Value = nil // no ssa.Value constructed in this unit test
	for _, u := range uses {
		if u.(*Temp) != tmp {
			t.Error("every reference to the temp should be the same pointer")
		}
	}
}

func TestBitfieldWrapsLvalueBase(t *testing.T) {
	base := Ident{Decl: &Decl{Type: ctypes.UInt()}, Typ: ctypes.UInt()}
	bf := Bitfield{Base: base, Bits: ctypes.Bitfield{Before: 3, After: 27}, Typ: ctypes.UInt()}
	if !bf.Bits.IsSet() {
		t.Error("Bits should be a set bit-field descriptor")
	}
	if _, ok := bf.Base.(Ident); !ok {
		t.Errorf("Base should stay an Ident, got %T", bf.Base)
	}
}

func TestStmtConstruction(t *testing.T) {
	// while (x > 0) { x = x - 1; }
	intTyp := ctypes.Int()
	xDecl := &Decl{Kind: DeclObject, Type: intTyp}
	loop := While{
		Cond: Binary{Op: OpGt, L: Ident{Decl: xDecl, Typ: intTyp}, R: Const{Typ: intTyp}},
		Body: Block{Stmts: []Stmt{
			ExprStmt{X: Assign{
				L:   Ident{Decl: xDecl, Typ: intTyp},
				R:   Binary{Op: OpSub, L: Ident{Decl: xDecl, Typ: intTyp}, R: Const{IntVal: 1, Typ: intTyp}, Typ: intTyp},
				Typ: intTyp,
			}},
		}},
	}

	body, ok := loop.Body.(Block)
	if !ok {
		t.Fatalf("loop body should be Block, got %T", loop.Body)
	}
	if len(body.Stmts) != 1 {
		t.Fatalf("expected 1 statement in block, got %d", len(body.Stmts))
	}
	if _, ok := body.Stmts[0].(ExprStmt); !ok {
		t.Errorf("statement should be ExprStmt")
	}
}

func TestSwitchCasesAndDefault(t *testing.T) {
	sw := Switch{
		Tag: Ident{Decl: &Decl{Type: ctypes.Int()}, Typ: ctypes.Int()},
		Cases: []SwitchCase{
			{Value: 1, Body: Break{}},
			{Value: 2, Body: Break{}},
		},
		Default: Break{},
	}
	if len(sw.Cases) != 2 {
		t.Errorf("cases = %d, want 2", len(sw.Cases))
	}
	if sw.Default == nil {
		t.Error("default should be set")
	}
}

func TestInitPieceRange(t *testing.T) {
	p := InitPiece{Start: 4, End: 8, Expr: Const{IntVal: 1, Typ: ctypes.Int()}}
	if p.End-p.Start != 4 {
		t.Errorf("init piece width = %d, want 4", p.End-p.Start)
	}
	if p.Bits.IsSet() {
		t.Error("zero-value Bits should not report as set")
	}
}
