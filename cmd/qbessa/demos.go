package main

import (
	"github.com/raymyers/qbessa/pkg/cast"
	"github.com/raymyers/qbessa/pkg/ctypes"
	"github.com/raymyers/qbessa/pkg/irgen"
	"github.com/raymyers/qbessa/pkg/qbeemit"
	"github.com/raymyers/qbessa/pkg/ssa"
)

// demo builds and renders one of the end-to-end scenarios from spec §8
// directly onto a sink, since the lexer/parser that would turn real C
// source into a typed tree are out of scope for this core.
type demo struct {
	desc  string
	build func(g *irgen.Gen, p *qbeemit.Printer)
}

var demos = map[string]demo{
	"add":      {"int add(int a, int b) { return a + b; }", buildAdd},
	"bitfield": {"int setflag(struct flags *p) { return p->x = 5; }", buildBitfield},
	"switch":   {"int classify(int x) { switch (x) {...} }", buildSwitch},
	"globals":  {"struct point p = { .x = 1, .z = 3 }; (y zero-filled)", buildGlobals},
}

func emitFunc(g *irgen.Gen, p *qbeemit.Printer, f *ssa.Function) {
	p.EmitFunc(f, true)
}

// buildAdd is spec §8 scenario 1: both parameters are already int, so
// the parameter storage rule aliases them straight to their incoming
// temps and the body lowers to a single add instruction.
func buildAdd(g *irgen.Gen, p *qbeemit.Printer) {
	a := &cast.Decl{Kind: cast.DeclObject, Type: ctypes.Int()}
	b := &cast.Decl{Kind: cast.DeclObject, Type: ctypes.Int()}
	body := cast.Block{Stmts: []cast.Stmt{
		cast.Return{Value: cast.Binary{
			Op:  cast.OpAdd,
			L:   cast.Ident{Decl: a, Typ: ctypes.Int()},
			R:   cast.Ident{Decl: b, Typ: ctypes.Int()},
			Typ: ctypes.Int(),
		}},
	}}
	f := g.LowerFunc("add", ctypes.Int(), []*cast.Decl{a, b}, false, body)
	emitFunc(g, p, f)
}

// buildBitfield is spec §8 scenario 2: storing through a 3-bit field
// returns the truncated value a subsequent load would observe, not the
// raw right-hand side.
func buildBitfield(g *irgen.Gen, p *qbeemit.Printer) {
	flagsType := ctypes.Tstruct{
		Name:  "flags",
		Align: 4,
		Size:  4,
		Fields: []ctypes.Field{
			{Name: "x", Type: ctypes.UInt(), Offset: 0, Bits: ctypes.Bitfield{Before: 0, After: 29}},
		},
	}
	ptrDecl := &cast.Decl{Kind: cast.DeclObject, Type: ctypes.Pointer(flagsType)}
	store := cast.Assign{
		L: cast.Bitfield{
			Base: cast.Unary{Op: cast.OpDeref, Base: cast.Ident{Decl: ptrDecl, Typ: ctypes.Pointer(flagsType)}, Typ: flagsType},
			Bits: ctypes.Bitfield{Before: 0, After: 29},
			Typ:  ctypes.UInt(),
		},
		R:   cast.Const{IntVal: 5, Typ: ctypes.UInt()},
		Typ: ctypes.UInt(),
	}
	body := cast.Block{Stmts: []cast.Stmt{
		cast.Return{Value: cast.Cast{Base: store, Typ: ctypes.Int()}},
	}}
	f := g.LowerFunc("setflag", ctypes.Int(), []*cast.Decl{ptrDecl}, false, body)
	emitFunc(g, p, f)
}

// buildSwitch is spec §8 scenario 4: a dense switch lowers to a
// balanced comparison tree rather than a linear chain of ifs.
func buildSwitch(g *irgen.Gen, p *qbeemit.Printer) {
	xDecl := &cast.Decl{Kind: cast.DeclObject, Type: ctypes.Int()}
	body := cast.Block{Stmts: []cast.Stmt{
		cast.Switch{
			Tag: cast.Ident{Decl: xDecl, Typ: ctypes.Int()},
			Cases: []cast.SwitchCase{
				{Value: 1, Body: cast.Return{Value: cast.Const{IntVal: 10, Typ: ctypes.Int()}}},
				{Value: 2, Body: cast.Return{Value: cast.Const{IntVal: 20, Typ: ctypes.Int()}}},
				{Value: 3, Body: cast.Return{Value: cast.Const{IntVal: 30, Typ: ctypes.Int()}}},
				{Value: 4, Body: cast.Return{Value: cast.Const{IntVal: 40, Typ: ctypes.Int()}}},
			},
			Default: cast.Return{Value: cast.Const{IntVal: 0, Typ: ctypes.Int()}},
		},
		cast.Return{Value: cast.Const{IntVal: 0, Typ: ctypes.Int()}},
	}}
	f := g.LowerFunc("classify", ctypes.Int(), []*cast.Decl{xDecl}, false, body)
	emitFunc(g, p, f)
}

// buildGlobals is spec §8 scenario 3: a sparse file-scope initializer
// fills the gap between its two explicit members with zero.
func buildGlobals(g *irgen.Gen, p *qbeemit.Printer) {
	pointType := ctypes.Tstruct{
		Name:  "point3",
		Align: 4,
		Size:  12,
		Fields: []ctypes.Field{
			{Name: "x", Type: ctypes.Int(), Offset: 0},
			{Name: "y", Type: ctypes.Int(), Offset: 4},
			{Name: "z", Type: ctypes.Int(), Offset: 8},
		},
	}
	pieces := []cast.InitPiece{
		{Start: 0, End: 4, Expr: cast.Const{IntVal: 1, Typ: ctypes.Int()}},
		{Start: 8, End: 12, Expr: cast.Const{IntVal: 3, Typ: ctypes.Int()}},
	}
	items, err := g.GlobalInit(pointType, pieces)
	if err != nil {
		panic(err)
	}
	v := g.Module.MkGlobal("p", false)
	p.EmitData(v, true, items)
}
