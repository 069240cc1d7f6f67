package irgen

import (
	"github.com/raymyers/qbessa/pkg/cast"
	"github.com/raymyers/qbessa/pkg/ssa"
)

// loopCtx tracks the break/continue targets of the innermost enclosing
// loop or switch, mirroring cshmgen's StmtTranslator's Sexit handling
// but threaded explicitly instead of through a depth counter, since
// here the targets differ for loops (continue re-tests the condition)
// and switches (continue is not valid but break still exits).
type loopCtx struct {
	breakBlk    *ssa.Block
	continueBlk *ssa.Block
	up          *loopCtx
}

// stmt lowers a statement, appending to f's current block and
// returning control to the caller with f.End positioned at whatever
// comes after (which may already be terminated, e.g. after a return).
func (g *Gen) stmt(f *ssa.Function, s cast.Stmt, loop *loopCtx) {
	switch st := s.(type) {
	case cast.Block:
		for _, sub := range st.Stmts {
			g.stmt(f, sub, loop)
		}

	case cast.ExprStmt:
		g.expr(f, st.X)

	case cast.If:
		g.stmtIf(f, st, loop)

	case cast.While:
		g.stmtWhile(f, st, loop)

	case cast.DoWhile:
		g.stmtDoWhile(f, st, loop)

	case cast.For:
		g.stmtFor(f, st, loop)

	case cast.Return:
		var v *ssa.Value
		if st.Value != nil {
			v = g.expr(f, st.Value)
			v = g.convert(f, f.Type, st.Value.Type(), v)
		}
		f.Ret(v)

	case cast.Break:
		assertf(loop != nil && loop.breakBlk != nil, "break statement not within a loop or switch")
		f.Jmp(loop.breakBlk)

	case cast.Continue:
		assertf(loop != nil && findContinue(loop) != nil, "continue statement not within a loop")
		f.Jmp(findContinue(loop))

	case cast.Goto:
		gl := f.Goto(g.Module, st.Label)
		f.Jmp(gl.Label)

	case cast.Label:
		gl := f.Goto(g.Module, st.Name)
		f.Jmp(gl.Label)
		f.Label(gl.Label)
		g.stmt(f, st.Stmt, loop)

	case cast.Switch:
		g.stmtSwitch(f, st, loop)

	default:
		panic("internal error: unhandled statement kind")
	}
}

// findContinue walks outward past switch contexts (which don't carry
// a continue target of their own) to the nearest enclosing loop's.
func findContinue(loop *loopCtx) *ssa.Block {
	for l := loop; l != nil; l = l.up {
		if l.continueBlk != nil {
			return l.continueBlk
		}
	}
	return nil
}

func (g *Gen) stmtIf(f *ssa.Function, st cast.If, loop *loopCtx) {
	then := g.Module.MkBlock("if_then")
	join := g.Module.MkBlock("if_join")
	els := join
	if st.Else != nil {
		els = g.Module.MkBlock("if_else")
	}

	c := g.expr(f, st.Cond)
	f.Jnz(c, then, els)

	f.Label(then)
	g.stmt(f, st.Then, loop)
	f.Jmp(join)

	if st.Else != nil {
		f.Label(els)
		g.stmt(f, st.Else, loop)
		f.Jmp(join)
	}

	f.Label(join)
}

func (g *Gen) stmtWhile(f *ssa.Function, st cast.While, loop *loopCtx) {
	cond := g.Module.MkBlock("while_cond")
	body := g.Module.MkBlock("while_body")
	exit := g.Module.MkBlock("while_exit")

	f.Jmp(cond)
	f.Label(cond)
	c := g.expr(f, st.Cond)
	f.Jnz(c, body, exit)

	f.Label(body)
	g.stmt(f, st.Body, &loopCtx{breakBlk: exit, continueBlk: cond, up: loop})
	f.Jmp(cond)

	f.Label(exit)
}

func (g *Gen) stmtDoWhile(f *ssa.Function, st cast.DoWhile, loop *loopCtx) {
	body := g.Module.MkBlock("do_body")
	cond := g.Module.MkBlock("do_cond")
	exit := g.Module.MkBlock("do_exit")

	f.Jmp(body)
	f.Label(body)
	g.stmt(f, st.Body, &loopCtx{breakBlk: exit, continueBlk: cond, up: loop})
	f.Jmp(cond)

	f.Label(cond)
	c := g.expr(f, st.Cond)
	f.Jnz(c, body, exit)

	f.Label(exit)
}

func (g *Gen) stmtFor(f *ssa.Function, st cast.For, loop *loopCtx) {
	if st.Init != nil {
		g.stmt(f, st.Init, loop)
	}

	cond := g.Module.MkBlock("for_cond")
	body := g.Module.MkBlock("for_body")
	post := g.Module.MkBlock("for_post")
	exit := g.Module.MkBlock("for_exit")

	f.Jmp(cond)
	f.Label(cond)
	if st.Cond != nil {
		c := g.expr(f, st.Cond)
		f.Jnz(c, body, exit)
	} else {
		f.Jmp(body)
	}

	f.Label(body)
	g.stmt(f, st.Body, &loopCtx{breakBlk: exit, continueBlk: post, up: loop})
	f.Jmp(post)

	f.Label(post)
	if st.Post != nil {
		g.expr(f, st.Post)
	}
	f.Jmp(cond)

	f.Label(exit)
}

// stmtSwitch lowers every case body into its own block, dispatches
// via funcswitch, and joins at a shared exit that doubles as the
// switch's break target. Continue is not affected by entering a
// switch — findContinue skips over this loopCtx frame since
// continueBlk is left nil.
func (g *Gen) stmtSwitch(f *ssa.Function, st cast.Switch, loop *loopCtx) {
	tag := g.expr(f, st.Tag)
	tag = g.convert(f, ctypesULong, st.Tag.Type(), tag)

	exit := g.Module.MkBlock("switch_exit")
	def := exit
	if st.Default != nil {
		def = g.Module.MkBlock("switch_default")
	}

	targets := make([]caseTarget, len(st.Cases))
	bodies := make([]*ssa.Block, len(st.Cases))
	seen := make(map[uint64]bool, len(st.Cases))
	for i, c := range st.Cases {
		if seen[c.Value] {
			panic(userErrorf("duplicate case value %d", c.Value))
		}
		seen[c.Value] = true
		bodies[i] = g.Module.MkBlock("switch_case")
		targets[i] = caseTarget{Value: c.Value, Blk: bodies[i]}
	}

	g.funcswitch(f, tag, targets, def)

	inner := &loopCtx{breakBlk: exit, up: loop}
	for i, c := range st.Cases {
		f.Label(bodies[i])
		g.stmt(f, c.Body, inner)
		f.Jmp(exit)
	}
	if st.Default != nil {
		f.Label(def)
		g.stmt(f, st.Default, inner)
		f.Jmp(exit)
	}

	f.Label(exit)
}
