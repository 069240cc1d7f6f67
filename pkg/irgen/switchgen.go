package irgen

import (
	"sort"

	"github.com/raymyers/qbessa/pkg/ctypes"
	"github.com/raymyers/qbessa/pkg/ssa"
)

// caseTarget pairs a case's constant with the block its body was
// lowered into.
type caseTarget struct {
	Value uint64
	Blk   *ssa.Block
}

// funcswitch dispatches tag to the matching case block via a balanced
// binary search over the sorted case values, falling through to def
// when nothing matches — qbe.c's casesearch, generalized from a fixed
// jump table to an arbitrary set of (possibly sparse) case constants.
func (g *Gen) funcswitch(f *ssa.Function, tag *ssa.Value, cases []caseTarget, def *ssa.Block) {
	sorted := append([]caseTarget(nil), cases...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Value < sorted[j].Value })
	g.casesearch(f, tag, sorted, def)
}

// casesearch recursively halves entries, comparing tag against the
// midpoint's value and recursing into the matching half. A single
// remaining entry resolves to a direct equality test.
func (g *Gen) casesearch(f *ssa.Function, tag *ssa.Value, entries []caseTarget, def *ssa.Block) {
	if len(entries) == 0 {
		f.Jmp(def)
		return
	}
	if len(entries) == 1 {
		eq := f.Inst(eqOpFor(tag.Repr), ctypes.ReprI32, tag, ssa.MkIntConst(tag.Repr, entries[0].Value))
		f.Jnz(eq, entries[0].Blk, def)
		return
	}

	mid := len(entries) / 2
	ge := f.Inst(ugeOpFor(tag.Repr), ctypes.ReprI32, tag, ssa.MkIntConst(tag.Repr, entries[mid].Value))
	hi := g.Module.MkBlock("case_hi")
	lo := g.Module.MkBlock("case_lo")
	f.Jnz(ge, hi, lo)

	f.Label(lo)
	g.casesearch(f, tag, entries[:mid], def)

	f.Label(hi)
	g.casesearch(f, tag, entries[mid:], def)
}

func eqOpFor(r ctypes.Repr) ssa.InstKind {
	if r.Base == 'l' {
		return ssa.ICeql
	}
	return ssa.ICeqw
}

// ugeOpFor picks an unsigned "greater or equal" comparison to split
// the search range. Case labels are compile-time integer constants,
// never float, so only width matters here.
func ugeOpFor(r ctypes.Repr) ssa.InstKind {
	if r.Base == 'l' {
		return ssa.ICugel
	}
	return ssa.ICugew
}
