// Package ssa defines the SSA-form intermediate representation the
// core builds: values, instructions, basic blocks, and the function
// builder that assembles them. It mirrors qbe.c's value/block/func
// structs from the cproc C compiler backend, adapted to Go's explicit
// ownership model (no manual free, pointers stand in for the
// original's heap-allocated nodes).
package ssa

import "fmt"

// Name is a (string, id) pair. id == 0 means "externally visible —
// use the string verbatim"; id > 0 means "compiler-generated,
// disambiguated by id".
type Name struct {
	Str string
	ID  uint64
}

// External reports whether n denotes an external linkage name.
func (n Name) External() bool { return n.ID == 0 }

func (n Name) String() string {
	if n.External() {
		return n.Str
	}
	if n.Str == "" {
		return fmt.Sprintf(".%d", n.ID)
	}
	return fmt.Sprintf("%s.%d", n.Str, n.ID)
}
