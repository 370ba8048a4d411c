package solver

import "fmt"

// QuantifierBlock is one alternating block of the parsed prefix: all of its
// variables share a quantifier type and are adjacent in the prefix.
type QuantifierBlock struct {
	Type QType
	Vars []Var
}

// Problem is the parsed representation a driver is built from (spec.md §6):
// a quantifier prefix plus a flat list of input clauses, generalized from
// gophersat's Problem to also carry the prefix (QCIR circuits flatten into additional clauses and auxiliary existential
// variables during parsing, so a Problem never itself holds terms).
type Problem struct {
	NbVars    int
	Prefix    []QuantifierBlock
	Auxiliary []bool // per-variable, true for QCIR-introduced Tseitin variables
	Clauses   [][]Lit
}

// QTypeOf returns the quantifier type of variable v (0-based) per the parsed
// prefix.
func (pb *Problem) QTypeOf(v Var) QType {
	for _, blk := range pb.Prefix {
		for _, bv := range blk.Vars {
			if bv == v {
				return blk.Type
			}
		}
	}
	return Existential
}

func (pb *Problem) String() string {
	return fmt.Sprintf("QBF problem: %d variables, %d clauses, %d quantifier blocks", pb.NbVars, len(pb.Clauses), len(pb.Prefix))
}
