package solver

import "fmt"

// QType is the quantifier type of a variable.
type QType byte

const (
	// Existential variables are chosen to satisfy the matrix.
	Existential QType = iota
	// Universal variables range over all assignments.
	Universal
)

func (q QType) String() string {
	if q == Existential {
		return "exists"
	}
	return "forall"
}

// Opposite returns the other quantifier type.
func (q QType) Opposite() QType {
	if q == Existential {
		return Universal
	}
	return Existential
}

// ConstraintType distinguishes clauses (disjunctions, falsified by a total
// assignment that makes every literal false) from terms (conjunctions, dual to
// clauses under quantifier complementation).
type ConstraintType byte

const (
	// ClauseType marks constraints learned from, and propagated as,
	// clauses: existential literals are primary.
	ClauseType ConstraintType = iota
	// TermType marks constraints learned from, and propagated as, terms:
	// universal literals are primary.
	TermType
)

func (t ConstraintType) String() string {
	if t == ClauseType {
		return "clause"
	}
	return "term"
}

// primaryType returns the quantifier type that is primary for t.
func (t ConstraintType) primaryType() QType {
	if t == ClauseType {
		return Existential
	}
	return Universal
}

// constraintTypes enumerates both constraint kinds, for symmetric loops.
var constraintTypes = [2]ConstraintType{ClauseType, TermType}

// Status is the outcome of a solver run or a propagation step.
type Status byte

const (
	// Unknown means the search has not yet determined a verdict.
	Unknown Status = iota
	// Sat means the formula is satisfiable.
	Sat
	// Unsat means the formula is unsatisfiable.
	Unsat
	// Undef means the search stopped before reaching a verdict: it was
	// interrupted, or no decision candidate was left.
	Undef
)

func (s Status) String() string {
	switch s {
	case Sat:
		return "SAT"
	case Unsat:
		return "UNSAT"
	case Undef:
		return "UNDEF"
	default:
		return "UNKNOWN"
	}
}

// Var is a 1-based variable identifier internally stored 0-based; use
// IntToVar/Var.DIMACS to convert to/from 1-based external identifiers.
type Var int32

// Lit is a literal: 2*(v) + (phase ? 1 : 0), where v is the 0-based variable
// id. LitUndef is a dedicated sentinel that never denotes a real literal.
type Lit int32

// LitUndef denotes the absence of a literal (e.g. "no forced literal").
const LitUndef Lit = -1

// VarUndef denotes the absence of a variable.
const VarUndef Var = -1

// IntToLit converts a signed 1-based DIMACS literal to a Lit.
func IntToLit(i int) Lit {
	if i < 0 {
		return Lit(2*(-i-1) + 1)
	}
	return Lit(2 * (i - 1))
}

// IntToVar converts a 1-based DIMACS variable id to a Var.
func IntToVar(i int) Var {
	return Var(i - 1)
}

// Var returns the variable underlying l.
func (l Lit) Var() Var {
	return Var(l / 2)
}

// Lit returns the positive literal of v.
func (v Var) Lit() Lit {
	return Lit(v * 2)
}

// SignedLit returns the literal of v, negated if neg, positive otherwise.
func (v Var) SignedLit(neg bool) Lit {
	if neg {
		return Lit(v*2) + 1
	}
	return Lit(v * 2)
}

// IsPositive is true iff l is the positive phase of its variable.
func (l Lit) IsPositive() bool {
	return l&1 == 0
}

// Negation returns the complementary literal.
func (l Lit) Negation() Lit {
	return l ^ 1
}

// DIMACS returns the signed 1-based external representation of l.
func (l Lit) DIMACS() int {
	res := int(l/2) + 1
	if !l.IsPositive() {
		return -res
	}
	return res
}

// DIMACS returns the 1-based external representation of v.
func (v Var) DIMACS() int {
	return int(v) + 1
}

func (l Lit) String() string {
	return fmt.Sprintf("%d", l.DIMACS())
}

// Assignment is the truth value of a variable under the current trail.
type Assignment int8

const (
	// AssignUndef means the variable is currently unassigned.
	AssignUndef Assignment = 0
	// AssignTrue means the variable is currently assigned true.
	AssignTrue Assignment = 1
	// AssignFalse means the variable is currently assigned false.
	AssignFalse Assignment = -1
)

// litAssignment returns the assignment a literal would need to be true.
func litAssignment(l Lit) Assignment {
	if l.IsPositive() {
		return AssignTrue
	}
	return AssignFalse
}
