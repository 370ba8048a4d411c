package solver

import "fmt"

// Constraint is a flat sequence of literals plus the metadata needed by
// propagation and cleanup. Positions 0 and 1 are the two watched literals;
// the remainder is unordered, exactly as in gophersat's Clause.
//
// Clauses and terms share this representation (spec.md §3: "a Constraint:
// a flat sequence of literals plus metadata (type, learnt flag, activity,
// LBD, ...)"); which one a Constraint is follows from the ConstraintType it
// was added to the database under, not from a field on the struct itself.
type Constraint struct {
	lits     []Lit
	learnt   bool
	marked   bool
	lbdValue uint32
	activity float32
}

func newConstraint(lits []Lit, learnt bool) *Constraint {
	return &Constraint{lits: lits, learnt: learnt}
}

// Len returns the number of literals in the constraint.
func (c *Constraint) Len() int { return len(c.lits) }

// Get returns the ith literal.
func (c *Constraint) Get(i int) Lit { return c.lits[i] }

// Set overwrites the ith literal.
func (c *Constraint) Set(i int, l Lit) { c.lits[i] = l }

// swap exchanges the ith and jth literals, keeping the two-watcher
// invariant (positions 0/1) meaningful after the call.
func (c *Constraint) swap(i, j int) { c.lits[i], c.lits[j] = c.lits[j], c.lits[i] }

// Learnt is true iff the constraint was derived by the learning engine
// rather than supplied with the input problem.
func (c *Constraint) Learnt() bool { return c.learnt }

// Marked is true iff the constraint has been marked for deletion by a
// cleanup pass but not yet physically removed.
func (c *Constraint) Marked() bool { return c.marked }

func (c *Constraint) mark()   { c.marked = true }
func (c *Constraint) unmark() { c.marked = false }

func (c *Constraint) lbd() int      { return int(c.lbdValue) }
func (c *Constraint) setLbd(v int)  { c.lbdValue = uint32(v) }

func (c *Constraint) shrink(newLen int) { c.lits = c.lits[:newLen] }

func (c *Constraint) String() string {
	s := "("
	for i, l := range c.lits {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%d", l.DIMACS())
	}
	return s + ")"
}
