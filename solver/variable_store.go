package solver

// CRef is an opaque, stable handle to a constraint held by the constraint
// database. CRefUndef marks "no antecedent" (a decision, or an unassigned
// variable).
type CRef uint32

// CRefUndef is the antecedent of a decision literal or an unassigned
// variable.
const CRefUndef CRef = 0

// unassignCallback is invoked, in reverse-trail order, when a literal is
// unassigned by a backtrack. It receives the literal that was on the trail
// (not just the variable) so a heuristic can tell which phase is being
// abandoned. Subsystems register one each so they can restore their own
// state (watched dependency, decision candidacy) without the variable store
// knowing anything about them.
type unassignCallback func(l Lit)

// variableStore owns all per-variable assignment state: the trail,
// decision levels, antecedents and quantifier types. It is the sole owner
// of this state; every other subsystem reads it through the accessors
// below instead of keeping its own copy.
type variableStore struct {
	qtype          []QType
	auxiliary      []bool
	assignment     []Assignment
	level          []int
	antecedent     []CRef
	antecedentType []ConstraintType
	trail          []Lit
	trailLim       []int // trail index at the start of each decision level

	onUnassign []unassignCallback
}

func newVariableStore() *variableStore {
	return &variableStore{}
}

// addVariable registers a new variable. Variables are 0-based internally in
// sequential creation order, so the returned Var is always len-1 of the
// backing slices after the call.
func (vs *variableStore) addVariable(qtype QType, auxiliary bool) Var {
	vs.qtype = append(vs.qtype, qtype)
	vs.auxiliary = append(vs.auxiliary, auxiliary)
	vs.assignment = append(vs.assignment, AssignUndef)
	vs.level = append(vs.level, 0)
	vs.antecedent = append(vs.antecedent, CRefUndef)
	vs.antecedentType = append(vs.antecedentType, ClauseType)
	return Var(len(vs.qtype) - 1)
}

func (vs *variableStore) lastVariable() Var {
	return Var(len(vs.qtype) - 1)
}

func (vs *variableStore) numVars() int {
	return len(vs.qtype)
}

func (vs *variableStore) registerUnassignCallback(cb unassignCallback) {
	vs.onUnassign = append(vs.onUnassign, cb)
}

func (vs *variableStore) qtypeOf(v Var) QType   { return vs.qtype[v] }
func (vs *variableStore) isAuxiliary(v Var) bool { return vs.auxiliary[v] }

// currentLevel is the decision level of the most recent decision taken
// (i.e. the number of decisions on the trail). Level 0 holds unit facts.
func (vs *variableStore) currentLevel() int {
	return len(vs.trailLim)
}

func (vs *variableStore) isAssigned(v Var) bool {
	return vs.assignment[v] != AssignUndef
}

func (vs *variableStore) assignmentOf(v Var) Assignment {
	return vs.assignment[v]
}

// litValue returns whether l is currently true, false, or unassigned.
func (vs *variableStore) litValue(l Lit) Assignment {
	a := vs.assignment[l.Var()]
	if a == AssignUndef {
		return AssignUndef
	}
	if (a == AssignTrue) == l.IsPositive() {
		return AssignTrue
	}
	return AssignFalse
}

func (vs *variableStore) decisionLevel(v Var) int {
	return vs.level[v]
}

func (vs *variableStore) antecedentOf(v Var) CRef {
	return vs.antecedent[v]
}

func (vs *variableStore) antecedentTypeOf(v Var) ConstraintType {
	return vs.antecedentType[v]
}

// hasAntecedent reports whether v was assigned by propagation (as opposed
// to being a decision or currently unassigned). CRef 0 is reserved and
// never denotes a real constraint in either type's arena, so comparing
// against CRefUndef is unambiguous despite clauses and terms sharing it as
// their "undefined" sentinel.
func (vs *variableStore) hasAntecedent(v Var) bool {
	return vs.antecedent[v] != CRefUndef
}

func (vs *variableStore) allAssigned() bool {
	return len(vs.trail) == len(vs.qtype)
}

// newDecisionLevel opens a new decision level without assigning anything.
func (vs *variableStore) newDecisionLevel() {
	vs.trailLim = append(vs.trailLim, len(vs.trail))
}

// assign pushes l onto the trail at the current decision level, recording
// ant (of type antType) as its antecedent (CRefUndef for a decision).
func (vs *variableStore) assign(l Lit, ant CRef, antType ConstraintType) {
	v := l.Var()
	vs.assignment[v] = litAssignment(l)
	vs.level[v] = vs.currentLevel()
	vs.antecedent[v] = ant
	vs.antecedentType[v] = antType
	vs.trail = append(vs.trail, l)
}

// assignAtLevel0 assigns l as a top-level (unit) fact. It must be called
// outside of any open decision level, i.e. before the first newDecisionLevel
// or after unassignToLevel(0).
func (vs *variableStore) assignAtLevel0(l Lit, ant CRef, antType ConstraintType) {
	v := l.Var()
	vs.assignment[v] = litAssignment(l)
	vs.level[v] = 0
	vs.antecedent[v] = ant
	vs.antecedentType[v] = antType
	vs.trail = append(vs.trail, l)
}

// relocAntecedents rewrites every recorded antecedent of type ctype after a
// constraint database compaction (spec.md §3 "every subsystem holding
// handles exposes a reloc entry point").
func (vs *variableStore) relocAntecedents(ctype ConstraintType, relocMap []CRef) {
	for v := range vs.antecedent {
		if vs.antecedentType[v] == ctype && vs.antecedent[v] != CRefUndef {
			vs.antecedent[v] = relocMap[vs.antecedent[v]]
		}
	}
}

// protectedSet returns the set of CRefs of type ctype currently serving as
// an assigned variable's antecedent, for constraintDB.clean's isProtected
// predicate: a constraint still justifying a trail literal must never be
// deleted out from under it.
func (vs *variableStore) protectedSet(ctype ConstraintType) map[CRef]bool {
	set := make(map[CRef]bool)
	for _, l := range vs.trail {
		v := l.Var()
		if vs.antecedentType[v] == ctype && vs.antecedent[v] != CRefUndef {
			set[vs.antecedent[v]] = true
		}
	}
	return set
}

// unassignToLevel truncates the trail back to the given decision level,
// invoking every registered callback for each freed literal in reverse
// trail order (most recent first), per the spec's backtracking discipline.
func (vs *variableStore) unassignToLevel(level int) {
	if level >= vs.currentLevel() {
		return
	}
	cut := vs.trailLim[level]
	for i := len(vs.trail) - 1; i >= cut; i-- {
		l := vs.trail[i]
		v := l.Var()
		vs.assignment[v] = AssignUndef
		vs.antecedent[v] = CRefUndef
		vs.antecedentType[v] = ClauseType
		vs.level[v] = 0
		for _, cb := range vs.onUnassign {
			cb(l)
		}
	}
	vs.trail = vs.trail[:cut]
	vs.trailLim = vs.trailLim[:level]
}

func (vs *variableStore) trailLit(i int) Lit { return vs.trail[i] }
func (vs *variableStore) trailLen() int      { return len(vs.trail) }
