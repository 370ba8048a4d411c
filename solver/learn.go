package solver

import "sort"

// learningEngine derives a new constraint from a conflicting one, symmetric
// for clauses (a falsified clause) and terms (a satisfied term), by
// first-UIP resolution along the trail (spec.md §4.6, grounded on
// gophersat's solver/learn.go's learnClause/minimizeLearned, generalized
// from "assigned false" to "contributes to the conflict for type t").
type learningEngine struct {
	met    []bool
	metLvl []bool
}

func newLearningEngine() *learningEngine {
	return &learningEngine{}
}

func (e *learningEngine) ensureBuffers(n int) {
	if cap(e.met) < n {
		e.met = make([]bool, n)
		e.metLvl = make([]bool, n)
	} else {
		e.met = e.met[:n]
		e.metLvl = e.metLvl[:n]
		for i := range e.met {
			e.met[i] = false
			e.metLvl[i] = false
		}
	}
}

// contributes reports whether l currently contributes to a type-t conflict:
// assigned to the complement of the disabling value (false for a clause,
// true for a term).
func contributes(vs *variableStore, l Lit, t ConstraintType) bool {
	return vs.isAssigned(l.Var()) && vs.litValue(l) != disablingValue(t)
}

// analysisResult is what analyzeConflict produces for one conflict.
type analysisResult struct {
	// lits holds the learned constraint with the asserting literal at
	// index 0, or is nil if the learned constraint is unit (see unit).
	lits []Lit
	// unit is the single asserting literal when the learned constraint has
	// size 1 (lits is nil in that case).
	unit Lit
	// lbd is the number of distinct decision levels among lits, reported
	// for restart/cleaning decisions.
	lbd int
	// conflictSide holds every literal resolved away during analysis
	// (the "conflict side"), reported to the decision heuristic.
	conflictSide []Lit
}

// analyzeConflict walks the trail backward from the conflicting constraint
// confl (of type ctype, currently empty/fully-satisfied at decision level
// lvl) until exactly one literal from lvl remains unresolved: the
// first-UIP. vs, db, and bumpConstraint (the constraint-activity bump
// hook) are supplied by the driver.
func (e *learningEngine) analyzeConflict(vs *variableStore, db *constraintDB, confl CRef, ctype ConstraintType, lvl int, bumpConstraint func(CRef, ConstraintType)) analysisResult {
	e.ensureBuffers(vs.numVars())
	lits := make([]Lit, 1, 8) // room for the asserting literal at index 0
	conflictSide := make([]Lit, 0, 8)

	bumpConstraint(confl, ctype)
	c := db.get(confl, ctype)
	nbLvl := e.addContributingLits(vs, c, ctype, lvl, &lits, &conflictSide)

	ptr := vs.trailLen() - 1
	for nbLvl > 1 {
		for !e.metLvl[vs.trailLit(ptr).Var()] {
			v := vs.trailLit(ptr).Var()
			if vs.decisionLevel(v) == lvl {
				e.met[v] = true
			}
			ptr--
		}
		v := vs.trailLit(ptr).Var()
		ptr--
		nbLvl--
		if !vs.hasAntecedent(v) {
			continue
		}
		reasonRef, reasonType := vs.antecedentOf(v), vs.antecedentTypeOf(v)
		bumpConstraint(reasonRef, reasonType)
		reason := db.get(reasonRef, reasonType)
		for i := 0; i < reason.Len(); i++ {
			l := reason.Get(i)
			v2 := l.Var()
			if e.met[v2] {
				continue
			}
			if !contributes(vs, l, ctype) {
				continue
			}
			e.met[v2] = true
			conflictSide = append(conflictSide, l)
			if vs.decisionLevel(v2) == lvl {
				e.metLvl[v2] = true
				nbLvl++
			} else if vs.decisionLevel(v2) != 0 {
				lits = append(lits, l)
			}
		}
	}

	// The asserting literal is the negation of the first still-pending
	// (unresolved) lvl-level literal encountered scanning the trail from
	// its start — gophersat's learnClause convention.
	for i := 0; i < vs.trailLen(); i++ {
		l := vs.trailLit(i)
		if e.metLvl[l.Var()] {
			lits[0] = l.Negation()
			break
		}
	}

	sz := e.minimize(vs, db, lits)
	if sz == 1 {
		return analysisResult{unit: lits[0], conflictSide: conflictSide}
	}
	lits = lits[:sz]
	sortByLevelDescending(vs, lits)
	return analysisResult{lits: lits, unit: LitUndef, lbd: lbdOf(vs, lits), conflictSide: conflictSide}
}

// addContributingLits seeds met/metLvl from confl's literals, mirroring
// gophersat's addClauseLits but over contributes() instead of a hardcoded
// Unsat check.
func (e *learningEngine) addContributingLits(vs *variableStore, c *Constraint, ctype ConstraintType, lvl int, lits *[]Lit, conflictSide *[]Lit) int {
	nbLvl := 0
	for i := 0; i < c.Len(); i++ {
		l := c.Get(i)
		v := l.Var()
		if !contributes(vs, l, ctype) {
			continue
		}
		e.met[v] = true
		*conflictSide = append(*conflictSide, l)
		if vs.decisionLevel(v) == lvl {
			e.metLvl[v] = true
			nbLvl++
		} else if vs.decisionLevel(v) != 0 {
			*lits = append(*lits, l)
		}
	}
	return nbLvl
}

// minimize drops literal i from learned when every one of its antecedent's
// other literals is already met or a level-0 fact — a direct
// generalization of gophersat's minimizeLearned.
func (e *learningEngine) minimize(vs *variableStore, db *constraintDB, learned []Lit) int {
	sz := 1
	for i := 1; i < len(learned); i++ {
		v := learned[i].Var()
		if !vs.hasAntecedent(v) {
			learned[sz] = learned[i]
			sz++
			continue
		}
		reason := db.get(vs.antecedentOf(v), vs.antecedentTypeOf(v))
		for k := 0; k < reason.Len(); k++ {
			l2 := reason.Get(k)
			if !e.met[l2.Var()] && vs.decisionLevel(l2.Var()) != 0 {
				learned[sz] = learned[i]
				sz++
				break
			}
		}
	}
	return sz
}

// sortByLevelDescending orders lits[1:] by decreasing decision level so the
// second watcher the propagator picks is the most recently assigned one,
// matching gophersat's sortLiterals convention.
func sortByLevelDescending(vs *variableStore, lits []Lit) {
	if len(lits) <= 2 {
		return
	}
	rest := lits[1:]
	sort.Slice(rest, func(i, j int) bool {
		return vs.decisionLevel(rest[i].Var()) > vs.decisionLevel(rest[j].Var())
	})
}
