package solver

import (
	"math"
	"sort"
)

// ModelGenStrategy selects how an initial term is synthesized once every
// variable is assigned with no conflict (spec.md §4.4, §9.3).
type ModelGenStrategy int

const (
	// ModelGenSimple builds the term from every variable's current
	// assignment, literal for literal.
	ModelGenSimple ModelGenStrategy = iota
	// ModelGenApproxHittingSet greedily selects a small set of true
	// universal and existential literals (none from the innermost
	// existential block) that together satisfy every currently-satisfied
	// clause, approximating a minimum hitting set.
	ModelGenApproxHittingSet
)

func ParseModelGenStrategy(s string) (ModelGenStrategy, bool) {
	switch s {
	case "simple":
		return ModelGenSimple, true
	case "approx-hitting-set":
		return ModelGenApproxHittingSet, true
	default:
		return ModelGenSimple, false
	}
}

// hittingSetWeights precomputes, for every variable of the prefix, the
// approx-HS weight w(v) = 1 + scale*cost(v)^exponent + (penalty if
// universal) of spec.md §4.4, along with which variables belong to the
// innermost existential block (those are never offered as hitting-set
// choices, since universal reduction would strip them out anyway).
//
// cost(v) is, deliberately, not symmetric: an existential's cost counts
// the universals to its right divided by the total existential count,
// and a universal's cost counts the existentials to its left divided by
// the total universal count — spec.md's own definition, not a transcription
// slip.
type hittingSetWeights struct {
	weight   []float64
	excluded []bool
}

func newHittingSetWeights(pb *Problem, scale, exponent, penalty float64) hittingSetWeights {
	order := make([]Var, 0, pb.NbVars)
	qtype := make([]QType, 0, pb.NbVars)
	for _, blk := range pb.Prefix {
		order = append(order, blk.Vars...)
		for range blk.Vars {
			qtype = append(qtype, blk.Type)
		}
	}

	var existentialTotal, universalTotal int
	for _, t := range qtype {
		if t == Existential {
			existentialTotal++
		} else {
			universalTotal++
		}
	}

	universalsToRight := make([]int, len(order))
	cum := 0
	for i := len(order) - 1; i >= 0; i-- {
		universalsToRight[i] = cum
		if qtype[i] == Universal {
			cum++
		}
	}
	existentialsToLeft := make([]int, len(order))
	cum = 0
	for i := range order {
		existentialsToLeft[i] = cum
		if qtype[i] == Existential {
			cum++
		}
	}

	weight := make([]float64, pb.NbVars)
	for i, v := range order {
		var cost float64
		if qtype[i] == Universal {
			if universalTotal > 0 {
				cost = float64(existentialsToLeft[i]) / float64(universalTotal)
			}
		} else if existentialTotal > 0 {
			cost = float64(universalsToRight[i]) / float64(existentialTotal)
		}
		w := 1 + scale*math.Pow(cost, exponent)
		if qtype[i] == Universal {
			w += penalty
		}
		weight[v] = w
	}

	excluded := make([]bool, pb.NbVars)
	if n := len(pb.Prefix); n > 0 && pb.Prefix[n-1].Type == Existential {
		for _, v := range pb.Prefix[n-1].Vars {
			excluded[v] = true
		}
	}

	return hittingSetWeights{weight: weight, excluded: excluded}
}

func (w *hittingSetWeights) get(v Var) float64 {
	if int(v) >= len(w.weight) {
		return 1
	}
	return w.weight[v]
}

func (w *hittingSetWeights) isExcluded(v Var) bool {
	return int(v) < len(w.excluded) && w.excluded[v]
}

// generateModelSimple returns one literal per variable, matching its
// current assignment exactly; the resulting term is, by construction,
// entirely non-disabling and therefore immediately "empty" in the sense
// that drives term learning.
func generateModelSimple(vs *variableStore) []Lit {
	lits := make([]Lit, 0, vs.numVars())
	for v := Var(0); v < Var(vs.numVars()); v++ {
		a := vs.assignmentOf(v)
		if a == AssignUndef {
			continue
		}
		lits = append(lits, v.SignedLit(a == AssignFalse))
	}
	return lits
}

// generateModelApproxHittingSet builds a smaller term: it greedily selects
// both universal and existential true literals (weighted by hsWeight, per
// spec.md §4.4 "approx-HS") until every satisfied input clause is "hit" by
// at least one selected literal, then returns that set as the term.
// Literals from the innermost existential block are never offered as
// choices — universal reduction would strip them from the final term
// anyway.
func generateModelApproxHittingSet(vs *variableStore, db *constraintDB, hs *hittingSetWeights) []Lit {
	clauseRefs := append(db.inputRefs(ClauseType), db.learntRefs(ClauseType)...)
	uncovered := make(map[CRef]bool, len(clauseRefs))
	coveredBy := make(map[Var][]CRef)
	for _, ref := range clauseRefs {
		c := db.get(ref, ClauseType)
		hit := false
		for i := 0; i < c.Len(); i++ {
			l := c.Get(i)
			v := l.Var()
			if hs.isExcluded(v) {
				continue
			}
			if vs.litValue(l) == AssignTrue {
				hit = true
				coveredBy[v] = append(coveredBy[v], ref)
			}
		}
		if hit {
			uncovered[ref] = true
		}
	}

	candidates := make([]Var, 0, len(coveredBy))
	for v := range coveredBy {
		candidates = append(candidates, v)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })

	selected := map[Var]bool{}
	for len(uncovered) > 0 {
		bestVar := VarUndef
		bestScore := -1.0
		for _, v := range candidates {
			if selected[v] {
				continue
			}
			covered := 0.0
			for _, ref := range coveredBy[v] {
				if uncovered[ref] {
					covered++
				}
			}
			if covered == 0 {
				continue
			}
			score := covered / hs.get(v)
			if score > bestScore {
				bestScore, bestVar = score, v
			}
		}
		if bestVar == VarUndef {
			break // remaining uncovered clauses have no eligible literal to hit; leave them out
		}
		selected[bestVar] = true
		for _, ref := range coveredBy[bestVar] {
			delete(uncovered, ref)
		}
	}

	lits := make([]Lit, 0, len(selected))
	for v := range selected {
		a := vs.assignmentOf(v)
		lits = append(lits, v.SignedLit(a == AssignFalse))
	}
	sort.Slice(lits, func(i, j int) bool { return lits[i] < lits[j] })
	return lits
}

// generateInitialTerm dispatches to the configured strategy.
func (p *propagator) generateInitialTerm() []Lit {
	if p.modelGen == ModelGenApproxHittingSet {
		return generateModelApproxHittingSet(p.vs, p.db, &p.hsWeight)
	}
	return generateModelSimple(p.vs)
}
