package solver

// vsidsHeuristic is the classic VSIDS decision heuristic: an activity per
// variable that decays over time and is bumped on the literals of each
// newly learned constraint, ordered by a varHeap (grounded on gophersat's
// activity/varInc/varBumpActivity in solver.go, replumbed onto yagh's heap
// instead of gophersat's bespoke queue.go).
type vsidsHeuristic struct {
	vs *variableStore
	dm *dependencyManager
	ph phaseSaving

	activity []float64
	varInc   float64
	varDecay float64
	heap     *varHeap

	auxiliary []bool
	// bumpConflictSide additionally bumps the literals met during conflict
	// analysis, on top of every literal of the learned constraint
	// (spec.md open question; default off, so only the learned constraint
	// is bumped).
	bumpConflictSide bool
	noPhaseSaving    bool
}

const defaultVarDecay = 0.95

func newVSIDSHeuristic(vs *variableStore, dm *dependencyManager, bumpConflictSide, noPhaseSaving bool) *vsidsHeuristic {
	h := &vsidsHeuristic{
		vs: vs, dm: dm,
		varInc: 1.0, varDecay: defaultVarDecay,
		bumpConflictSide: bumpConflictSide,
		noPhaseSaving:    noPhaseSaving,
	}
	h.heap = newVarHeap(0)
	dm.setEligibleCallback(func(v Var) { h.pushCandidate(v) })
	return h
}

func (h *vsidsHeuristic) addVariable(v Var, auxiliary bool) {
	h.ph.addVariable()
	h.activity = append(h.activity, 0)
	h.auxiliary = append(h.auxiliary, auxiliary)
	if !auxiliary {
		h.pushCandidate(v)
	}
}

func (h *vsidsHeuristic) pushCandidate(v Var) {
	if h.auxiliary[v] {
		return
	}
	h.heap.push(v, h.activity[v])
}

func (h *vsidsHeuristic) notifyStart() {}

func (h *vsidsHeuristic) notifyAssigned(l Lit) {
	h.ph.savePhase(l.Var(), litAssignment(l))
}

func (h *vsidsHeuristic) notifyUnassigned(l Lit) {
	h.pushCandidate(l.Var())
}

func (h *vsidsHeuristic) notifyEligible(v Var) {
	h.pushCandidate(v)
}

func (h *vsidsHeuristic) decayActivity() {
	h.varInc *= 1 / h.varDecay
}

func (h *vsidsHeuristic) bumpActivity(v Var) {
	h.activity[v] += h.varInc
	if h.activity[v] > 1e100 {
		for i := range h.activity {
			h.activity[i] *= 1e-100
		}
		h.varInc *= 1e-100
	}
}

func (h *vsidsHeuristic) notifyLearned(lits []Lit, ctype ConstraintType, conflictSide []Lit) {
	for _, l := range lits {
		h.bumpActivity(l.Var())
	}
	if h.bumpConflictSide {
		for _, l := range conflictSide {
			h.bumpActivity(l.Var())
		}
	}
	h.decayActivity()
}

func (h *vsidsHeuristic) notifyBacktrack(levelBefore int) {}

func (h *vsidsHeuristic) notifyRestart() {}

func (h *vsidsHeuristic) decisionLiteral() Lit {
	v, ok := h.heap.pop(h.dm.isDecisionCandidate)
	if !ok {
		return LitUndef
	}
	if h.noPhaseSaving || !h.ph.hasPhase(v) {
		h.ph.savePhase(v, phaseHeuristic(h.vs, v))
	}
	return literalFromPhase(v, h.ph.getPhase(v))
}
