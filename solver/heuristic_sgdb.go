package solver

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// sgdbHeuristic scores decision candidates with a small logistic-regression
// model trained online by SGD (spec.md §4.5/§9.3 leaves the exact update
// rule an open question; DESIGN.md records the resolution). Each variable
// carries a two-feature vector [bias=1, participation], where participation
// is a decayed count of how often the variable has recently appeared in a
// learned constraint; a single shared weight vector theta is nudged toward
// predicting "appears in the next learned constraint" after every conflict.
type sgdbHeuristic struct {
	vs *variableStore
	dm *dependencyManager
	ph phaseSaving
	heap *varHeap

	auxiliary     []bool
	participation []float64
	theta         []float64

	lr, initialLR, lrDecay, lrMin, lambda, participationDecay float64

	noPhaseSaving bool
}

func newSGDBHeuristic(vs *variableStore, dm *dependencyManager, initialLR, lrDecay, lrMin, lambda float64, noPhaseSaving bool) *sgdbHeuristic {
	h := &sgdbHeuristic{
		vs: vs, dm: dm,
		theta:              []float64{0, 0},
		initialLR:          initialLR,
		lr:                 initialLR,
		lrDecay:            lrDecay,
		lrMin:              lrMin,
		lambda:             lambda,
		participationDecay: 0.95,
		noPhaseSaving:      noPhaseSaving,
	}
	h.heap = newVarHeap(0)
	dm.setEligibleCallback(func(v Var) { h.pushCandidate(v) })
	return h
}

func (h *sgdbHeuristic) addVariable(v Var, auxiliary bool) {
	h.ph.addVariable()
	h.auxiliary = append(h.auxiliary, auxiliary)
	h.participation = append(h.participation, 0)
	if !auxiliary {
		h.pushCandidate(v)
	}
}

func (h *sgdbHeuristic) feature(v Var) []float64 {
	return []float64{1, h.participation[v]}
}

func (h *sgdbHeuristic) score(v Var) float64 {
	return floats.Dot(h.theta, h.feature(v))
}

func (h *sgdbHeuristic) pushCandidate(v Var) {
	if h.auxiliary[v] {
		return
	}
	h.heap.push(v, h.score(v))
}

func (h *sgdbHeuristic) notifyStart() {}

func (h *sgdbHeuristic) notifyAssigned(l Lit) {
	h.ph.savePhase(l.Var(), litAssignment(l))
}

func (h *sgdbHeuristic) notifyUnassigned(l Lit) {
	h.pushCandidate(l.Var())
}

func (h *sgdbHeuristic) notifyEligible(v Var) {
	h.pushCandidate(v)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// notifyLearned performs one SGD step per variable of the learned
// constraint (label 1: "this variable participates"), decays every
// variable's participation feature, then bumps the participating ones back
// up — mirroring a VSIDS-style activity decay but feeding a trained model
// instead of a hand-tuned increment.
func (h *sgdbHeuristic) notifyLearned(lits []Lit, ctype ConstraintType, conflictSide []Lit) {
	floats.Scale(h.participationDecay, h.participation)
	for _, l := range lits {
		v := l.Var()
		if h.auxiliary[v] {
			continue
		}
		h.participation[v]++
		x := h.feature(v)
		pred := sigmoid(floats.Dot(h.theta, x))
		grad := pred - 1
		for i := range h.theta {
			h.theta[i] -= h.lr * (grad*x[i] + h.lambda*h.theta[i])
		}
	}
	h.lr = math.Max(h.lr*(1-h.lrDecay), h.lrMin)
}

func (h *sgdbHeuristic) notifyBacktrack(levelBefore int) {}

func (h *sgdbHeuristic) notifyRestart() {}

func (h *sgdbHeuristic) decisionLiteral() Lit {
	v, ok := h.heap.pop(h.dm.isDecisionCandidate)
	if !ok {
		return LitUndef
	}
	if h.noPhaseSaving || !h.ph.hasPhase(v) {
		h.ph.savePhase(v, phaseHeuristic(h.vs, v))
	}
	return literalFromPhase(v, h.ph.getPhase(v))
}
