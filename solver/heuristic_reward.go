package solver

// rewardLearning is the engine shared by the CQB and EMAB decision
// heuristics (spec.md §4.5/§9, grounded on
// original_source/src/reward_learning.hh/.cc): an exponential moving
// average "quality" per variable, ordered by a varHeap for decision
// picking, plus a circular doubly-linked list of the variables currently
// on the trail so a conflict can cheaply reward every assigned variable
// at once (used by CQB, not by EMAB).
type rewardLearning struct {
	vs *variableStore
	dm *dependencyManager
	ph phaseSaving

	quality  []float64
	heap     *varHeap
	stepSize float64

	auxiliary []bool
	listNext  []Var
	listPrev  []Var
	inList    []bool
	head      Var
	noPhaseSaving bool
}

func newRewardLearning(vs *variableStore, dm *dependencyManager, noPhaseSaving bool) *rewardLearning {
	rl := &rewardLearning{vs: vs, dm: dm, stepSize: 0.2, head: VarUndef, noPhaseSaving: noPhaseSaving}
	rl.heap = newVarHeap(0)
	dm.setEligibleCallback(func(v Var) { rl.pushCandidate(v) })
	return rl
}

func (rl *rewardLearning) addVariable(v Var, auxiliary bool) {
	rl.ph.addVariable()
	rl.quality = append(rl.quality, 0)
	rl.auxiliary = append(rl.auxiliary, auxiliary)
	rl.listNext = append(rl.listNext, VarUndef)
	rl.listPrev = append(rl.listPrev, VarUndef)
	rl.inList = append(rl.inList, false)
	if !auxiliary {
		rl.pushCandidate(v)
	}
}

func (rl *rewardLearning) pushCandidate(v Var) {
	if rl.auxiliary[v] {
		return
	}
	rl.heap.push(v, rl.quality[v])
}

func (rl *rewardLearning) notifyStart() {}

func (rl *rewardLearning) listInsert(v Var) {
	if rl.inList[v] {
		return
	}
	rl.inList[v] = true
	if rl.head == VarUndef {
		rl.listNext[v] = v
		rl.listPrev[v] = v
		rl.head = v
		return
	}
	prev := rl.listPrev[rl.head]
	rl.listNext[prev] = v
	rl.listPrev[v] = prev
	rl.listNext[v] = rl.head
	rl.listPrev[rl.head] = v
}

func (rl *rewardLearning) listRemove(v Var) {
	if !rl.inList[v] {
		return
	}
	rl.inList[v] = false
	prev, next := rl.listPrev[v], rl.listNext[v]
	if next == v {
		rl.head = VarUndef
		return
	}
	rl.listNext[prev] = next
	rl.listPrev[next] = prev
	if rl.head == v {
		rl.head = next
	}
}

func (rl *rewardLearning) notifyAssigned(l Lit) {
	v := l.Var()
	rl.ph.savePhase(v, litAssignment(l))
	if !rl.auxiliary[v] {
		rl.listInsert(v)
	}
}

func (rl *rewardLearning) notifyUnassigned(l Lit) {
	v := l.Var()
	rl.listRemove(v)
	rl.pushCandidate(v)
}

func (rl *rewardLearning) notifyEligible(v Var) { rl.pushCandidate(v) }

func (rl *rewardLearning) notifyBacktrack(levelBefore int) {}

func (rl *rewardLearning) notifyRestart() {}

// bump applies the EMA update to v's quality: a reward close to the
// running average leaves it mostly unchanged, a surprising one moves it.
func (rl *rewardLearning) bump(v Var, reward float64) {
	rl.quality[v] = (1-rl.stepSize)*rl.quality[v] + rl.stepSize*reward
}

// setRewardForAssigned applies reward to every variable currently on the
// trail (CQB's rule: the whole assigned set shares credit for a conflict's
// quality, not just the literals in the learned constraint).
func (rl *rewardLearning) setRewardForAssigned(reward float64) {
	if rl.head == VarUndef {
		return
	}
	v := rl.head
	for {
		rl.bump(v, reward)
		v = rl.listNext[v]
		if v == rl.head {
			break
		}
	}
}

// setReward applies reward to a single variable (EMAB's rule: only the
// literals of the learned constraint are rewarded).
func (rl *rewardLearning) setReward(v Var, reward float64) {
	rl.bump(v, reward)
}

func (rl *rewardLearning) decisionLiteral() Lit {
	v, ok := rl.heap.pop(rl.dm.isDecisionCandidate)
	if !ok {
		return LitUndef
	}
	if rl.noPhaseSaving || !rl.ph.hasPhase(v) {
		rl.ph.savePhase(v, phaseHeuristic(rl.vs, v))
	}
	return literalFromPhase(v, rl.ph.getPhase(v))
}

// cqbReward maps a learned constraint's LBD to the reward CQB credits
// every currently assigned variable with (original_source's
// decision_heuristic_CQB.cc reward table): a glue-level LBD of 2 is
// rewarded highest, 3-4 moderately, anything looser gets the baseline.
func cqbReward(lbd int) float64 {
	switch {
	case lbd == 2:
		return 4
	case lbd >= 3 && lbd <= 4:
		return 2
	default:
		return 1
	}
}

// lbdOf counts the number of distinct decision levels among the assigned
// variables of lits, the "literal block distance" used to grade a freshly
// learned constraint's quality.
func lbdOf(vs *variableStore, lits []Lit) int {
	seen := map[int]bool{}
	for _, l := range lits {
		v := l.Var()
		if vs.isAssigned(v) {
			seen[vs.decisionLevel(v)] = true
		}
	}
	return len(seen)
}

// cqbHeuristic is the CQB decision heuristic: reward-learning where a
// conflict rewards every assigned variable based on the learned
// constraint's LBD.
type cqbHeuristic struct {
	*rewardLearning
}

func newCQBHeuristic(vs *variableStore, dm *dependencyManager, noPhaseSaving bool) *cqbHeuristic {
	return &cqbHeuristic{rewardLearning: newRewardLearning(vs, dm, noPhaseSaving)}
}

func (h *cqbHeuristic) notifyLearned(lits []Lit, ctype ConstraintType, conflictSide []Lit) {
	h.setRewardForAssigned(cqbReward(lbdOf(h.vs, lits)))
}

// emabHeuristic is the EMAB decision heuristic: reward-learning where a
// conflict rewards exactly the variables appearing in the learned
// constraint, each by a flat amount.
type emabHeuristic struct {
	*rewardLearning
}

func newEMABHeuristic(vs *variableStore, dm *dependencyManager, noPhaseSaving bool) *emabHeuristic {
	return &emabHeuristic{rewardLearning: newRewardLearning(vs, dm, noPhaseSaving)}
}

func (h *emabHeuristic) notifyLearned(lits []Lit, ctype ConstraintType, conflictSide []Lit) {
	for _, l := range lits {
		h.setReward(l.Var(), 1)
	}
}
