package solver

// DepLearningMode selects how the dependency manager records new
// dependencies when the propagator asserts a unit literal (spec.md §4.3).
type DepLearningMode int

const (
	// DepPrefix disables dependency learning: "v depends on w" iff w
	// precedes v in the quantifier prefix (classical QBF dependency).
	DepPrefix DepLearningMode = iota
	// DepAll records every variable of opposite quantifier type found in
	// the asserting reason.
	DepAll
	// DepOutermost records only the single outermost such variable.
	DepOutermost
	// DepFewest records the variable whose current dependent-on set is
	// smallest.
	DepFewest
)

func ParseDepLearningMode(s string) (DepLearningMode, bool) {
	switch s {
	case "off":
		return DepPrefix, true
	case "all":
		return DepAll, true
	case "outermost":
		return DepOutermost, true
	case "fewest":
		return DepFewest, true
	default:
		return DepPrefix, false
	}
}

// dependencyData tracks, per variable, the set of variables it depends on
// (plus an ordered companion slice for iteration) and the one watched
// dependency used to decide candidacy, mirroring
// original_source/src/dependency_manager_watched.hh's DependencyData.
type dependencyData struct {
	dependentOn    map[Var]bool
	dependentOnSeq []Var
	watcher        Var
}

// dependencyManager implements the watched dependency manager of spec.md
// §4.3: it tracks which existentials depend on which universals (lazily
// learned, or fixed to the classical prefix order), and decides whether a
// variable is currently eligible to be picked as a decision.
type dependencyManager struct {
	vs   *variableStore
	mode DepLearningMode

	data      []dependencyData
	watchedBy [][]Var // watchedBy[w] = variables currently watching w

	onEligible func(Var) // notifies the active decision heuristic
}

func newDependencyManager(vs *variableStore, mode DepLearningMode) *dependencyManager {
	return &dependencyManager{vs: vs, mode: mode}
}

func (dm *dependencyManager) setEligibleCallback(cb func(Var)) {
	dm.onEligible = cb
}

// addVariable registers bookkeeping for a newly created variable. In prefix
// mode its full classical dependency set is known immediately (every
// already-existing variable of the opposite type); in learning mode the set
// starts empty and grows via learnDependencies.
func (dm *dependencyManager) addVariable(v Var) {
	for len(dm.data) <= int(v) {
		dm.data = append(dm.data, dependencyData{dependentOn: map[Var]bool{}, watcher: VarUndef})
		dm.watchedBy = append(dm.watchedBy, nil)
	}
	if dm.mode == DepPrefix && !dm.vs.isAuxiliary(v) {
		opp := dm.vs.qtypeOf(v).Opposite()
		for w := Var(0); w < v; w++ {
			if dm.vs.qtypeOf(w) == opp && !dm.vs.isAuxiliary(w) {
				dm.addDependency(v, w)
			}
		}
	}
	dm.findWatchedDependency(v)
}

// addDependency records that "of" depends on "on", growing the dependency
// set monotonically (spec.md invariant 5).
func (dm *dependencyManager) addDependency(of, on Var) {
	d := &dm.data[of]
	if d.dependentOn[on] {
		return
	}
	d.dependentOn[on] = true
	d.dependentOnSeq = append(d.dependentOnSeq, on)
}

// dependsOn reports whether "of" depends on "on".
func (dm *dependencyManager) dependsOn(of, on Var) bool {
	if dm.mode == DepPrefix {
		return on < of
	}
	return dm.data[of].dependentOn[on]
}

func (dm *dependencyManager) watcherOf(v Var) Var {
	return dm.data[v].watcher
}

// findWatchedDependency looks for an unassigned dependency of opposite
// type to watch for v, installing it if found. It returns whether a
// watcher was installed.
func (dm *dependencyManager) findWatchedDependency(v Var) bool {
	dm.setWatchedDependency(v, VarUndef)
	for _, w := range dm.data[v].dependentOnSeq {
		if !dm.vs.isAssigned(w) {
			dm.setWatchedDependency(v, w)
			return true
		}
	}
	return false
}

func (dm *dependencyManager) setWatchedDependency(v, newWatched Var) {
	old := dm.data[v].watcher
	if old != VarUndef {
		dm.watchedBy[old] = removeVar(dm.watchedBy[old], v)
	}
	dm.data[v].watcher = newWatched
	if newWatched != VarUndef {
		dm.watchedBy[newWatched] = append(dm.watchedBy[newWatched], v)
	}
}

func removeVar(s []Var, v Var) []Var {
	for i, x := range s {
		if x == v {
			last := len(s) - 1
			s[i] = s[last]
			return s[:last]
		}
	}
	return s
}

// isDecisionCandidate reports whether v may currently be picked as a
// decision: non-auxiliary, unassigned, and with its watched dependency (if
// any) already assigned (spec.md §4.3).
func (dm *dependencyManager) isDecisionCandidate(v Var) bool {
	if dm.vs.isAuxiliary(v) || dm.vs.isAssigned(v) {
		return false
	}
	w := dm.data[v].watcher
	return w == VarUndef || dm.vs.isAssigned(w)
}

// notifyAssigned updates every variable watching v: each tries to find a
// new watched dependency; those that cannot become decision candidates and
// the active heuristic is told so.
func (dm *dependencyManager) notifyAssigned(v Var) {
	watchers := dm.watchedBy[v]
	dm.watchedBy[v] = nil
	for _, w := range watchers {
		dm.data[w].watcher = VarUndef
		if !dm.findWatchedDependency(w) {
			if dm.onEligible != nil {
				dm.onEligible(w)
			}
		}
	}
}

// notifyUnassigned is a no-op: a variable's watched dependency is
// re-derived lazily via findWatchedDependency the next time it matters,
// mirroring the original's empty override.
func (dm *dependencyManager) notifyUnassigned(v Var) {}

// learnDependencies is invoked when the propagator asserts unitVar from a
// reason whose falsified literals are lits; it dispatches to the
// configured learning variant (spec.md §4.3).
func (dm *dependencyManager) learnDependencies(unitVar Var, lits []Lit) {
	switch dm.mode {
	case DepPrefix:
		return
	case DepAll:
		dm.learnAll(unitVar, lits)
	case DepOutermost:
		dm.learnOutermost(unitVar, lits)
	case DepFewest:
		dm.learnFewest(unitVar, lits)
	}
}

func (dm *dependencyManager) learnAll(unitVar Var, lits []Lit) {
	opp := dm.vs.qtypeOf(unitVar).Opposite()
	for _, l := range lits {
		w := l.Var()
		if dm.vs.qtypeOf(w) == opp {
			dm.addDependency(unitVar, w)
		}
	}
}

func (dm *dependencyManager) learnOutermost(unitVar Var, lits []Lit) {
	opp := dm.vs.qtypeOf(unitVar).Opposite()
	outermost := VarUndef
	for _, l := range lits {
		w := l.Var()
		if dm.vs.qtypeOf(w) == opp && (outermost == VarUndef || w < outermost) {
			outermost = w
		}
	}
	if outermost != VarUndef {
		dm.addDependency(unitVar, outermost)
	}
}

func (dm *dependencyManager) learnFewest(unitVar Var, lits []Lit) {
	opp := dm.vs.qtypeOf(unitVar).Opposite()
	fewest := VarUndef
	fewestCount := -1
	for _, l := range lits {
		w := l.Var()
		if dm.vs.qtypeOf(w) != opp {
			continue
		}
		n := len(dm.data[w].dependentOnSeq)
		if fewest == VarUndef || n < fewestCount {
			fewest, fewestCount = w, n
		}
	}
	if fewest != VarUndef {
		dm.addDependency(unitVar, fewest)
	}
}
