package solver

import "sort"

// phaseCache abstracts over phaseSaving and splitPhaseSaving so the split
// heuristics can use either depending on the --split-phase-saving flag
// (spec.md §4.5/§9; original_source's DecisionHeuristicSplit* hold a
// PhaseSaving value that may or may not be split).
type phaseCache interface {
	addVariable()
	hasPhase(v Var) bool
	getPhase(v Var) Assignment
	savePhase(v Var, a Assignment)
}

type togglingPhaseCache struct {
	*splitPhaseSaving
}

func (t togglingPhaseCache) toggle() { t.splitPhaseSaving.toggleMode() }

type staticPhaseCache struct {
	*phaseSaving
}

func (staticPhaseCache) toggle() {}

func newPhaseCache(split bool) interface {
	phaseCache
	toggle()
} {
	if split {
		return togglingPhaseCache{newSplitPhaseSaving()}
	}
	return staticPhaseCache{&phaseSaving{}}
}

// vmtfModeData is one decision-mode half (existential or universal) of a
// split VMTF heuristic: its own move-to-front list and overflow queue,
// entirely independent of the other mode's (original_source's
// DecisionModeData in decision_heuristic_split_VMTF.hh).
type vmtfModeData struct {
	list       []vmtfEntry
	head       Var
	nextSearch Var
	overflow   *varHeap
}

func newVMTFModeData() *vmtfModeData {
	return &vmtfModeData{head: VarUndef, nextSearch: VarUndef, overflow: newVarHeap(0)}
}

// splitVMTFHeuristic alternates between two independent VMTF decision lists,
// one used while trying to satisfy the matrix (existential mode) and one
// while trying to falsify it (universal mode), switching every mode_cycles
// restarts (grounded on original_source/src/decision_heuristic_split_VMTF.{hh,cc}).
type splitVMTFHeuristic struct {
	vs *variableStore
	dm *dependencyManager
	ph interface {
		phaseCache
		toggle()
	}

	auxiliary []bool
	exist     *vmtfModeData
	univ      *vmtfModeData
	mode      decisionMode
	current   *vmtfModeData

	timestamp int

	alwaysMove    bool
	moveByPrefix  bool
	modeCycles    uint32
	cycleCounter  uint32
	noPhaseSaving bool

	backtrackLevelBefore int
}

func newSplitVMTFHeuristic(vs *variableStore, dm *dependencyManager, modeCycles uint32, alwaysMove, moveByPrefix, splitPhase, startUnivMode, noPhaseSaving bool) *splitVMTFHeuristic {
	h := &splitVMTFHeuristic{
		vs: vs, dm: dm,
		ph:            newPhaseCache(splitPhase),
		exist:         newVMTFModeData(),
		univ:          newVMTFModeData(),
		modeCycles:    modeCycles,
		alwaysMove:    alwaysMove,
		moveByPrefix:  moveByPrefix,
		noPhaseSaving: noPhaseSaving,
	}
	if startUnivMode {
		h.mode = univMode
		h.current = h.univ
	} else {
		h.mode = existMode
		h.current = h.exist
	}
	dm.setEligibleCallback(func(v Var) { h.notifyEligible(v) })
	return h
}

func (h *splitVMTFHeuristic) addVariable(v Var, auxiliary bool) {
	h.ph.addVariable()
	h.auxiliary = append(h.auxiliary, auxiliary)
	h.addToList(h.exist, v, auxiliary)
	h.addToList(h.univ, v, auxiliary)
}

func (h *splitVMTFHeuristic) addToList(m *vmtfModeData, v Var, auxiliary bool) {
	m.list = append(m.list, vmtfEntry{prev: v, next: v})
	if auxiliary {
		return
	}
	if m.head == VarUndef {
		m.head = v
		m.nextSearch = v
		return
	}
	h.insertBefore(m, v, m.head)
}

func (h *splitVMTFHeuristic) insertBefore(m *vmtfModeData, v, at Var) {
	prev := m.list[at].prev
	m.list[prev].next = v
	m.list[v].prev = prev
	m.list[v].next = at
	m.list[at].prev = v
}

func (h *splitVMTFHeuristic) unlink(m *vmtfModeData, v Var) {
	prev, next := m.list[v].prev, m.list[v].next
	m.list[prev].next = next
	m.list[next].prev = prev
	if m.head == v {
		m.head = next
	}
}

func (h *splitVMTFHeuristic) moveToFront(m *vmtfModeData, v Var) {
	if h.auxiliary[v] || v == m.head {
		return
	}
	h.timestamp++
	m.list[v].timestamp = uint32(h.timestamp)
	h.unlink(m, v)
	m.list[v].prev = v
	m.list[v].next = v
	h.insertBefore(m, v, m.head)
	m.head = v
}

func (h *splitVMTFHeuristic) moveToBack(m *vmtfModeData, v Var) {
	if h.auxiliary[v] || (v == m.head && m.list[v].next == v) {
		return
	}
	h.timestamp++
	m.list[v].timestamp = 0
	if m.nextSearch == v {
		m.nextSearch = m.list[v].next
	}
	if m.head == v {
		m.head = m.list[v].next
		return
	}
	h.unlink(m, v)
	m.list[v].prev = v
	m.list[v].next = v
	h.insertBefore(m, v, m.head)
}

func (h *splitVMTFHeuristic) resetTimestamps(m *vmtfModeData) {
	if m.head == VarUndef {
		return
	}
	h.timestamp = 0
	v := m.head
	for {
		v = m.list[v].prev
		m.list[v].timestamp = uint32(h.timestamp)
		h.timestamp++
		if v == m.head {
			break
		}
	}
}

func (h *splitVMTFHeuristic) notifyStart() {
	h.resetTimestamps(h.exist)
	h.resetTimestamps(h.univ)
}

func (h *splitVMTFHeuristic) notifyAssigned(l Lit) {
	h.ph.savePhase(l.Var(), litAssignment(l))
}

func (h *splitVMTFHeuristic) notifyUnassigned(l Lit) {
	v := l.Var()
	if h.auxiliary[v] {
		return
	}
	w := h.dm.watcherOf(v)
	unblocked := w == VarUndef || (h.vs.isAssigned(w) && h.vs.decisionLevel(w) < h.backtrackLevelBefore)
	if unblocked && h.current.list[v].timestamp > h.current.list[h.current.nextSearch].timestamp {
		h.current.nextSearch = v
	}
}

func (h *splitVMTFHeuristic) notifyEligible(v Var) {
	if h.auxiliary[v] {
		return
	}
	if h.current.list[v].timestamp > h.current.list[h.current.nextSearch].timestamp {
		h.current.overflow.push(v, float64(h.current.list[v].timestamp))
	}
}

func (h *splitVMTFHeuristic) moveAssigned(m *vmtfModeData, lits []Lit) {
	assignedVars := make([]Var, 0, len(lits))
	for _, l := range lits {
		if h.vs.isAssigned(l.Var()) {
			assignedVars = append(assignedVars, l.Var())
		}
	}
	if h.moveByPrefix {
		sort.Slice(assignedVars, func(i, j int) bool { return assignedVars[i] > assignedVars[j] })
	}
	for _, v := range assignedVars {
		h.moveToFront(m, v)
	}
}

func (h *splitVMTFHeuristic) moveAssignedBack(m *vmtfModeData, lits []Lit) {
	for _, l := range lits {
		if h.vs.isAssigned(l.Var()) {
			h.moveToBack(m, l.Var())
		}
	}
}

func (h *splitVMTFHeuristic) isConstraintTypeOfMode(ctype ConstraintType) bool {
	if h.mode == existMode {
		return ctype == TermType
	}
	return ctype == ClauseType
}

func (h *splitVMTFHeuristic) notifyLearned(lits []Lit, ctype ConstraintType, conflictSide []Lit) {
	if h.alwaysMove {
		if ctype == TermType {
			h.moveAssigned(h.exist, lits)
		} else {
			h.moveAssigned(h.univ, lits)
		}
		return
	}
	if h.isConstraintTypeOfMode(ctype) {
		h.moveAssigned(h.current, lits)
	} else {
		h.moveAssignedBack(h.current, lits)
	}
}

func (h *splitVMTFHeuristic) notifyBacktrack(levelBefore int) {
	h.backtrackLevelBefore = levelBefore
	for _, m := range [2]*vmtfModeData{h.exist, h.univ} {
		for {
			v, ok := m.overflow.pop(func(Var) bool { return true })
			if !ok {
				break
			}
			w := h.dm.watcherOf(v)
			unblocked := w == VarUndef || (h.vs.isAssigned(w) && h.vs.decisionLevel(w) < levelBefore)
			if unblocked && m.list[v].timestamp > m.list[m.nextSearch].timestamp {
				m.nextSearch = v
			}
		}
	}
}

func (h *splitVMTFHeuristic) toggleMode() {
	if h.mode == existMode {
		h.mode = univMode
		h.current = h.univ
	} else {
		h.mode = existMode
		h.current = h.exist
	}
	h.resetTimestamps(h.current)
	h.current.nextSearch = h.current.head
	h.ph.toggle()
}

func (h *splitVMTFHeuristic) notifyRestart() {
	h.cycleCounter++
	if h.cycleCounter >= h.modeCycles {
		h.toggleMode()
		h.cycleCounter = 0
	}
}

func (h *splitVMTFHeuristic) decisionLiteral() Lit {
	m := h.current
	v, ok := m.overflow.pop(func(Var) bool { return true })
	if !ok {
		v = m.nextSearch
		for !h.dm.isDecisionCandidate(v) && m.list[v].next != m.head {
			v = m.list[v].next
		}
		m.nextSearch = v
	}
	if h.noPhaseSaving || !h.ph.hasPhase(v) {
		h.ph.savePhase(v, phaseHeuristic(h.vs, v))
	}
	return literalFromPhase(v, h.ph.getPhase(v))
}

// vsidsModeData is one decision-mode half of a split VSIDS heuristic: its
// own activity array and heap (original_source's DecisionModeData in
// decision_heuristic_split_VSIDS.hh).
type vsidsModeData struct {
	activity      []float64
	scoreIncrement float64
	heap          *varHeap
}

func newVSIDSModeData() *vsidsModeData {
	return &vsidsModeData{scoreIncrement: 1.0, heap: newVarHeap(0)}
}

// splitVSIDSHeuristic is the split-mode counterpart of vsidsHeuristic: two
// independent activity scores and heaps, one per decision mode, toggled
// every mode_cycles restarts.
type splitVSIDSHeuristic struct {
	vs *variableStore
	dm *dependencyManager
	ph interface {
		phaseCache
		toggle()
	}

	auxiliary []bool
	exist     *vsidsModeData
	univ      *vsidsModeData
	mode      decisionMode
	current   *vsidsModeData

	alwaysBump     bool
	scoreDecay     float64
	modeCycles     uint32
	cycleCounter   uint32
	noPhaseSaving  bool
}

func newSplitVSIDSHeuristic(vs *variableStore, dm *dependencyManager, modeCycles uint32, scoreDecay float64, alwaysBump, splitPhase, startUnivMode, noPhaseSaving bool) *splitVSIDSHeuristic {
	h := &splitVSIDSHeuristic{
		vs: vs, dm: dm,
		ph:            newPhaseCache(splitPhase),
		exist:         newVSIDSModeData(),
		univ:          newVSIDSModeData(),
		modeCycles:    modeCycles,
		scoreDecay:    scoreDecay,
		alwaysBump:    alwaysBump,
		noPhaseSaving: noPhaseSaving,
	}
	if startUnivMode {
		h.mode = univMode
		h.current = h.univ
	} else {
		h.mode = existMode
		h.current = h.exist
	}
	dm.setEligibleCallback(func(v Var) { h.notifyEligible(v) })
	return h
}

func (h *splitVSIDSHeuristic) addVariable(v Var, auxiliary bool) {
	h.ph.addVariable()
	h.auxiliary = append(h.auxiliary, auxiliary)
	h.exist.activity = append(h.exist.activity, 0)
	h.univ.activity = append(h.univ.activity, 0)
	if !auxiliary {
		h.exist.heap.push(v, 0)
		h.univ.heap.push(v, 0)
	}
}

func (h *splitVSIDSHeuristic) notifyStart() {}

func (h *splitVSIDSHeuristic) notifyAssigned(l Lit) {
	h.ph.savePhase(l.Var(), litAssignment(l))
}

func (h *splitVSIDSHeuristic) notifyUnassigned(l Lit) {
	v := l.Var()
	if h.auxiliary[v] {
		return
	}
	h.exist.heap.push(v, h.exist.activity[v])
	h.univ.heap.push(v, h.univ.activity[v])
}

func (h *splitVSIDSHeuristic) notifyEligible(v Var) {
	if h.auxiliary[v] {
		return
	}
	h.exist.heap.push(v, h.exist.activity[v])
	h.univ.heap.push(v, h.univ.activity[v])
}

func (h *splitVSIDSHeuristic) bump(m *vsidsModeData, v Var) {
	m.activity[v] += m.scoreIncrement
	if m.activity[v] > 1e100 {
		for i := range m.activity {
			m.activity[i] *= 1e-100
		}
		m.scoreIncrement *= 1e-100
	}
}

func (h *splitVSIDSHeuristic) bumpConstraint(m *vsidsModeData, lits []Lit) {
	for _, l := range lits {
		if h.vs.isAssigned(l.Var()) && !h.auxiliary[l.Var()] {
			h.bump(m, l.Var())
		}
	}
	m.scoreIncrement *= 1 / h.scoreDecay
}

func (h *splitVSIDSHeuristic) isConstraintTypeOfMode(ctype ConstraintType) bool {
	if h.mode == existMode {
		return ctype == TermType
	}
	return ctype == ClauseType
}

func (h *splitVSIDSHeuristic) notifyLearned(lits []Lit, ctype ConstraintType, conflictSide []Lit) {
	if h.alwaysBump {
		if ctype == TermType {
			h.bumpConstraint(h.exist, lits)
		} else {
			h.bumpConstraint(h.univ, lits)
		}
		return
	}
	if h.isConstraintTypeOfMode(ctype) {
		h.bumpConstraint(h.current, lits)
	}
}

func (h *splitVSIDSHeuristic) notifyBacktrack(levelBefore int) {}

func (h *splitVSIDSHeuristic) toggleMode() {
	if h.mode == existMode {
		h.mode = univMode
		h.current = h.univ
	} else {
		h.mode = existMode
		h.current = h.exist
	}
	h.ph.toggle()
}

func (h *splitVSIDSHeuristic) notifyRestart() {
	h.cycleCounter++
	if h.cycleCounter >= h.modeCycles {
		h.toggleMode()
		h.cycleCounter = 0
	}
}

func (h *splitVSIDSHeuristic) decisionLiteral() Lit {
	v, ok := h.current.heap.pop(h.dm.isDecisionCandidate)
	if !ok {
		return LitUndef
	}
	if h.noPhaseSaving || !h.ph.hasPhase(v) {
		h.ph.savePhase(v, phaseHeuristic(h.vs, v))
	}
	return literalFromPhase(v, h.ph.getPhase(v))
}
