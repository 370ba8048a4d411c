package solver

import "sort"

// VMTFVariant selects which of the three VMTF flavors a vmtfHeuristic
// behaves as (spec.md §4.5/§9): dep-learn moves every assigned variable of
// a freshly learned constraint to the front of the doubly-linked list;
// order does the same after sorting those variables by variable id; prefix
// never reorders the list. How dependencies are learned is handled entirely
// by the configured dependencyManager, not by the heuristic.
type VMTFVariant int

const (
	VMTFDepLearn VMTFVariant = iota
	VMTFPrefix
	VMTFOrder
)

func ParseVMTFVariant(s string) (VMTFVariant, bool) {
	switch s {
	case "dep-learn":
		return VMTFDepLearn, true
	case "prefix":
		return VMTFPrefix, true
	case "order":
		return VMTFOrder, true
	default:
		return VMTFDepLearn, false
	}
}

// vmtfEntry is one node of the circular doubly-linked "move to front"
// list, dense-array style (original_source/src/decision_heuristic_split_VMTF.hh's
// ListEntry), with VarUndef as the link sentinel instead of the C++ index-0
// dummy node.
type vmtfEntry struct {
	prev, next Var
	timestamp  uint32
}

// vmtfHeuristic implements VMTF decision making: a move-to-front list over
// decision candidates plus an overflow heap (keyed by timestamp, see
// heap.go) that lets notifyEligible cheaply advance the search cursor past
// variables unblocked since the last full list scan.
type vmtfHeuristic struct {
	vs *variableStore
	dm *dependencyManager
	ph phaseSaving

	variant    VMTFVariant
	auxiliary  []bool
	list       []vmtfEntry
	head       Var
	nextSearch Var
	overflow   *varHeap
	timestamp  uint32

	noPhaseSaving bool
}

func newVMTFHeuristic(vs *variableStore, dm *dependencyManager, variant VMTFVariant, noPhaseSaving bool) *vmtfHeuristic {
	h := &vmtfHeuristic{vs: vs, dm: dm, variant: variant, noPhaseSaving: noPhaseSaving, head: VarUndef, nextSearch: VarUndef}
	h.overflow = newVarHeap(0)
	dm.setEligibleCallback(func(v Var) { h.notifyEligible(v) })
	return h
}

func (h *vmtfHeuristic) addVariable(v Var, auxiliary bool) {
	h.ph.addVariable()
	h.auxiliary = append(h.auxiliary, auxiliary)
	h.list = append(h.list, vmtfEntry{prev: v, next: v})
	if auxiliary {
		return
	}
	if h.head == VarUndef {
		h.head = v
		h.nextSearch = v
		return
	}
	h.insertBefore(v, h.head)
}

// insertBefore splices v into the circular list immediately before at.
func (h *vmtfHeuristic) insertBefore(v, at Var) {
	prev := h.list[at].prev
	h.list[prev].next = v
	h.list[v].prev = prev
	h.list[v].next = at
	h.list[at].prev = v
}

func (h *vmtfHeuristic) unlink(v Var) {
	prev, next := h.list[v].prev, h.list[v].next
	h.list[prev].next = next
	h.list[next].prev = prev
	if h.head == v {
		h.head = next
	}
}

func (h *vmtfHeuristic) moveToFront(v Var) {
	if h.auxiliary[v] || v == h.head {
		return
	}
	h.unlink(v)
	h.list[v].prev = v
	h.list[v].next = v
	h.insertBefore(v, h.head)
	h.head = v
}

func (h *vmtfHeuristic) notifyStart() {
	if h.head == VarUndef {
		return
	}
	v := h.head
	for {
		h.list[v].timestamp = h.timestamp
		h.timestamp++
		v = h.list[v].next
		if v == h.head {
			break
		}
	}
}

func (h *vmtfHeuristic) notifyAssigned(l Lit) {
	v := l.Var()
	h.ph.savePhase(v, litAssignment(l))
}

func (h *vmtfHeuristic) notifyUnassigned(l Lit) {}

func (h *vmtfHeuristic) notifyEligible(v Var) {
	if h.auxiliary[v] {
		return
	}
	if h.list[v].timestamp > h.list[h.nextSearch].timestamp {
		h.overflow.push(v, float64(h.list[v].timestamp))
	}
}

func (h *vmtfHeuristic) notifyLearned(lits []Lit, ctype ConstraintType, conflictSide []Lit) {
	if h.variant == VMTFPrefix {
		return
	}
	assigned := make([]Var, 0, len(lits))
	for _, l := range lits {
		if h.vs.isAssigned(l.Var()) {
			assigned = append(assigned, l.Var())
		}
	}
	if h.variant == VMTFOrder {
		sort.Slice(assigned, func(i, j int) bool { return assigned[i] > assigned[j] })
	}
	for _, v := range assigned {
		h.moveToFront(v)
	}
}

func (h *vmtfHeuristic) notifyBacktrack(levelBefore int) {
	for {
		v, ok := h.overflow.pop(func(Var) bool { return true })
		if !ok {
			break
		}
		w := h.dm.watcherOf(v)
		unblocked := w == VarUndef || (h.vs.isAssigned(w) && h.vs.decisionLevel(w) < levelBefore)
		if unblocked && h.list[v].timestamp > h.list[h.nextSearch].timestamp {
			h.nextSearch = v
		}
	}
}

func (h *vmtfHeuristic) notifyRestart() {}

func (h *vmtfHeuristic) decisionLiteral() Lit {
	v := h.nextSearch
	for !h.dm.isDecisionCandidate(v) {
		v = h.list[v].next
	}
	h.nextSearch = v
	if h.noPhaseSaving || !h.ph.hasPhase(v) {
		h.ph.savePhase(v, phaseHeuristic(h.vs, v))
	}
	return literalFromPhase(v, h.ph.getPhase(v))
}
