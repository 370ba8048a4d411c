package solver

import "github.com/rhartert/yagh"

// varHeap is a priority queue over variables ordered by a float64 score
// (activity, quality, or a VMTF timestamp). It wraps
// github.com/rhartert/yagh's generic binary heap, which stores priorities
// in an external dense array keyed by int — exactly the "priority queue
// with external key array" shape spec.md §9 calls for — rather than the
// bespoke Minisat-style heap gophersat carries in queue.go. Used by every
// decision heuristic: VSIDS, split-VSIDS, CQB, EMAB and SGDB order candidates with it,
// and VMTF and split-VMTF keep their overflow queues in it.
type varHeap struct {
	h     *yagh.IntMap[float64]
	count int
}

func newVarHeap(n int) *varHeap {
	return &varHeap{h: yagh.New[float64](n)}
}

func (vh *varHeap) contains(v Var) bool {
	return vh.h.Contains(int(v))
}

// push inserts or updates v's key. Priorities are stored negated so that
// the variable with the highest score (activity, or reward-learning
// quality) is the one yagh's min-heap pops first.
func (vh *varHeap) push(v Var, score float64) {
	if need := int(v) + 1 - vh.h.Capa(); need > 0 {
		vh.h.GrowBy(need)
	}
	if !vh.contains(v) {
		vh.count++
	}
	vh.h.Put(int(v), -score)
}

// pop removes and returns the variable with the highest score among those
// for which isCandidate returns true, discarding stale entries (variables
// that got assigned, or whose watched dependency is unsatisfied) along the
// way.
func (vh *varHeap) pop(isCandidate func(Var) bool) (Var, bool) {
	for {
		next, ok := vh.h.Pop()
		if !ok {
			return VarUndef, false
		}
		vh.count--
		v := Var(next.Elem)
		if !isCandidate(v) {
			continue
		}
		return v, true
	}
}

func (vh *varHeap) empty() bool {
	return vh.count == 0
}
