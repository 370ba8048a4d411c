package solver

// watchedRecord is one entry in a per-literal watch bucket: a reference to
// the watched constraint, plus the other watched literal ("blocker") so a
// quick disables() check can skip re-examining the constraint entirely.
type watchedRecord struct {
	ref     CRef
	blocker Lit
}

// propagator is the watched-literal propagator of spec.md §4.4: it enforces
// unit propagation for clauses and terms symmetrically under QBF quantifier
// dependencies, and synthesizes an initial term once the assignment is
// total (initial_term.go).
type propagator struct {
	vs *variableStore
	db *constraintDB
	dm *dependencyManager

	// watchedBy[t][l] holds every constraint of type t currently watched
	// at the literal value that triggers when l enters the trail
	// (l.Negation() for clauses, l itself for terms — see watchKey).
	watchedBy [2][]watchedRecordList

	// constraintsWithoutTwoWatchers holds constraints that, given their
	// content or the current assignment, cannot be given two watchers
	// right now; the driver retries them every time the propagation queue
	// drains (Driver.propagateToFixpoint).
	constraintsWithoutTwoWatchers [2][]CRef

	queue []Lit
	qhead int

	// modelGen selects how an initial term is synthesized once
	// the assignment is total with no conflict (initial_term.go).
	modelGen ModelGenStrategy
	hsWeight hittingSetWeights
}

type watchedRecordList = []watchedRecord

func newPropagator(vs *variableStore, db *constraintDB, dm *dependencyManager, modelGen ModelGenStrategy, hs hittingSetWeights) *propagator {
	return &propagator{vs: vs, db: db, dm: dm, modelGen: modelGen, hsWeight: hs}
}

// addVariable allocates the two new literal slots (positive and negative)
// in every type's watch-bucket table.
func (p *propagator) addVariable() {
	for _, t := range constraintTypes {
		p.watchedBy[t] = append(p.watchedBy[t], nil, nil)
	}
}

// watchKey returns the literal value whose entry into the trail should
// trigger re-examination of a constraint watched at w: for clauses that is
// w's negation becoming true (w itself just went false); for terms it is w
// itself becoming true, the dual "dangerous" direction (spec.md §4.4,
// glossary "Disabling polarity").
func watchKey(w Lit, t ConstraintType) Lit {
	if t == ClauseType {
		return w.Negation()
	}
	return w
}

// disablingValue is the assignment that makes a literal of constraint type
// t trivially harmless to the constraint: true for a clause (already
// satisfied), false for a term (already falsified) — spec.md's glossary
// "disabling polarity".
func disablingValue(t ConstraintType) Assignment {
	if t == ClauseType {
		return AssignTrue
	}
	return AssignFalse
}

func (p *propagator) disables(l Lit, t ConstraintType) bool {
	v := p.vs.litValue(l)
	return v != AssignUndef && v == disablingValue(t)
}

func (p *propagator) isPrimary(l Lit, t ConstraintType) bool {
	return p.vs.qtypeOf(l.Var()) == t.primaryType()
}

func (p *propagator) isUnassignedPrimary(l Lit, t ConstraintType) bool {
	return p.isPrimary(l, t) && p.vs.litValue(l) == AssignUndef
}

func (p *propagator) isUnassignedOrDisablingPrimary(l Lit, t ConstraintType) bool {
	return p.isPrimary(l, t) && (p.vs.litValue(l) == AssignUndef || p.disables(l, t))
}

// isBlockedSecondary reports whether l is an unassigned literal of the
// non-primary quantifier type whose variable the primary depends on — the
// "blocked secondary" of spec.md's glossary.
func (p *propagator) isBlockedSecondary(l, primary Lit, t ConstraintType) bool {
	return !p.isPrimary(l, t) && p.vs.litValue(l) == AssignUndef && p.dm.dependsOn(primary.Var(), l.Var())
}

func (p *propagator) isBlockedOrDisablingSecondary(l, primary Lit, t ConstraintType) bool {
	return p.disables(l, t) || p.isBlockedSecondary(l, primary, t)
}

// findFirstWatcher returns the index of an unassigned-or-disabling primary
// literal, or -1 if none exists among c's literals.
func (p *propagator) findFirstWatcher(c *Constraint, t ConstraintType) int {
	for i := 0; i < c.Len(); i++ {
		if p.isUnassignedOrDisablingPrimary(c.Get(i), t) {
			return i
		}
	}
	return -1
}

// findSecondWatcher returns the index of a companion watcher for c.Get(0)
// (already established as the first watcher): another unassigned-or-
// disabling primary, else a blocked-or-disabling secondary dependent on
// it, else — the fallback of spec.md §9.4 — the assigned literal the
// primary depends on with the highest decision level, so that backtracking
// past that level will naturally promote this constraint back into a
// correctly re-examinable state.
func (p *propagator) findSecondWatcher(c *Constraint, t ConstraintType) int {
	primary := c.Get(0)
	for i := 1; i < c.Len(); i++ {
		if p.isUnassignedOrDisablingPrimary(c.Get(i), t) {
			return i
		}
	}
	for i := 1; i < c.Len(); i++ {
		if p.isBlockedOrDisablingSecondary(c.Get(i), primary, t) {
			return i
		}
	}
	best, bestLevel := -1, -1
	for i := 1; i < c.Len(); i++ {
		v := c.Get(i).Var()
		if p.vs.isAssigned(v) && p.dm.dependsOn(primary.Var(), v) {
			if lvl := p.vs.decisionLevel(v); lvl > bestLevel {
				bestLevel, best = lvl, i
			}
		}
	}
	return best
}

func (p *propagator) registerWatch(ref CRef, t ConstraintType, pos int) {
	c := p.db.get(ref, t)
	l := c.Get(pos)
	other := c.Get(1 - pos)
	key := watchKey(l, t)
	p.watchedBy[t][key] = append(p.watchedBy[t][key], watchedRecord{ref: ref, blocker: other})
}

// tryWatch (re)derives valid watcher positions for ref from scratch: it is
// used both when a constraint is first added and whenever an existing
// watch is disturbed, trading the micro-optimization of an incremental
// "only fix the watcher that was hit" update for a single, uniformly
// correct derivation. It returns a literal to force if the constraint is
// now unit, or reports a genuine conflict (spec.md §4.4 "propagation
// cycle").
func (p *propagator) tryWatch(ref CRef, t ConstraintType) (forced Lit, conflict bool) {
	c := p.db.get(ref, t)
	pos0 := p.findFirstWatcher(c, t)
	if pos0 == -1 {
		// No primary literal at all is the same shape as every primary
		// being falsified: universal reduction leaves nothing that could
		// ever satisfy the constraint, so it is an immediate conflict
		// rather than something to retry once more literals settle.
		return LitUndef, true
	}
	c.swap(0, pos0)
	if p.disables(c.Get(0), t) {
		p.constraintsWithoutTwoWatchers[t] = append(p.constraintsWithoutTwoWatchers[t], ref)
		return LitUndef, false
	}
	pos1 := p.findSecondWatcher(c, t)
	if pos1 == -1 {
		p.constraintsWithoutTwoWatchers[t] = append(p.constraintsWithoutTwoWatchers[t], ref)
		return c.Get(0), false
	}
	c.swap(1, pos1)
	p.registerWatch(ref, t, 0)
	p.registerWatch(ref, t, 1)
	return LitUndef, false
}

// addConstraint watches a freshly added constraint (input or learnt). If it
// turns out to already be unit or in conflict given the current assignment,
// that is reported the same way tryWatch always does. A single-literal
// constraint is not special-cased here: tryWatch already forces it when
// that literal is primary, and correctly conflicts when it isn't (a lone
// secondary literal is universal reduction's empty constraint).
func (p *propagator) addConstraint(ref CRef, t ConstraintType) (forced Lit, conflict bool) {
	return p.tryWatch(ref, t)
}

// retryDeferred re-attempts watching every constraint that previously
// could not get two watchers. The driver calls this every time the
// propagation queue drains, at whatever decision level it is on.
func (p *propagator) retryDeferred(t ConstraintType, assign func(Lit, CRef, ConstraintType)) (CRef, ConstraintType, bool) {
	pending := p.constraintsWithoutTwoWatchers[t]
	p.constraintsWithoutTwoWatchers[t] = pending[:0]
	for _, ref := range pending {
		forced, conflict := p.tryWatch(ref, t)
		if conflict {
			return ref, t, true
		}
		if forced != LitUndef {
			assign(forced, ref, t)
		}
	}
	return CRefUndef, ClauseType, false
}

func (p *propagator) notifyAssigned(l Lit) {
	p.queue = append(p.queue, l)
}

func (p *propagator) notifyBacktrack() {
	p.queue = p.queue[:0]
	p.qhead = 0
}

// propagate drains the propagation queue, forcing literals through assign
// as they become unit, until either the queue empties (no conflict) or a
// constraint becomes empty.
func (p *propagator) propagate(assign func(Lit, CRef, ConstraintType)) (CRef, ConstraintType, bool) {
	for p.qhead < len(p.queue) {
		l := p.queue[p.qhead]
		p.qhead++
		for _, t := range constraintTypes {
			recs := p.watchedBy[t][l]
			p.watchedBy[t][l] = nil
			for idx, rec := range recs {
				if p.disables(rec.blocker, t) {
					p.watchedBy[t][l] = append(p.watchedBy[t][l], rec)
					continue
				}
				forced, conflict := p.tryWatch(rec.ref, t)
				if conflict {
					p.watchedBy[t][l] = append(p.watchedBy[t][l], recs[idx+1:]...)
					return rec.ref, t, true
				}
				if forced != LitUndef {
					assign(forced, rec.ref, t)
				}
			}
		}
	}
	return CRefUndef, ClauseType, false
}

// reloc rewrites every CRef this propagator holds after a constraint
// database compaction.
func (p *propagator) reloc(t ConstraintType, relocMap []CRef) {
	for lit := range p.watchedBy[t] {
		recs := p.watchedBy[t][lit]
		kept := recs[:0]
		for _, r := range recs {
			if nr := relocMap[r.ref]; nr != CRefUndef {
				r.ref = nr
				kept = append(kept, r)
			}
		}
		p.watchedBy[t][lit] = kept
	}
	kept := p.constraintsWithoutTwoWatchers[t][:0]
	for _, ref := range p.constraintsWithoutTwoWatchers[t] {
		if nr := relocMap[ref]; nr != CRefUndef {
			kept = append(kept, nr)
		}
	}
	p.constraintsWithoutTwoWatchers[t] = kept
}
