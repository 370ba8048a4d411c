package solver

import "sort"

// relocSubscriber is called after a compaction with the mapping from old to
// new CRef for the given constraint type; relocMap[old] == CRefUndef means
// the constraint at that old position was deleted. Every subsystem that
// stores a CRef (the propagator's watch lists, the variable store's
// antecedents) registers one so its handles stay valid across cleanup.
type relocSubscriber func(ctype ConstraintType, relocMap []CRef)

// constraintDB is the exclusive owner of constraint storage (spec.md §3
// Ownership). It stores clauses and terms in two parallel packed arenas
// indexed by CRef, performs activity/LBD accounting, and compacts the
// arena on cleanup, rewriting every registered subsystem's handles.
type constraintDB struct {
	arena      [2][]*Constraint // arena[type][ref], ref 0 reserved (CRefUndef)
	inputCount [2]int           // highest ref (inclusive) that is an input (non-learnt) constraint

	activityInc   [2]float64
	activityDecay float64

	lbdThreshold         int
	useActivityThreshold bool
	removalRatio         [2]float64

	budget    [2]int
	increment [2]int

	subscribers []relocSubscriber

	stats *Stats
}

func newConstraintDB(cfg DBConfig, stats *Stats) *constraintDB {
	db := &constraintDB{
		activityDecay:        cfg.ActivityDecay,
		lbdThreshold:         cfg.LBDThreshold,
		useActivityThreshold: cfg.UseActivityThreshold,
		stats:                stats,
	}
	db.activityInc[ClauseType] = 1
	db.activityInc[TermType] = 1
	db.removalRatio[ClauseType] = cfg.ClauseRemovalRatio
	db.removalRatio[TermType] = cfg.TermRemovalRatio
	db.budget[ClauseType] = cfg.InitialClauseDBSize
	db.budget[TermType] = cfg.InitialTermDBSize
	db.increment[ClauseType] = cfg.ClauseDBIncrement
	db.increment[TermType] = cfg.TermDBIncrement
	for _, t := range constraintTypes {
		db.arena[t] = make([]*Constraint, 1, 64) // index 0 unused
	}
	return db
}

// DBConfig configures the constraint database's growth and cleanup policy;
// it mirrors Qute's command-line options for the database (SPEC_FULL.md §7).
type DBConfig struct {
	InitialClauseDBSize  int
	InitialTermDBSize    int
	ClauseDBIncrement    int
	TermDBIncrement      int
	ClauseRemovalRatio   float64
	TermRemovalRatio     float64
	UseActivityThreshold bool
	ActivityDecay        float64
	LBDThreshold         int
}

// DefaultDBConfig mirrors Qute's documented flag defaults.
func DefaultDBConfig() DBConfig {
	return DBConfig{
		InitialClauseDBSize: 4000,
		InitialTermDBSize:   500,
		ClauseDBIncrement:   4000,
		TermDBIncrement:     500,
		ClauseRemovalRatio:  0.5,
		TermRemovalRatio:    0.5,
		ActivityDecay:       0.999,
		LBDThreshold:        2,
	}
}

func (db *constraintDB) registerRelocSubscriber(fn relocSubscriber) {
	db.subscribers = append(db.subscribers, fn)
}

// add stores a new constraint and returns its handle. Input constraints
// must be added before any learnt constraint of the same type, since
// inputCount marks the boundary between the two.
func (db *constraintDB) add(lits []Lit, ctype ConstraintType, learnt bool) CRef {
	c := newConstraint(lits, learnt)
	ref := CRef(len(db.arena[ctype]))
	db.arena[ctype] = append(db.arena[ctype], c)
	if !learnt {
		db.inputCount[ctype] = int(ref)
	}
	return ref
}

func (db *constraintDB) get(ref CRef, ctype ConstraintType) *Constraint {
	return db.arena[ctype][ref]
}

func (db *constraintDB) bumpActivity(ref CRef, ctype ConstraintType) {
	c := db.arena[ctype][ref]
	if !c.learnt {
		return
	}
	c.activity += float32(db.activityInc[ctype])
	if c.activity > 1e30 {
		for _, c2 := range db.arena[ctype][db.inputCount[ctype]+1:] {
			c2.activity *= 1e-30
		}
		db.activityInc[ctype] *= 1e-30
	}
}

func (db *constraintDB) decayActivities(ctype ConstraintType) {
	db.activityInc[ctype] *= 1 / db.activityDecay
}

func (db *constraintDB) mark(ref CRef, ctype ConstraintType) {
	db.arena[ctype][ref].mark()
}

// numLearnt returns how many learnt constraints of ctype are currently
// stored (marked ones included, until the next compaction).
func (db *constraintDB) numLearnt(ctype ConstraintType) int {
	return len(db.arena[ctype]) - db.inputCount[ctype] - 1
}

// learntRefs returns the handles of every learnt constraint of ctype.
func (db *constraintDB) learntRefs(ctype ConstraintType) []CRef {
	refs := make([]CRef, 0, db.numLearnt(ctype))
	for r := db.inputCount[ctype] + 1; r < len(db.arena[ctype]); r++ {
		refs = append(refs, CRef(r))
	}
	return refs
}

// inputRefs returns the handles of every input (non-learnt) constraint of
// ctype.
func (db *constraintDB) inputRefs(ctype ConstraintType) []CRef {
	refs := make([]CRef, 0, db.inputCount[ctype])
	for r := 1; r <= db.inputCount[ctype]; r++ {
		refs = append(refs, CRef(r))
	}
	return refs
}

// clean applies the cleaning policy (spec.md §4.2): sort learnt
// constraints by activity ascending and mark the configured fraction for
// deletion, except those with LBD <= threshold or for which isProtected
// returns true (typically: "is the antecedent of an assigned variable").
// It then compacts the arena and notifies every registered subscriber.
func (db *constraintDB) clean(ctype ConstraintType, isProtected func(CRef) bool) {
	refs := db.learntRefs(ctype)
	sort.SliceStable(refs, func(i, j int) bool {
		return db.arena[ctype][refs[i]].activity < db.arena[ctype][refs[j]].activity
	})
	toRemove := int(float64(len(refs)) * db.removalRatio[ctype])
	if db.useActivityThreshold && len(refs) > 0 {
		threshold := db.arena[ctype][refs[len(refs)/2]].activity
		toRemove = 0
		for _, r := range refs {
			if db.arena[ctype][r].activity < threshold {
				toRemove++
			}
		}
	}
	removed := 0
	for _, r := range refs {
		if removed >= toRemove {
			break
		}
		c := db.arena[ctype][r]
		if c.lbd() <= db.lbdThreshold || isProtected(r) {
			continue
		}
		c.mark()
		removed++
		if db.stats != nil {
			db.stats.NbDeleted[ctype]++
		}
	}
	db.relocateAll(ctype)
}

// relocateAll compacts the arena of ctype, discarding marked constraints,
// and rewrites every subscriber's handles through relocMap.
func (db *constraintDB) relocateAll(ctype ConstraintType) {
	old := db.arena[ctype]
	relocMap := make([]CRef, len(old))
	newArena := make([]*Constraint, 1, len(old))
	newInputCount := 0
	for ref := 1; ref < len(old); ref++ {
		c := old[ref]
		if c.marked {
			relocMap[ref] = CRefUndef
			continue
		}
		newRef := CRef(len(newArena))
		newArena = append(newArena, c)
		relocMap[ref] = newRef
		if !c.learnt {
			newInputCount = int(newRef)
		}
	}
	db.arena[ctype] = newArena
	db.inputCount[ctype] = newInputCount
	for _, sub := range db.subscribers {
		sub(ctype, relocMap)
	}
}

// shouldGrow reports whether the learnt count of ctype has crossed the
// current budget, in which case cleanup should run and the budget grows.
func (db *constraintDB) shouldGrow(ctype ConstraintType) bool {
	return db.numLearnt(ctype) >= db.budget[ctype]
}

func (db *constraintDB) growBudget(ctype ConstraintType) {
	db.budget[ctype] += db.increment[ctype]
}
