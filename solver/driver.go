package solver

import (
	"github.com/sirupsen/logrus"
)

// Result is what Solve returns: the verdict plus, for Sat, the full model
// (or, with a partial-certificate request, just the outermost block —
// PartialCertificate extracts that from Model).
type Result struct {
	Status Status
	Model  []Lit
}

// Driver runs the QCDCL main loop of spec.md §4.8, wiring together the
// variable store, constraint database, dependency manager, propagator,
// decision heuristic and learning engine built from a Config and Problem
// (grounded on gophersat's Solve/search/propagateAndSearch trio in
// solver/solver.go, generalized to the clause-and-term symmetric
// termination rule of spec.md §2).
type Driver struct {
	vs    *variableStore
	db    *constraintDB
	dm    *dependencyManager
	prop  *propagator
	heur  DecisionHeuristic
	learn *learningEngine
	rs    RestartStrategy

	cfg   Config
	stats Stats
	log   *logrus.Entry

	interrupted bool

	lastConflict        CRef
	initialConflict     bool
	initialConflictType ConstraintType
}

// NewDriver builds a Driver ready to solve pb under cfg. It returns a
// SolverError{Kind: ArgumentInvalid} if cfg violates the
// dependency-learning/heuristic cross-flag constraint of spec.md §6.
func NewDriver(pb *Problem, cfg Config, log *logrus.Entry) (*Driver, error) {
	if cfg.DepLearning == DepPrefix && cfg.Heuristic != HeuristicVMTF {
		return nil, newArgumentError("--dependency-learning=off requires --decision-heuristic=VMTF")
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	d := &Driver{cfg: cfg, log: log}
	d.vs = newVariableStore()
	d.db = newConstraintDB(cfg.DB, &d.stats)
	d.dm = newDependencyManager(d.vs, cfg.DepLearning)
	d.prop = newPropagator(d.vs, d.db, d.dm, cfg.ModelGen, newHittingSetWeights(pb, cfg.HSScale, cfg.HSExponent, cfg.HSPenalty))
	d.heur = buildHeuristic(cfg, d.vs, d.dm)
	d.learn = newLearningEngine()
	d.rs = newRestartStrategy(cfg.Restart)

	d.db.registerRelocSubscriber(func(ctype ConstraintType, relocMap []CRef) {
		d.vs.relocAntecedents(ctype, relocMap)
		d.prop.reloc(ctype, relocMap)
	})
	d.vs.registerUnassignCallback(func(l Lit) { d.dm.notifyUnassigned(l.Var()) })
	d.vs.registerUnassignCallback(func(l Lit) { d.heur.notifyUnassigned(l) })

	for _, blk := range pb.Prefix {
		for _, v := range blk.Vars {
			d.addVariable(v, blk.Type, pb.Auxiliary[v])
		}
	}

	log.WithFields(logrus.Fields{
		"variables": pb.NbVars,
		"clauses":   len(pb.Clauses),
		"heuristic": cfg.Heuristic,
	}).Info("starting search")

	if conflict, ctype := d.loadInputClauses(pb.Clauses); conflict {
		d.initialConflict = true
		d.initialConflictType = ctype
	}
	return d, nil
}

// addVariable registers v with every subsystem, in a fixed order: the
// variable store, the propagator, the dependency manager, then the
// heuristic.
func (d *Driver) addVariable(v Var, qtype QType, auxiliary bool) {
	got := d.vs.addVariable(qtype, auxiliary)
	if got != v {
		panic("variable store and problem prefix disagree on variable order")
	}
	d.prop.addVariable()
	d.dm.addVariable(v)
	d.heur.addVariable(v, auxiliary)
}

// loadInputClauses adds every input clause to the database and propagator;
// it reports whether the formula is already level-0 unsatisfiable (an
// empty or immediately-falsified clause with no decisions yet made).
func (d *Driver) loadInputClauses(clauses [][]Lit) (conflictAtLevel0 bool, ctype ConstraintType) {
	for _, lits := range clauses {
		ref := d.db.add(lits, ClauseType, false)
		forced, conflict := d.prop.addConstraint(ref, ClauseType)
		if conflict {
			d.lastConflict = ref
			return true, ClauseType
		}
		if forced != LitUndef {
			d.assignLit(forced, ref, ClauseType)
		}
	}
	ref, t, conflict := d.propagateToFixpoint()
	if conflict {
		d.lastConflict = ref
		return true, t
	}
	return false, ClauseType
}

// propagateToFixpoint drains the propagation queue and, whenever it empties,
// retries every constraint that previously couldn't get two watchers (spec.md
// §4.4: one whose first watcher is already disabling, or that has no second
// watcher — a retry may newly disable or force it once other literals have
// settled; a constraint with no usable primary literal at all is reported by
// the propagator as a conflict instead). A retry that forces a literal requeues
// propagation, so the two phases alternate until neither makes progress.
func (d *Driver) propagateToFixpoint() (CRef, ConstraintType, bool) {
	for {
		if ref, t, conflict := d.prop.propagate(d.assignLit); conflict {
			return ref, t, true
		}
		progressed := false
		for _, ct := range constraintTypes {
			forcedAny := false
			ref, t, conflict := d.prop.retryDeferred(ct, func(l Lit, ant CRef, at ConstraintType) {
				forcedAny = true
				d.assignLit(l, ant, at)
			})
			if conflict {
				return ref, t, true
			}
			progressed = progressed || forcedAny
		}
		if !progressed {
			return CRefUndef, ClauseType, false
		}
	}
}

// assignLit is the callback threaded through propagator.propagate: it
// records the forced literal on the trail and fans the notification out to
// every subsystem that needs to know (forward order; the fixed order from
// spec.md §5 governs backtrack notifications, not forward assignment). When
// l was actually forced by a constraint (ant != CRefUndef), the dependency
// manager is asked to learn from that constraint's other literals — this is
// "the propagator asserts a unit literal" trigger of spec.md §4.3, covering
// both ordinary unit propagation and the literal a freshly learned
// constraint immediately forces.
func (d *Driver) assignLit(l Lit, ant CRef, ctype ConstraintType) {
	d.vs.assign(l, ant, ctype)
	d.prop.notifyAssigned(l)
	d.dm.notifyAssigned(l.Var())
	d.heur.notifyAssigned(l)
	if ant != CRefUndef {
		d.dm.learnDependencies(l.Var(), reasonLiterals(d.db.get(ant, ctype), l))
	}
}

// reasonLiterals returns every literal of c other than exclude, the
// "falsified literals of the reason" spec.md §4.3 feeds to dependency
// learning.
func reasonLiterals(c *Constraint, exclude Lit) []Lit {
	lits := make([]Lit, 0, c.Len()-1)
	for i := 0; i < c.Len(); i++ {
		if l := c.Get(i); l != exclude {
			lits = append(lits, l)
		}
	}
	return lits
}

func (d *Driver) assignDecision(l Lit) {
	d.vs.newDecisionLevel()
	d.assignLit(l, CRefUndef, ClauseType)
	d.stats.NbDecisions++
}

// backtrackTo truncates the trail to level, in the fixed notification order
// of spec.md §5: propagator first, then (per freed literal, via the
// registered callbacks) dependency manager, then heuristic, then finally
// the heuristic's own aggregate notifyBacktrack once every literal has been
// freed.
func (d *Driver) backtrackTo(level int) {
	levelBefore := d.vs.currentLevel()
	d.prop.notifyBacktrack()
	d.vs.unassignToLevel(level)
	d.heur.notifyBacktrack(levelBefore)
}

func (d *Driver) bumpConstraint(ref CRef, ctype ConstraintType) {
	d.db.bumpActivity(ref, ctype)
}

// Interrupt requests the search stop at the next iteration, returning
// Undef; it is safe to call from a signal handler (spec.md §5).
func (d *Driver) Interrupt() {
	d.interrupted = true
}

func (d *Driver) Stats() Stats {
	return d.stats
}

// Solve runs the main QCDCL loop until a verdict or an interrupt.
func (d *Driver) Solve() Result {
	d.heur.notifyStart()

	// Initial propagation at level 0 already ran in NewDriver.
	if d.initialConflict {
		return d.terminal(d.initialConflictType)
	}
	if d.vs.allAssigned() {
		if r, done := d.tryInitialTerm(); done {
			return r
		}
	}

	for {
		if d.interrupted {
			return Result{Status: Undef}
		}

		conflict, ctype := d.propagateOnce()
		if conflict {
			if d.vs.currentLevel() == 0 {
				return d.terminal(ctype)
			}
			if r, terminal := d.handleConflict(ctype); terminal {
				return r
			}
			continue
		}

		if d.vs.allAssigned() {
			if r, done := d.tryInitialTerm(); done {
				return r
			}
			continue
		}

		l := d.heur.decisionLiteral()
		if l == LitUndef {
			// Every remaining variable is blocked on a dependency that can
			// never become assigned without a decision: unreachable under
			// a well-formed prefix, but guards against an infinite loop.
			return Result{Status: Undef}
		}
		d.assignDecision(l)
	}
}

// propagateOnce drains the propagation queue for every constraint type,
// returning the first conflict encountered (if any).
func (d *Driver) propagateOnce() (conflict bool, ctype ConstraintType) {
	ref, t, conflict := d.propagateToFixpoint()
	if conflict {
		d.lastConflict = ref
		return true, t
	}
	return false, ClauseType
}

// tryInitialTerm synthesizes an initial term once the assignment is total
// with no conflict; the term is, by construction, "empty" in the
// term-conflict sense, so it immediately drives term learning at the
// current level (spec.md §4.4 initial-term generation).
func (d *Driver) tryInitialTerm() (Result, bool) {
	lits := d.prop.generateInitialTerm()
	ref := d.db.add(lits, TermType, true)
	d.db.mark(ref, TermType) // never survives a cleanup; it only exists to drive learning
	d.lastConflict = ref
	if d.vs.currentLevel() == 0 {
		return d.terminal(TermType), true
	}
	if r, terminal := d.handleConflict(TermType); terminal {
		return r, true
	}
	return Result{}, false
}

// handleConflict learns from the most recent conflict (recorded in
// lastConflict/its type), backjumps, and asserts the new constraint. It
// returns (result, true) only when the learned constraint is the empty
// constraint at level 0 (the genuine termination case, distinct from the
// "conflict already at level 0" fast path above — this path is reached
// when a backjump target of 0 is computed mid-search).
func (d *Driver) handleConflict(ctype ConstraintType) (Result, bool) {
	d.stats.NbConflicts++
	res := d.learn.analyzeConflict(d.vs, d.db, d.lastConflict, ctype, d.vs.currentLevel(), d.bumpConstraint)
	d.db.decayActivities(ctype)

	if res.unit != LitUndef {
		d.backtrackTo(0)
		d.dm.learnDependencies(res.unit.Var(), res.conflictSide)
		d.heur.notifyLearned(nil, ctype, res.conflictSide)
		d.rs.notifyConflict(0)
		d.assignLit(res.unit, CRefUndef, ctype)
		d.stats.NbLearned[ctype]++
		return Result{}, false
	}

	backjump := 0
	if len(res.lits) > 1 {
		backjump = d.vs.decisionLevel(res.lits[1].Var())
	}
	d.backtrackTo(backjump)

	ref := d.db.add(res.lits, ctype, true)
	c := d.db.get(ref, ctype)
	c.setLbd(res.lbd)
	d.stats.NbLearned[ctype]++

	forced, conflictAfterAdd := d.prop.addConstraint(ref, ctype)
	d.heur.notifyLearned(res.lits, ctype, res.conflictSide)
	d.rs.notifyConflict(res.lbd)

	if conflictAfterAdd {
		// The freshly learned constraint is itself empty at its own
		// generating level: only possible at level 0, already handled by
		// the caller's currentLevel()==0 check before this function is
		// entered for the unit case; for the multi-literal case it cannot
		// happen because res.lits[0] is always unassigned after the
		// backjump.
		return d.terminal(ctype), true
	}
	// Assign before any possible cleanup: once ref is an assigned
	// variable's antecedent, protectedSet shields it from db.clean, and
	// vs/propagator pick up its relocated handle through the reloc
	// subscribers clean triggers. Using ref for anything after clean runs
	// would risk reading through a handle compaction already rewrote.
	if forced != LitUndef {
		d.assignLit(forced, ref, ctype)
	}

	if d.db.shouldGrow(ctype) {
		d.db.clean(ctype, func(ref CRef) bool { return d.vs.protectedSet(ctype)[ref] })
		d.db.growBudget(ctype)
		d.stats.NbCleanups[ctype]++
	}

	if d.rs.shouldRestart() {
		d.backtrackTo(0)
		d.rs.notifyRestart()
		d.heur.notifyRestart()
		d.stats.NbRestarts++
	}

	return Result{}, false
}

// terminal builds the final Result for a conflict of ctype at level 0:
// ClauseType means UNSAT, TermType means SAT, per spec.md §2's termination
// rule.
func (d *Driver) terminal(ctype ConstraintType) Result {
	if ctype == ClauseType {
		d.log.Info("UNSAT")
		return Result{Status: Unsat}
	}
	d.log.Info("SAT")
	return Result{Status: Sat, Model: generateModelSimple(d.vs)}
}

// PartialCertificate returns the assignment restricted to the outermost
// quantifier block of pb, in the signed-DIMACS form spec.md §6 prints with
// --partial-certificate.
func PartialCertificate(pb *Problem, model []Lit) []Lit {
	if len(pb.Prefix) == 0 || len(model) == 0 {
		return nil
	}
	outer := make(map[Var]bool, len(pb.Prefix[0].Vars))
	for _, v := range pb.Prefix[0].Vars {
		outer[v] = true
	}
	cert := make([]Lit, 0, len(outer))
	for _, l := range model {
		if outer[l.Var()] {
			cert = append(cert, l)
		}
	}
	return cert
}
