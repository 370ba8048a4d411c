package solver

// DecisionHeuristic is the capability interface every decision heuristic
// implements (spec.md §4.5 / §9: "a small capability interface dispatched
// polymorphically", grounded on original_source/src/decision_heuristic.hh's
// virtual method set). The driver talks to whichever heuristic is
// configured only through this interface.
type DecisionHeuristic interface {
	addVariable(v Var, auxiliary bool)
	notifyStart()
	notifyAssigned(l Lit)
	notifyUnassigned(l Lit)
	notifyEligible(v Var)
	notifyLearned(lits []Lit, ctype ConstraintType, conflictSide []Lit)
	notifyBacktrack(levelBefore int)
	notifyRestart()
	decisionLiteral() Lit
}

// phaseSaving is the single-mode phase cache shared by every non-split
// heuristic (grounded on original_source/src/phase_saving.hh). hasPhase
// reports whether a saved phase exists at all — the original's inverted
// `== l_Undef` in SplitPhaseSaving was a bug (spec.md open question,
// DESIGN.md), fixed here uniformly for both variants.
type phaseSaving struct {
	saved []Assignment
}

func (ps *phaseSaving) addVariable() {
	ps.saved = append(ps.saved, AssignUndef)
}

func (ps *phaseSaving) hasPhase(v Var) bool {
	return ps.saved[v] != AssignUndef
}

func (ps *phaseSaving) getPhase(v Var) Assignment {
	return ps.saved[v]
}

func (ps *phaseSaving) savePhase(v Var, a Assignment) {
	ps.saved[v] = a
}

// decisionMode distinguishes the existential/universal halves of a split
// heuristic (original_source/src/decision_heuristic_split_VMTF.hh's
// DecisionMode enum).
type decisionMode int

const (
	existMode decisionMode = iota
	univMode
)

// splitPhaseSaving keeps two independent phase caches, one per decision
// mode, switched by toggleMode (spec.md's split heuristics alternate
// between proving the matrix satisfiable and proving it falsified).
type splitPhaseSaving struct {
	mode    decisionMode
	exist   []Assignment
	univ    []Assignment
	current *[]Assignment
}

func newSplitPhaseSaving() *splitPhaseSaving {
	sps := &splitPhaseSaving{}
	sps.current = &sps.exist
	return sps
}

func (sps *splitPhaseSaving) addVariable() {
	sps.exist = append(sps.exist, AssignUndef)
	sps.univ = append(sps.univ, AssignUndef)
}

func (sps *splitPhaseSaving) toggleMode() {
	if sps.mode == existMode {
		sps.mode = univMode
		sps.current = &sps.univ
	} else {
		sps.mode = existMode
		sps.current = &sps.exist
	}
}

func (sps *splitPhaseSaving) hasPhase(v Var) bool {
	return (*sps.current)[v] != AssignUndef
}

func (sps *splitPhaseSaving) getPhase(v Var) Assignment {
	return (*sps.current)[v]
}

func (sps *splitPhaseSaving) savePhase(v Var, a Assignment) {
	(*sps.current)[v] = a
}

// phaseHeuristic picks the polarity for a freshly decided variable that has
// no saved phase yet: existentials default to false, universals to true,
// mirroring Qute's default "satisfy nothing yet" bias.
func phaseHeuristic(vs *variableStore, v Var) Assignment {
	if vs.qtypeOf(v) == Existential {
		return AssignFalse
	}
	return AssignTrue
}

func literalFromPhase(v Var, a Assignment) Lit {
	return v.SignedLit(a == AssignFalse)
}
