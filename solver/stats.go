package solver

// Stats are aggregate counters about the resolution process, provided for
// informational purposes (spec.md §6 "--print-stats"). Indexing by
// ConstraintType keeps the clause/term symmetry visible: Stats.NbLearned[0]
// is clauses learned, Stats.NbLearned[1] is terms learned.
type Stats struct {
	NbRestarts  int
	NbConflicts int
	NbDecisions int
	NbLearned   [2]int
	NbDeleted   [2]int
	NbCleanups  [2]int
}
