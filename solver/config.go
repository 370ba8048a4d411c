package solver

// HeuristicKind selects which decision-heuristic implementation a Config
// builds (spec.md §4.5).
type HeuristicKind int

const (
	HeuristicVMTF HeuristicKind = iota
	HeuristicVSIDS
	HeuristicSplitVMTF
	HeuristicSplitVSIDS
	HeuristicCQB
	HeuristicEMAB
	HeuristicSGDB
)

func ParseHeuristicKind(s string) (HeuristicKind, bool) {
	switch s {
	case "VMTF":
		return HeuristicVMTF, true
	case "VSIDS":
		return HeuristicVSIDS, true
	case "split-VMTF":
		return HeuristicSplitVMTF, true
	case "split-VSIDS":
		return HeuristicSplitVSIDS, true
	case "CQB":
		return HeuristicCQB, true
	case "EMAB":
		return HeuristicEMAB, true
	case "SGDB":
		return HeuristicSGDB, true
	default:
		return HeuristicVMTF, false
	}
}

// Config gathers every tunable of the search (SPEC_FULL.md §7's CLI flag
// surface), independent of how it was parsed.
type Config struct {
	Heuristic   HeuristicKind
	VMTFVariant VMTFVariant

	NoPhaseSaving    bool
	BumpConflictSide bool

	SplitModeCycles    uint32
	SplitAlwaysMove    bool
	SplitMoveByPrefix  bool
	SplitAlwaysBump    bool
	SplitPhaseSaving   bool
	SplitStartUnivMode bool
	SplitScoreDecay    float64

	SGDBInitialLR float64
	SGDBLRDecay   float64
	SGDBLRMin     float64
	SGDBLambda    float64

	DepLearning DepLearningMode
	ModelGen    ModelGenStrategy

	HSScale    float64
	HSExponent float64
	HSPenalty  float64

	Restart RestartConfig
	DB      DBConfig
}

// DefaultConfig mirrors Qute's documented flag defaults for everything not
// already covered by DefaultRestartConfig/DefaultDBConfig.
func DefaultConfig() Config {
	return Config{
		Heuristic:       HeuristicVMTF,
		VMTFVariant:     VMTFDepLearn,
		SplitModeCycles: 1,
		SplitScoreDecay: defaultVarDecay,
		SGDBInitialLR:   1.0,
		SGDBLRDecay:     0.000001,
		SGDBLRMin:       0.05,
		SGDBLambda:      0.0000001,
		DepLearning:     DepAll,
		ModelGen:        ModelGenSimple,
		HSScale:         1.0,
		HSExponent:      1.0,
		HSPenalty:       0.5,
		Restart:         DefaultRestartConfig(),
		DB:              DefaultDBConfig(),
	}
}

// buildHeuristic constructs the configured DecisionHeuristic, wiring it to
// dm's eligible-notification callback as every constructor above already
// does internally.
func buildHeuristic(cfg Config, vs *variableStore, dm *dependencyManager) DecisionHeuristic {
	switch cfg.Heuristic {
	case HeuristicVSIDS:
		return newVSIDSHeuristic(vs, dm, cfg.BumpConflictSide, cfg.NoPhaseSaving)
	case HeuristicSplitVMTF:
		return newSplitVMTFHeuristic(vs, dm, cfg.SplitModeCycles, cfg.SplitAlwaysMove, cfg.SplitMoveByPrefix, cfg.SplitPhaseSaving, cfg.SplitStartUnivMode, cfg.NoPhaseSaving)
	case HeuristicSplitVSIDS:
		return newSplitVSIDSHeuristic(vs, dm, cfg.SplitModeCycles, cfg.SplitScoreDecay, cfg.SplitAlwaysBump, cfg.SplitPhaseSaving, cfg.SplitStartUnivMode, cfg.NoPhaseSaving)
	case HeuristicCQB:
		return newCQBHeuristic(vs, dm, cfg.NoPhaseSaving)
	case HeuristicEMAB:
		return newEMABHeuristic(vs, dm, cfg.NoPhaseSaving)
	case HeuristicSGDB:
		return newSGDBHeuristic(vs, dm, cfg.SGDBInitialLR, cfg.SGDBLRDecay, cfg.SGDBLRMin, cfg.SGDBLambda, cfg.NoPhaseSaving)
	default:
		return newVMTFHeuristic(vs, dm, cfg.VMTFVariant, cfg.NoPhaseSaving)
	}
}
