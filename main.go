// Command goqute solves a QBF given in QDIMACS or QCIR-14 format using
// quantified conflict-driven clause and term learning.
package main

import (
	"bytes"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/crillab/goqute/solver"
)

func main() {
	app := &cli.App{
		Name:   "goqute",
		Usage:  "a QCDCL solver for quantified Boolean formulas",
		Flags:  flags(),
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		if se, ok := err.(*solver.SolverError); ok {
			fmt.Fprintln(os.Stderr, se.Error())
			os.Exit(se.Kind.ExitCode())
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "enable debug logging"},
		&cli.BoolFlag{Name: "print-stats", Usage: "print aggregate counters after solving"},
		&cli.BoolFlag{Name: "partial-certificate", Usage: "print the outermost-block assignment before the verdict"},

		&cli.StringFlag{Name: "decision-heuristic", Value: "VMTF", Usage: "VMTF|VSIDS|split-VMTF|split-VSIDS|CQB|EMAB|SGDB"},
		&cli.StringFlag{Name: "vmtf-variant", Value: "dep-learn", Usage: "dep-learn|prefix|order"},
		&cli.BoolFlag{Name: "no-phase-saving", Usage: "disable phase saving"},
		&cli.BoolFlag{Name: "bump-conflict-side", Usage: "VSIDS: also bump the conflict-side literals"},

		&cli.UintFlag{Name: "split-mode-cycles", Value: 1, Usage: "restarts between split-heuristic mode toggles"},
		&cli.BoolFlag{Name: "split-always-move", Usage: "split-VMTF: move on every learned constraint, not just the matching mode"},
		&cli.BoolFlag{Name: "split-move-by-prefix", Usage: "split-VMTF: sort moved variables by prefix position"},
		&cli.BoolFlag{Name: "split-always-bump", Usage: "split-VSIDS: bump on every learned constraint"},
		&cli.BoolFlag{Name: "split-phase-saving", Usage: "use per-mode saved phases"},
		&cli.BoolFlag{Name: "split-start-univ-mode", Usage: "start in universal mode"},
		&cli.Float64Flag{Name: "split-score-decay", Value: 0.95, Usage: "split-VSIDS activity decay"},

		&cli.Float64Flag{Name: "sgdb-initial-lr", Value: 1.0},
		&cli.Float64Flag{Name: "sgdb-lr-decay", Value: 0.000001},
		&cli.Float64Flag{Name: "sgdb-lr-min", Value: 0.05},
		&cli.Float64Flag{Name: "sgdb-lambda", Value: 0.0000001},

		&cli.StringFlag{Name: "dependency-learning", Value: "all", Usage: "off|all|outermost|fewest"},
		&cli.StringFlag{Name: "model-generation", Value: "simple", Usage: "simple|approx-hitting-set"},
		&cli.Float64Flag{Name: "hitting-set-scale", Value: 1.0, Usage: "approx-hitting-set: weight formula's scale s"},
		&cli.Float64Flag{Name: "hitting-set-exponent", Value: 1.0, Usage: "approx-hitting-set: weight formula's exponent e"},
		&cli.Float64Flag{Name: "hitting-set-penalty", Value: 0.5, Usage: "approx-hitting-set: weight penalty added for universal choices"},

		&cli.StringFlag{Name: "restart", Value: "luby", Usage: "off|luby|inner-outer|ema"},
		&cli.Float64Flag{Name: "luby-multiplier", Value: 100},
		&cli.IntFlag{Name: "inner-increment", Value: 100},
		&cli.IntFlag{Name: "outer-increment", Value: 100},
		&cli.Float64Flag{Name: "restart-multiplier", Value: 1.1},
		&cli.Float64Flag{Name: "restart-fast-alpha", Value: 0.03},
		&cli.Float64Flag{Name: "restart-slow-alpha", Value: 0.0003},
		&cli.Float64Flag{Name: "restart-threshold-factor", Value: 1.4},
		&cli.IntFlag{Name: "restart-minimum-distance", Value: 20},

		&cli.IntFlag{Name: "initial-clause-db-size", Value: 4000},
		&cli.IntFlag{Name: "initial-term-db-size", Value: 500},
		&cli.IntFlag{Name: "clause-db-increment", Value: 4000},
		&cli.IntFlag{Name: "term-db-increment", Value: 500},
		&cli.Float64Flag{Name: "clause-removal-ratio", Value: 0.5},
		&cli.Float64Flag{Name: "term-removal-ratio", Value: 0.5},
		&cli.BoolFlag{Name: "use-activity-threshold"},
		&cli.Float64Flag{Name: "activity-decay", Value: 0.999},
		&cli.IntFlag{Name: "lbd-threshold", Value: 2},
	}
}

// buildConfig assembles a solver.Config from the CLI context, returning an
// ArgumentInvalid SolverError for any malformed flag value.
func buildConfig(c *cli.Context) (solver.Config, error) {
	cfg := solver.DefaultConfig()

	hk, ok := solver.ParseHeuristicKind(c.String("decision-heuristic"))
	if !ok {
		return cfg, argErr("unknown --decision-heuristic %q", c.String("decision-heuristic"))
	}
	cfg.Heuristic = hk

	vv, ok := solver.ParseVMTFVariant(c.String("vmtf-variant"))
	if !ok {
		return cfg, argErr("unknown --vmtf-variant %q", c.String("vmtf-variant"))
	}
	cfg.VMTFVariant = vv

	cfg.NoPhaseSaving = c.Bool("no-phase-saving")
	cfg.BumpConflictSide = c.Bool("bump-conflict-side")

	cfg.SplitModeCycles = uint32(c.Uint("split-mode-cycles"))
	cfg.SplitAlwaysMove = c.Bool("split-always-move")
	cfg.SplitMoveByPrefix = c.Bool("split-move-by-prefix")
	cfg.SplitAlwaysBump = c.Bool("split-always-bump")
	cfg.SplitPhaseSaving = c.Bool("split-phase-saving")
	cfg.SplitStartUnivMode = c.Bool("split-start-univ-mode")
	cfg.SplitScoreDecay = c.Float64("split-score-decay")

	cfg.SGDBInitialLR = c.Float64("sgdb-initial-lr")
	cfg.SGDBLRDecay = c.Float64("sgdb-lr-decay")
	cfg.SGDBLRMin = c.Float64("sgdb-lr-min")
	cfg.SGDBLambda = c.Float64("sgdb-lambda")

	dl, ok := solver.ParseDepLearningMode(c.String("dependency-learning"))
	if !ok {
		return cfg, argErr("unknown --dependency-learning %q", c.String("dependency-learning"))
	}
	cfg.DepLearning = dl

	mg, ok := solver.ParseModelGenStrategy(c.String("model-generation"))
	if !ok {
		return cfg, argErr("unknown --model-generation %q", c.String("model-generation"))
	}
	cfg.ModelGen = mg
	cfg.HSScale = c.Float64("hitting-set-scale")
	cfg.HSExponent = c.Float64("hitting-set-exponent")
	cfg.HSPenalty = c.Float64("hitting-set-penalty")

	rm, ok := solver.ParseRestartMode(c.String("restart"))
	if !ok {
		return cfg, argErr("unknown --restart %q", c.String("restart"))
	}
	cfg.Restart = solver.RestartConfig{
		Mode:              rm,
		LubyMultiplier:    c.Float64("luby-multiplier"),
		InnerIncrement:    c.Int("inner-increment"),
		OuterIncrement:    c.Int("outer-increment"),
		RestartMultiplier: c.Float64("restart-multiplier"),
		FastAlpha:         c.Float64("restart-fast-alpha"),
		SlowAlpha:         c.Float64("restart-slow-alpha"),
		ThresholdFactor:   c.Float64("restart-threshold-factor"),
		MinimumDistance:   c.Int("restart-minimum-distance"),
	}

	cfg.DB = solver.DBConfig{
		InitialClauseDBSize:  c.Int("initial-clause-db-size"),
		InitialTermDBSize:    c.Int("initial-term-db-size"),
		ClauseDBIncrement:    c.Int("clause-db-increment"),
		TermDBIncrement:      c.Int("term-db-increment"),
		ClauseRemovalRatio:   c.Float64("clause-removal-ratio"),
		TermRemovalRatio:     c.Float64("term-removal-ratio"),
		UseActivityThreshold: c.Bool("use-activity-threshold"),
		ActivityDecay:        c.Float64("activity-decay"),
		LBDThreshold:         c.Int("lbd-threshold"),
	}

	if cfg.DepLearning == solver.DepPrefix && cfg.Heuristic != solver.HeuristicVMTF {
		return cfg, argErr("--dependency-learning=off requires --decision-heuristic=VMTF")
	}
	return cfg, nil
}

func argErr(format string, args ...interface{}) error {
	return &solver.SolverError{Kind: solver.ArgumentInvalid, Msg: fmt.Sprintf(format, args...)}
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return argErr("expected exactly one input file")
	}
	path := c.Args().Get(0)

	log := logrus.New()
	if c.Bool("verbose") {
		log.SetLevel(logrus.DebugLevel)
	}
	entry := log.WithField("file", path)

	pb, err := loadProblem(path)
	if err != nil {
		return err
	}

	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}

	d, err := solver.NewDriver(pb, cfg, entry)
	if err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		d.Interrupt()
	}()

	res := d.Solve()

	if c.Bool("partial-certificate") && res.Status == solver.Sat {
		printCertificate(solver.PartialCertificate(pb, res.Model))
	}
	fmt.Println(res.Status)

	if c.Bool("print-stats") {
		printStats(d.Stats())
	}

	return exitWithStatus(res.Status)
}

func printCertificate(lits []solver.Lit) {
	for i, l := range lits {
		if i > 0 {
			fmt.Print(" ")
		}
		fmt.Print(l.DIMACS())
	}
	fmt.Println()
}

func printStats(s solver.Stats) {
	fmt.Printf("c restarts: %d\n", s.NbRestarts)
	fmt.Printf("c conflicts: %d\n", s.NbConflicts)
	fmt.Printf("c decisions: %d\n", s.NbDecisions)
	fmt.Printf("c clauses learned: %d\n", s.NbLearned[solver.ClauseType])
	fmt.Printf("c terms learned: %d\n", s.NbLearned[solver.TermType])
	fmt.Printf("c clauses deleted: %d\n", s.NbDeleted[solver.ClauseType])
	fmt.Printf("c terms deleted: %d\n", s.NbDeleted[solver.TermType])
}

// exitWithStatus maps a verdict to the process exit code spec.md §6 assigns
// it: 10 SAT, 20 UNSAT, 0 undefined.
func exitWithStatus(status solver.Status) error {
	switch status {
	case solver.Sat:
		os.Exit(10)
	case solver.Unsat:
		os.Exit(20)
	}
	return nil
}

// loadProblem reads path and auto-detects its format from the first
// non-blank line (spec.md §6): QCIR if it starts with #QCIR, QDIMACS
// otherwise. Comment lines are not skipped, so a QCIR file is recognised
// only when its #QCIR header is its first non-blank line.
func loadProblem(path string) (*solver.Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &solver.SolverError{Kind: solver.FileMissing, Msg: err.Error()}
	}

	firstLine, _ := firstSignificantLine(data)
	if solver.DetectFormat(firstLine) {
		return solver.ParseQCIR(bytes.NewReader(data))
	}
	return solver.ParseQDIMACS(bytes.NewReader(data))
}

func firstSignificantLine(data []byte) (string, error) {
	r := bytes.NewReader(data)
	buf := make([]byte, 0, 64)
	for {
		b, err := r.ReadByte()
		if err != nil {
			return string(buf), err
		}
		if b == '\n' {
			line := string(buf)
			if len(bytes.TrimSpace(buf)) > 0 {
				return line, nil
			}
			buf = buf[:0]
			continue
		}
		buf = append(buf, b)
	}
}
