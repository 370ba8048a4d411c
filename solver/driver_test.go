package solver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenario is one of the literal end-to-end inputs from spec.md §8.
type scenario struct {
	name     string
	qdimacs  string
	expected Status
}

var scenarios = []scenario{
	{
		name:     "universal free existential forced",
		qdimacs:  "p cnf 2 2\na 1 0\ne 2 0\n1 2 0\n-1 2 0\n",
		expected: Sat,
	},
	{
		name:     "existential chosen true",
		qdimacs:  "p cnf 2 2\ne 1 0\na 2 0\n1 2 0\n1 -2 0\n",
		expected: Sat,
	},
	{
		name:     "contradictory matrix",
		qdimacs:  "p cnf 2 4\na 1 0\ne 2 0\n1 2 0\n1 -2 0\n-1 2 0\n-1 -2 0\n",
		expected: Unsat,
	},
	{
		name:     "unit conflict",
		qdimacs:  "p cnf 1 2\ne 1 0\n1 0\n-1 0\n",
		expected: Unsat,
	},
	{
		name:     "forced universal unsat",
		qdimacs:  "p cnf 1 1\na 1 0\n1 0\n",
		expected: Unsat,
	},
	{
		name:     "empty input",
		qdimacs:  "p cnf 0 0\n",
		expected: Sat,
	},
}

var allHeuristics = []HeuristicKind{
	HeuristicVMTF, HeuristicVSIDS, HeuristicSplitVMTF, HeuristicSplitVSIDS,
	HeuristicCQB, HeuristicEMAB, HeuristicSGDB,
}

var allRestartModes = []RestartMode{
	RestartOff, RestartLuby, RestartInnerOuter, RestartEMA,
}

func TestScenariosAcrossHeuristicsAndRestarts(t *testing.T) {
	for _, sc := range scenarios {
		for _, h := range allHeuristics {
			for _, r := range allRestartModes {
				cfg := DefaultConfig()
				cfg.Heuristic = h
				cfg.Restart.Mode = r
				got := solveQDIMACS(t, sc.qdimacs, cfg)
				assert.Equalf(t, sc.expected, got, "scenario %q heuristic %v restart %v", sc.name, h, r)
			}
		}
	}
}

func solveQDIMACS(t *testing.T, src string, cfg Config) Status {
	t.Helper()
	pb, err := ParseQDIMACS(strings.NewReader(src))
	require.NoError(t, err)
	d, err := NewDriver(pb, cfg, nil)
	require.NoError(t, err)
	res := d.Solve()
	return res.Status
}

func TestOneEmptyClauseIsUnsat(t *testing.T) {
	got := solveQDIMACS(t, "p cnf 1 1\ne 1 0\n0\n", DefaultConfig())
	assert.Equal(t, Unsat, got)
}

func TestTautologicalClauseIsSat(t *testing.T) {
	got := solveQDIMACS(t, "p cnf 1 1\ne 1 0\n1 -1 0\n", DefaultConfig())
	assert.Equal(t, Sat, got)
}

func TestDependencyLearningOffRequiresVMTF(t *testing.T) {
	pb, err := ParseQDIMACS(strings.NewReader("p cnf 1 1\ne 1 0\n1 0\n"))
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.DepLearning = DepPrefix
	cfg.Heuristic = HeuristicVSIDS
	_, err = NewDriver(pb, cfg, nil)
	require.Error(t, err)
	se, ok := err.(*SolverError)
	require.True(t, ok)
	assert.Equal(t, ArgumentInvalid, se.Kind)

	cfg.Heuristic = HeuristicVMTF
	_, err = NewDriver(pb, cfg, nil)
	require.NoError(t, err)
}

func TestPartialCertificateRestrictsToOutermostBlock(t *testing.T) {
	pb, err := ParseQDIMACS(strings.NewReader("p cnf 2 2\na 1 0\ne 2 0\n1 2 0\n-1 2 0\n"))
	require.NoError(t, err)
	d, err := NewDriver(pb, DefaultConfig(), nil)
	require.NoError(t, err)
	res := d.Solve()
	require.Equal(t, Sat, res.Status)

	cert := PartialCertificate(pb, res.Model)
	require.Len(t, cert, 1)
	assert.Equal(t, Var(0), cert[0].Var())
}
