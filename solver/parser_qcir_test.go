package solver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQCIRAndGate(t *testing.T) {
	src := "#QCIR-G14 3\n" +
		"exists(1, 2)\n" +
		"output(g)\n" +
		"g = and(1, 2)\n"
	pb, err := ParseQCIR(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, 3, pb.NbVars)
	require.Len(t, pb.Prefix, 2)
	assert.Equal(t, Existential, pb.Prefix[0].Type)
	assert.Equal(t, []Var{0, 1}, pb.Prefix[0].Vars)
	assert.Equal(t, Existential, pb.Prefix[1].Type)
	assert.Equal(t, []Var{2}, pb.Prefix[1].Vars)
	assert.True(t, pb.Auxiliary[2])
	assert.False(t, pb.Auxiliary[0])

	// and: out <-> (a1 & a2) needs 3 clauses (n+1 with n=2) plus the unit
	// output clause.
	require.Len(t, pb.Clauses, 4)
	a1, a2 := IntToLit(1), IntToLit(2)
	gLit := IntToLit(3)
	assert.Contains(t, pb.Clauses, []Lit{gLit, a1.Negation(), a2.Negation()})
	assert.Contains(t, pb.Clauses, []Lit{gLit.Negation(), a1})
	assert.Contains(t, pb.Clauses, []Lit{gLit.Negation(), a2})
	assert.Contains(t, pb.Clauses, []Lit{gLit})
}

func TestParseQCIROrGate(t *testing.T) {
	src := "#QCIR-G14 3\n" +
		"exists(1, 2)\n" +
		"output(g)\n" +
		"g = or(1, 2)\n"
	pb, err := ParseQCIR(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, pb.Clauses, 4)
	a1, a2 := IntToLit(1), IntToLit(2)
	gLit := IntToLit(3)
	assert.Contains(t, pb.Clauses, []Lit{gLit.Negation(), a1, a2})
	assert.Contains(t, pb.Clauses, []Lit{gLit, a1.Negation()})
	assert.Contains(t, pb.Clauses, []Lit{gLit, a2.Negation()})
}

func TestParseQCIRXorGateRequiresTwoArgs(t *testing.T) {
	src := "#QCIR-G14 3\n" +
		"exists(1, 2, 3)\n" +
		"output(g)\n" +
		"g = xor(1, 2, 3)\n"
	_, err := ParseQCIR(strings.NewReader(src))
	require.Error(t, err)
	se, ok := err.(*SolverError)
	require.True(t, ok)
	assert.Equal(t, ParseError, se.Kind)
}

func TestParseQCIRXorGate(t *testing.T) {
	src := "#QCIR-G14 2\n" +
		"exists(1, 2)\n" +
		"output(g)\n" +
		"g = xor(1, 2)\n"
	pb, err := ParseQCIR(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, pb.Clauses, 5) // 4 Tseitin clauses + unit output clause
}

func TestParseQCIRIteGate(t *testing.T) {
	src := "#QCIR-G14 3\n" +
		"exists(1, 2, 3)\n" +
		"output(g)\n" +
		"g = ite(1, 2, 3)\n"
	pb, err := ParseQCIR(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, pb.Clauses, 5) // 4 Tseitin clauses + unit output clause
}

func TestParseQCIRNegatedArgsAndOutput(t *testing.T) {
	src := "#QCIR-G14 2\n" +
		"exists(1, 2)\n" +
		"output(-g)\n" +
		"g = and(-1, 2)\n"
	pb, err := ParseQCIR(strings.NewReader(src))
	require.NoError(t, err)
	gLit := IntToLit(3)
	assert.Contains(t, pb.Clauses, []Lit{gLit.Negation()})
}

func TestParseQCIRForallQuantifierBlock(t *testing.T) {
	src := "#QCIR-G14 2\n" +
		"forall(1)\n" +
		"exists(2)\n" +
		"output(2)\n"
	pb, err := ParseQCIR(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, pb.Prefix, 2)
	assert.Equal(t, Universal, pb.Prefix[0].Type)
	assert.Equal(t, Existential, pb.Prefix[1].Type)
}

func TestParseQCIRMissingOutputIsParseError(t *testing.T) {
	src := "#QCIR-G14 1\n" +
		"exists(1)\n" +
		"g = and(1)\n"
	_, err := ParseQCIR(strings.NewReader(src))
	require.Error(t, err)
	se, ok := err.(*SolverError)
	require.True(t, ok)
	assert.Equal(t, ParseError, se.Kind)
}

func TestParseQCIRRedefinedGateIsParseError(t *testing.T) {
	src := "#QCIR-G14 2\n" +
		"exists(1, 2)\n" +
		"output(g)\n" +
		"g = and(1)\n" +
		"g = and(2)\n"
	_, err := ParseQCIR(strings.NewReader(src))
	require.Error(t, err)
	se, ok := err.(*SolverError)
	require.True(t, ok)
	assert.Equal(t, ParseError, se.Kind)
}
