package solver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQDIMACSBasic(t *testing.T) {
	pb, err := ParseQDIMACS(strings.NewReader("c a comment\np cnf 2 2\na 1 0\ne 2 0\n1 2 0\n-1 2 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, pb.NbVars)
	require.Len(t, pb.Prefix, 2)
	assert.Equal(t, Universal, pb.Prefix[0].Type)
	assert.Equal(t, []Var{0}, pb.Prefix[0].Vars)
	assert.Equal(t, Existential, pb.Prefix[1].Type)
	assert.Equal(t, []Var{1}, pb.Prefix[1].Vars)
	require.Len(t, pb.Clauses, 2)
	assert.Equal(t, []Lit{IntToLit(1), IntToLit(2)}, pb.Clauses[0])
	assert.Equal(t, []Lit{IntToLit(-1), IntToLit(2)}, pb.Clauses[1])
}

func TestParseQDIMACSUndeclaredVariableDefaultsExistential(t *testing.T) {
	pb, err := ParseQDIMACS(strings.NewReader("p cnf 2 1\ne 1 0\n1 2 0\n"))
	require.NoError(t, err)
	assert.Equal(t, Existential, pb.QTypeOf(1))
}

func TestParseQDIMACSMalformedHeaderIsParseError(t *testing.T) {
	_, err := ParseQDIMACS(strings.NewReader("p wat 1 1\n1 0\n"))
	require.Error(t, err)
	se, ok := err.(*SolverError)
	require.True(t, ok)
	assert.Equal(t, ParseError, se.Kind)
}

func TestWriteQDIMACSRoundTrip(t *testing.T) {
	src := "p cnf 2 2\na 1 0\ne 2 0\n1 2 0\n-1 2 0\n"
	pb, err := ParseQDIMACS(strings.NewReader(src))
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, WriteQDIMACS(pb, &buf))

	pb2, err := ParseQDIMACS(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, pb.NbVars, pb2.NbVars)
	assert.Equal(t, pb.Prefix, pb2.Prefix)
	assert.Equal(t, pb.Clauses, pb2.Clauses)
}

func TestDetectFormat(t *testing.T) {
	assert.True(t, DetectFormat("#QCIR-G14 10"))
	assert.False(t, DetectFormat("p cnf 2 2"))
}
