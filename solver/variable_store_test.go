package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariableStoreAssignAndUnassign(t *testing.T) {
	vs := newVariableStore()
	v0 := vs.addVariable(Existential, false)
	v1 := vs.addVariable(Universal, false)
	require.Equal(t, Var(0), v0)
	require.Equal(t, Var(1), v1)
	assert.Equal(t, 2, vs.numVars())

	var unassigned []Lit
	vs.registerUnassignCallback(func(l Lit) { unassigned = append(unassigned, l) })

	assert.False(t, vs.isAssigned(v0))
	vs.assignAtLevel0(v0.Lit(), CRefUndef, ClauseType)
	assert.True(t, vs.isAssigned(v0))
	assert.Equal(t, AssignTrue, vs.assignmentOf(v0))
	assert.Equal(t, 0, vs.decisionLevel(v0))

	vs.newDecisionLevel()
	assert.Equal(t, 1, vs.currentLevel())
	vs.assign(v1.Lit().Negation(), CRefUndef, ClauseType)
	assert.Equal(t, AssignFalse, vs.assignmentOf(v1))
	assert.Equal(t, 1, vs.decisionLevel(v1))
	assert.True(t, vs.allAssigned())

	vs.unassignToLevel(0)
	assert.False(t, vs.isAssigned(v1))
	assert.True(t, vs.isAssigned(v0)) // level-0 facts survive backtracking to 0
	require.Len(t, unassigned, 1)
	assert.Equal(t, v1.Lit().Negation(), unassigned[0])
	assert.Equal(t, 0, vs.currentLevel())
}

func TestVariableStoreLitValue(t *testing.T) {
	vs := newVariableStore()
	v0 := vs.addVariable(Existential, false)
	assert.Equal(t, AssignUndef, vs.litValue(v0.Lit()))

	vs.assignAtLevel0(v0.SignedLit(true), CRefUndef, ClauseType)
	assert.Equal(t, AssignFalse, vs.litValue(v0.Lit()))
	assert.Equal(t, AssignTrue, vs.litValue(v0.SignedLit(true)))
}

func TestVariableStoreHasAntecedent(t *testing.T) {
	vs := newVariableStore()
	v0 := vs.addVariable(Existential, false)
	assert.False(t, vs.hasAntecedent(v0))
	vs.assignAtLevel0(v0.Lit(), CRef(7), TermType)
	assert.True(t, vs.hasAntecedent(v0))
	assert.Equal(t, CRef(7), vs.antecedentOf(v0))
	assert.Equal(t, TermType, vs.antecedentTypeOf(v0))
}

func TestVariableStoreProtectedSet(t *testing.T) {
	vs := newVariableStore()
	v0 := vs.addVariable(Existential, false)
	v1 := vs.addVariable(Existential, false)
	vs.assignAtLevel0(v0.Lit(), CRef(3), ClauseType)
	vs.assignAtLevel0(v1.Lit(), CRefUndef, ClauseType)

	protected := vs.protectedSet(ClauseType)
	assert.True(t, protected[CRef(3)])
	assert.Len(t, protected, 1)
	assert.Empty(t, vs.protectedSet(TermType))
}
