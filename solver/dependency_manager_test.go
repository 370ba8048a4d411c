package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDependencyManagerPrefixModeWatchesPredecessor(t *testing.T) {
	vs := newVariableStore()
	v0 := vs.addVariable(Existential, false)
	v1 := vs.addVariable(Universal, false)
	v2 := vs.addVariable(Existential, false)

	dm := newDependencyManager(vs, DepPrefix)
	dm.addVariable(v0)
	dm.addVariable(v1)
	dm.addVariable(v2)

	assert.True(t, dm.isDecisionCandidate(v0))
	assert.False(t, dm.isDecisionCandidate(v1))
	assert.False(t, dm.isDecisionCandidate(v2))

	var eligible []Var
	dm.setEligibleCallback(func(v Var) { eligible = append(eligible, v) })

	vs.assignAtLevel0(v0.Lit(), CRefUndef, ClauseType)
	dm.notifyAssigned(v0)
	assert.Equal(t, []Var{v1}, eligible)
	assert.True(t, dm.isDecisionCandidate(v1))

	vs.assign(v1.Lit(), CRefUndef, ClauseType)
	dm.notifyAssigned(v1)
	assert.Equal(t, []Var{v1, v2}, eligible)
	assert.True(t, dm.isDecisionCandidate(v2))
}

func TestDependencyManagerPrefixModeDependsOnIsOrderBased(t *testing.T) {
	vs := newVariableStore()
	v0 := vs.addVariable(Universal, false)
	v1 := vs.addVariable(Existential, false)
	dm := newDependencyManager(vs, DepPrefix)
	dm.addVariable(v0)
	dm.addVariable(v1)

	assert.True(t, dm.dependsOn(v1, v0))
	assert.False(t, dm.dependsOn(v0, v1))
}

func TestDependencyManagerLearnAll(t *testing.T) {
	vs := newVariableStore()
	a := vs.addVariable(Universal, false)
	b := vs.addVariable(Universal, false)
	e := vs.addVariable(Existential, false)
	dm := newDependencyManager(vs, DepAll)
	dm.addVariable(a)
	dm.addVariable(b)
	dm.addVariable(e)

	assert.False(t, dm.dependsOn(e, a))
	dm.learnDependencies(e, []Lit{a.Lit(), b.Lit().Negation()})
	assert.True(t, dm.dependsOn(e, a))
	assert.True(t, dm.dependsOn(e, b))
}

func TestDependencyManagerLearnOutermost(t *testing.T) {
	vs := newVariableStore()
	a := vs.addVariable(Universal, false)
	b := vs.addVariable(Universal, false)
	e := vs.addVariable(Existential, false)
	dm := newDependencyManager(vs, DepOutermost)
	dm.addVariable(a)
	dm.addVariable(b)
	dm.addVariable(e)

	dm.learnDependencies(e, []Lit{b.Lit(), a.Lit()})
	assert.True(t, dm.dependsOn(e, a))
	assert.False(t, dm.dependsOn(e, b))
}

func TestDependencyManagerLearnFewest(t *testing.T) {
	vs := newVariableStore()
	a := vs.addVariable(Universal, false)
	b := vs.addVariable(Universal, false)
	c := vs.addVariable(Existential, false)
	e := vs.addVariable(Existential, false)
	dm := newDependencyManager(vs, DepFewest)
	dm.addVariable(a)
	dm.addVariable(b)
	dm.addVariable(c)
	dm.addVariable(e)

	dm.addDependency(b, c) // b now has one recorded dependency, a has zero
	dm.learnDependencies(e, []Lit{a.Lit(), b.Lit()})
	assert.True(t, dm.dependsOn(e, a))
	assert.False(t, dm.dependsOn(e, b))
}

func TestDependencyManagerNotifyAssignedRewatchesNextUnassigned(t *testing.T) {
	vs := newVariableStore()
	a := vs.addVariable(Universal, false)
	b := vs.addVariable(Universal, false)
	e := vs.addVariable(Existential, false)
	dm := newDependencyManager(vs, DepAll)
	dm.addVariable(a)
	dm.addVariable(b)
	dm.addVariable(e)
	dm.addDependency(e, a)
	dm.addDependency(e, b)
	dm.findWatchedDependency(e)

	assert.Equal(t, a, dm.watcherOf(e))
	assert.False(t, dm.isDecisionCandidate(e))

	vs.assignAtLevel0(a.Lit(), CRefUndef, ClauseType)
	dm.notifyAssigned(a)
	assert.Equal(t, b, dm.watcherOf(e))
	assert.False(t, dm.isDecisionCandidate(e))

	vs.assign(b.Lit(), CRefUndef, ClauseType)
	dm.notifyAssigned(b)
	assert.Equal(t, VarUndef, dm.watcherOf(e))
	assert.True(t, dm.isDecisionCandidate(e))
}
