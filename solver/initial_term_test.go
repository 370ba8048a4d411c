package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHittingSetWeightsFormula(t *testing.T) {
	// e0 e1 a2 a3 e4 : E=3, U=2.
	pb := &Problem{
		NbVars: 5,
		Prefix: []QuantifierBlock{
			{Type: Existential, Vars: []Var{0, 1}},
			{Type: Universal, Vars: []Var{2, 3}},
			{Type: Existential, Vars: []Var{4}},
		},
	}
	hs := newHittingSetWeights(pb, 1, 1, 0.5)

	// Existentials cost universals-to-the-right/E.
	assert.InDelta(t, 1+2.0/3.0, hs.get(0), 1e-9)
	assert.InDelta(t, 1+2.0/3.0, hs.get(1), 1e-9)
	assert.InDelta(t, 1.0, hs.get(4), 1e-9)

	// Universals cost existentials-to-the-left/U, plus the penalty.
	assert.InDelta(t, 2.5, hs.get(2), 1e-9)
	assert.InDelta(t, 2.5, hs.get(3), 1e-9)

	// Only the innermost existential block is excluded.
	assert.False(t, hs.isExcluded(0))
	assert.False(t, hs.isExcluded(1))
	assert.False(t, hs.isExcluded(2))
	assert.False(t, hs.isExcluded(3))
	assert.True(t, hs.isExcluded(4))
}

func TestApproxHittingSetScenariosMatchExpectedStatus(t *testing.T) {
	for _, sc := range scenarios {
		cfg := DefaultConfig()
		cfg.ModelGen = ModelGenApproxHittingSet
		got := solveQDIMACS(t, sc.qdimacs, cfg)
		assert.Equalf(t, sc.expected, got, "scenario %q", sc.name)
	}
}
