package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRestartMode(t *testing.T) {
	cases := map[string]RestartMode{
		"off":         RestartOff,
		"luby":        RestartLuby,
		"inner-outer": RestartInnerOuter,
		"ema":         RestartEMA,
	}
	for s, want := range cases {
		got, ok := ParseRestartMode(s)
		assert.True(t, ok, s)
		assert.Equal(t, want, got, s)
	}
	_, ok := ParseRestartMode("bogus")
	assert.False(t, ok)
}

func TestOffRestartNeverTriggers(t *testing.T) {
	r := offRestart{}
	for i := 0; i < 1000; i++ {
		r.notifyConflict(50)
	}
	assert.False(t, r.shouldRestart())
}

func TestLubyRestartSequence(t *testing.T) {
	r := newLubyRestart(2.0)
	assert.False(t, r.shouldRestart())

	r.notifyConflict(0)
	assert.False(t, r.shouldRestart())
	r.notifyConflict(0)
	assert.True(t, r.shouldRestart())
	r.notifyRestart()

	// luby(2) == 1, so threshold is again multiplier*1 == 2.
	assert.False(t, r.shouldRestart())
	r.notifyConflict(0)
	assert.False(t, r.shouldRestart())
	r.notifyConflict(0)
	assert.True(t, r.shouldRestart())
}

func TestInnerOuterRestartGrowsAndResets(t *testing.T) {
	r := newInnerOuterRestart(2, 4, 2.0)

	r.notifyConflict(0)
	assert.False(t, r.shouldRestart())
	r.notifyConflict(0)
	assert.True(t, r.shouldRestart())
	r.notifyRestart() // inner: 2 -> 4, outer stays 4

	for i := 0; i < 3; i++ {
		r.notifyConflict(0)
		assert.False(t, r.shouldRestart())
	}
	r.notifyConflict(0)
	assert.True(t, r.shouldRestart())
	r.notifyRestart() // inner(8) > outer(4): inner resets to 2, outer -> 8
}

func TestEMARestartTriggersOnSpike(t *testing.T) {
	r := newEMARestart(0.5, 0.1, 1.5, 2)

	r.notifyConflict(10)
	assert.False(t, r.shouldRestart()) // below minimumDistance

	r.notifyConflict(1)
	assert.False(t, r.shouldRestart()) // fast hasn't pulled ahead of slow yet

	r.notifyConflict(100)
	assert.True(t, r.shouldRestart())

	r.notifyRestart()
	assert.Equal(t, 0, r.conflictsSinceRestart)
}
