package solver

// RestartStrategy decides when the driver should unassign back to decision
// level 0 (spec.md §4.7). notifyConflict is called once per learned
// constraint with its LBD; shouldRestart is then polled by the driver.
type RestartStrategy interface {
	notifyConflict(lbd int)
	shouldRestart() bool
	notifyRestart()
}

// RestartMode selects which of the four strategies to build.
type RestartMode int

const (
	RestartOff RestartMode = iota
	RestartLuby
	RestartInnerOuter
	RestartEMA
)

func ParseRestartMode(s string) (RestartMode, bool) {
	switch s {
	case "off":
		return RestartOff, true
	case "luby":
		return RestartLuby, true
	case "inner-outer":
		return RestartInnerOuter, true
	case "ema":
		return RestartEMA, true
	default:
		return RestartOff, false
	}
}

// RestartConfig mirrors Qute's restart-related command-line options
// (SPEC_FULL.md §7).
type RestartConfig struct {
	Mode RestartMode

	LubyMultiplier float64

	InnerIncrement int
	OuterIncrement int
	RestartMultiplier float64

	FastAlpha        float64
	SlowAlpha        float64
	ThresholdFactor  float64
	MinimumDistance  int
}

// DefaultRestartConfig mirrors Qute's documented flag defaults.
func DefaultRestartConfig() RestartConfig {
	return RestartConfig{
		Mode:              RestartLuby,
		LubyMultiplier:    100,
		InnerIncrement:    100,
		OuterIncrement:    100,
		RestartMultiplier: 1.1,
		FastAlpha:         0.03,
		SlowAlpha:         0.0003,
		ThresholdFactor:   1.4,
		MinimumDistance:   20,
	}
}

func newRestartStrategy(cfg RestartConfig) RestartStrategy {
	switch cfg.Mode {
	case RestartLuby:
		return newLubyRestart(cfg.LubyMultiplier)
	case RestartInnerOuter:
		return newInnerOuterRestart(cfg.InnerIncrement, cfg.OuterIncrement, cfg.RestartMultiplier)
	case RestartEMA:
		return newEMARestart(cfg.FastAlpha, cfg.SlowAlpha, cfg.ThresholdFactor, cfg.MinimumDistance)
	default:
		return offRestart{}
	}
}

// offRestart never triggers (spec.md §4.7 "off: never").
type offRestart struct{}

func (offRestart) notifyConflict(lbd int) {}
func (offRestart) shouldRestart() bool    { return false }
func (offRestart) notifyRestart()         {}

// lubyRestart restarts when the number of conflicts since the last restart
// reaches multiplier * Luby(k), k incrementing each restart (grounded on
// gophersat's solver/luby.go sequence).
type lubyRestart struct {
	multiplier            float64
	k                      uint
	conflictsSinceRestart int
}

func newLubyRestart(multiplier float64) *lubyRestart {
	return &lubyRestart{multiplier: multiplier, k: 1}
}

func (l *lubyRestart) notifyConflict(lbd int) {
	l.conflictsSinceRestart++
}

func (l *lubyRestart) shouldRestart() bool {
	return float64(l.conflictsSinceRestart) >= l.multiplier*float64(luby(l.k))
}

func (l *lubyRestart) notifyRestart() {
	l.conflictsSinceRestart = 0
	l.k++
}

// luby computes the Luby sequence value at index i (gophersat's luby.go,
// generalized from its hardcoded lubyConstant to a caller-supplied
// multiplier above).
func luby(i uint) uint {
	for k := uint(1); k < 32; k++ {
		if i == (1<<k)-1 {
			return 1 << (k - 1)
		}
	}
	k := uint(1)
	for {
		if (1<<(k-1)) <= i && i < (1<<k)-1 {
			return luby(i - (1 << (k - 1)) + 1)
		}
		k++
	}
}

// innerOuterRestart grows an inner restart interval geometrically;
// whenever it exceeds the outer limit, the inner interval resets and the
// outer limit itself grows (spec.md §4.7 "inner-outer").
type innerOuterRestart struct {
	innerIncrement int
	outerIncrement int
	multiplier     float64

	inner float64
	outer float64

	conflictsSinceRestart int
}

func newInnerOuterRestart(innerIncrement, outerIncrement int, multiplier float64) *innerOuterRestart {
	return &innerOuterRestart{
		innerIncrement: innerIncrement,
		outerIncrement: outerIncrement,
		multiplier:     multiplier,
		inner:          float64(innerIncrement),
		outer:          float64(outerIncrement),
	}
}

func (r *innerOuterRestart) notifyConflict(lbd int) {
	r.conflictsSinceRestart++
}

func (r *innerOuterRestart) shouldRestart() bool {
	return float64(r.conflictsSinceRestart) >= r.inner
}

func (r *innerOuterRestart) notifyRestart() {
	r.conflictsSinceRestart = 0
	r.inner *= r.multiplier
	if r.inner > r.outer {
		r.inner = float64(r.innerIncrement)
		r.outer *= r.multiplier
	}
}

// emaRestart maintains fast and slow exponential moving averages of
// learned-constraint LBD, restarting when the fast average spikes well
// above the slow one and enough conflicts have passed since the last
// restart (spec.md §4.7 "EMA"; shape taken from gophersat's lbd.go window
// statistic, generalized to a true EMA pair).
type emaRestart struct {
	fastAlpha, slowAlpha float64
	thresholdFactor      float64
	minimumDistance      int

	fast, slow            float64
	initialized           bool
	conflictsSinceRestart int
}

func newEMARestart(fastAlpha, slowAlpha, thresholdFactor float64, minimumDistance int) *emaRestart {
	return &emaRestart{fastAlpha: fastAlpha, slowAlpha: slowAlpha, thresholdFactor: thresholdFactor, minimumDistance: minimumDistance}
}

func (e *emaRestart) notifyConflict(lbd int) {
	l := float64(lbd)
	if !e.initialized {
		e.fast, e.slow, e.initialized = l, l, true
	} else {
		e.fast = e.fastAlpha*l + (1-e.fastAlpha)*e.fast
		e.slow = e.slowAlpha*l + (1-e.slowAlpha)*e.slow
	}
	e.conflictsSinceRestart++
}

func (e *emaRestart) shouldRestart() bool {
	return e.conflictsSinceRestart >= e.minimumDistance && e.fast > e.slow*e.thresholdFactor
}

func (e *emaRestart) notifyRestart() {
	e.conflictsSinceRestart = 0
}
