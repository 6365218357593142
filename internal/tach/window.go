package tach

import "github.com/sweeney/fan-tach/internal/clock"

// UpdateRpm recomputes every channel's RPM once at least the minimum window
// has elapsed since the previous recomputation. It reports whether a new
// window was completed; when it returns false nothing was changed.
//
// Counts are read and zeroed with preemption disabled. Only the swap runs
// inside the critical section.
func (t *Tach) UpdateRpm() bool {
	now := t.clock.NowMillis()
	elapsed := clock.Elapsed(t.lastWindowStart, now)
	if elapsed < t.cfg.MinWindowMillis {
		return false
	}

	s := t.cpu.Disable()
	for i, ch := range t.active {
		t.counts[i] = ch.count.Swap(0)
	}
	t.cpu.Restore(s)

	t.lastInterval.Store(elapsed)
	t.lastWindowStart = now

	for i, ch := range t.active {
		ch.rpm.Store(Estimate(t.counts[i], ch.cfg.PPR, elapsed))
	}
	return true
}
