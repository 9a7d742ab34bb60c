package input

import "time"

// DefaultCooldown is the minimum interval between two accepted button
// triggers.
const DefaultCooldown = 200 * time.Millisecond

// Button suppresses repeat triggers of a mechanical push button within
// a cooldown window. A button held past the window triggers again, so
// it behaves as a fixed-rate auto-repeat rather than a one-shot.
type Button struct {
	Cooldown time.Duration

	last time.Time
}

// Poll reports whether a trigger is accepted for the given reading.
// The caller supplies the sample time so ticks stay deterministic.
func (b *Button) Poll(active bool, now time.Time) bool {
	if !active {
		return false
	}
	cooldown := b.Cooldown
	if cooldown == 0 {
		cooldown = DefaultCooldown
	}
	if !b.last.IsZero() && now.Sub(b.last) < cooldown {
		return false
	}
	b.last = now
	return true
}
