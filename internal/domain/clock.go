package domain

import "github.com/jonboulle/clockwork"

// clock stamps processed_at on serialized results. Conversion itself never
// reads it, so Convert stays deterministic.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source for serialization. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
