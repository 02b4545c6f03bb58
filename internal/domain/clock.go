package domain

import "github.com/jonboulle/clockwork"

// clock decides which close approach counts as "most recent". Tests freeze it
// via SetClock so scenario defaults are reproducible.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
