package registry

import "time"

// Clock abstracts wall-clock time so the cool-down, revisit-after and lease
// expiration rules can be tested under a controlled clock.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// SystemClock is the production clock.
var SystemClock Clock = realClock{}
