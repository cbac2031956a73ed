package clock

import "time"

// Clock is the injected time source. Refund tiers and challenge expiry
// depend on the current time, so services never call time.Now directly.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func New() Clock { return systemClock{} }
