package clock

import "time"

// Clock provides the current time to the use cases.
// Registration dates are derived from it, so tests inject a controllable implementation.
type Clock interface {
	Now() time.Time
}
