package clock

import (
	"time"

	clockport "github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/clock"
)

var _ clockport.Clock = SystemClock{}

// SystemClock returns the current wall-clock time in UTC. Registration dates
// are the UTC calendar day of Now.
type SystemClock struct{}

func NewSystemClock() SystemClock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now().UTC() }
