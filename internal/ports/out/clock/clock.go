package clock

import "time"

// Clock provides time to the application. An interface keeps tests
// deterministic via a controllable implementation.
type Clock interface {
	Now() time.Time
}
