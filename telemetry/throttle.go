package telemetry

import "time"

// ShouldSend reports whether at least interval has passed since the last
// successful send. A zero last means nothing was sent yet.
func ShouldSend(now, last time.Time, interval time.Duration) bool {
	return now.Sub(last) >= interval
}
