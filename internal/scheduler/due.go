package scheduler

import "time"

// minWait is the floor applied to every computed sleep. A zero or negative
// wait would busy-loop the process.
const minWait = time.Second

// IsDue reports whether a re-run is permitted: now has reached or passed
// lastRun + interval. lastRun is a Unix timestamp in seconds.
func IsDue(lastRun int64, interval time.Duration, now time.Time) bool {
	next := time.Unix(lastRun, 0).Add(interval)
	return !now.Before(next)
}

// UntilNext returns how long to wait before the next permitted run,
// never less than one second.
func UntilNext(lastRun int64, interval time.Duration, now time.Time) time.Duration {
	d := time.Unix(lastRun, 0).Add(interval).Sub(now)
	if d < minWait {
		return minWait
	}
	return d
}

func clampWait(d time.Duration) time.Duration {
	if d < minWait {
		return minWait
	}
	return d
}
