package store

import "time"

// Now is the wall clock used for last-modified tokens. Tests replace it.
var Now = time.Now

// Millis renders a last-modified token as unsigned epoch milliseconds.
func Millis(t time.Time) uint64 {
	ms := t.UnixMilli()
	if ms < 0 {
		return 0
	}
	return uint64(ms)
}

// Truncate drops sub-millisecond precision and monotonic clock readings.
func Truncate(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli())
}

// Advance returns the token that follows prev: the current time, or one
// millisecond past prev when the clock has not moved far enough.
func Advance(prev time.Time) time.Time {
	now := Truncate(Now())
	next := Truncate(prev).Add(time.Millisecond)
	if now.After(next) {
		return now
	}
	return next
}
