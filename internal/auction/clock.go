package auction

import "time"

// Clock is the single source of "now" for callers of the engine.  Read it
// once per operation and pass the value down.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC, truncated to the millisecond
// precision the database keeps.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }
