// Package clock abstracts the time source so expiry and window arithmetic
// are deterministic under test.
package clock

import "time"

// Clock supplies the current instant.  Implementations must be side-effect
// free.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock in UTC.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always returns the same instant.  Test helper.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }

// Stepping returns a settable clock for tests that need to advance time.
type Stepping struct {
	T time.Time
}

func (s *Stepping) Now() time.Time { return s.T }

// Advance moves the clock forward by d.
func (s *Stepping) Advance(d time.Duration) { s.T = s.T.Add(d) }
