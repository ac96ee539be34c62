// Package system provides the wall-clock Clock implementation.
package system

import "time"

// Clock reads the system time.
type Clock struct{}

// New returns a system Clock.
func New() Clock { return Clock{} }

// Now returns the current time.
func (Clock) Now() time.Time { return time.Now() }
