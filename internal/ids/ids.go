// Package ids provides strictly monotonic identifier counters.
//
// Identifiers handed out by a Counter are never reused, even after the
// entity they named is deleted. Deriving ids from collection sizes collides
// as soon as anything is removed.
package ids

import "golang.org/x/exp/constraints"

// Counter hands out identifiers starting at 1. The zero value is ready to use.
// Zero is never returned so it can serve as a wildcard or "unset" marker.
type Counter[T constraints.Unsigned] struct {
	last T
}

// Next returns the next identifier.
func (c *Counter[T]) Next() T {
	c.last++
	if c.last == 0 {
		panic("ids: counter overflow")
	}
	return c.last
}

// Last returns the most recently issued identifier, or 0 if none was issued.
func (c *Counter[T]) Last() T {
	return c.last
}
