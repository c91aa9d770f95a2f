package reactor

import "math"

// Equality helpers for NewSignalWithEquals/NewDerivedWithEquals, generic
// replacements for the teacher's untyped `a == b` (internal/signal.go's
// isEqual), which can't express NaN-aware or structural comparisons.

// Default is == on comparable T. Equivalent to omitting an equals
// function entirely; provided so it can be composed (e.g. ByField).
func Default[T comparable](a, b T) bool { return a == b }

// Never always reports unequal, so every Set/recompute counts as a
// change regardless of value — useful for signals whose value type
// carries no meaningful equality (e.g. a mutable buffer consumers should
// always re-read).
func Never[T any](a, b T) bool { return false }

// Always reports equal, so no write/recompute ever counts as a change —
// useful for deliberately freezing a node after its first value.
func Always[T any](a, b T) bool { return true }

// Float64NaN treats NaN as equal to NaN, unlike ==, so repeatedly setting
// a signal to NaN does not repeatedly fire dependents.
func Float64NaN(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}

// Float32NaN is Float64NaN for float32.
func Float32NaN(a, b float32) bool {
	if math.IsNaN(float64(a)) && math.IsNaN(float64(b)) {
		return true
	}
	return a == b
}

// Shallow reports two slices equal if they have the same length and
// every element compares == pairwise.
func Shallow[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ByField builds an equals function that compares two values by applying
// field to each and comparing the results with ==, for structs whose
// full equality is too strict but one field is a meaningful identity
// (e.g. comparing by an ID field while ignoring other mutable fields).
func ByField[T any, F comparable](field func(T) F) func(a, b T) bool {
	return func(a, b T) bool { return field(a) == field(b) }
}
