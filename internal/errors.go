package internal

import "fmt"

// Typed panic values per spec §7's error taxonomy. The teacher recovers
// panics only at Owner boundaries (owner.go's Run) and otherwise lets
// them propagate unchanged; this module follows the same policy — these
// types exist so callers that do recover (Scope.Stop's teardown guard,
// a user's own recover) can errors.As/type-switch on them instead of
// string-matching a panic value.

// WriteInsideDerivedError is raised when Signal.Set is called while a
// Derived is computing (spec §4.1/§4.4's self-invalidation guard).
type WriteInsideDerivedError struct{}

func (e *WriteInsideDerivedError) Error() string {
	return "reactor: cannot write to a signal inside a derived's computation"
}

// MaxUpdateDepthExceededError is raised by the scheduler when a flush
// does not drain within MaxFlushIterations (spec §4.3/§4.5/§7).
type MaxUpdateDepthExceededError struct {
	Iterations int
}

func (e *MaxUpdateDepthExceededError) Error() string {
	return fmt.Sprintf("reactor: maximum update depth exceeded (%d iterations) — possible infinite self-triggering effect", e.Iterations)
}

// DisposedDerivedReadError is raised when a Derived whose reaction node is
// marked destroyed is read (spec §7).
type DisposedDerivedReadError struct{}

func (e *DisposedDerivedReadError) Error() string {
	return "reactor: derived fn disposed"
}

// BorrowViolationError names a violation of the collect-then-mutate
// discipline (spec §5/§9) — a traversal observing a list mutated out from
// under it, which would be an implementation bug in the engine itself,
// never a user error (spec §7's table marks it "No — implementation
// bug"). The engine itself never constructs one.
type BorrowViolationError struct {
	Where string
}

func (e *BorrowViolationError) Error() string {
	return fmt.Sprintf("reactor: borrow violation during %s traversal", e.Where)
}

// CrossGoroutineAccessError is raised when a node created on one goroutine
// is read, written, or disposed from another (spec §5's ownership model,
// enforced the way the teacher's Tracker.shouldTrack checks executingGID).
type CrossGoroutineAccessError struct {
	OwnerGID  int64
	CallerGID int64
}

func (e *CrossGoroutineAccessError) Error() string {
	return fmt.Sprintf("reactor: node owned by goroutine %d accessed from goroutine %d", e.OwnerGID, e.CallerGID)
}

// ReadOnlyGetterError is returned (not panicked) from a slot-like rebind
// path when the slot currently points at a getter closure (spec §6's Slot
// abstraction, §7's table: "Recovered locally? Yes"). Declared here for
// the reactive-collections layer described in spec §6; the core itself
// never constructs one.
type ReadOnlyGetterError struct{}

func (e *ReadOnlyGetterError) Error() string {
	return "reactor: cannot write through a slot that currently points at a read-only getter"
}
