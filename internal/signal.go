package internal

// Signal is the internal generic implementation behind the public
// reactor.Signal[T]: a mutable cell holding a sourceCore. Kept generic at
// this layer (rather than boxing every value as `any` the way the
// teacher's internal/signal.go does) since Go generics let Get/Set return
// and accept T directly while the dependency graph below still only ever
// moves *sourceCore pointers around.
type Signal[T any] struct {
	core *sourceCore
}

// NewSignal constructs a Signal with the default (==) equality.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{core: newSourceCore(initial)}
}

// NewSignalWithEquals constructs a Signal using a caller-supplied equality
// function in place of ==, e.g. for NaN-aware float comparisons or
// structural equality on non-comparable T (spec §4.1's "equals").
func NewSignalWithEquals[T any](initial T, equals func(a, b T) bool) *Signal[T] {
	s := &Signal[T]{core: newSourceCore(initial)}
	s.core.equals = func(a, b any) bool { return equals(a.(T), b.(T)) }
	return s
}

// Get reads the current value, tracking a dependency on the active
// reaction if there is one (spec §4.1's Signal.get).
func (s *Signal[T]) Get(ctx *ExecutionContext) T {
	s.core.checkOwner(ctx)
	trackRead(ctx, s.core)
	return s.core.value.(T)
}

// Peek reads the current value without tracking (spec §4.6's peek).
func (s *Signal[T]) Peek(ctx *ExecutionContext) T {
	s.core.checkOwner(ctx)
	return s.core.value.(T)
}

// With reads the current value and passes it to fn, tracking a dependency
// exactly as Get does (spec §4.1's "With(f)" accessor, ported from the
// teacher's Signal.With). fn receives T by value, so it gets the same copy
// Get would return; the value is not shared in place.
func (s *Signal[T]) With(ctx *ExecutionContext, fn func(T)) {
	s.core.checkOwner(ctx)
	trackRead(ctx, s.core)
	fn(s.core.value.(T))
}

// Set does nothing if next equals the current value under the configured
// equality. Otherwise it stores next, bumps write_version, runs
// mark-reactions with DIRTY, and schedules a flush unless a batch is open (spec §4.1/§4.4's
// Signal.set). Panics with WriteInsideDerivedError if the active reaction
// is a Derived mid-recompute (spec §4.1: "writes to a signal from inside a
// derived's evaluation are rejected").
//
// Ported from the teacher's internal/signal.go Signal.Write, generalized
// from its untyped equality check to the equals func stored on sourceCore,
// and with the derived-write guard added per spec (the teacher has no such
// restriction since its Computed never calls back into a write path).
func (s *Signal[T]) Set(ctx *ExecutionContext, next T) {
	s.core.checkOwner(ctx)
	if ctx.activeReaction != nil && ctx.activeReaction.flags.HasAny(FlagDerived) {
		panic(&WriteInsideDerivedError{})
	}

	if s.core.equals(s.core.value, next) {
		return
	}

	s.core.value = next
	ctx.writeVersion++
	s.core.writeVersion = ctx.writeVersion

	markReactions(ctx, s.core, FlagDirty)
	scheduleAfterWrite(ctx)
}

// Update reads the current value, applies fn, and Sets the result — the
// read-modify-write convenience spec §4.1 lists alongside get/set.
func (s *Signal[T]) Update(ctx *ExecutionContext, fn func(T) T) {
	s.Set(ctx, fn(s.core.value.(T)))
}

// Core exposes the underlying sourceCore to sibling internal packages
// (Selector, Repeater) that need to subscribe without going through the
// typed Get/Set surface.
func (s *Signal[T]) Core() *sourceCore { return s.core }
