// Package reactor implements a fine-grained reactive runtime: signals,
// lazily-recomputed deriveds, effects with automatic dependency tracking,
// disposal scopes, O(2) selectors and inline write-through repeaters.
//
// Every reactive node is owned by exactly one goroutine (the one that
// created it); sharing a node across goroutines panics with
// CrossGoroutineAccessError rather than racing silently.
package reactor

import "github.com/corebound/reactor/internal"

// Signal is a mutable reactive cell.
type Signal[T any] struct{ s *internal.Signal[T] }

// NewSignal creates a signal holding initial, compared with == on writes.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{s: internal.NewSignal(initial)}
}

// NewSignalWithEquals creates a signal using equals in place of == to
// decide whether a Set actually changes the value (e.g. NaN-aware float
// comparison, or structural equality on a non-comparable T).
func NewSignalWithEquals[T any](initial T, equals func(a, b T) bool) *Signal[T] {
	return &Signal[T]{s: internal.NewSignalWithEquals(initial, equals)}
}

// Get reads the value, registering a dependency if called from within a
// Derived, Effect, Selector or Repeater body.
func (s *Signal[T]) Get() T { return s.s.Get(internal.GetContext()) }

// Peek reads the value without tracking a dependency.
func (s *Signal[T]) Peek() T { return s.s.Peek(internal.GetContext()) }

// With passes the current value to fn, tracking a dependency as Get does.
// fn receives the value by value, the same copy Get would return.
func (s *Signal[T]) With(fn func(T)) { s.s.With(internal.GetContext(), fn) }

// Set stores next, unless it equals the current value under the signal's
// equality, in which case Set does nothing. Panics with
// WriteInsideDerivedError if called while a
// Derived belonging to this goroutine is mid-recompute.
func (s *Signal[T]) Set(next T) { s.s.Set(internal.GetContext(), next) }

// Update reads, applies fn, and writes back the result.
func (s *Signal[T]) Update(fn func(T) T) { s.s.Update(internal.GetContext(), fn) }

// Derived is a lazily-recomputed, cached, dependency-tracked value.
type Derived[T any] struct{ d *internal.Derived[T] }

// NewDerived creates a derived value computed by compute, which is run for
// the first time the first time the derived is read.
func NewDerived[T any](compute func() T) *Derived[T] {
	return &Derived[T]{d: internal.NewDerived(func(*internal.ExecutionContext) T { return compute() })}
}

// NewDerivedWithEquals is NewDerived with a caller-supplied equality
// function gating whether a recompute counts as a value change.
func NewDerivedWithEquals[T any](compute func() T, equals func(a, b T) bool) *Derived[T] {
	return &Derived[T]{d: internal.NewDerivedWithEquals(func(*internal.ExecutionContext) T { return compute() }, equals)}
}

// Get resolves the derived to its current value (recomputing if
// necessary) and tracks a dependency.
func (d *Derived[T]) Get() T { return d.d.Get(internal.GetContext()) }

// Peek resolves and returns the value without tracking a dependency.
func (d *Derived[T]) Peek() T { return d.d.Peek(internal.GetContext()) }

// Effect is a disposable handle to a running side-effecting reaction.
type Effect struct{ e *internal.Effect }

// EffectSync creates a render-flavored effect: runs immediately and again
// synchronously, in enqueue order, every time a dependency changes and the
// scheduler flushes.
func EffectSync(fn func()) *Effect {
	return newEffect(internal.FlagRenderEffect, func(*internal.ExecutionContext) func() { fn(); return nil })
}

// EffectUser creates a user-flavored effect — semantically identical to
// EffectSync in this single-threaded, synchronous-flush runtime, but kept
// as a distinct flavor so call sites document intent (a user-authored
// reaction, not an internal rendering pass) and so a future scheduler can
// give the two different ordering guarantees without call-site changes.
func EffectUser(fn func()) *Effect {
	return newEffect(internal.FlagUserEffect, func(*internal.ExecutionContext) func() { fn(); return nil })
}

// EffectWithCleanup is like EffectSync, but fn may return a cleanup
// function run before the next rerun and at disposal.
func EffectWithCleanup(fn func() func()) *Effect {
	return newEffect(internal.FlagRenderEffect, func(*internal.ExecutionContext) func() { return fn() })
}

// EffectRoot creates a root effect: not adopted as a child of whatever
// effect is currently running, so its lifetime is independent of its
// creation-time caller and must be stopped explicitly via Effect.Stop, or
// by stopping the Scope it was created in (root effects are still adopted
// by the current Scope).
func EffectRoot(fn func() func()) *Effect {
	return newEffect(internal.FlagRootEffect, func(*internal.ExecutionContext) func() { return fn() })
}

func newEffect(kind internal.NodeFlags, body func(*internal.ExecutionContext) func()) *Effect {
	return &Effect{e: internal.NewEffect(internal.GetContext(), kind, body)}
}

// Stop tears down the effect: runs its cleanup, disposes its children,
// and unlinks its dependencies.
func (e *Effect) Stop() { e.e.Stop() }

// OnError registers a panic handler scoped to this effect and its subtree.
func (e *Effect) OnError(fn func(any)) { e.e.OnError(fn) }

// Preserve marks the effect so a parent scope's disposal skips it.
func (e *Effect) Preserve() { e.e.Preserve() }

// SetName attaches a label shown by debug.Tree dumps.
func (e *Effect) SetName(name string) { e.e.SetName(name) }

// Snapshot returns a debug-tree view of this effect and its living
// children, for debug.Tree.
func (e *Effect) Snapshot() *internal.DebugNode { return e.e.Snapshot() }

// Scope groups effects and cleanups under one disposal unit that can be
// paused, resumed, and stopped as a whole.
type Scope struct{ s *internal.Scope }

// NewScope creates a scope nested under the caller's current scope, if
// any.
func NewScope() *Scope {
	return &Scope{s: internal.NewScope(internal.GetContext())}
}

// Run runs fn with this scope installed as current, so any Effect/
// EffectSync/EffectUser created inside fn is adopted by this scope.
func (s *Scope) Run(fn func()) { internal.Run(internal.GetContext(), s.s, fn) }

// OnDispose registers fn to run when the scope stops, LIFO relative to
// other registrations on the same scope.
func (s *Scope) OnDispose(fn func()) { s.s.OnDispose(fn) }

// Pause marks every effect transitively owned by this scope INERT: writes
// still mark them dirty, but the scheduler skips running them.
func (s *Scope) Pause() { s.s.Pause() }

// Resume clears INERT on the scope's effect tree; anything dirtied while
// paused runs on the next flush.
func (s *Scope) Resume() { s.s.Resume(internal.GetContext()) }

// Stop disposes the scope and all its descendants.
func (s *Scope) Stop() { s.s.Stop(internal.GetContext()) }

// OnScopeDispose registers fn on the caller's current scope, panicking if
// there is none. Mirrors the convenience top-level OnCleanup the teacher's
// sig.go exposes, scoped to the new Scope type instead of Owner.
func OnScopeDispose(fn func()) {
	ctx := internal.GetContext()
	internal.CurrentScope(ctx).OnDispose(fn)
}

// Selector turns "is my key the selected one" into an O(2) operation:
// only the previously- and newly-selected keys' consumers rerun, instead
// of every consumer re-reading and comparing the whole value.
type Selector[T comparable] struct{ s *internal.Selector[T] }

// NewSelector builds a selector over read, which should read exactly the
// underlying value whose selection is being tracked.
func NewSelector[T comparable](read func() T) *Selector[T] {
	return &Selector[T]{s: internal.NewSelector(internal.GetContext(), func(*internal.ExecutionContext) T { return read() })}
}

// IsSelected reports whether key is currently selected, tracking a
// dependency on that key alone.
func (s *Selector[T]) IsSelected(key T) bool {
	return s.s.IsSelected(internal.GetContext(), key)
}

// Stop tears down the selector's internal watcher.
func (s *Selector[T]) Stop() { s.s.Stop() }

// Repeater forwards a value inline, synchronously, as part of the write
// call stack that dirtied its dependency — never queued the way an
// Effect is.
type Repeater struct{ r *internal.Repeater }

// NewRepeater builds and immediately runs a repeater; fn should read
// exactly the source(s) it forwards from.
func NewRepeater(fn func()) *Repeater {
	return &Repeater{r: internal.NewRepeater(internal.GetContext(), func(*internal.ExecutionContext) { fn() })}
}

// Stop detaches the repeater from its source.
func (r *Repeater) Stop() { r.r.Stop() }

// Batch runs fn with writes coalesced: mark-reactions still happens
// eagerly on every Set, but the scheduler does not flush until the
// outermost Batch returns. Panic-safe — the batch depth unwinds even if
// fn panics.
func Batch(fn func()) { internal.Batch(internal.GetContext(), fn) }

// Untrack runs fn without registering any dependency reads it performs,
// and returns its result.
func Untrack[T any](fn func() T) T {
	ctx := internal.GetContext()
	var result T
	ctx.RunUntracked(func() { result = fn() })
	return result
}

// Peek runs fn without registering dependency reads, discarding its
// result — the statement-form counterpart to Untrack.
func Peek(fn func()) {
	ctx := internal.GetContext()
	ctx.RunUntracked(fn)
}

// FlushSync drains the pending-effects queue to quiescence. Mostly useful
// in tests, or after a Batch when the caller needs a synchronous
// guarantee that every dependent effect has already run.
func FlushSync() { internal.FlushSync(internal.GetContext()) }

// Tick is a synonym for FlushSync.
func Tick() { internal.Tick(internal.GetContext()) }
