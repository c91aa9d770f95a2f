package internal

// Derived is the internal generic implementation behind the public
// reactor.Derived[T]: a sourceCore/reactionCore pair that lazily
// recomputes itself by reading other sources, matching spec §4.2's
// two-phase dirty propagation (mark-reactions pushes eagerly on write,
// resolve-maybe-dirty pulls precisely on read).
//
// Grounded on the teacher's internal/computed.go Computed, which embeds
// both a Signal and an Owner the same way this embeds both halves; the
// height-based eager "insert into heap, drain in height order" scheme is
// replaced with the read-time pull-based resolution spec §4.2 requires.
type Derived[T any] struct {
	core     *sourceCore
	reaction *reactionCore

	compute func(ctx *ExecutionContext) T

	// sourceVersion is the highest dependency write_version observed as of
	// the last successful recompute. MAYBE_DIRTY resolution recomputes iff
	// some dependency's write_version now exceeds this (spec §4.2's
	// "write_version short-circuiting": a MAYBE_DIRTY derived whose deps
	// turn out unchanged settles back to CLEAN without recomputing).
	sourceVersion uint64
}

// NewDerived constructs a Derived with the default (==) equality.
func NewDerived[T any](compute func(ctx *ExecutionContext) T) *Derived[T] {
	d := &Derived[T]{
		core:     newSourceCore(nil),
		reaction: newReactionCore(FlagDerived),
		compute:  compute,
	}
	d.core.asReaction = d.reaction
	d.reaction.asSource = d.core
	d.reaction.update = func() { d.ensureClean(GetContext()) }
	return d
}

// NewDerivedWithEquals is NewDerived with a caller-supplied equality
// function gating whether a recompute counts as a value change (spec
// §4.2/§4.1's "equals").
func NewDerivedWithEquals[T any](compute func(ctx *ExecutionContext) T, equals func(a, b T) bool) *Derived[T] {
	d := NewDerived(compute)
	d.core.equals = func(a, b any) bool {
		av, ok := a.(T)
		if !ok { // no cached value yet: the first compute always counts as a change
			return false
		}
		bv, _ := b.(T)
		return equals(av, bv)
	}
	return d
}

// Get resolves any pending DIRTY/MAYBE_DIRTY status (spec §4.2's
// "resolve-maybe-dirty, then read"), then tracks a dependency on the
// active reaction exactly as Signal.Get does. Panics with
// DisposedDerivedReadError if this derived's reaction node carries
// FlagDestroyed (spec §7). A Derived is not adopted by any scope or
// effect, and no public operation destroys one.
func (d *Derived[T]) Get(ctx *ExecutionContext) T {
	d.core.checkOwner(ctx)
	if d.reaction.flags.HasAny(FlagDestroyed) {
		panic(&DisposedDerivedReadError{})
	}

	d.ensureClean(ctx)
	trackRead(ctx, d.core)

	return d.core.value.(T)
}

// Peek resolves and returns the value without tracking (spec §4.6).
func (d *Derived[T]) Peek(ctx *ExecutionContext) T {
	d.core.checkOwner(ctx)
	d.ensureClean(ctx)
	return d.core.value.(T)
}

// ensureClean implements spec §4.2's resolve-maybe-dirty: CLEAN is a
// no-op, DIRTY recomputes unconditionally, and MAYBE_DIRTY walks
// dependencies deepest-first (recursing into any dependency that is
// itself a derived's source before inspecting it) and only recomputes if
// some dependency's write_version advanced past what was observed the
// last time this derived settled.
func (d *Derived[T]) ensureClean(ctx *ExecutionContext) {
	switch d.reaction.flags.Status() {
	case FlagClean:
		return
	case FlagDirty:
		d.recompute(ctx)
		return
	}

	changed := false
	for dep := range d.reaction.Deps() {
		if dep.asReaction != nil && dep.asReaction.update != nil {
			dep.asReaction.update()
		}
		if dep.writeVersion > d.sourceVersion {
			changed = true
		}
	}

	if changed {
		d.recompute(ctx)
		return
	}

	d.reaction.flags = d.reaction.flags.WithStatus(FlagClean)
}

// recompute runs compute under dependency tracking, commits the captured
// dep list (reusing the matching prefix via commitDeps), and — only if
// the new value differs under the configured equality — bumps this
// derived's own write_version so downstream readers see a change. Mirrors
// the teacher's Computed.run, generalized from its unconditional-rerun
// body to spec §4.2's equality-gated propagation.
func (d *Derived[T]) recompute(ctx *ExecutionContext) {
	newDeps := ctx.runWithReaction(d.reaction, func() {
		next := d.compute(ctx)
		if !d.core.equals(d.core.value, next) {
			d.core.value = next
			ctx.writeVersion++
			d.core.writeVersion = ctx.writeVersion
		}
	})

	d.reaction.commitDeps(ctx, newDeps)

	maxVersion := d.sourceVersion
	for dep := range d.reaction.Deps() {
		if dep.writeVersion > maxVersion {
			maxVersion = dep.writeVersion
		}
	}
	d.sourceVersion = maxVersion

	d.reaction.flags = d.reaction.flags.WithStatus(FlagClean)
}

// Core exposes the underlying sourceCore so Selector/Repeater can
// subscribe to a Derived the same way they subscribe to a Signal.
func (d *Derived[T]) Core() *sourceCore { return d.core }
