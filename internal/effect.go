package internal

// Effect is the internal implementation behind the public reactor.Effect
// family (EffectSync/render, EffectUser, EffectRoot, EffectWithCleanup):
// a reactionCore with no Source half, whose body runs once immediately at
// creation and again every time a dependency goes DIRTY and the node is
// flushed (spec §4.3).
//
// Grounded on the teacher's internal/effect.go Effect (a Computed whose
// value happens to be a cleanup func, dispatched through an effectQueue
// keyed by EffectType), generalized so the flavor lives in the node's own
// flag bits instead of a separate EffectType enum, and so teardown runs
// through the shared reactionCore.Destroy/teardown plumbing instead of
// being unwrapped from a boxed `any` value.
type Effect struct {
	reaction *reactionCore
	fn       func(ctx *ExecutionContext) func()
}

// NewEffect constructs and immediately runs an effect of the given flavor
// (kind should be one of FlagRenderEffect, FlagUserEffect, FlagRootEffect,
// FlagBranchEffect, FlagBlockEffect, FlagInspectEffect, OR'd with nothing
// else — FlagEffect itself is added automatically). Non-root effects are
// adopted as a child of the currently running effect, if any (spec §4.3's
// parent/child effect tree). Every effect, root or not, is adopted by the
// current Scope, if any.
func NewEffect(ctx *ExecutionContext, kind NodeFlags, body func(ctx *ExecutionContext) func()) *Effect {
	e := &Effect{fn: body}
	e.reaction = newReactionCore(FlagEffect | kind)
	e.reaction.update = func() { e.run(GetContext()) }

	if !kind.HasAny(FlagRootEffect) && ctx.activeEffect != nil {
		ctx.activeEffect.AddChild(e.reaction)
	}

	e.reaction.scope = ctx.currentScope
	if ctx.currentScope != nil {
		ctx.currentScope.adopt(e.reaction)
	}

	e.run(ctx)

	return e
}

// run executes (or re-executes) the effect body: any previous run's
// non-preserved children are disposed and its cleanup is invoked before
// the body runs again, dependencies are recaptured via the same
// runWithReaction/commitDeps machinery Derived.recompute uses. CLEAN is
// set eagerly before any of that so a self-retrigger during the body
// leaves the reaction DIRTY rather than being silently reabsorbed.
// Mirrors the teacher's pattern of "run prior cleanup, then compute"
// inside the effect queue's dispatched closure.
func (e *Effect) run(ctx *ExecutionContext) {
	if e.reaction.flags.HasAny(FlagDestroyed) || e.reaction.flags.HasAny(FlagInert) {
		return
	}

	// Mark CLEAN eagerly, before the body runs: if the body re-dirties
	// this same reaction (directly or through a write that cascades back
	// to it), markReactions sees the CLEAN->DIRTY transition and
	// re-enqueues it instead of the "never downgrade" guard silently
	// treating the re-dirty as a no-op (spec's update() protocol; a
	// self-retriggering effect must trip the scheduler's cycle detector
	// instead of quietly settling after one run).
	e.reaction.flags = e.reaction.flags.WithStatus(FlagClean)

	e.reaction.DisposeChildren()
	if e.reaction.teardown != nil {
		t := e.reaction.teardown
		e.reaction.teardown = nil
		runProtected(e.reaction.catchers, t)
	}

	prevEffect := ctx.activeEffect
	ctx.activeEffect = e.reaction

	startVersion := ctx.writeVersion
	var cleanup func()
	newDeps := ctx.runWithReaction(e.reaction, func() {
		cleanup = e.fn(ctx)
	})

	ctx.activeEffect = prevEffect

	e.reaction.commitDeps(ctx, newDeps)
	e.reaction.teardown = cleanup
	// Deliberately not re-marked CLEAN here: if the body re-dirtied this
	// same reaction (spec S6's self-retriggering effect), that DIRTY
	// status must survive so the reaction stays in the pending queue and
	// the scheduler's MaxFlushIterations bound actually trips instead of
	// the status being stomped back to CLEAN right after the write that
	// set it.
	e.reaction.flags |= FlagEffectRan

	// On a first run the deps are linked only after the body, so a write
	// to a signal read in the body reached no subscriber; re-dirty here.
	if e.reaction.flags.Status() == FlagClean {
		for _, dep := range newDeps {
			if dep.asReaction == nil && dep.writeVersion > startVersion {
				e.reaction.flags = e.reaction.flags.WithStatus(FlagDirty)
				scheduleEffect(ctx, e.reaction)
				scheduleAfterWrite(ctx)
				break
			}
		}
	}
}

// Stop tears down the effect: runs its cleanup, disposes its children,
// unlinks its dependencies, and removes it from its parent (spec §4.3/
// §4.7's disposal protocol, via the shared reactionCore.Destroy).
func (e *Effect) Stop() {
	e.reaction.checkOwner(GetContext())
	e.reaction.Destroy()
}

// OnError registers a panic handler scoped to this effect and its
// subtree, mirroring the teacher's Owner.OnError.
func (e *Effect) OnError(fn func(any)) {
	e.reaction.checkOwner(GetContext())
	e.reaction.OnError(fn)
}

// Preserve marks this effect so a parent's disposal skips it (spec §4.7's
// EFFECT_PRESERVED bit — used by effects intentionally detached from
// their creating scope's lifetime).
func (e *Effect) Preserve() {
	e.reaction.checkOwner(GetContext())
	e.reaction.flags |= FlagEffectPreserved
}
