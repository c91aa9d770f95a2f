package internal

// Repeater is the internal implementation behind the public
// reactor.Repeater: a reaction that forwards a value inline, synchronously,
// as part of the write call stack that dirtied its dependency — never
// queued onto pendingReactions the way an Effect is (spec §4.8's "inline
// write-through").
//
// There is no teacher equivalent (internal/effect.go only knows render vs
// user effects, both queue-dispatched); this is built the same way the
// teacher builds Effect on top of Computed — a reactionCore with an
// update closure — but wired into markReactions' FlagRepeater branch
// (internal/tracking.go) which calls update() immediately instead of
// appending to the pending queue.
type Repeater struct {
	reaction *reactionCore
	fn       func(ctx *ExecutionContext)
}

// NewRepeater constructs and immediately runs a repeater. fn is expected
// to read exactly the source(s) it should forward from and write through
// to some other Signal; whatever it reads becomes this repeater's tracked
// dependency set, exactly as with an Effect.
func NewRepeater(ctx *ExecutionContext, fn func(ctx *ExecutionContext)) *Repeater {
	rp := &Repeater{fn: fn}
	rp.reaction = newReactionCore(FlagRepeater)
	rp.reaction.update = func() { rp.run(GetContext()) }
	rp.run(ctx)
	return rp
}

func (rp *Repeater) run(ctx *ExecutionContext) {
	if rp.reaction.flags.HasAny(FlagDestroyed) || rp.reaction.flags.HasAny(FlagInert) {
		return
	}

	newDeps := ctx.runWithReaction(rp.reaction, func() { rp.fn(ctx) })
	rp.reaction.commitDeps(ctx, newDeps)
	rp.reaction.flags = rp.reaction.flags.WithStatus(FlagClean)
}

// Stop detaches the repeater from its source (spec §4.8's disposable
// handle).
func (rp *Repeater) Stop() {
	rp.reaction.checkOwner(GetContext())
	rp.reaction.Destroy()
}
