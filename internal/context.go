package internal

// ExecutionContext is the process-ambient state spec §3 calls "Context":
// the currently active Reaction/Effect, the untracking flag, the global
// write/read version counters, the in-progress new-deps capture, the
// batch depth and pending-reaction queues, and the flush reentry guard.
//
// One ExecutionContext exists per goroutine (spec §5: "strictly single
// threaded... all state lives in thread-local... storage"), looked up the
// way the teacher's internal/runtime.go keys its Runtime singleton off
// github.com/petermattis/goid.
type ExecutionContext struct {
	gid int64

	untracking bool

	activeReaction *reactionCore
	activeEffect   *reactionCore
	currentScope   *Scope

	writeVersion uint64
	readVersion  uint64

	newDeps     []*sourceCore
	skippedDeps int

	batchDepth int

	pendingReactions  []*reactionCore
	queuedRootEffects []*reactionCore

	isFlushingSync bool
}

func newExecutionContext(gid int64) *ExecutionContext {
	return &ExecutionContext{gid: gid}
}

// CurrentScope exposes ctx's active scope to the public package, which
// has no other way to reach an unexported field across the package
// boundary.
func CurrentScope(ctx *ExecutionContext) *Scope {
	return ctx.currentScope
}

// ShouldTrack reports whether a Source read right now should register a
// dependency: there must be an active reaction and the untracking flag
// must be clear (spec §4.6).
func (ctx *ExecutionContext) ShouldTrack() bool {
	return ctx.activeReaction != nil && !ctx.untracking
}

// RunUntracked suppresses dependency capture for the duration of fn,
// panic-safe via defer (spec §4.6: "Panic-safe via guard").
func (ctx *ExecutionContext) RunUntracked(fn func()) {
	prev := ctx.untracking
	ctx.untracking = true
	defer func() { ctx.untracking = prev }()
	fn()
}

// runWithReaction installs reaction as the active tracking target for the
// duration of fn, bumps the global read_version once, and captures the
// read order into newDeps. Mirrors the teacher's Tracker.RunWithComputation
// save/restore shape, generalized to the spec's read_version scheme.
func (ctx *ExecutionContext) runWithReaction(reaction *reactionCore, fn func()) []*sourceCore {
	prevReaction := ctx.activeReaction
	prevNewDeps := ctx.newDeps
	prevSkipped := ctx.skippedDeps

	ctx.activeReaction = reaction
	ctx.newDeps = nil
	ctx.skippedDeps = 0
	ctx.readVersion++

	reaction.flags |= FlagReactionIsUpdating
	defer func() {
		reaction.flags &^= FlagReactionIsUpdating
		ctx.activeReaction = prevReaction
		ctx.newDeps = prevNewDeps
		ctx.skippedDeps = prevSkipped
	}()

	fn()

	captured := ctx.newDeps
	return captured
}
