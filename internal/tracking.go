package internal

// trackRead implements spec §4.4's track-read: registers source as a
// dependency of the active reaction, if any, deduplicating within a
// single reaction run via the source's per-cycle readVersion stamp.
//
// Grounded on the teacher's internal/tracker.go Track/shouldTrack, split
// into the "updating" fast path (append-if-not-yet-seen-this-cycle) and
// the "not updating" fallback path spec §4.4 calls out separately: a sync
// effect reading a Source outside of its own rerun still needs to track, just without the same-cycle dedup a fresh
// recompute gives you for free.
func trackRead(ctx *ExecutionContext, source *sourceCore) {
	if ctx.activeReaction == nil || ctx.untracking {
		return
	}

	reaction := ctx.activeReaction

	if reaction.flags.HasAny(FlagReactionIsUpdating) {
		if source.readVersion < ctx.readVersion {
			source.readVersion = ctx.readVersion
			ctx.newDeps = append(ctx.newDeps, source)
		}
		return
	}

	// Not currently in a tracked recompute pass (e.g. a render effect
	// reading a signal from an event handler outside its own rerun):
	// link directly, same as the teacher's ReactiveNode.Link, skipping a
	// duplicate if this source is already the most recently read dep.
	if reaction.deps != nil {
		tail := reaction.deps.prevDep
		if tail.source == source {
			return
		}
	}
	link(reaction, source)
}

// markReactions implements spec §4.4's write-time cascade: an iterative,
// explicit-stack walk starting from a changed source, applying newStatus
// to its direct dependents and cascading through Deriveds, invoking
// Repeaters inline, and enqueueing Effects for the next flush.
//
// Grounded on the teacher's internal/signal.go Write (s.heap.InsertAll(
// s.Subs())) and internal/runtime.go recompute, generalized from "insert
// into the height heap" to "apply DIRTY/MAYBE_DIRTY status and dispatch
// by reaction type" per spec §4.4. The "collect a local strong-reference
// vector, then mutate" discipline (spec §5/§9) is implemented by fully
// draining the Subs() iterator into a slice before touching any flags.
func markReactions(ctx *ExecutionContext, source *sourceCore, newStatus NodeFlags) {
	type stackItem struct {
		source *sourceCore
		status NodeFlags
	}

	stack := []stackItem{{source, newStatus}}

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// Collect-then-mutate: Subs() already prunes dead weak refs as it
		// walks, but we must finish collecting before applying any status
		// change, since a Repeater dispatched below can itself read/write
		// sources and mutate lists we're still iterating.
		var reactions []*reactionCore
		for r := range item.source.Subs() {
			reactions = append(reactions, r)
		}

		for _, r := range reactions {
			prevStatus := r.flags.Status()
			if prevStatus == FlagDirty || prevStatus == item.status {
				continue // never downgrade; never re-cascade an unchanged status (diamond tolerance)
			}
			r.flags = r.flags.WithStatus(item.status)

			switch {
			case r.flags.HasAny(FlagDerived):
				if r.asSource != nil {
					stack = append(stack, stackItem{r.asSource, FlagMaybeDirty})
				}
			case r.flags.HasAny(FlagRepeater):
				if prevStatus == FlagClean && r.update != nil {
					r.update()
				}
			case r.flags.HasAny(FlagEffect):
				if prevStatus == FlagClean {
					scheduleEffect(ctx, r)
				}
			}
		}
	}
}

// scheduleEffect appends reaction to the pending queue (spec §4.4 step 4:
// "schedule-effect, which appends to context.pending_reactions").
func scheduleEffect(ctx *ExecutionContext, reaction *reactionCore) {
	ctx.pendingReactions = append(ctx.pendingReactions, reaction)
	if OnQueueDepthChanged != nil {
		OnQueueDepthChanged(len(ctx.pendingReactions))
	}
}
