package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNodeFlagsStatus(t *testing.T) {
	t.Run("WithStatus replaces only the status bits", func(t *testing.T) {
		f := FlagDerived | FlagUnowned
		f = f.WithStatus(FlagDirty)

		assert.True(t, f.HasFlag(FlagDerived))
		assert.True(t, f.HasFlag(FlagUnowned))
		assert.Equal(t, FlagDirty, f.Status())

		f = f.WithStatus(FlagMaybeDirty)
		assert.Equal(t, FlagMaybeDirty, f.Status())
		assert.True(t, f.HasFlag(FlagDerived)) // untouched by the status swap
	})
}

func TestMarkReactionsNeverDowngrades(t *testing.T) {
	t.Run("a DIRTY reaction is not downgraded to MAYBE_DIRTY", func(t *testing.T) {
		ctx := newExecutionContext(0)
		source := newSourceCore(0)

		reaction := newReactionCore(FlagEffect)
		reaction.flags = reaction.flags.WithStatus(FlagClean)
		link(reaction, source)

		markReactions(ctx, source, FlagDirty)
		assert.Equal(t, FlagDirty, reaction.flags.Status())

		markReactions(ctx, source, FlagMaybeDirty)
		assert.Equal(t, FlagDirty, reaction.flags.Status(), "must not downgrade an already-DIRTY reaction")
	})
}

func TestScheduleEffectOnlyOnCleanToDirtyTransition(t *testing.T) {
	t.Run("an effect is enqueued once per clean-to-dirty transition", func(t *testing.T) {
		ctx := newExecutionContext(0)
		source := newSourceCore(0)

		reaction := newReactionCore(FlagEffect)
		reaction.flags = reaction.flags.WithStatus(FlagClean)
		link(reaction, source)

		markReactions(ctx, source, FlagDirty)
		assert.Len(t, ctx.pendingReactions, 1)

		markReactions(ctx, source, FlagDirty) // already dirty: no second enqueue
		assert.Len(t, ctx.pendingReactions, 1)
	})
}

func TestFlushSyncCyclePanics(t *testing.T) {
	t.Run("an effect that keeps re-dirtying itself trips MaxUpdateDepthExceededError", func(t *testing.T) {
		old := MaxFlushIterations
		MaxFlushIterations = 5
		defer func() { MaxFlushIterations = old }()

		ctx := newExecutionContext(0)
		source := newSourceCore(0)

		var reaction *reactionCore
		reaction = newReactionCore(FlagEffect)
		reaction.flags = reaction.flags.WithStatus(FlagClean)
		reaction.update = func() {
			reaction.flags = reaction.flags.WithStatus(FlagClean)
			markReactions(ctx, source, FlagDirty) // re-dirties itself every run
		}
		link(reaction, source)

		markReactions(ctx, source, FlagDirty)

		assert.PanicsWithValue(t, &MaxUpdateDepthExceededError{Iterations: 6}, func() {
			FlushSync(ctx)
		})
	})
}

func TestCommitDepsReusesMatchingPrefix(t *testing.T) {
	t.Run("skippedDeps counts the reused leading run", func(t *testing.T) {
		ctx := newExecutionContext(0)
		reaction := newReactionCore(FlagDerived)

		s1 := newSourceCore(1)
		s2 := newSourceCore(2)
		s3 := newSourceCore(3)

		reaction.commitDeps(ctx, []*sourceCore{s1, s2})
		assert.Equal(t, 0, ctx.skippedDeps) // nothing existed to reuse yet

		reaction.commitDeps(ctx, []*sourceCore{s1, s2, s3})
		assert.Equal(t, 2, ctx.skippedDeps) // s1, s2 reused; s3 freshly linked
	})
}
