package internal

// Selector is the internal implementation behind the public
// reactor.Selector[T]: turns "is my key the selected one" from an O(n)
// problem (every consumer re-reads the whole selected value and compares)
// into O(2) (only the previously-selected and newly-selected keys'
// consumers are notified) — spec §4.9.
//
// There is no teacher equivalent; this is composed the way the teacher
// composes Effect out of Computed — an internal watcher reaction plus a
// per-key sourceCore map — grounded on the same Signal/Effect primitives
// used throughout this package rather than on any single teacher file.
type Selector[T comparable] struct {
	read func(ctx *ExecutionContext) T

	subscribers map[T]*sourceCore
	lastValue   T
	hasValue    bool

	watcher *reactionCore
}

// NewSelector constructs a selector over read, which should read exactly
// the underlying value whose selection is being tracked (typically a
// Signal.Get or Derived.Get call).
func NewSelector[T comparable](ctx *ExecutionContext, read func(ctx *ExecutionContext) T) *Selector[T] {
	s := &Selector[T]{
		read:        read,
		subscribers: make(map[T]*sourceCore),
	}

	s.watcher = newReactionCore(FlagEffect | FlagRenderEffect)
	s.watcher.update = func() { s.tick(GetContext()) }
	s.tick(ctx)

	return s
}

// tick re-reads the underlying value and, if it changed, marks only the
// previously-selected and newly-selected keys' per-key sources dirty —
// never the whole subscriber set (spec §4.9's O(2) guarantee).
func (s *Selector[T]) tick(ctx *ExecutionContext) {
	if s.watcher.flags.HasAny(FlagDestroyed) {
		return
	}

	newDeps := ctx.runWithReaction(s.watcher, func() {
		next := s.read(ctx)

		if s.hasValue && next == s.lastValue {
			return
		}

		prev := s.lastValue
		hadPrev := s.hasValue

		s.lastValue = next
		s.hasValue = true

		if hadPrev {
			if old, ok := s.subscribers[prev]; ok {
				markReactions(ctx, old, FlagDirty)
			}
		}
		if cur, ok := s.subscribers[next]; ok {
			markReactions(ctx, cur, FlagDirty)
		}

		s.gc(prev, hadPrev)
	})

	s.watcher.commitDeps(ctx, newDeps)
	s.watcher.flags = s.watcher.flags.WithStatus(FlagClean)
}

// IsSelected reports whether key is the currently selected value, tracking
// a dependency on that key alone — not on the underlying value itself, so
// a consumer only reruns when its own key's selection status flips.
func (s *Selector[T]) IsSelected(ctx *ExecutionContext, key T) bool {
	s.watcher.checkOwner(ctx)
	sel, ok := s.subscribers[key]
	if !ok {
		sel = newSourceCore(false)
		s.subscribers[key] = sel
		if OnSelectorKeysChanged != nil {
			OnSelectorKeysChanged(len(s.subscribers))
		}
	}
	trackRead(ctx, sel)

	return s.hasValue && key == s.lastValue
}

// gc drops per-key entries with no live subscribers and no reason to be
// kept (the previously-selected key, once no one is watching it, carries
// no useful state anymore). Called opportunistically from tick rather
// than eagerly on every unsubscribe (spec §4.9's "lazy GC of dead/empty
// key entries").
func (s *Selector[T]) gc(prev T, hadPrev bool) {
	if hadPrev {
		if sel, ok := s.subscribers[prev]; ok && sel.subs == nil && prev != s.lastValue {
			delete(s.subscribers, prev)
			if OnSelectorKeysChanged != nil {
				OnSelectorKeysChanged(len(s.subscribers))
			}
		}
	}
}

// Stop tears down the selector's internal watcher.
func (s *Selector[T]) Stop() {
	s.watcher.checkOwner(GetContext())
	s.watcher.Destroy()
}
