package internal

import (
	"iter"
	"weak"
)

// sourceCore is the Source half of a node: a value holder that may be
// read and that notifies its dependents when the value changes. Signal
// embeds one directly; Derived embeds one alongside a reactionCore.
//
// Ported from the teacher's internal/signal.go (value/pendingValue split,
// equality gate) and internal/node.go (the dependency-link bookkeeping),
// unified into one generic implementation since Go generics let the
// equality function live here instead of being duplicated per concrete
// type the way the teacher's Signal/Computed each reimplement addSubLink.
type sourceCore struct {
	flags NodeFlags

	value  any
	equals func(a, b any) bool

	writeVersion uint64 // bumped only when the value actually changes
	readVersion  uint64 // per-source same-cycle dedup stamp (spec §4.4)

	subs *DependencyLink // head of the weakly-held subscriber list

	// asReaction bridges back to the Reaction half when this source also
	// belongs to a Derived (spec §9's "as_derived_source/reaction bridge
	// for the one type that is both").
	asReaction *reactionCore

	// ownerGID is the goroutine that constructed this node. Every access
	// is checked against it (spec §5's single-goroutine ownership model).
	ownerGID int64
}

// reactionCore is the Reaction half of a node: something that reads
// Sources and re-executes when they change. Effect and Repeater embed one
// alone; Derived embeds one alongside a sourceCore.
//
// Ported from the teacher's internal/owner.go (parent/child tree,
// cleanups, OnError catchers) moved onto the reaction node itself per
// spec §3, and internal/computed.go's dep-list machinery.
type reactionCore struct {
	flags NodeFlags

	name string // optional, for debug.Tree dumps

	deps *DependencyLink // head of the strongly-held dependency list

	teardown func()
	catchers []func(any)

	// update is the single entry point "bring this reaction up to date"
	// regardless of concrete type: Derived wires it to its recompute
	// protocol, Effect to its update() protocol, Repeater to its inline
	// forward invocation.
	update func()

	// asSource bridges forward to the Source half when this reaction also
	// belongs to a Derived.
	asSource *sourceCore

	// effect tree (meaningful for Effect nodes): parent/child/sibling
	// links forming the hierarchical disposal tree of spec §3/§4.3.
	parent      *reactionCore
	firstChild  *reactionCore
	lastChild   *reactionCore
	prevSibling *reactionCore
	nextSibling *reactionCore

	scope *Scope // the scope (if any) this reaction was created under

	// ownerGID is the goroutine that constructed this node, checked on
	// every access (spec §5's single-goroutine ownership model).
	ownerGID int64
}

// DependencyLink is a single edge in the dependency graph: source is the
// Source being read, reaction is the Reaction reading it. The struct is
// threaded through two independent doubly linked circular lists at once —
// reaction.deps (owned, strong, traversal order = read order) and
// source.subs (weakly held, traversal order = subscription order) —
// exactly the way the teacher's internal/node.go DependencyLink is
// threaded through both depsHead and subsHead simultaneously. The
// reaction side is a weak.Pointer so the list never keeps a dead Reaction
// alive.
type DependencyLink struct {
	source   *sourceCore
	reaction weak.Pointer[reactionCore]

	prevDep *DependencyLink
	nextDep *DependencyLink

	prevSub *DependencyLink
	nextSub *DependencyLink
}

// newSourceCore constructs a Source-half node with the default equality,
// stamped with the constructing goroutine's id.
func newSourceCore(initial any) *sourceCore {
	return &sourceCore{
		flags:    FlagSource.WithStatus(FlagClean),
		value:    initial,
		equals:   defaultEquals,
		ownerGID: GetContext().gid,
	}
}

// newReactionCore constructs a Reaction-half node, stamped with the
// constructing goroutine's id.
func newReactionCore(kind NodeFlags) *reactionCore {
	return &reactionCore{
		flags:    kind.WithStatus(FlagDirty),
		ownerGID: GetContext().gid,
	}
}

func defaultEquals(a, b any) bool {
	return a == b
}

// checkOwner panics with CrossGoroutineAccessError if ctx does not belong
// to the goroutine that constructed this source (spec §5's ownership
// guard, generalized from the teacher's Tracker.shouldTrack executingGID
// check to every public access instead of just dependency tracking).
func (s *sourceCore) checkOwner(ctx *ExecutionContext) {
	if ctx.gid != s.ownerGID {
		panic(&CrossGoroutineAccessError{OwnerGID: s.ownerGID, CallerGID: ctx.gid})
	}
}

// checkOwner is reactionCore's counterpart to sourceCore.checkOwner.
func (r *reactionCore) checkOwner(ctx *ExecutionContext) {
	if ctx.gid != r.ownerGID {
		panic(&CrossGoroutineAccessError{OwnerGID: r.ownerGID, CallerGID: ctx.gid})
	}
}

// link creates the bidirectional edge: reaction becomes a subscriber of
// source. Mirrors the teacher's ReactiveNode.Link, generalized to weakly
// hold the reaction side.
func link(reaction *reactionCore, source *sourceCore) *DependencyLink {
	l := &DependencyLink{source: source, reaction: weak.Make(reaction)}

	reaction.addDepLink(l)
	source.addSubLink(l)

	return l
}

func (r *reactionCore) addDepLink(l *DependencyLink) {
	if r.deps == nil {
		r.deps = l
		l.prevDep = l
		l.nextDep = nil
	} else {
		tail := r.deps.prevDep
		tail.nextDep = l
		l.prevDep = tail
		l.nextDep = nil
		r.deps.prevDep = l
	}
}

func (s *sourceCore) addSubLink(l *DependencyLink) {
	if s.subs == nil {
		s.subs = l
		l.prevSub = l
		l.nextSub = nil
	} else {
		tail := s.subs.prevSub
		tail.nextSub = l
		l.prevSub = tail
		l.nextSub = nil
		s.subs.prevSub = l
	}
}

// unlinkDep removes l from the owning reaction's strong dep list.
func (r *reactionCore) unlinkDep(l *DependencyLink) {
	if l.prevDep == l {
		r.deps = nil
	} else {
		if l == r.deps {
			r.deps = l.nextDep
		} else {
			l.prevDep.nextDep = l.nextDep
		}
		if l.nextDep != nil {
			l.nextDep.prevDep = l.prevDep
		} else {
			r.deps.prevDep = l.prevDep
		}
	}
	l.prevDep = nil
	l.nextDep = nil
}

// unlinkSub removes l from the source's weak subscriber list.
func (s *sourceCore) unlinkSub(l *DependencyLink) {
	if l.prevSub == l {
		s.subs = nil
	} else {
		if l == s.subs {
			s.subs = l.nextSub
		} else {
			l.prevSub.nextSub = l.nextSub
		}
		if l.nextSub != nil {
			l.nextSub.prevSub = l.prevSub
		} else {
			s.subs.prevSub = l.prevSub
		}
	}
	l.prevSub = nil
	l.nextSub = nil
}

// ClearDeps drops every dependency this reaction holds, unlinking both
// sides. Mirrors the teacher's ReactiveNode.ClearDeps.
func (r *reactionCore) ClearDeps() {
	for l := r.deps; l != nil; {
		next := l.nextDep
		l.source.unlinkSub(l)
		l = next
	}
	r.deps = nil
}

// Deps iterates the reaction's strongly-held dependencies in read order.
func (r *reactionCore) Deps() iter.Seq[*sourceCore] {
	return func(yield func(*sourceCore) bool) {
		for l := r.deps; l != nil; l = l.nextDep {
			if !yield(l.source) {
				return
			}
		}
	}
}

// Subs iterates the source's live subscribers, opportunistically pruning
// dead weak references as it goes (spec §4.4 step 1: "Opportunistically
// prune dead weak references in the source's reactions list").
func (s *sourceCore) Subs() iter.Seq[*reactionCore] {
	return func(yield func(*reactionCore) bool) {
		l := s.subs
		for l != nil {
			next := l.nextSub
			if r := l.reaction.Value(); r != nil {
				if !yield(r) {
					return
				}
			} else {
				s.unlinkSub(l)
			}
			l = next
		}
	}
}

// commitDeps reconciles the reaction's dep list with a freshly captured
// read order, reusing the leading run of unchanged entries (spec §3's
// skipped_deps optimization: "a prefix of its old dep list intact"). The
// count of reused leading entries is recorded on ctx.skippedDeps.
func (r *reactionCore) commitDeps(ctx *ExecutionContext, newDeps []*sourceCore) {
	l := r.deps
	i := 0

	for l != nil && i < len(newDeps) && l.source == newDeps[i] {
		l = l.nextDep
		i++
	}
	ctx.skippedDeps = i

	// Remove the stale suffix of the old list.
	for l != nil {
		next := l.nextDep
		l.source.unlinkSub(l)
		r.unlinkDep(l)
		l = next
	}

	// Append anything beyond the matched prefix as fresh links.
	for ; i < len(newDeps); i++ {
		link(r, newDeps[i])
	}
}

// AddChild links child as the newest child of this reaction (front of the
// list), mirroring the teacher's Owner.AddChild.
func (r *reactionCore) AddChild(child *reactionCore) {
	child.parent = r
	child.prevSibling = nil
	child.nextSibling = r.firstChild

	if r.firstChild != nil {
		r.firstChild.prevSibling = child
	} else {
		r.lastChild = child
	}
	r.firstChild = child
}

func (r *reactionCore) removeChild(child *reactionCore) {
	if child.prevSibling != nil {
		child.prevSibling.nextSibling = child.nextSibling
	} else {
		r.firstChild = child.nextSibling
	}
	if child.nextSibling != nil {
		child.nextSibling.prevSibling = child.prevSibling
	} else {
		r.lastChild = child.prevSibling
	}
	child.parent = nil
	child.prevSibling = nil
	child.nextSibling = nil
}

// Children iterates direct children, youngest first.
func (r *reactionCore) Children() iter.Seq[*reactionCore] {
	return func(yield func(*reactionCore) bool) {
		child := r.firstChild
		for child != nil {
			next := child.nextSibling
			if !yield(child) {
				return
			}
			child = next
		}
	}
}

// DisposeChildren recursively destroys every non-preserved child.
func (r *reactionCore) DisposeChildren() {
	for child := range r.Children() {
		if child.flags.HasAny(FlagEffectPreserved) {
			continue
		}
		child.Destroy()
	}
}

// Destroy clears deps, runs teardown, recursively destroys children and
// unlinks from the parent. Mirrors the teacher's Owner.Dispose, moved to
// operate on the reaction node directly per spec §3.
func (r *reactionCore) Destroy() {
	if r.flags.HasAny(FlagDestroyed) {
		return
	}

	r.DisposeChildren()

	if r.teardown != nil {
		t := r.teardown
		r.teardown = nil
		runProtected(r.catchers, t)
	}

	r.ClearDeps()
	r.flags = r.flags.WithStatus(FlagClean)
	r.flags |= FlagDestroyed

	if r.parent != nil {
		r.parent.removeChild(r)
	}
	if r.scope != nil {
		r.scope.forget(r)
		r.scope = nil
	}
}

// runProtected invokes fn, routing any panic to catchers instead of
// letting it propagate, mirroring the teacher's Owner.Run recover block.
// Used for teardown execution, which spec §7 says must never abort a
// disposal in progress.
func runProtected(catchers []func(any), fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			if len(catchers) == 0 {
				return
			}
			for _, c := range catchers {
				c(rec)
			}
		}
	}()
	fn()
}

func (r *reactionCore) OnError(fn func(any)) {
	r.catchers = append(r.catchers, fn)
}
