package internal

// MaxFlushIterations bounds flush-sync's drain loop (spec §4.3/§4.5/§7:
// "typically 1000"). Exposed as a var, not a const, the way the teacher's
// heap.go hard-codes a 2000-slot array as a tunable — here so tests can
// lower it and exercise the cycle-panic path (S6) without spinning a
// thousand iterations first.
var MaxFlushIterations = 1000

// OnFlushComplete and OnCyclePanic are optional hooks the metrics package
// wires up via Init, so the engine itself never imports Prometheus — it
// only calls back into whatever observer registered itself here.
var (
	OnFlushComplete       func(iterations int)
	OnCyclePanic          func()
	OnQueueDepthChanged   func(depth int)
	OnSelectorKeysChanged func(count int)
)

// Batch increments the batch depth around fn (spec §4.5): writes during
// fn still mark reactions dirty, but the flush loop does not run until
// the outermost batch exits. Nested batches are idempotent — only the
// outermost triggers a drain. Ported from the teacher's internal/batcher.go
// Batcher.Batch, which has exactly this depth-counter-plus-deferred-
// onComplete shape.
func Batch(ctx *ExecutionContext, fn func()) {
	ctx.batchDepth++
	defer func() {
		ctx.batchDepth--
		if ctx.batchDepth == 0 {
			FlushSync(ctx)
		}
	}()

	fn()
}

// IsBatching reports whether a Batch is currently on the stack.
func IsBatching(ctx *ExecutionContext) bool {
	return ctx.batchDepth > 0
}

// scheduleAfterWrite is called once mark-reactions has finished enqueuing
// whatever it touched; it flushes immediately unless a batch is in
// progress (spec §4.4 step 4 / §4.5).
func scheduleAfterWrite(ctx *ExecutionContext) {
	if !IsBatching(ctx) {
		FlushSync(ctx)
	}
}

// FlushSync drains the pending-reactions queue to quiescence (spec §4.5).
// Protected against reentry by isFlushingSync — a reaction's own update()
// triggering another flush (e.g. a batch exiting from inside an effect)
// is a no-op inner call; the outer loop picks up anything newly enqueued
// on its next iteration. Iteration is bounded by MaxFlushIterations;
// exceeding it panics with MaxUpdateDepthExceededError (spec §7), and the
// reentry flag is restored by a deferred guard so a panic cannot leave
// the scheduler stuck (spec §7's "restored by a guard" requirement).
//
// Grounded on the teacher's internal/scheduler.go Scheduler.Run, which has
// the identical CAS-guarded "count > limit -> bail" loop shape; here the
// height-ordered heap drain is replaced with spec §4.5's FIFO-by-enqueue-
// order queue drain.
func FlushSync(ctx *ExecutionContext) {
	if ctx.isFlushingSync {
		return
	}
	ctx.isFlushingSync = true
	defer func() { ctx.isFlushingSync = false }()

	iterations := 0
	for len(ctx.pendingReactions) > 0 {
		iterations++
		if iterations > MaxFlushIterations {
			if OnCyclePanic != nil {
				OnCyclePanic()
			}
			panic(&MaxUpdateDepthExceededError{Iterations: iterations})
		}

		queue := ctx.pendingReactions
		ctx.pendingReactions = nil
		if OnQueueDepthChanged != nil {
			OnQueueDepthChanged(0)
		}

		for _, r := range queue {
			if r.flags.HasAny(FlagDestroyed) || r.flags.HasAny(FlagInert) {
				continue
			}
			if r.flags.Status() == FlagClean {
				continue
			}
			if r.update != nil {
				r.update()
			}
		}
	}

	if OnFlushComplete != nil {
		OnFlushComplete(iterations)
	}
}

// Tick is a synonym for FlushSync (spec §4.5: "provided so callers after
// a batch can guarantee all dependent work has run").
func Tick(ctx *ExecutionContext) {
	FlushSync(ctx)
}
