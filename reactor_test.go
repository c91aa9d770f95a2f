package reactor

import (
	"math"
	"testing"

	"github.com/corebound/reactor/internal"
	"github.com/stretchr/testify/assert"
)

func TestSignal(t *testing.T) {
	t.Run("read and write", func(t *testing.T) {
		count := NewSignal(0)
		assert.Equal(t, 0, count.Get())

		count.Set(10)
		assert.Equal(t, 10, count.Get())
	})

	t.Run("equal writes are no-ops", func(t *testing.T) {
		scope := NewScope()
		defer scope.Stop()

		var runs int
		scope.Run(func() {
			s := NewSignal(1)
			EffectSync(func() {
				s.Get()
				runs++
			})

			s.Set(1) // same value: must not rerun the effect
			FlushSync()
		})

		assert.Equal(t, 1, runs)
	})

	t.Run("update reads then writes", func(t *testing.T) {
		count := NewSignal(5)
		count.Update(func(v int) int { return v * 2 })
		assert.Equal(t, 10, count.Get())
	})
}

func TestDerived(t *testing.T) {
	t.Run("recomputes only when a dependency actually changes", func(t *testing.T) {
		a := NewSignal(1)
		b := NewSignal(2)

		var computations int
		sum := NewDerived(func() int {
			computations++
			return a.Get() + b.Get()
		})

		assert.Equal(t, 3, sum.Get())
		assert.Equal(t, 1, computations)

		assert.Equal(t, 3, sum.Get()) // cached, no recompute
		assert.Equal(t, 1, computations)

		a.Set(10)
		assert.Equal(t, 12, sum.Get())
		assert.Equal(t, 2, computations)
	})

	t.Run("diamond dependency settles without double recompute downstream", func(t *testing.T) {
		root := NewSignal(1)
		left := NewDerived(func() int { return root.Get() * 2 })
		right := NewDerived(func() int { return root.Get() * 3 })

		var computations int
		sum := NewDerived(func() int {
			computations++
			return left.Get() + right.Get()
		})

		assert.Equal(t, 5, sum.Get())
		assert.Equal(t, 1, computations)

		root.Set(2)
		assert.Equal(t, 10, sum.Get())
		assert.Equal(t, 2, computations)
	})

	t.Run("maybe-dirty settles to clean without recomputing when deps are unchanged", func(t *testing.T) {
		a := NewSignal(1)
		gate := NewDerived(func() int { return a.Get() * 0 }) // always 0

		var computations int
		downstream := NewDerived(func() int {
			computations++
			return gate.Get() + 100
		})

		assert.Equal(t, 100, downstream.Get())
		assert.Equal(t, 1, computations)

		a.Set(2) // gate goes DIRTY and downstream MAYBE_DIRTY, but gate's value (0) doesn't change
		assert.Equal(t, 100, downstream.Get())
		assert.Equal(t, 1, computations)
	})
}

func TestEffect(t *testing.T) {
	t.Run("runs immediately and reruns on dependency change", func(t *testing.T) {
		s := NewSignal(0)
		var seen []int

		scope := NewScope()
		defer scope.Stop()

		scope.Run(func() {
			EffectSync(func() { seen = append(seen, s.Get()) })
		})

		assert.Equal(t, []int{0}, seen)

		s.Set(1)
		FlushSync()
		assert.Equal(t, []int{0, 1}, seen)
	})

	t.Run("cleanup runs before rerun and on stop", func(t *testing.T) {
		s := NewSignal(0)
		var cleanups int

		scope := NewScope()
		scope.Run(func() {
			EffectWithCleanup(func() func() {
				s.Get()
				return func() { cleanups++ }
			})
		})

		s.Set(1)
		FlushSync()
		assert.Equal(t, 1, cleanups)

		scope.Stop()
		assert.Equal(t, 2, cleanups)
	})

	t.Run("a self-retriggering effect trips MaxUpdateDepthExceededError", func(t *testing.T) {
		// Runs on its own goroutine so the stuck, still-pending reaction
		// left behind by the panic (the scheduler bails out mid-drain,
		// before its queue is empty) lives in that goroutine's own
		// ExecutionContext and can't contaminate later subtests sharing
		// this test binary's main goroutine.
		done := make(chan any, 1)
		go func() {
			defer func() { done <- recover() }()

			x := NewSignal(0)
			scope := NewScope()
			scope.Run(func() {
				EffectSync(func() { x.Set(x.Get() + 1) })
			})
		}()

		recovered := <-done
		if assert.NotNil(t, recovered, "expected a self-retriggering effect to panic") {
			_, ok := recovered.(*internal.MaxUpdateDepthExceededError)
			assert.True(t, ok, "expected *internal.MaxUpdateDepthExceededError, got %T: %v", recovered, recovered)
		}
	})

	t.Run("effects run in enqueue order", func(t *testing.T) {
		s := NewSignal(0)
		var order []string

		scope := NewScope()
		defer scope.Stop()

		scope.Run(func() {
			EffectSync(func() { s.Get(); order = append(order, "first") })
			EffectSync(func() { s.Get(); order = append(order, "second") })
		})

		order = nil
		s.Set(1)
		FlushSync()

		assert.Equal(t, []string{"first", "second"}, order)
	})
}

func TestBatch(t *testing.T) {
	t.Run("coalesces multiple writes into one flush", func(t *testing.T) {
		a := NewSignal(1)
		b := NewSignal(2)
		var runs int

		scope := NewScope()
		defer scope.Stop()

		scope.Run(func() {
			EffectSync(func() {
				a.Get()
				b.Get()
				runs++
			})
		})

		runs = 0
		Batch(func() {
			a.Set(10)
			b.Set(20)
		})

		assert.Equal(t, 1, runs)
	})

	t.Run("panic-safe: depth still unwinds", func(t *testing.T) {
		a := NewSignal(1)

		assert.Panics(t, func() {
			Batch(func() {
				a.Set(2)
				panic("boom")
			})
		})

		// a later batch must still coalesce normally, proving batchDepth
		// was restored to 0 despite the panic.
		var runs int
		scope := NewScope()
		defer scope.Stop()
		scope.Run(func() {
			EffectSync(func() { a.Get(); runs++ })
		})

		runs = 0
		Batch(func() { a.Set(3) })
		assert.Equal(t, 1, runs)
	})
}

func TestUntrack(t *testing.T) {
	t.Run("reads inside Untrack are not tracked", func(t *testing.T) {
		tracked := NewSignal(1)
		untracked := NewSignal(100)
		var runs int

		scope := NewScope()
		defer scope.Stop()

		scope.Run(func() {
			EffectSync(func() {
				tracked.Get()
				Untrack(func() int { return untracked.Get() })
				runs++
			})
		})

		runs = 0
		untracked.Set(200)
		FlushSync()
		assert.Equal(t, 0, runs)

		tracked.Set(2)
		FlushSync()
		assert.Equal(t, 1, runs)
	})
}

func TestScope(t *testing.T) {
	t.Run("stop runs cleanups LIFO", func(t *testing.T) {
		var order []string
		scope := NewScope()

		scope.OnDispose(func() { order = append(order, "first-registered") })
		scope.OnDispose(func() { order = append(order, "second-registered") })

		scope.Stop()

		assert.Equal(t, []string{"second-registered", "first-registered"}, order)
	})

	t.Run("pause stops reruns, resume picks dirty work back up", func(t *testing.T) {
		s := NewSignal(0)
		var runs int

		scope := NewScope()
		defer scope.Stop()

		scope.Run(func() {
			EffectSync(func() { s.Get(); runs++ })
		})

		runs = 0
		scope.Pause()
		s.Set(1)
		FlushSync()
		assert.Equal(t, 0, runs)

		scope.Resume()
		s.Set(2)
		FlushSync()
		assert.Equal(t, 1, runs)
	})
}

func TestSelector(t *testing.T) {
	t.Run("only the previously and newly selected keys flip", func(t *testing.T) {
		current := NewSignal(1)
		sel := NewSelector(func() int { return current.Get() })

		runsFor := map[int]int{}
		scope := NewScope()
		defer scope.Stop()

		scope.Run(func() {
			for _, k := range []int{1, 2, 3} {
				k := k
				EffectSync(func() {
					sel.IsSelected(k)
					runsFor[k]++
				})
			}
		})

		for k := range runsFor {
			runsFor[k] = 0
		}

		current.Set(2)
		FlushSync()

		assert.Equal(t, 1, runsFor[1]) // was selected, now isn't
		assert.Equal(t, 1, runsFor[2]) // wasn't selected, now is
		assert.Equal(t, 0, runsFor[3]) // never involved
	})
}

func TestRepeater(t *testing.T) {
	t.Run("forwards inline, synchronously within the write call", func(t *testing.T) {
		source := NewSignal(1)
		mirror := NewSignal(0)

		rp := NewRepeater(func() { mirror.Set(source.Get()) })
		defer rp.Stop()

		source.Set(5)
		assert.Equal(t, 5, mirror.Get()) // no FlushSync needed: repeaters are inline
	})
}

func TestEquality(t *testing.T) {
	t.Run("Float64NaN treats NaN as equal to itself", func(t *testing.T) {
		nan := NewSignalWithEquals(math.NaN(), Float64NaN)

		var runs int
		scope := NewScope()
		defer scope.Stop()
		scope.Run(func() {
			EffectSync(func() { nan.Get(); runs++ })
		})

		runs = 0
		nan.Set(math.NaN()) // same "value" under Float64NaN: must not rerun
		FlushSync()
		assert.Equal(t, 0, runs)
	})

	t.Run("ByField compares by a derived key", func(t *testing.T) {
		type point struct{ x, y int }
		eq := ByField(func(p point) int { return p.x })
		assert.True(t, eq(point{1, 2}, point{1, 99}))
		assert.False(t, eq(point{1, 2}, point{2, 2}))
	})
}
