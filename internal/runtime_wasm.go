//go:build wasm

package internal

import "sync"

var wasmOnce sync.Once
var wasmContext *ExecutionContext

// GetContext under wasm: there is exactly one goroutine-equivalent of
// interest (the JS event loop), so goid's cross-goroutine guard has
// nothing to key off of. Mirrors the teacher's runtime_wasm.go fallback.
func GetContext() *ExecutionContext {
	wasmOnce.Do(func() {
		wasmContext = newExecutionContext(0)
	})

	return wasmContext
}

// CheckSameGoroutine is a no-op under wasm: single-threaded by construction.
func CheckSameGoroutine(ctx *ExecutionContext) {}
