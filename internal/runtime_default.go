//go:build !wasm

package internal

import (
	"sync"

	"github.com/petermattis/goid"
)

var contexts sync.Map // int64 (goid) -> *ExecutionContext

// GetContext returns (creating if necessary) the ExecutionContext owned by
// the calling goroutine. Mirrors the teacher's runtime_default.go exactly,
// renamed from Runtime to ExecutionContext to match spec §3's vocabulary.
func GetContext() *ExecutionContext {
	gid := getGID()

	if ctx, ok := contexts.Load(gid); ok {
		return ctx.(*ExecutionContext)
	}

	ctx := newExecutionContext(gid)
	contexts.Store(gid, ctx)
	return ctx
}

func getGID() int64 {
	return goid.Get()
}

// CheckSameGoroutine panics with CrossGoroutineAccess if ctx was not
// created on the calling goroutine. Spec §5: "Attempting to share a node
// across threads must be rejected" — goid gives Go a runtime check where
// the source language's type system would reject it statically.
func CheckSameGoroutine(ctx *ExecutionContext) {
	if getGID() != ctx.gid {
		panic(&CrossGoroutineAccessError{OwnerGID: ctx.gid, CallerGID: getGID()})
	}
}
