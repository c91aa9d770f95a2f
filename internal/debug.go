package internal

import "fmt"

// DebugNode is a plain-data snapshot of one reaction node and its effect-
// tree children, independent of any rendering library, so the public
// debug package can turn it into an ASCII tree without reaching into
// unexported fields.
type DebugNode struct {
	Label    string
	Status   string
	DepCount int
	Children []*DebugNode
}

func statusLabel(flags NodeFlags) string {
	switch flags.Status() {
	case FlagClean:
		return "clean"
	case FlagDirty:
		return "dirty"
	case FlagMaybeDirty:
		return "maybe-dirty"
	default:
		return "unknown"
	}
}

func snapshot(r *reactionCore) *DebugNode {
	label := r.name
	if label == "" {
		label = fmt.Sprintf("effect@%p", r)
	}

	depCount := 0
	for range r.Deps() {
		depCount++
	}

	n := &DebugNode{Label: label, Status: statusLabel(r.flags), DepCount: depCount}
	for child := range r.Children() {
		n.Children = append(n.Children, snapshot(child))
	}
	return n
}

// Snapshot returns a debug-tree view of this effect and its living
// children, for the debug package's ASCII dumper (spec §4.3's effect
// tree, exposed read-only for diagnostics).
func (e *Effect) Snapshot() *DebugNode { return snapshot(e.reaction) }

// SetName attaches a human-readable label used by Snapshot/debug dumps.
func (e *Effect) SetName(name string) { e.reaction.name = name }
